package utils

import "fmt"

// AppError is a user-facing failure tagged with the operation that failed.
type AppError struct {
	Op  string
	Msg string
	Err error
}

func (e *AppError) Error() string {
	if e == nil {
		return "error"
	}
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
}

func (e *AppError) Unwrap() error { return e.Err }

// Wrap returns an AppError for op, or nil when err is nil.
func Wrap(op, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &AppError{Op: op, Msg: msg, Err: err}
}
