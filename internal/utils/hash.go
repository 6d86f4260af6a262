package utils

import (
	"fmt"

	"github.com/minio/highwayhash"
)

var fingerprintKey = []byte("datadash-fingerprint-key-0123456")

// Fingerprint returns a 64-bit HighwayHash of data as 16 hex digits.
func Fingerprint(data []byte) (string, error) {
	h, err := highwayhash.New64(fingerprintKey)
	if err != nil {
		return "", err
	}
	if _, err := h.Write(data); err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
