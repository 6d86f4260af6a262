package table

import "sort"

// Record is one row of tabular input keyed by column name.
type Record map[string]Value

// Table is an ordered sequence of records. Columns holds the key set of the
// first record in source order; later records are not checked against it.
type Table struct {
	Columns []string
	Records []Record
}

// New returns an empty table with the given column order.
func New(columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// FromRecords builds a table whose columns are the keys of the first record.
// Map keys carry no order, so they are sorted.
func FromRecords(records ...Record) *Table {
	t := &Table{Records: records}
	if len(records) == 0 {
		return t
	}
	for k := range records[0] {
		t.Columns = append(t.Columns, k)
	}
	sort.Strings(t.Columns)
	return t
}

// Append adds a record. When the table has no columns yet, the record's keys
// (sorted) become the column set.
func (t *Table) Append(r Record) {
	if len(t.Records) == 0 && len(t.Columns) == 0 {
		for k := range r {
			t.Columns = append(t.Columns, k)
		}
		sort.Strings(t.Columns)
	}
	t.Records = append(t.Records, r)
}

// Len is the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Empty reports whether the table has no records.
func (t *Table) Empty() bool { return t.Len() == 0 }

// Get returns the value of column in row i, Missing when the record lacks it.
func (t *Table) Get(i int, column string) Value {
	if i < 0 || i >= len(t.Records) {
		return Missing()
	}
	v, ok := t.Records[i][column]
	if !ok {
		return Missing()
	}
	return v
}

// Column returns the values of one column in row order.
func (t *Table) Column(name string) []Value {
	out := make([]Value, len(t.Records))
	for i, r := range t.Records {
		if v, ok := r[name]; ok {
			out[i] = v
		}
	}
	return out
}

// Floats returns the coerced numbers of a column, skipping cells that do not
// coerce.
func (t *Table) Floats(name string) []float64 {
	out := make([]float64, 0, len(t.Records))
	for _, r := range t.Records {
		if f, ok := r[name].Float(); ok {
			out = append(out, f)
		}
	}
	return out
}

// SchemaIssues counts records whose key set differs from Columns.
func (t *Table) SchemaIssues() int {
	if t.Len() == 0 {
		return 0
	}
	want := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		want[c] = struct{}{}
	}
	n := 0
	for _, r := range t.Records {
		if len(r) != len(want) {
			n++
			continue
		}
		for k := range r {
			if _, ok := want[k]; !ok {
				n++
				break
			}
		}
	}
	return n
}
