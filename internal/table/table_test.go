package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRecordsColumnsFromFirstRecord(t *testing.T) {
	tbl := FromRecords(
		Record{"y": Number(2), "x": Number(1)},
		Record{"x": Number(2), "y": Number(4), "z": String("extra")},
	)
	assert.Equal(t, []string{"x", "y"}, tbl.Columns)
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, 1, tbl.SchemaIssues())
}

func TestEmptyTable(t *testing.T) {
	tbl := FromRecords()
	assert.True(t, tbl.Empty())
	assert.Empty(t, tbl.Columns)
	assert.Equal(t, 0, tbl.SchemaIssues())

	var nilTable *Table
	assert.Equal(t, 0, nilTable.Len())
}

func TestColumnAndFloats(t *testing.T) {
	tbl := New([]string{"name", "v"})
	tbl.Append(Record{"name": String("a"), "v": String("1")})
	tbl.Append(Record{"name": String("b")})
	tbl.Append(Record{"name": String("c"), "v": Number(3)})

	vals := tbl.Column("v")
	assert.Len(t, vals, 3)
	assert.True(t, vals[1].IsMissing())
	assert.Equal(t, []float64{1, 3}, tbl.Floats("v"))
	assert.True(t, tbl.Get(1, "v").IsMissing())
	assert.True(t, tbl.Get(10, "v").IsMissing())
	assert.Equal(t, 1, tbl.SchemaIssues())
}
