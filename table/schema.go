package table

import "coredb/column"

// UsernameSize and EmailSize fix the width of the two text fields; Row is a
// single, fixed schema for the whole engine's lifetime (NON-GOAL: multi-table
// catalogs / variable-length values).
const (
	UsernameSize = 32
	EmailSize    = 255
)

// RowSchema is the one fixed row layout the tree ever stores: a 32-bit id,
// a null-padded 32-byte username, and a null-padded 255-byte email.
var RowSchema = column.Schema{
	{Name: "id", Type: column.ColumnTypeInt},
	{Name: "username", Type: column.ColumnTypeText, MaxLength: UsernameSize},
	{Name: "email", Type: column.ColumnTypeText, MaxLength: EmailSize},
}

var rowMeta, RowSize = mustResolveRowSchema()

func mustResolveRowSchema() ([]column.ColMeta, uint32) {
	metas, size, err := column.Resolve(RowSchema)
	if err != nil {
		panic(err)
	}
	if size != 4+UsernameSize+EmailSize {
		panic("table: row schema layout drifted from the fixed 4+32+255 byte row")
	}
	return metas, size
}
