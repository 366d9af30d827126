package table

import (
	"encoding/binary"
	"strings"

	"coredb/column"
	"github.com/pkg/errors"
)

// Row is the one fixed-width record the tree stores: a 32-bit key and two
// null-padded text fields. The tree itself never looks inside a Row — it
// only ever sees the serialized bytes plus the key used to order them.
type Row struct {
	ID       uint32
	Username string
	Email    string
}

// Serialize encodes row into dst, which must be exactly RowSize bytes: the
// id as a little-endian uint32, then the username and email raw bytes,
// null-padded to their fixed widths, with no intervening padding.
func (row Row) Serialize(dst []byte) error {
	if uint32(len(dst)) != RowSize {
		return errors.Errorf("Row.Serialize: dst length %d, expected %d", len(dst), RowSize)
	}
	if uint32(len(row.Username)) > UsernameSize {
		return errors.Errorf("Row.Serialize: username %q exceeds %d bytes", row.Username, UsernameSize)
	}
	if uint32(len(row.Email)) > EmailSize {
		return errors.Errorf("Row.Serialize: email %q exceeds %d bytes", row.Email, EmailSize)
	}

	for i := range dst {
		dst[i] = 0
	}

	for _, meta := range rowMeta {
		base := meta.Offset
		switch meta.Type {
		case column.ColumnTypeInt:
			binary.LittleEndian.PutUint32(dst[base:base+4], row.ID)
		case column.ColumnTypeText:
			var s string
			switch meta.Name {
			case "username":
				s = row.Username
			case "email":
				s = row.Email
			}
			copy(dst[base:base+meta.ByteSize], s)
		}
	}
	return nil
}

// DeserializeRow decodes src, which must be exactly RowSize bytes, back into
// a Row. Trailing null bytes are trimmed from the text fields.
func DeserializeRow(src []byte) (Row, error) {
	if uint32(len(src)) != RowSize {
		return Row{}, errors.Errorf("DeserializeRow: src length %d, expected %d", len(src), RowSize)
	}

	var row Row
	for _, meta := range rowMeta {
		base := meta.Offset
		switch meta.Type {
		case column.ColumnTypeInt:
			row.ID = binary.LittleEndian.Uint32(src[base : base+4])
		case column.ColumnTypeText:
			str := strings.TrimRight(string(src[base:base+meta.ByteSize]), "\x00")
			switch meta.Name {
			case "username":
				row.Username = str
			case "email":
				row.Email = str
			}
		}
	}
	return row, nil
}
