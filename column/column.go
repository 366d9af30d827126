// Package column describes the shape of a fixed-width row: an ordered list
// of typed fields with a byte offset and size, used to serialize and
// deserialize row payloads that the B+ tree stores as opaque value bytes.
package column

type ColumnType int

const (
	ColumnTypeInt ColumnType = iota
	ColumnTypeText
)

// Column is a field declaration: name, type, and (for Text) its fixed
// maximum length in bytes. Int fields are always 4 bytes (little-endian
// uint32); Text fields are null-padded to MaxLength with no trailing
// length byte.
type Column struct {
	Name      string
	Type      ColumnType
	MaxLength uint32
}

// Schema is an ordered field declaration list. Offsets are not stored here;
// Resolve lays the fields out back-to-back with no intervening padding.
type Schema []Column

// ColMeta is a Column after layout: its byte offset and on-disk size within
// the row have been computed.
type ColMeta struct {
	Name      string
	Type      ColumnType
	Offset    uint32
	ByteSize  uint32
	MaxLength uint32
}

// Resolve lays out schema fields back-to-back and returns their offsets
// plus the total row width. Int fields occupy 4 bytes; Text fields occupy
// MaxLength bytes, which must be nonzero.
func Resolve(schema Schema) ([]ColMeta, uint32, error) {
	metas := make([]ColMeta, 0, len(schema))
	var offset uint32

	for _, col := range schema {
		switch col.Type {
		case ColumnTypeInt:
			metas = append(metas, ColMeta{
				Name:     col.Name,
				Type:     ColumnTypeInt,
				Offset:   offset,
				ByteSize: 4,
			})
			offset += 4

		case ColumnTypeText:
			if col.MaxLength == 0 {
				return nil, 0, errColumnf("text column %q must have MaxLength > 0", col.Name)
			}
			metas = append(metas, ColMeta{
				Name:      col.Name,
				Type:      ColumnTypeText,
				Offset:    offset,
				ByteSize:  col.MaxLength,
				MaxLength: col.MaxLength,
			})
			offset += col.MaxLength

		default:
			return nil, 0, errColumnf("unsupported column type for %q", col.Name)
		}
	}

	if offset == 0 {
		return nil, 0, errColumnf("schema must declare at least one column")
	}
	return metas, offset, nil
}
