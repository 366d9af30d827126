package table

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	row := Row{ID: 42, Username: "alice", Email: "alice@example.com"}
	buf := make([]byte, RowSize)
	require.NoError(t, row.Serialize(buf))

	got, err := DeserializeRow(buf)
	require.NoError(t, err)
	require.Equal(t, row, got)
}

func TestSerializeRejectsOversizeFields(t *testing.T) {
	buf := make([]byte, RowSize)

	long := make([]byte, UsernameSize+1)
	for i := range long {
		long[i] = 'a'
	}
	row := Row{ID: 1, Username: string(long), Email: "a@a"}
	require.Error(t, row.Serialize(buf))

	longEmail := make([]byte, EmailSize+1)
	for i := range longEmail {
		longEmail[i] = 'b'
	}
	row2 := Row{ID: 1, Username: "a", Email: string(longEmail)}
	require.Error(t, row2.Serialize(buf))
}

func TestSerializeRejectsWrongBufferLength(t *testing.T) {
	row := Row{ID: 1, Username: "a", Email: "a@a"}
	require.Error(t, row.Serialize(make([]byte, RowSize-1)))
}

func TestDeserializeTrimsTrailingNulls(t *testing.T) {
	buf := make([]byte, RowSize)
	row := Row{ID: 7, Username: "bob", Email: "bob@b.com"}
	require.NoError(t, row.Serialize(buf))

	got, err := DeserializeRow(buf)
	require.NoError(t, err)
	require.Equal(t, "bob", got.Username)
	require.Equal(t, "bob@b.com", got.Email)
}

func TestRowSizeIsFixed(t *testing.T) {
	require.EqualValues(t, 4+UsernameSize+EmailSize, RowSize)
}
