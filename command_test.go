package main

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"coredb/table"
)

func openTestTable(t *testing.T) *table.Table {
	t.Helper()
	f, err := os.CreateTemp("", "coredb_cli_test_*.db")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	t.Cleanup(func() { os.Remove(f.Name()) })

	tbl, err := table.Open(f.Name())
	require.NoError(t, err)
	t.Cleanup(func() { tbl.Close() })
	return tbl
}

func TestPrepareStatementInsert(t *testing.T) {
	stmt, result := prepareStatement("insert 1 user1 person1@example.com")
	require.Equal(t, PrepareSuccess, result)
	require.Equal(t, StatementInsert, stmt.Type)
	require.EqualValues(t, 1, stmt.RowToInsert.ID)
	require.Equal(t, "user1", stmt.RowToInsert.Username)
	require.Equal(t, "person1@example.com", stmt.RowToInsert.Email)
}

func TestPrepareStatementNegativeID(t *testing.T) {
	_, result := prepareStatement("insert -1 x x@x")
	require.Equal(t, PrepareNegativeID, result)
}

func TestPrepareStatementStringTooLong(t *testing.T) {
	long := make([]byte, table.UsernameSize+1)
	for i := range long {
		long[i] = 'a'
	}
	_, result := prepareStatement("insert 1 " + string(long) + " x@x")
	require.Equal(t, PrepareStringTooLong, result)
}

func TestPrepareStatementMissingArgumentIsSyntaxError(t *testing.T) {
	_, result := prepareStatement("insert 1 user1")
	require.Equal(t, PrepareSyntaxError, result)
}

func TestPrepareStatementMalformedIDIsSyntaxError(t *testing.T) {
	_, result := prepareStatement("insert abc user1 a@a")
	require.Equal(t, PrepareSyntaxError, result)
}

func TestPrepareStatementUnrecognized(t *testing.T) {
	_, result := prepareStatement("delete 1")
	require.Equal(t, PrepareUnrecognizedStatement, result)
}

func TestExecuteStatementInsertAndSelect(t *testing.T) {
	tbl := openTestTable(t)

	stmt, result := prepareStatement("insert 1 user1 person1@example.com")
	require.Equal(t, PrepareSuccess, result)
	var out bytes.Buffer
	require.NoError(t, executeStatement(&out, stmt, tbl))
	require.Equal(t, "Executed successfully.\n", out.String())

	stmt2, result := prepareStatement("insert 2 user2 person2@example.com")
	require.Equal(t, PrepareSuccess, result)
	out.Reset()
	require.NoError(t, executeStatement(&out, stmt2, tbl))

	selectStmt, result := prepareStatement("select")
	require.Equal(t, PrepareSuccess, result)
	out.Reset()
	require.NoError(t, executeStatement(&out, selectStmt, tbl))
	require.Equal(t, "(1, user1, person1@example.com)\n(2, user2, person2@example.com)\nExecuted successfully.\n", out.String())
}

func TestExecuteStatementDuplicateKey(t *testing.T) {
	tbl := openTestTable(t)

	stmt, _ := prepareStatement("insert 1 a a@a")
	var out bytes.Buffer
	require.NoError(t, executeStatement(&out, stmt, tbl))

	stmt2, _ := prepareStatement("insert 1 b b@b")
	out.Reset()
	require.NoError(t, executeStatement(&out, stmt2, tbl))
	require.Equal(t, "Error: Duplicate key.\n", out.String())
}

func TestHandleMetaCommandConstants(t *testing.T) {
	tbl := openTestTable(t)
	var out bytes.Buffer
	result := handleMetaCommand(&out, ".constants", tbl)
	require.Equal(t, MetaCommandSuccess, result)
	require.Contains(t, out.String(), "ROW_SIZE: 291")
}

func TestHandleMetaCommandExit(t *testing.T) {
	tbl := openTestTable(t)
	var out bytes.Buffer
	require.Equal(t, MetaCommandExit, handleMetaCommand(&out, ".exit", tbl))
}

func TestHandleMetaCommandUnrecognized(t *testing.T) {
	tbl := openTestTable(t)
	var out bytes.Buffer
	require.Equal(t, MetaCommandUnrecognizedCommand, handleMetaCommand(&out, ".nonsense", tbl))
}
