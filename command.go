package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"coredb/table"
)

type MetaCommandResult int

const (
	MetaCommandSuccess MetaCommandResult = iota
	MetaCommandExit
	MetaCommandUnrecognizedCommand
)

// handleMetaCommand dispatches the dot-commands. MetaCommandExit is left
// for the caller to act on, since exiting also needs to close the table.
func handleMetaCommand(w io.Writer, line string, t *table.Table) MetaCommandResult {
	switch line {
	case ".exit":
		return MetaCommandExit
	case ".btree":
		if err := t.PrintTree(w, t.RootPageNum, 0); err != nil {
			fmt.Fprintln(w, "Error:", err)
		}
		return MetaCommandSuccess
	case ".constants":
		table.PrintConstants(w)
		return MetaCommandSuccess
	default:
		return MetaCommandUnrecognizedCommand
	}
}

// prepareStatement parses a non-meta input line into a Statement.
// "insert" requires exactly three fields (id, username, email); a missing
// field is a syntax error, same as a malformed id.
func prepareStatement(line string) (Statement, PrepareResult) {
	if strings.HasPrefix(line, "insert") {
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return Statement{}, PrepareSyntaxError
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			return Statement{}, PrepareSyntaxError
		}
		if id < 0 {
			return Statement{}, PrepareNegativeID
		}
		username, email := fields[2], fields[3]
		if len(username) > table.UsernameSize || len(email) > table.EmailSize {
			return Statement{}, PrepareStringTooLong
		}
		return Statement{
			Type: StatementInsert,
			RowToInsert: table.Row{
				ID:       uint32(id),
				Username: username,
				Email:    email,
			},
		}, PrepareSuccess
	}

	if line == "select" {
		return Statement{Type: StatementSelect}, PrepareSuccess
	}

	return Statement{}, PrepareUnrecognizedStatement
}

// executeStatement runs stmt against t and writes its result message to w.
func executeStatement(w io.Writer, stmt Statement, t *table.Table) error {
	switch stmt.Type {
	case StatementInsert:
		result, err := t.Insert(stmt.RowToInsert)
		if err != nil {
			return err
		}
		switch result {
		case table.Success:
			fmt.Fprintln(w, "Executed successfully.")
		case table.DuplicateKey:
			fmt.Fprintln(w, "Error: Duplicate key.")
		case table.TableFull:
			fmt.Fprintln(w, "Error: Table full.")
		}
	case StatementSelect:
		cursor, err := t.Start()
		if err != nil {
			return err
		}
		for !cursor.EndOfTable {
			value, err := cursor.Value()
			if err != nil {
				return err
			}
			row, err := table.DeserializeRow(value)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "(%d, %s, %s)\n", row.ID, row.Username, row.Email)
			if err := cursor.Advance(); err != nil {
				return err
			}
		}
		fmt.Fprintln(w, "Executed successfully.")
	}
	return nil
}
