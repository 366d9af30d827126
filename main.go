// coredb is a single-table, disk-backed B+ tree store with a REPL front
// end: insert/select statements, dot meta-commands, and the tree/constants
// printers.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/sirupsen/logrus"

	"coredb/table"
)

var log = logrus.New()

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Must supply a database filename.")
	}
	filename := os.Args[1]

	t, err := table.Open(filename)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}

	os.Exit(run(os.Stdout, t))
}

// run drives the prompt loop to completion and returns the process exit
// code: 0 for ".exit", 1 if reading input fails or a tree operation hits a
// fatal error.
func run(w io.Writer, t *table.Table) int {
	reader, usingReadline := newLineReader()
	if usingReadline {
		defer reader.(readlineReader).inst.Close()
	}

	for {
		line, err := reader.readLine()
		if err == io.EOF {
			return closeAndExit(t, 0)
		}
		if err != nil {
			log.WithError(err).Error("error reading input")
			return closeAndExit(t, 1)
		}
		if line == "" {
			continue
		}

		if line[0] == '.' {
			switch handleMetaCommand(w, line, t) {
			case MetaCommandExit:
				return closeAndExit(t, 0)
			case MetaCommandSuccess:
				continue
			case MetaCommandUnrecognizedCommand:
				fmt.Fprintf(w, "Unrecognized command '%s'.\n", line)
				continue
			}
		}

		stmt, prepareResult := prepareStatement(line)
		switch prepareResult {
		case PrepareNegativeID:
			fmt.Fprintln(w, "Error: ID must be positive.")
			continue
		case PrepareStringTooLong:
			fmt.Fprintln(w, "Error: String too long.")
			continue
		case PrepareSyntaxError:
			fmt.Fprintln(w, "Syntax error. Could not parse statement.")
			continue
		case PrepareUnrecognizedStatement:
			fmt.Fprintf(w, "Unrecognized keyword at start of '%s'\n", line)
			continue
		}

		if err := executeStatement(w, stmt, t); err != nil {
			log.WithError(err).Error("fatal error executing statement")
			return closeAndExit(t, 1)
		}
	}
}

func closeAndExit(t *table.Table, code int) int {
	if err := t.Close(); err != nil {
		log.WithError(err).Error("error closing database")
		return 1
	}
	return code
}

// lineReader abstracts over readline's interactive editor and a plain
// bufio.Scanner fallback for piped, non-terminal stdin.
type lineReader interface {
	readLine() (string, error)
}

type readlineReader struct{ inst *readline.Instance }

func (r readlineReader) readLine() (string, error) {
	return r.inst.Readline()
}

// newLineReader prefers an interactive readline editor, falling back to a
// bare scanner when stdin isn't a terminal (piped test scripts). The second
// return value reports whether the readline instance needs closing.
func newLineReader() (lineReader, bool) {
	inst, err := readline.New("db > ")
	if err == nil && readline.IsTerminal(int(os.Stdin.Fd())) {
		return readlineReader{inst: inst}, true
	}
	if inst != nil {
		inst.Close()
	}
	return pipedScanner{scanner: bufio.NewScanner(os.Stdin)}, false
}

// pipedScanner prints the prompt itself before each read, matching the
// teacher's bare-bufio front end, since bufio.Scanner has no prompt of its own.
type pipedScanner struct{ scanner *bufio.Scanner }

func (r pipedScanner) readLine() (string, error) {
	fmt.Print("db > ")
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}
