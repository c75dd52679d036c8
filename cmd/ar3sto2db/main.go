// Command ar3sto2db bulk-loads a raw result table into PostgreSQL for
// ad-hoc analysis, one text column per result column.
package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kingpin"
	"github.com/lib/pq"

	"edgemind.dev/ar3"
	"edgemind.dev/ar3/logging"
)

var (
	input   = kingpin.Arg("input", "Raw result table to load.").Required().String()
	dsn     = kingpin.Flag("db", "PostgreSQL connection string.").Required().String()
	table   = kingpin.Flag("table", "Destination table name.").Default("results").String()
	verbose = kingpin.Flag("verbose", "Verbose logging.").Short('v').Bool()
	debug   = kingpin.Flag("debug", "Debug logging.").Bool()
)

func main() {
	kingpin.Parse()
	log := logging.New("ar3sto2db", logging.Options{Verbose: *verbose, Debug: *debug})

	fd, err := os.Open(*input)
	if os.IsNotExist(err) {
		fatal(log, "input file not found", "path", *input)
	} else if err != nil {
		fatal(log, "cannot open input", "path", *input, "error", err)
	}
	t, err := ar3.ParseTable(fd)
	fd.Close()
	if err != nil {
		fatal(log, "cannot parse result table", "path", *input, "error", err)
	}

	db, err := sql.Open("postgres", *dsn)
	if err != nil {
		fatal(log, "cannot open database", "error", err)
	}
	defer db.Close()

	if err := load(db, *table, t); err != nil {
		fatal(log, "cannot load table", "table", *table, "error", err)
	}
	log.Info("table loaded", "table", *table, "rows", len(t.Rows))
}

func load(db *sql.DB, table string, t *ar3.Table) error {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = pq.QuoteIdentifier(c) + " text"
	}
	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", pq.QuoteIdentifier(table), strings.Join(cols, ", "))
	if _, err := db.Exec(create); err != nil {
		return err
	}

	txn, err := db.Begin()
	if err != nil {
		return err
	}
	defer txn.Rollback()

	stmt, err := txn.Prepare(pq.CopyIn(table, t.Columns...))
	if err != nil {
		return err
	}
	for _, row := range t.Rows {
		args := make([]interface{}, len(row))
		for i, v := range row {
			args[i] = v
		}
		if _, err := stmt.Exec(args...); err != nil {
			stmt.Close()
			return err
		}
	}
	if _, err := stmt.Exec(); err != nil {
		stmt.Close()
		return err
	}
	if err := stmt.Close(); err != nil {
		return err
	}
	return txn.Commit()
}

func fatal(log *slog.Logger, msg string, args ...any) {
	log.Error(msg, args...)
	os.Exit(1)
}
