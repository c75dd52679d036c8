// Command ar3sto2xls converts a raw simulation result file into a
// multi-sheet xlsx workbook, one sheet per indicator.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kingpin"

	"edgemind.dev/ar3"
	"edgemind.dev/ar3/excel"
	"edgemind.dev/ar3/logging"
)

var (
	input    = kingpin.Arg("input", "Raw result file to convert.").Required().String()
	output   = kingpin.Flag("output", "Output workbook path. Defaults to the input path with an .xlsx extension.").Short('o').String()
	study    = kingpin.Flag("study", "Treat the input as a full study report rather than a plain table.").Bool()
	suffixes = kingpin.Flag("suffix", "Recognized sub-metric column suffix. Repeatable; overrides the default set.").Strings()
	verbose  = kingpin.Flag("verbose", "Verbose logging.").Short('v').Bool()
	debug    = kingpin.Flag("debug", "Debug logging.").Bool()
)

func main() {
	kingpin.Parse()
	log := logging.New("ar3sto2xls", logging.Options{Verbose: *verbose, Debug: *debug})

	out := *output
	if out == "" {
		out = ar3.OutputPath(*input)
	}

	fd, err := os.Open(*input)
	if os.IsNotExist(err) {
		fatal(log, "input file not found", "path", *input)
	} else if err != nil {
		fatal(log, "cannot open input", "path", *input, "error", err)
	}
	defer fd.Close()

	rule := ar3.DefaultRule
	if len(*suffixes) > 0 {
		rule.Suffixes = *suffixes
	}

	var bs []byte
	if *study {
		res, err := ar3.ParseStudyResults(fd)
		if err != nil {
			fatal(log, "cannot parse study report", "path", *input, "error", err)
		}
		if bs, err = excel.StudyXLSX(res); err != nil {
			fatal(log, "cannot build workbook", "error", err)
		}
	} else {
		t, err := ar3.ParseTable(fd)
		if err != nil {
			fatal(log, "cannot parse result table", "path", *input, "error", err)
		}
		log.Debug("table parsed", "columns", len(t.Columns), "rows", len(t.Rows))
		if bs, err = excel.TableXLSX(t, rule); err != nil {
			fatal(log, "cannot build workbook", "path", *input, "error", err)
		}
	}

	if err := os.WriteFile(out, bs, 0o644); err != nil {
		fatal(log, "cannot write workbook", "path", out, "error", err)
	}
	log.Info("workbook written", "path", out)
	fmt.Println(out)
}

func fatal(log *slog.Logger, msg string, args ...any) {
	log.Error(msg, args...)
	os.Exit(1)
}
