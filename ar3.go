// Package ar3 reads result files produced by the AltaRica 3 stochastic
// simulator and turns them into structured form for reporting.
package ar3 // import "edgemind.dev/ar3"

import (
	"path/filepath"
	"strings"
)

// Table is a raw result table: one header row of column names and the
// data rows, both in file order.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Group is the set of columns belonging to one indicator. Columns holds
// indexes into Table.Columns, in file order.
type Group struct {
	Name    string
	Columns []int
}

// OutputPath derives the default workbook path for an input file by
// swapping its extension for .xlsx.
func OutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + ".xlsx"
}
