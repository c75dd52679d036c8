package ar3

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ParseTable reads a comma-separated result table. The first record is
// the header; every following record must have the same number of
// fields. Column and row order are preserved. Files written by the
// Windows builds of the toolchain are Latin-1 encoded; input that is
// not valid UTF-8 is decoded as such.
func ParseTable(r io.Reader) (*Table, error) {
	bs, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(bs) {
		if dec, err := charmap.ISO8859_1.NewDecoder().Bytes(bs); err == nil {
			bs = dec
		}
	}

	cr := csv.NewReader(bytes.NewReader(bs))
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &ParseError{Line: 1, Err: errors.New("missing header row")}
	}
	if err != nil {
		return nil, asParseError(err)
	}

	t := &Table{Columns: header}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, asParseError(err)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

func asParseError(err error) error {
	var ce *csv.ParseError
	if errors.As(err, &ce) {
		return &ParseError{Line: ce.Line, Err: ce.Err}
	}
	return &ParseError{Err: err}
}
