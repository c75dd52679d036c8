package ar3

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	godiffpatch "github.com/sourcegraph/go-diff-patch"
)

func TestParseTable(t *testing.T) {
	in := "time, IndicatorA_mean, IndicatorA_stddev, IndicatorB_mean\n" +
		"0,0.0,0.0,1.0\n" +
		"100,0.25,0.01,0.75\n" +
		"200,0.5,0.02,0.5\n"

	expected := &Table{
		Columns: []string{"time", "IndicatorA_mean", "IndicatorA_stddev", "IndicatorB_mean"},
		Rows: [][]string{
			{"0", "0.0", "0.0", "1.0"},
			{"100", "0.25", "0.01", "0.75"},
			{"200", "0.5", "0.02", "0.5"},
		},
	}

	tab, err := ParseTable(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	compareJSON(t, "table", tab, expected)
}

func TestParseTableHeaderOnly(t *testing.T) {
	tab, err := ParseTable(strings.NewReader("time,Ind_mean\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(tab.Columns) != 2 {
		t.Errorf("expected 2 columns, got %d", len(tab.Columns))
	}
	if len(tab.Rows) != 0 {
		t.Errorf("expected no rows, got %d", len(tab.Rows))
	}
}

func TestParseTableInconsistentColumns(t *testing.T) {
	in := "time,Ind_mean\n1,2\n3,4,5\n"
	_, err := ParseTable(strings.NewReader(in))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if pe.Line != 3 {
		t.Errorf("expected error on line 3, got %d", pe.Line)
	}
}

func TestParseTableEmpty(t *testing.T) {
	_, err := ParseTable(strings.NewReader(""))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
}

func TestParseTableLatin1(t *testing.T) {
	in := []byte("temp\xe9rature,Ind_mean\n20.5,0.1\n")
	tab, err := ParseTable(strings.NewReader(string(in)))
	if err != nil {
		t.Fatal(err)
	}
	if tab.Columns[0] != "température" {
		t.Errorf("expected Latin-1 fallback decoding, got %q", tab.Columns[0])
	}
}

func TestOutputPath(t *testing.T) {
	cases := []struct {
		in, out string
	}{
		{"results.csv", "results.xlsx"},
		{"results.sto", "results.xlsx"},
		{"/tmp/run/results.csv", "/tmp/run/results.xlsx"},
		{"results", "results.xlsx"},
	}
	for _, c := range cases {
		if got := OutputPath(c.in); got != c.out {
			t.Errorf("OutputPath(%q) = %q, expected %q", c.in, got, c.out)
		}
	}
}

func compareJSON(t *testing.T, name string, got, expected interface{}) {
	t.Helper()
	gotStr := jsons(got)
	expStr := jsons(expected)
	if gotStr != expStr {
		t.Errorf("mismatch:\n%s", godiffpatch.GeneratePatch(name+".json", expStr, gotStr))
	}
}

func jsons(v interface{}) string {
	bs, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		panic(err)
	}
	return string(bs)
}
