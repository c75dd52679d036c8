package excel

import (
	"bytes"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"edgemind.dev/ar3"
)

func TestTableXLSX(t *testing.T) {
	tab := &ar3.Table{
		Columns: []string{"time", "IndicatorA_mean", "IndicatorA_stddev", "IndicatorB_mean"},
		Rows: [][]string{
			{"0", "0.0", "0.0", "1.0"},
			{"100", "0.25", "0.01", "0.75"},
			{"200", "0.5", "0.02", "0.5"},
		},
	}

	bs, err := TableXLSX(tab, ar3.DefaultRule)
	if err != nil {
		t.Fatal(err)
	}

	xlsx := openWorkbook(t, bs)
	sheets := xlsx.GetSheetList()
	if !reflect.DeepEqual(sheets, []string{"IndicatorA", "IndicatorB"}) {
		t.Fatalf("unexpected sheets %v", sheets)
	}

	rows := rawRows(t, xlsx, "IndicatorA")
	if len(rows) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d", len(rows))
	}
	if !reflect.DeepEqual(rows[0], []string{"time", "IndicatorA_mean", "IndicatorA_stddev"}) {
		t.Errorf("unexpected header %v", rows[0])
	}
	if !reflect.DeepEqual(rows[2], []string{"100", "0.25", "0.01"}) {
		t.Errorf("unexpected row %v", rows[2])
	}

	rows = rawRows(t, xlsx, "IndicatorB")
	if len(rows) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d", len(rows))
	}
	if !reflect.DeepEqual(rows[0], []string{"time", "IndicatorB_mean"}) {
		t.Errorf("unexpected header %v", rows[0])
	}
}

func TestTableXLSXEmptyTable(t *testing.T) {
	tab := &ar3.Table{Columns: []string{"time", "A_mean", "B_mean"}}

	bs, err := TableXLSX(tab, ar3.DefaultRule)
	if err != nil {
		t.Fatal(err)
	}

	xlsx := openWorkbook(t, bs)
	sheets := xlsx.GetSheetList()
	if !reflect.DeepEqual(sheets, []string{"A", "B"}) {
		t.Fatalf("unexpected sheets %v", sheets)
	}
	rows := rawRows(t, xlsx, "A")
	if len(rows) != 1 {
		t.Errorf("expected only a header row, got %d rows", len(rows))
	}
}

func TestTableXLSXNoIndicators(t *testing.T) {
	tab := &ar3.Table{Columns: []string{"time", "scenario"}}
	_, err := TableXLSX(tab, ar3.DefaultRule)
	if !errors.Is(err, ar3.ErrNoIndicators) {
		t.Fatalf("expected ErrNoIndicators, got %v", err)
	}
}

func TestStudyXLSX(t *testing.T) {
	res := &ar3.StudyResults{
		Meta:    ar3.MetaData{SourceFile: "model.alt", MainBlock: "Main"},
		Mission: ar3.Mission{Executions: 1000, Seed: 1, MissionTime: 8760},
		Indicators: []*ar3.Indicator{
			{
				Name:     "Unavailability",
				Observer: "obs_unavail",
				Points: []ar3.Point{
					{Date: 0, SampleSize: 1000, Mean: 0.1, Std: 0.01},
					{Date: 8760, SampleSize: 1000, Mean: 0.2, Std: math.NaN()},
				},
			},
		},
	}

	bs, err := StudyXLSX(res)
	if err != nil {
		t.Fatal(err)
	}

	xlsx := openWorkbook(t, bs)
	sheets := xlsx.GetSheetList()
	if !reflect.DeepEqual(sheets, []string{"Mission", "Unavailability"}) {
		t.Fatalf("unexpected sheets %v", sheets)
	}

	rows := rawRows(t, xlsx, "Unavailability")
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if !reflect.DeepEqual(rows[0], []string{"date", "sample_size", "mean", "std"}) {
		t.Errorf("unexpected header %v", rows[0])
	}
	// NaN stays an empty cell, and GetRows trims it from the row end.
	if rows[2][0] != "8760" || rows[2][2] != "0.2" {
		t.Errorf("unexpected row %v", rows[2])
	}
}

func TestSheetNamer(t *testing.T) {
	cases := []struct {
		in  []string
		out []string
	}{
		{
			[]string{"IndicatorA", "IndicatorB"},
			[]string{"IndicatorA", "IndicatorB"},
		}, {
			// forbidden characters
			[]string{"Flow[m3/h]", "a:b?c*d"},
			[]string{"Flow-m3-h-", "a-b-c-d"},
		}, {
			// collisions, also after sanitization
			[]string{"X", "X", "X"},
			[]string{"X", "X (2)", "X (3)"},
		}, {
			[]string{"a/b", "a:b"},
			[]string{"a-b", "a-b (2)"},
		}, {
			// case-insensitive uniqueness
			[]string{"Pump", "pump"},
			[]string{"Pump", "pump (2)"},
		}, {
			// truncation to 31 runes, suffix still fits
			[]string{
				"VeryLongIndicatorNameThatGoesOnAndOn",
				"VeryLongIndicatorNameThatGoesOnForever",
			},
			[]string{
				"VeryLongIndicatorNameThatGoesOn",
				"VeryLongIndicatorNameThatGo (2)",
			},
		}, {
			[]string{""},
			[]string{"Indicator"},
		},
	}

	for _, c := range cases {
		namer := make(sheetNamer)
		var got []string
		for _, in := range c.in {
			got = append(got, namer.claim(in))
		}
		if !reflect.DeepEqual(got, c.out) {
			t.Errorf("claim(%v) -> %v, expected %v", c.in, got, c.out)
		}
	}
}

func TestCellValue(t *testing.T) {
	cases := []struct {
		in  string
		out interface{}
	}{
		{"0.25", 0.25},
		{"100", 100.0},
		{"-1e-3", -0.001},
		{"hello", "hello"},
		{"", ""},
		{"NaN", "NaN"},
		{"+Inf", "+Inf"},
	}
	for _, c := range cases {
		if got := cellValue(c.in); got != c.out {
			t.Errorf("cellValue(%q) = %#v, expected %#v", c.in, got, c.out)
		}
	}
}

func openWorkbook(t *testing.T, bs []byte) *excelize.File {
	t.Helper()
	xlsx, err := excelize.OpenReader(bytes.NewReader(bs))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { xlsx.Close() })
	return xlsx
}

func rawRows(t *testing.T, xlsx *excelize.File, sheet string) [][]string {
	t.Helper()
	rows, err := xlsx.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestTruncateSheetName(t *testing.T) {
	long := strings.Repeat("é", 40)
	got := truncateSheetName(long, maxSheetName)
	if n := len([]rune(got)); n != maxSheetName {
		t.Errorf("expected %d runes, got %d", maxSheetName, n)
	}
}
