// Package excel renders simulation result tables and study reports as
// xlsx workbooks, one sheet per indicator.
package excel

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"edgemind.dev/ar3"
)

// TableXLSX converts a raw result table into a workbook with one sheet
// per indicator group. Each sheet holds the shared context columns
// followed by the group's own columns, rows in source order.
func TableXLSX(t *ar3.Table, rule ar3.GroupRule) ([]byte, error) {
	context, groups, err := t.Groups(rule)
	if err != nil {
		return nil, err
	}

	xlsx := excelize.NewFile()
	setAppProps(xlsx)

	namer := make(sheetNamer)
	for i, g := range groups {
		name := namer.claim(g.Name)
		if i == 0 {
			def := xlsx.GetSheetName(xlsx.GetActiveSheetIndex())
			if err := xlsx.SetSheetName(def, name); err != nil {
				return nil, err
			}
		} else if _, err := xlsx.NewSheet(name); err != nil {
			return nil, err
		}

		cols := make([]int, 0, len(context)+len(g.Columns))
		cols = append(cols, context...)
		cols = append(cols, g.Columns...)
		if err := writeGroupSheet(xlsx, name, t, cols, len(context)); err != nil {
			return nil, err
		}
	}

	xlsx.SetActiveSheet(0)
	resizeWindow(xlsx)

	buf, err := xlsx.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeGroupSheet(xlsx *excelize.File, sheet string, t *ar3.Table, cols []int, numContext int) error {
	hdr := make([]interface{}, len(cols))
	for i, c := range cols {
		hdr[i] = t.Columns[c]
	}
	if err := xlsx.SetSheetRow(sheet, "A1", &hdr); err != nil {
		return err
	}

	for ri, row := range t.Rows {
		vals := make([]interface{}, len(cols))
		for i, c := range cols {
			vals[i] = cellValue(row[c])
		}
		cell, err := excelize.CoordinatesToCellName(1, ri+2)
		if err != nil {
			return err
		}
		if err := xlsx.SetSheetRow(sheet, cell, &vals); err != nil {
			return err
		}
	}

	end, err := excelize.ColumnNumberToName(len(cols))
	if err != nil {
		return err
	}
	style, _ := xlsx.NewStyle(mergeStyles(defaultStyle(), fontBold(), thinBorder("bottom"), textAlignment("right")))
	_ = xlsx.SetCellStyle(sheet, "A1", end+"1", style)

	if len(t.Rows) > 0 {
		first, _ := excelize.ColumnNumberToName(numContext + 1)
		style, _ = xlsx.NewStyle(mergeStyles(defaultStyle(), numberFormat()))
		_ = xlsx.SetCellStyle(sheet, first+"2", fmt.Sprintf("%s%d", end, len(t.Rows)+1), style)
	}

	_ = xlsx.SetColWidth(sheet, "A", end, 16)
	_ = xlsx.SetPanes(sheet, &excelize.Panes{
		ActivePane:  "bottomLeft",
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
	})
	return nil
}

// StudyXLSX converts a parsed study report into a workbook: a Mission
// summary sheet, then one sheet per indicator with its estimates.
func StudyXLSX(res *ar3.StudyResults) ([]byte, error) {
	xlsx := excelize.NewFile()
	setAppProps(xlsx)

	def := xlsx.GetSheetName(xlsx.GetActiveSheetIndex())
	if err := xlsx.SetSheetName(def, "Mission"); err != nil {
		return nil, err
	}
	writeMissionSheet(xlsx, "Mission", res)

	namer := make(sheetNamer)
	namer.claim("Mission")
	for _, ind := range res.Indicators {
		name := namer.claim(ind.Name)
		if _, err := xlsx.NewSheet(name); err != nil {
			return nil, err
		}
		if err := writeIndicatorSheet(xlsx, name, ind); err != nil {
			return nil, err
		}
	}

	xlsx.SetActiveSheet(0)
	resizeWindow(xlsx)

	buf, err := xlsx.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeMissionSheet(xlsx *excelize.File, sheet string, res *ar3.StudyResults) {
	rows := [][]interface{}{
		{"Source file", res.Meta.SourceFile},
		{"Main block", res.Meta.MainBlock},
		{"Tool version", res.Meta.ToolVersion},
		{"Compiler version", res.Meta.CompilerVersion},
		{},
		{"Number of executions", res.Mission.Executions},
		{"Seed", res.Mission.Seed},
		{"Mission time", res.Mission.MissionTime},
		{"Started", res.Mission.Started},
		{"Completed", res.Mission.Completed},
		{},
		{"Events fired (mean)", res.Mission.EventsFired.Mean},
		{"Events fired (min)", res.Mission.EventsFired.Min},
		{"Events fired (max)", res.Mission.EventsFired.Max},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		_ = xlsx.SetSheetRow(sheet, cell, &row)
	}
	style, _ := xlsx.NewStyle(mergeStyles(defaultStyle(), fontBold()))
	_ = xlsx.SetCellStyle(sheet, "A1", fmt.Sprintf("A%d", len(rows)), style)
	_ = xlsx.SetColWidth(sheet, "A", "A", 28)
	_ = xlsx.SetColWidth(sheet, "B", "B", 24)
}

func writeIndicatorSheet(xlsx *excelize.File, sheet string, ind *ar3.Indicator) error {
	hdr := []interface{}{"date", "sample_size", "mean", "std"}
	if err := xlsx.SetSheetRow(sheet, "A1", &hdr); err != nil {
		return err
	}
	for i, p := range ind.Points {
		vals := []interface{}{p.Date, p.SampleSize, floatCell(p.Mean), floatCell(p.Std)}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := xlsx.SetSheetRow(sheet, cell, &vals); err != nil {
			return err
		}
	}
	style, _ := xlsx.NewStyle(mergeStyles(defaultStyle(), fontBold(), thinBorder("bottom"), textAlignment("right")))
	_ = xlsx.SetCellStyle(sheet, "A1", "D1", style)
	_ = xlsx.SetColWidth(sheet, "A", "D", 16)
	return nil
}

func setAppProps(xlsx *excelize.File) {
	_ = xlsx.SetAppProps(&excelize.AppProperties{
		Application: "edgemind.dev/ar3",
		Company:     "EdgeMind",
		DocSecurity: 2,
	})
}

// Increase size of window
func resizeWindow(xlsx *excelize.File) {
	for i := range xlsx.WorkBook.BookViews.WorkBookView {
		xlsx.WorkBook.BookViews.WorkBookView[i].WindowWidth = 25000
		xlsx.WorkBook.BookViews.WorkBookView[i].WindowHeight = 25000 / 3 * 2
	}
}

// floatCell maps NaN and infinities, which xlsx cannot represent as
// numbers, to an empty cell.
func floatCell(f float64) interface{} {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

// cellValue writes numeric-looking fields as numbers so that formulas
// and plots work on the sheet. NaN and infinities stay as text.
func cellValue(s string) interface{} {
	if s == "" {
		return s
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return s
}

const maxSheetName = 31

// forbidden in xlsx sheet names
const badSheetRunes = `:\/?*[]`

// sheetNamer hands out sanitized, unique sheet names. Sheet names are
// case-insensitively unique in xlsx; collisions after sanitization or
// truncation get a numeric suffix.
type sheetNamer map[string]bool

func (n sheetNamer) claim(name string) string {
	base := sanitizeSheetName(name)
	candidate := base
	for i := 2; n[strings.ToLower(candidate)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		candidate = truncateSheetName(base, maxSheetName-len(suffix)) + suffix
	}
	n[strings.ToLower(candidate)] = true
	return candidate
}

func sanitizeSheetName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if strings.ContainsRune(badSheetRunes, r) {
			b.WriteRune('-')
		} else {
			b.WriteRune(r)
		}
	}
	s := strings.TrimSpace(strings.Trim(b.String(), "'"))
	if s == "" {
		s = "Indicator"
	}
	return truncateSheetName(s, maxSheetName)
}

func truncateSheetName(s string, max int) string {
	r := []rune(s)
	if len(r) > max {
		s = strings.TrimSpace(string(r[:max]))
	}
	return s
}
