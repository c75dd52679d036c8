package ar3

import "strings"

// GroupRule decides which indicator, if any, a result column belongs
// to. A column named "<indicator><sep><qualifier>" with a recognized
// qualifier belongs to <indicator>; all other columns are shared
// context (time or scenario index and the like) and appear on every
// sheet. Earlier entries in Suffixes take precedence, so longer
// qualifiers must be listed before their own suffixes ("ic_inf" before
// "inf").
type GroupRule struct {
	Separators string
	Suffixes   []string
}

// DefaultRule covers the sub-metric qualifiers the stochastic
// simulator emits.
var DefaultRule = GroupRule{
	Separators: "_.",
	Suffixes: []string{
		"sample_size",
		"ic_inf", "ic_sup",
		"stddev", "variance",
		"mean", "std", "var",
		"min", "max",
		"inf", "sup",
	},
}

// Indicator returns the indicator name a column belongs to under the
// rule, or false when the column does not match.
func (r GroupRule) Indicator(col string) (string, bool) {
	for _, suf := range r.Suffixes {
		for _, sep := range r.Separators {
			tail := string(sep) + suf
			if len(col) > len(tail) && strings.EqualFold(col[len(col)-len(tail):], tail) {
				return col[:len(col)-len(tail)], true
			}
		}
	}
	return "", false
}

// Groups partitions the table's columns into per-indicator groups,
// in order of first appearance, plus the shared context columns.
// A table with no indicator column at all returns ErrNoIndicators.
func (t *Table) Groups(rule GroupRule) (context []int, groups []Group, err error) {
	byName := make(map[string]int)
	for i, col := range t.Columns {
		name, ok := rule.Indicator(col)
		if !ok {
			context = append(context, i)
			continue
		}
		gi, ok := byName[name]
		if !ok {
			gi = len(groups)
			byName[name] = gi
			groups = append(groups, Group{Name: name})
		}
		groups[gi].Columns = append(groups[gi].Columns, i)
	}
	if len(groups) == 0 {
		return nil, nil, ErrNoIndicators
	}
	return context, groups, nil
}
