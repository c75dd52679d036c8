package ar3

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// StudyResults is the simulator's native report: a tab-separated file
// with Meta-Data, Mission and Indicators sections followed by one data
// block per indicator.
type StudyResults struct {
	Meta       MetaData
	Mission    Mission
	Indicators []*Indicator
}

type MetaData struct {
	SourceFile      string
	MainBlock       string
	ToolVersion     string
	CompilerVersion string
}

type Mission struct {
	Executions  int
	Seed        int64
	MissionTime float64
	Started     string
	Completed   string
	EventsFired EventStats
}

// EventStats summarizes the number of events fired per execution.
type EventStats struct {
	Mean, Min, Max float64
}

// Indicator is one tracked quantity and its estimates over time.
type Indicator struct {
	Name     string
	Observer string
	Type     string
	Points   []Point
}

// Point is one estimate row. Mean and Std are NaN when the simulator
// omitted them.
type Point struct {
	Date       float64
	SampleSize int
	Mean       float64
	Std        float64
}

const (
	secNone = iota
	secMeta
	secMission
	secDefs
	secData
)

// ParseStudyResults reads a simulator study report in one pass.
func ParseStudyResults(r io.Reader) (*StudyResults, error) {
	res := &StudyResults{}
	byName := make(map[string]*Indicator)

	sec := secNone
	skip := 0
	statsNext := false
	var cur *Indicator

	lineNo := 0
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lineNo++
		fields := strings.Split(sc.Text(), "\t")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		key := fields[0]

		switch key {
		case "Meta-Data":
			sec = secMeta
			continue
		case "Mission":
			sec = secMission
			continue
		case "Indicators":
			// One header line follows the section keyword.
			sec = secDefs
			skip = 1
			continue
		}

		if skip > 0 {
			skip--
			continue
		}

		switch sec {
		case secMeta:
			if len(fields) < 2 {
				sec = secNone
				continue
			}
			switch key {
			case "Source file":
				res.Meta.SourceFile = fields[1]
			case "Main block":
				res.Meta.MainBlock = fields[1]
			case "Tool version":
				res.Meta.ToolVersion = fields[1]
			case "Compiler version":
				res.Meta.CompilerVersion = fields[1]
			}

		case secMission:
			if statsNext {
				statsNext = false
				if len(fields) < 3 {
					return nil, &ParseError{Line: lineNo, Err: fmt.Errorf("expected mean/min/max event statistics, got %d fields", len(fields))}
				}
				var err error
				if res.Mission.EventsFired.Mean, err = strconv.ParseFloat(fields[0], 64); err != nil {
					return nil, &ParseError{Line: lineNo, Err: err}
				}
				if res.Mission.EventsFired.Min, err = strconv.ParseFloat(fields[1], 64); err != nil {
					return nil, &ParseError{Line: lineNo, Err: err}
				}
				if res.Mission.EventsFired.Max, err = strconv.ParseFloat(fields[2], 64); err != nil {
					return nil, &ParseError{Line: lineNo, Err: err}
				}
				continue
			}
			if key == "Number of events fired per execution" {
				// Value block: one header line, then mean/min/max.
				skip = 1
				statsNext = true
				continue
			}
			if len(fields) < 2 {
				sec = secNone
				continue
			}
			var err error
			switch key {
			case "Number of executions":
				if res.Mission.Executions, err = strconv.Atoi(fields[1]); err != nil {
					return nil, &ParseError{Line: lineNo, Err: err}
				}
			case "Seed":
				if res.Mission.Seed, err = strconv.ParseInt(fields[1], 10, 64); err != nil {
					return nil, &ParseError{Line: lineNo, Err: err}
				}
			case "Mission time":
				if res.Mission.MissionTime, err = strconv.ParseFloat(fields[1], 64); err != nil {
					return nil, &ParseError{Line: lineNo, Err: err}
				}
			case "Started":
				res.Mission.Started = fields[1]
			case "Completed":
				res.Mission.Completed = fields[1]
			}

		case secDefs:
			if len(fields) < 2 || key == "" {
				sec = secData
				continue
			}
			ind := &Indicator{Name: key, Observer: fields[1]}
			if len(fields) > 2 {
				ind.Type = fields[2]
			}
			byName[ind.Name] = ind
			res.Indicators = append(res.Indicators, ind)

		case secData:
			if key == "Indicator" && len(fields) >= 2 {
				cur = byName[fields[1]]
				if cur == nil {
					cur = &Indicator{Name: fields[1]}
					byName[cur.Name] = cur
					res.Indicators = append(res.Indicators, cur)
				}
				continue
			}
			if cur == nil {
				continue
			}
			date, err := strconv.ParseFloat(key, 64)
			if err != nil {
				continue
			}
			p := Point{Date: date, Mean: math.NaN(), Std: math.NaN()}
			if len(fields) >= 2 {
				if p.SampleSize, err = strconv.Atoi(fields[1]); err != nil {
					return nil, &ParseError{Line: lineNo, Err: err}
				}
			}
			if len(fields) >= 3 {
				p.Mean = floatOrNaN(fields[2])
			}
			if len(fields) >= 4 {
				p.Std = floatOrNaN(fields[3])
			}
			cur.Points = append(cur.Points, p)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func floatOrNaN(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
