package ar3

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Study is a YAML description of a simulation study: the model to
// flatten, the simulation parameters and the indicators to track. It
// replaces passing model files, main block and indicator file
// separately on the command line.
type Study struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description,omitempty"`
	MainBlock   string          `yaml:"main_block"`
	ModelFiles  []string        `yaml:"model_files"`
	Simu        SimuParams      `yaml:"simu_params"`
	Indicators  []IndicatorSpec `yaml:"indicators"`
}

// SimuParams are forwarded to the generated simulator.
type SimuParams struct {
	Executions  int     `yaml:"nb_executions"`
	Seed        int64   `yaml:"seed,omitempty"`
	MissionTime float64 `yaml:"mission_time"`
}

// IndicatorSpec declares one tracked indicator and the statistics to
// estimate for it.
type IndicatorSpec struct {
	Name     string   `yaml:"name"`
	Observer string   `yaml:"observer"`
	Type     string   `yaml:"type,omitempty"`
	Stats    []string `yaml:"stats,omitempty"`
}

// LoadStudy reads and validates a study file.
func LoadStudy(path string) (*Study, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()
	return ParseStudy(fd)
}

// ParseStudy decodes a study from YAML.
func ParseStudy(r io.Reader) (*Study, error) {
	var s Study
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, &ParseError{Err: err}
	}
	if s.MainBlock == "" {
		return nil, fmt.Errorf("study %q: main_block is required", s.Name)
	}
	if len(s.Indicators) == 0 {
		return nil, fmt.Errorf("study %q: at least one indicator is required", s.Name)
	}
	for i := range s.Indicators {
		if s.Indicators[i].Observer == "" {
			s.Indicators[i].Observer = s.Indicators[i].Name
		}
		if len(s.Indicators[i].Stats) == 0 {
			s.Indicators[i].Stats = []string{"mean", "std"}
		}
	}
	return &s, nil
}

type idfIndicator struct {
	Name     string   `xml:"name,attr"`
	Observer string   `xml:"observer,attr"`
	Type     string   `xml:"type,attr,omitempty"`
	Stats    []string `xml:"stat"`
}

type idfDoc struct {
	XMLName    xml.Name       `xml:"indicators"`
	Indicators []idfIndicator `xml:"indicator"`
}

// WriteIDF emits the indicator-definition file the simulator generator
// consumes.
func (s *Study) WriteIDF(w io.Writer) error {
	doc := idfDoc{}
	for _, ind := range s.Indicators {
		doc.Indicators = append(doc.Indicators, idfIndicator{
			Name:     ind.Name,
			Observer: ind.Observer,
			Type:     ind.Type,
			Stats:    ind.Stats,
		})
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
