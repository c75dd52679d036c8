// Command ar3simu drives the AltaRica 3 toolchain: flatten the model,
// generate the stochastic simulator and, unless --no-run is given, run
// it on a mission file to produce the raw result table.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin"

	"edgemind.dev/ar3"
	"edgemind.dev/ar3/logging"
	"edgemind.dev/ar3/simu"
)

var (
	models     = kingpin.Flag("model", "Model source file or glob pattern. Repeatable.").Short('m').Strings()
	block      = kingpin.Flag("block", "Name of the system block to flatten.").Short('b').String()
	indicators = kingpin.Flag("indicators", "Indicator-definition file passed to the simulator generator.").Short('i').String()
	mission    = kingpin.Flag("mission", "Mission-specification file passed to the simulator.").Short('M').String()
	studyFile  = kingpin.Flag("study", "Study file; provides model files, main block and indicators.").Short('s').String()
	toolsDir   = kingpin.Flag("tools-dir", "Directory holding the toolchain binaries. Defaults to PATH lookup.").String()
	tmpDir     = kingpin.Flag("tmp-dir", "Working directory override. Defaults to a fresh temporary directory.").String()
	run        = kingpin.Flag("run", "Run the generated simulator.").Default("true").Bool()
	output     = kingpin.Flag("output", "Raw result table path.").Short('o').Default("results.sto").String()
	progress   = kingpin.Flag("progress", "Print one line per pipeline stage.").Bool()
	verbose    = kingpin.Flag("verbose", "Verbose logging.").Short('v').Bool()
	debug      = kingpin.Flag("debug", "Debug logging.").Bool()
)

func main() {
	kingpin.Parse()
	log := logging.New("ar3simu", logging.Options{Verbose: *verbose, Debug: *debug})

	modelFiles := *models
	mainBlock := *block
	idf := *indicators

	var st *ar3.Study
	if *studyFile != "" {
		var err error
		if st, err = ar3.LoadStudy(*studyFile); err != nil {
			fatal(log, "cannot load study", "path", *studyFile, "error", err)
		}
		if len(modelFiles) == 0 {
			modelFiles = st.ModelFiles
		}
		if mainBlock == "" {
			mainBlock = st.MainBlock
		}
	}

	expanded, err := expandModels(modelFiles)
	if err != nil {
		fatal(log, "bad model selection", "error", err)
	}
	if len(expanded) == 0 {
		kingpin.Fatalf("no model files given, use --model or --study")
	}

	work := *tmpDir
	if work == "" {
		if work, err = os.MkdirTemp("", "ar3simu-"); err != nil {
			fatal(log, "cannot create working directory", "error", err)
		}
	} else if err := os.MkdirAll(work, 0o755); err != nil {
		fatal(log, "cannot create working directory", "path", work, "error", err)
	}
	if work, err = filepath.Abs(work); err != nil {
		fatal(log, "bad working directory", "error", err)
	}
	log.Info("working directory", "path", work)

	if idf != "" {
		if idf, err = filepath.Abs(idf); err != nil {
			fatal(log, "bad indicator file path", "path", idf, "error", err)
		}
	}

	// A study file replaces an explicit indicator-definition file.
	if st != nil && idf == "" {
		idf = filepath.Join(work, "indicators.idf")
		fd, err := os.Create(idf)
		if err != nil {
			fatal(log, "cannot write indicator file", "path", idf, "error", err)
		}
		if err := st.WriteIDF(fd); err != nil {
			fd.Close()
			fatal(log, "cannot write indicator file", "path", idf, "error", err)
		}
		fd.Close()
	}

	var prog io.Writer
	if *progress {
		prog = os.Stdout
	}
	p := &simu.Pipeline{
		Tools:    simu.Tools{Dir: *toolsDir},
		WorkDir:  work,
		Log:      log,
		Progress: prog,
	}

	flat, err := p.Flatten(expanded, mainBlock)
	if err != nil {
		fail(log, "flattening failed", err)
	}

	sim, err := p.Generate(flat, idf)
	if err != nil {
		fail(log, "simulator generation failed", err)
	}

	if !*run {
		log.Info("simulator generated, not running it", "path", sim)
		return
	}

	if *mission == "" {
		kingpin.Fatalf("--mission is required to run the simulator")
	}
	if _, err := os.Stat(*mission); os.IsNotExist(err) {
		fatal(log, "mission file not found", "path", *mission)
	}

	// The simulator runs in the working directory; keep user-supplied
	// paths relative to the invocation directory.
	missionAbs, err := filepath.Abs(*mission)
	if err != nil {
		fatal(log, "bad mission path", "path", *mission, "error", err)
	}
	results, err := filepath.Abs(*output)
	if err != nil {
		fatal(log, "bad output path", "path", *output, "error", err)
	}
	if err := p.Simulate(sim, missionAbs, results); err != nil {
		fail(log, "simulation failed", err)
	}
	log.Info("simulation complete", "results", results)
}

// expandModels resolves glob patterns, keeping the argument order. A
// pattern matching nothing must name an existing file. Paths come back
// absolute because the tools run in the working directory.
func expandModels(patterns []string) ([]string, error) {
	var out []string
	for _, pat := range patterns {
		matches, err := filepath.Glob(pat)
		if err != nil {
			return nil, fmt.Errorf("bad model pattern %q: %w", pat, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pat); err != nil {
				return nil, fmt.Errorf("model file not found: %s", pat)
			}
			matches = []string{pat}
		}
		for _, m := range matches {
			abs, err := filepath.Abs(m)
			if err != nil {
				return nil, err
			}
			out = append(out, abs)
		}
	}
	return out, nil
}

func fatal(log *slog.Logger, msg string, args ...any) {
	log.Error(msg, args...)
	os.Exit(1)
}

// fail exits with the failing stage's own exit code.
func fail(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(simu.ExitCode(err))
}
