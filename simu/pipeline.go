// Package simu drives the external AltaRica 3 toolchain: flatten the
// model, generate the stochastic simulator, run it. The tools are
// opaque; this package only assembles arguments, launches processes
// and propagates their exit status.
package simu

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
)

// Default tool names, looked up in Tools.Dir or on PATH.
const (
	DefaultFlattener = "ar3-flatten"
	DefaultGenerator = "ar3-stogen"
)

// Tools locates the toolchain binaries.
type Tools struct {
	Dir       string
	Flattener string
	Generator string
}

func (t Tools) flattener() string { return t.path(t.Flattener, DefaultFlattener) }
func (t Tools) generator() string { return t.path(t.Generator, DefaultGenerator) }

func (t Tools) path(name, def string) string {
	if name == "" {
		name = def
	}
	if t.Dir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(t.Dir, name)
}

// ToolError reports a toolchain process that exited non-zero. Code is
// the child's exit code, Output its combined stdout and stderr.
type ToolError struct {
	Tool   string
	Code   int
	Output string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Tool, e.Code)
}

// ExitCode extracts the child exit code from an error chain, so the
// driver can exit with the failing stage's status. Errors that carry
// no code map to 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var te *ToolError
	if errors.As(err, &te) {
		return te.Code
	}
	return 1
}

// Pipeline runs the toolchain stages in a working directory. Each
// stage blocks until its child process completes; there is no timeout
// and no retry, and outputs are overwritten unconditionally.
type Pipeline struct {
	Tools   Tools
	WorkDir string
	Log     *slog.Logger

	// Progress receives one line per stage when set.
	Progress io.Writer
}

// Flatten compiles the model sources into a single flattened model and
// returns its path.
func (p *Pipeline) Flatten(models []string, block string) (string, error) {
	if len(models) == 0 {
		return "", fmt.Errorf("flatten: no model files")
	}
	out := filepath.Join(p.WorkDir, "flat.gts")
	args := []string{"-o", out}
	if block != "" {
		args = append(args, "--main", block)
	}
	args = append(args, models...)

	p.progress("Flattening model")
	if err := p.run(p.Tools.flattener(), args...); err != nil {
		return "", err
	}
	return out, nil
}

// Generate builds the stochastic simulator executable from a flattened
// model and an indicator-definition file, and returns its path.
func (p *Pipeline) Generate(flatModel, indicators string) (string, error) {
	out := filepath.Join(p.WorkDir, "simulator")
	args := []string{"-o", out}
	if indicators != "" {
		args = append(args, "--indicators", indicators)
	}
	args = append(args, flatModel)

	p.progress("Generating simulator")
	if err := p.run(p.Tools.generator(), args...); err != nil {
		return "", err
	}
	return out, nil
}

// Simulate runs the generated simulator on a mission file, writing the
// raw result table to output.
func (p *Pipeline) Simulate(simulator, mission, output string) error {
	args := []string{"--mission", mission, "-o", output}
	p.progress("Running simulation")
	return p.run(simulator, args...)
}

func (p *Pipeline) run(tool string, args ...string) error {
	cmd := exec.Command(tool, args...)
	cmd.Dir = p.WorkDir

	if p.Log != nil {
		p.Log.Debug("running tool", "cmd", tool, "args", strings.Join(args, " "))
	}

	out, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}
	if ee, ok := err.(*exec.ExitError); ok {
		if p.Log != nil {
			p.Log.Error("tool failed", "cmd", tool, "code", ee.ExitCode(), "output", string(out))
		}
		return &ToolError{Tool: filepath.Base(tool), Code: ee.ExitCode(), Output: string(out)}
	}
	return fmt.Errorf("running %s: %w", tool, err)
}

func (p *Pipeline) progress(msg string) {
	if p.Progress != nil {
		fmt.Fprintln(p.Progress, msg+"...")
	}
	if p.Log != nil {
		p.Log.Info(msg)
	}
}
