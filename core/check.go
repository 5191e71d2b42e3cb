package core

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/renderlab/gtcheck/core/config"
	"github.com/renderlab/gtcheck/core/logger"
	"github.com/renderlab/gtcheck/core/proc"
)

// Step names used in error and event reporting.
const (
	StepConfigure = "configure"
	StepBuild     = "build"
	StepSmokeTest = "smoke_test"
)

const (
	successMessage = "OpenGL/EGL ground truth is working."
	warningMessage = "WARNING: OpenGL/EGL may not be supported on this machine. " +
		"If you are running on a cluster head node without a GPU or display, " +
		"this is expected and not a problem."
)

// StepError reports a mandatory build step that failed.
type StepError struct {
	Step     string
	ExitCode int
	Err      error
}

func (e *StepError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("%s exited with status %d", e.Step, e.ExitCode)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Check builds the ground-truth renderer and runs its smoke test.
//
// Configure and build failures abort the procedure; a failing smoke test
// is an expected outcome and only changes the report.
type Check struct {
	configuration *config.Configuration
	runner        proc.Runner
	log           *logger.RunLogger
	out           io.Writer
}

// NewCheck creates a Check that writes build tool output to out and
// JSON-lines run events to logDest.
func NewCheck(configuration *config.Configuration, out io.Writer, logDest io.Writer) (*Check, error) {
	timeout, err := configuration.StepTimeout()
	if err != nil {
		return nil, err
	}

	return &Check{
		configuration: configuration,
		runner: &proc.ExecRunner{
			Stdout:  out,
			Stderr:  out,
			Timeout: timeout,
		},
		log: logger.NewJsonLinesLogRecorder(logDest).NewRun(),
		out: out,
	}, nil
}

// Run performs the full procedure: configure, build, smoke test, report.
// The working directory is restored on all exit paths.
func (c *Check) Run(ctx context.Context) error {
	restore, err := EnterDir(c.configuration.RendererPath())
	if err != nil {
		return err
	}
	defer restore()

	if err := c.configure(ctx); err != nil {
		return err
	}
	if err := c.build(ctx); err != nil {
		return err
	}
	return c.smokeTest(ctx)
}

// Build performs only the configure and build steps.
func (c *Check) Build(ctx context.Context) error {
	restore, err := EnterDir(c.configuration.RendererPath())
	if err != nil {
		return err
	}
	defer restore()

	if err := c.configure(ctx); err != nil {
		return err
	}
	return c.build(ctx)
}

// Smoke runs only the smoke test against an existing build.
func (c *Check) Smoke(ctx context.Context) error {
	restore, err := EnterDir(c.configuration.RendererPath())
	if err != nil {
		return err
	}
	defer restore()

	return c.smokeTest(ctx)
}

func (c *Check) configure(ctx context.Context) error {
	return c.mandatoryStep(ctx, StepConfigure, c.configuration.ConfigureArgs())
}

func (c *Check) build(ctx context.Context) error {
	return c.mandatoryStep(ctx, StepBuild, c.configuration.BuildArgs())
}

// mandatoryStep runs a CMake invocation that must succeed.
func (c *Check) mandatoryStep(ctx context.Context, step string, args []string) error {
	result, err := c.runner.Run(ctx, "", c.configuration.CMake, args...)
	if err != nil {
		return &StepError{Step: step, Err: err}
	}

	c.log.RecordStep(step, append([]string{c.configuration.CMake}, args...), result.ExitCode, result.Duration)

	if result.ExitCode != 0 {
		return &StepError{Step: step, ExitCode: result.ExitCode}
	}
	return nil
}

// smokeTest runs the renderer with placeholder arguments. Any failure,
// including a binary that can't start, means "not working" rather than
// an error: head nodes without a GPU are expected to land here.
func (c *Check) smokeTest(ctx context.Context) error {
	binary := c.configuration.BinaryPath()
	args := c.configuration.SmokeArgs()

	result, err := c.runner.Run(ctx, "", binary, args...)
	if err != nil {
		c.log.RecordStep(StepSmokeTest, append([]string{binary}, args...), -1, 0)
		c.report(false)
		return nil
	}

	c.log.RecordStep(StepSmokeTest, append([]string{binary}, args...), result.ExitCode, result.Duration)
	c.report(result.ExitCode == 0)
	return nil
}

func (c *Check) report(working bool) {
	if working {
		color.New(color.FgGreen).Fprintln(c.out, successMessage)
		c.log.RecordReport(true, successMessage)
		return
	}

	color.New(color.FgYellow).Fprintln(c.out, warningMessage)
	c.log.RecordReport(false, warningMessage)
}
