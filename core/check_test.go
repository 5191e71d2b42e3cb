package core

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/renderlab/gtcheck/core/config"
	"github.com/renderlab/gtcheck/core/logger"
	"github.com/renderlab/gtcheck/core/proc"
	"github.com/stretchr/testify/assert"
)

// fakeRunner scripts exit codes per command and records every invocation.
type fakeRunner struct {
	calls     [][]string
	exitCodes []int
	errs      []error
}

func (f *fakeRunner) Run(ctx context.Context, dir, name string, args ...string) (*proc.Result, error) {
	f.calls = append(f.calls, append([]string{name}, args...))

	i := len(f.calls) - 1
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}

	code := 0
	if i < len(f.exitCodes) {
		code = f.exitCodes[i]
	}
	return &proc.Result{ExitCode: code}, nil
}

func testCheck(t *testing.T, runner proc.Runner) (*Check, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	configuration := &config.Configuration{
		RendererDir: t.TempDir(),
		BuildDir:    "build",
		CMake:       "cmake",
		CCompiler:   "/usr/bin/gcc",
		BuildType:   "Release",
		Target:      "all",
		Binary:      "customgt",
		SmokeTest: config.SmokeTest{
			In:    "x",
			DstIn: "x",
			Out:   "x",
		},
	}
	if err := configuration.Validate(); err != nil {
		t.Fatal(err)
	}

	var out, logDest bytes.Buffer
	return &Check{
		configuration: configuration,
		runner:        runner,
		log:           logger.NewJsonLinesLogRecorder(&logDest).NewRun(),
		out:           &out,
	}, &out, &logDest
}

func mustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	return wd
}

func TestRunReportsSuccess(t *testing.T) {
	startDir := mustGetwd(t)

	runner := &fakeRunner{}
	check, out, logDest := testCheck(t, runner)

	assert.Nil(t, check.Run(context.Background()))

	if assert.Len(t, runner.calls, 3) {
		assert.Equal(t, []string{
			"cmake",
			"-S", ".",
			"-B", "build",
			"-DCMAKE_C_COMPILER=/usr/bin/gcc",
			"-DCMAKE_BUILD_TYPE=Release",
		}, runner.calls[0])
		assert.Equal(t, []string{"cmake", "--build", "build", "--target", "all"}, runner.calls[1])
		assert.Equal(t, []string{
			"build/customgt",
			"--in", "x",
			"--dst_in", "x",
			"--out", "x",
			"--frame", "0",
			"--dst_frame", "0",
		}, runner.calls[2])
	}

	assert.Contains(t, out.String(), "OpenGL/EGL ground truth is working.")
	assert.NotContains(t, out.String(), "WARNING")
	assert.Equal(t, startDir, mustGetwd(t))

	var steps []string
	assert.Nil(t, logger.ReadJSONLinesLog(logDest, func(le *logger.LogEntry) {
		if le.Step != nil {
			steps = append(steps, le.Step.Name)
		}
		if le.Report != nil {
			assert.True(t, le.Report.Working)
		}
	}))
	assert.Equal(t, []string{StepConfigure, StepBuild, StepSmokeTest}, steps)
}

func TestRunReportsWarningOnSmokeFailure(t *testing.T) {
	startDir := mustGetwd(t)

	runner := &fakeRunner{exitCodes: []int{0, 0, 1}}
	check, out, _ := testCheck(t, runner)

	// A failing smoke test is not an error.
	assert.Nil(t, check.Run(context.Background()))
	assert.Len(t, runner.calls, 3)
	assert.Contains(t, out.String(), "WARNING")
	assert.Contains(t, out.String(), "cluster head node")
	assert.NotContains(t, out.String(), "ground truth is working")
	assert.Equal(t, startDir, mustGetwd(t))
}

func TestRunAbortsOnConfigureFailure(t *testing.T) {
	startDir := mustGetwd(t)

	runner := &fakeRunner{exitCodes: []int{1}}
	check, out, _ := testCheck(t, runner)

	err := check.Run(context.Background())

	var stepErr *StepError
	if assert.ErrorAs(t, err, &stepErr) {
		assert.Equal(t, StepConfigure, stepErr.Step)
		assert.Equal(t, 1, stepErr.ExitCode)
	}

	// Neither build nor smoke test ran, and no verdict was printed.
	assert.Len(t, runner.calls, 1)
	assert.Empty(t, out.String())

	// The working directory is restored even on the abort path.
	assert.Equal(t, startDir, mustGetwd(t))
}

func TestRunAbortsOnBuildFailure(t *testing.T) {
	runner := &fakeRunner{exitCodes: []int{0, 2}}
	check, _, _ := testCheck(t, runner)

	err := check.Run(context.Background())

	var stepErr *StepError
	if assert.ErrorAs(t, err, &stepErr) {
		assert.Equal(t, StepBuild, stepErr.Step)
		assert.Equal(t, 2, stepErr.ExitCode)
	}
	assert.Len(t, runner.calls, 2)
}

func TestRunMissingRendererDir(t *testing.T) {
	runner := &fakeRunner{}
	check, _, _ := testCheck(t, runner)
	check.configuration.RendererDir = "/gtcheck-does-not-exist"

	assert.NotNil(t, check.Run(context.Background()))

	// Aborted before invoking any build tool.
	assert.Empty(t, runner.calls)
}

func TestRunToolStartFailureAborts(t *testing.T) {
	runner := &fakeRunner{errs: []error{errors.New("cmake: executable file not found")}}
	check, _, _ := testCheck(t, runner)

	err := check.Run(context.Background())

	var stepErr *StepError
	if assert.ErrorAs(t, err, &stepErr) {
		assert.Equal(t, StepConfigure, stepErr.Step)
		assert.NotNil(t, stepErr.Err)
	}
}

func TestSmokeMissingBinaryIsWarning(t *testing.T) {
	// An unbuilt or unrunnable renderer is the head-node case, not an error.
	runner := &fakeRunner{errs: []error{errors.New("no such file or directory")}}
	check, out, _ := testCheck(t, runner)

	assert.Nil(t, check.Smoke(context.Background()))
	assert.Contains(t, out.String(), "WARNING")
}

func TestBuildSkipsSmokeTest(t *testing.T) {
	runner := &fakeRunner{}
	check, out, _ := testCheck(t, runner)

	assert.Nil(t, check.Build(context.Background()))
	assert.Len(t, runner.calls, 2)
	assert.Empty(t, out.String())
}

func TestStepErrorMessages(t *testing.T) {
	assert.Equal(t, "build exited with status 2", (&StepError{Step: StepBuild, ExitCode: 2}).Error())

	wrapped := errors.New("boom")
	err := &StepError{Step: StepConfigure, Err: wrapped}
	assert.Equal(t, "configure: boom", err.Error())
	assert.ErrorIs(t, err, wrapped)
}
