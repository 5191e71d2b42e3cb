package config

import (
	_ "embed"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"sigs.k8s.io/yaml"
)

//go:embed default/gtcheck.yaml
var defaultConfigData []byte

const (
	// ConfigurationName is the well-known config file name.
	ConfigurationName = "gtcheck.yaml"
	// EventLogName is the JSON-lines build event log.
	EventLogName = "gtcheck.log"
)

// Configuration describes how to configure, build, and smoke test the
// ground-truth renderer.
type Configuration struct {
	// Directory the configuration was loaded from; relative paths in the
	// configuration resolve against it.
	configurationDir string

	RendererDir string `json:"renderer_dir" validate:"required"`
	BuildDir    string `json:"build_dir" validate:"required"`
	CMake       string `json:"cmake" validate:"required"`
	CCompiler   string `json:"c_compiler" validate:"required"`
	BuildType   string `json:"build_type" validate:"required"`
	Target      string `json:"target" validate:"required"`
	Binary      string `json:"binary" validate:"required"`

	OpenGL OpenGL `json:"opengl"`

	SmokeTest SmokeTest `json:"smoke_test"`

	// Timeout bounds each external command, e.g. "10m". Empty disables it.
	Timeout string `json:"timeout"`
}

// OpenGL holds machine-specific override paths passed to the configure
// step. Empty values are omitted entirely; there is no portable default.
type OpenGL struct {
	IncludeDir string `json:"include_dir"`
	LibraryDir string `json:"library_dir"`
	PrefixPath string `json:"prefix_path"`
}

// SmokeTest holds the arguments for the renderer's sanity invocation.
// The defaults are deliberately invalid paths; the run only has to prove
// the binary can start and initialize OpenGL/EGL.
type SmokeTest struct {
	In       string `json:"in" validate:"required"`
	DstIn    string `json:"dst_in" validate:"required"`
	Out      string `json:"out" validate:"required"`
	Frame    int    `json:"frame" validate:"gte=0"`
	DstFrame int    `json:"dst_frame" validate:"gte=0"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	if err := validate.Struct(c); err != nil {
		return err
	}

	_, err := c.StepTimeout()
	return err
}

// RendererPath is the renderer source tree, resolved against the
// configuration directory.
func (c *Configuration) RendererPath() string {
	if filepath.IsAbs(c.RendererDir) || c.configurationDir == "" {
		return c.RendererDir
	}
	return filepath.Join(c.configurationDir, c.RendererDir)
}

// BinaryPath is the built renderer executable, relative to the renderer
// source tree.
func (c *Configuration) BinaryPath() string {
	return filepath.Join(c.BuildDir, c.Binary)
}

// ConfigureArgs are the arguments for the CMake configure step, run from
// the renderer source tree.
func (c *Configuration) ConfigureArgs() []string {
	args := []string{
		"-S", ".",
		"-B", c.BuildDir,
		"-DCMAKE_C_COMPILER=" + c.CCompiler,
		"-DCMAKE_BUILD_TYPE=" + c.BuildType,
	}

	// Per-machine overrides, disabled unless set.
	if v := c.OpenGL.PrefixPath; v != "" {
		args = append(args, "-DCMAKE_PREFIX_PATH="+v)
	}
	if v := c.OpenGL.IncludeDir; v != "" {
		args = append(args, "-DOPENGL_INCLUDE_DIR="+v)
	}
	if v := c.OpenGL.LibraryDir; v != "" {
		args = append(args, "-DOPENGL_LIBRARY_DIR="+v)
	}
	return args
}

// BuildArgs are the arguments for the CMake build step.
func (c *Configuration) BuildArgs() []string {
	return []string{"--build", c.BuildDir, "--target", c.Target}
}

// SmokeArgs are the arguments for the renderer's smoke-test invocation.
func (c *Configuration) SmokeArgs() []string {
	return []string{
		"--in", c.SmokeTest.In,
		"--dst_in", c.SmokeTest.DstIn,
		"--out", c.SmokeTest.Out,
		"--frame", strconv.Itoa(c.SmokeTest.Frame),
		"--dst_frame", strconv.Itoa(c.SmokeTest.DstFrame),
	}
}

// StepTimeout parses the configured per-command time limit. Zero means
// no limit.
func (c *Configuration) StepTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(c.Timeout)
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
