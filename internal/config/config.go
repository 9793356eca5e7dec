// Package config parses the command line into the immutable settings of a
// single prediction run.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// LibraryPathEnv names the environment variable consulted for the
// onnxruntime shared library when --ort_lib is not given.
const LibraryPathEnv = "ONNXRUNTIME_SHARED_LIBRARY_PATH"

const DefaultTopK = 5

// ArgumentError reports missing or malformed command-line input.
type ArgumentError struct {
	Err error
}

func (e *ArgumentError) Error() string { return "invalid arguments: " + e.Err.Error() }

func (e *ArgumentError) Unwrap() error { return e.Err }

type Config struct {
	Checkpoint    string
	ImagePath     string
	TopK          int
	CategoryNames string
	GPU           bool
	LibraryPath   string
	LogLevel      logrus.Level
}

// Parse reads args (without the program name). getenv may be nil, in which
// case os.Getenv is used. Usage and flag errors are written to output.
func Parse(args []string, output io.Writer, getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	fs.SetOutput(output)

	var (
		cfg      Config
		logLevel string
	)
	fs.StringVar(&cfg.Checkpoint, "checkpoint", "", "Path to checkpoint file (required)")
	fs.StringVar(&cfg.ImagePath, "image_path", "", "Path to image file (required)")
	fs.IntVar(&cfg.TopK, "top_k", DefaultTopK, "Number of top predictions to show")
	fs.StringVar(&cfg.CategoryNames, "category_names", "", "JSON file mapping categories to names")
	fs.BoolVar(&cfg.GPU, "gpu", false, "Use GPU if available")
	fs.StringVar(&cfg.LibraryPath, "ort_lib", getenv(LibraryPathEnv), "Path to the onnxruntime shared library")
	fs.StringVar(&logLevel, "log_level", "warn", "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return Config{}, &ArgumentError{Err: err}
	}
	if fs.NArg() > 0 {
		return Config{}, &ArgumentError{Err: fmt.Errorf("unexpected arguments: %v", fs.Args())}
	}

	if cfg.Checkpoint == "" {
		return Config{}, &ArgumentError{Err: errors.New("--checkpoint is required")}
	}
	if cfg.ImagePath == "" {
		return Config{}, &ArgumentError{Err: errors.New("--image_path is required")}
	}
	if cfg.TopK < 1 {
		return Config{}, &ArgumentError{Err: fmt.Errorf("--top_k must be at least 1, got %d", cfg.TopK)}
	}

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return Config{}, &ArgumentError{Err: err}
	}
	cfg.LogLevel = level

	return cfg, nil
}
