package lifecycle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zhazhalove/mambarun/config"
)

// Request carries everything a single orchestrated run needs. It is
// constructed per call and never persisted.
type Request struct {
	InputMessage  string
	ScriptPath    string
	EnvName       string
	PythonVersion string
	Packages      []string
	Temperature   float64
	ModelName     string
	MaxRetries    int
	DotEnvPath    string
}

// FromConfig returns a Request prefilled with the configured defaults.
// InputMessage and ScriptPath are left for the caller to set.
func FromConfig(cfg *config.Config) Request {
	return Request{
		EnvName:       cfg.Runtime.EnvName,
		PythonVersion: cfg.Runtime.PythonVersion,
		Temperature:   cfg.Invocation.Temperature,
		ModelName:     cfg.Invocation.ModelName,
		MaxRetries:    cfg.Invocation.MaxRetries,
	}
}

// Validate enforces the request invariants: a non-empty message and
// script path, and a non-negative retry budget.
func (r Request) Validate() error {
	if strings.TrimSpace(r.InputMessage) == "" {
		return fmt.Errorf("input message must not be empty")
	}
	if strings.TrimSpace(r.ScriptPath) == "" {
		return fmt.Errorf("script path must not be empty")
	}
	if r.EnvName == "" {
		return fmt.Errorf("environment name must not be empty")
	}
	if r.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative, got: %d", r.MaxRetries)
	}
	return nil
}

// ScriptArgs builds the fixed positional argument contract the script
// is invoked with. message is the sanitized input, which may be empty.
func (r Request) ScriptArgs(message string) []string {
	return []string{
		"-i", message,
		"--temperature", strconv.FormatFloat(r.Temperature, 'f', -1, 64),
		"--model-name", r.ModelName,
		"--max-retries", strconv.Itoa(r.MaxRetries),
	}
}
