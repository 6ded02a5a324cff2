package mamba

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// PythonRunner implements ScriptRunner by invoking a Python script
// through micromamba run inside a named environment
type PythonRunner struct {
	logger     *zap.Logger
	rootPrefix string
	cmdRunner  CommandRunner
}

// PythonRunnerOption defines a functional option for PythonRunner
type PythonRunnerOption func(*PythonRunner)

// WithRunnerCommandRunner sets the CommandRunner for PythonRunner
func WithRunnerCommandRunner(cmdRunner CommandRunner) PythonRunnerOption {
	return func(p *PythonRunner) {
		p.cmdRunner = cmdRunner
	}
}

// NewPythonRunner creates a new PythonRunner rooted at rootPrefix with
// default implementations and optional interfaces
func NewPythonRunner(logger *zap.Logger, rootPrefix string, opts ...PythonRunnerOption) *PythonRunner {
	runner := &PythonRunner{
		logger:     logger,
		rootPrefix: rootPrefix,
		cmdRunner:  &RealCommandRunner{}, // Default implementation
	}

	// Apply options
	for _, opt := range opts {
		opt(runner)
	}

	return runner
}

// Run executes the script inside the named environment and returns its
// captured stdout, trimmed. An empty string with a nil error means the
// script produced no output. extraEnv is threaded into the script
// process explicitly rather than mutated into the caller's environment.
func (p *PythonRunner) Run(ctx context.Context, scriptPath, envName string, args []string, extraEnv map[string]string) (string, error) {
	binary := filepath.Join(p.rootPrefix, "bin", "micromamba")

	cmdArgs := []string{binary, "run", "-n", envName, "python", scriptPath}
	cmdArgs = append(cmdArgs, args...)

	env := map[string]string{"MAMBA_ROOT_PREFIX": p.rootPrefix}
	for key, value := range extraEnv {
		env[key] = value
	}

	p.logger.Debug("running script",
		zap.String("script", scriptPath),
		zap.String("environment", envName),
		zap.Int("arg_count", len(args)))

	stdout, stderr, exitCode, err := p.cmdRunner.RunCommand(ctx, cmdArgs, env)
	if err != nil {
		return "", fmt.Errorf("failed to run script %s: %w", scriptPath, err)
	}
	if exitCode != 0 {
		return "", fmt.Errorf("script %s exited with code %d: %s", scriptPath, exitCode, strings.TrimSpace(stderr))
	}

	return strings.TrimSpace(stdout), nil
}
