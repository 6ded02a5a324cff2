package mamba

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
)

// PackageInstallResult reports the outcome of a single package install
type PackageInstallResult struct {
	PackageName string
	Success     bool
}

// EnvironmentProvider defines the capability surface for acquiring and
// releasing a named, versioned runtime environment
type EnvironmentProvider interface {
	EnsureRuntimeBinary(ctx context.Context) error
	CreateEnvironment(ctx context.Context, name, pythonVersion string) error
	EnvironmentExists(ctx context.Context, name string) bool
	InstallPackages(ctx context.Context, name string, packages []string) []PackageInstallResult
	DestroyEnvironment(ctx context.Context, name string) error
	RemoveRuntimeBinary(ctx context.Context) error
}

// ScriptRunner defines the interface for executing a script inside a
// named environment and capturing its output. An empty result string
// with a nil error means the script produced no output.
type ScriptRunner interface {
	Run(ctx context.Context, scriptPath, envName string, args []string, extraEnv map[string]string) (string, error)
}

// CommandRunner defines an interface for executing system commands
type CommandRunner interface {
	RunCommand(ctx context.Context, args []string, extraEnv map[string]string) (stdout, stderr string, exitCode int, err error)
}

// RealCommandRunner implements CommandRunner using actual exec commands
type RealCommandRunner struct{}

// RunCommand executes the given command with arguments. extraEnv is
// appended to the inherited process environment.
func (RealCommandRunner) RunCommand(ctx context.Context, args []string, extraEnv map[string]string) (stdout, stderr string, exitCode int, err error) {
	if len(args) < 1 {
		return "", "", 0, fmt.Errorf("no command provided")
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...) //nolint:gosec // Safe as this is controlled input

	cmd.Env = os.Environ()
	for key, value := range extraEnv {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, value))
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err = cmd.Run()

	exitCode = 0
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			exitCode = exitError.ExitCode()
		} else {
			return "", "", 0, err
		}
	}

	return stdoutBuf.String(), stderrBuf.String(), exitCode, nil
}

// FileSystem defines an interface for file system operations
type FileSystem interface {
	MkdirAll(path string, perm os.FileMode) error
	RemoveAll(path string) error
	FileExists(path string) (bool, error)
}

// RealFileSystem implements FileSystem using actual file system operations
type RealFileSystem struct{}

func (RealFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (RealFileSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

func (RealFileSystem) FileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}

// DirPermission is the mode for directories created under the root prefix
const DirPermission = 0755
