package mamba

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
)

// releaseURL is the micromamba distribution endpoint; the platform slug
// and "latest" are appended per request.
const releaseURL = "https://micro.mamba.pm/api/micromamba"

// Micromamba implements EnvironmentProvider by driving the micromamba
// binary under a dedicated root prefix
type Micromamba struct {
	logger     *zap.Logger
	rootPrefix string
	cmdRunner  CommandRunner
	fs         FileSystem
}

// MicromambaOption defines a functional option for Micromamba
type MicromambaOption func(*Micromamba)

// WithCommandRunner sets the CommandRunner for Micromamba
func WithCommandRunner(cmdRunner CommandRunner) MicromambaOption {
	return func(m *Micromamba) {
		m.cmdRunner = cmdRunner
	}
}

// WithFileSystem sets the FileSystem for Micromamba
func WithFileSystem(fs FileSystem) MicromambaOption {
	return func(m *Micromamba) {
		m.fs = fs
	}
}

// NewMicromamba creates a new Micromamba provider rooted at rootPrefix
// with default implementations and optional interfaces
func NewMicromamba(logger *zap.Logger, rootPrefix string, opts ...MicromambaOption) *Micromamba {
	provider := &Micromamba{
		logger:     logger,
		rootPrefix: rootPrefix,
		cmdRunner:  &RealCommandRunner{}, // Default implementation
		fs:         &RealFileSystem{},    // Default implementation
	}

	// Apply options
	for _, opt := range opts {
		opt(provider)
	}

	return provider
}

// BinaryPath returns the location of the micromamba binary under the root prefix
func (m *Micromamba) BinaryPath() string {
	return filepath.Join(m.rootPrefix, "bin", "micromamba")
}

// envPath returns the directory a named environment lives in
func (m *Micromamba) envPath(name string) string {
	return filepath.Join(m.rootPrefix, "envs", name)
}

// mambaEnv returns the environment variables every micromamba
// invocation needs, keeping the root prefix out of process-wide state
func (m *Micromamba) mambaEnv() map[string]string {
	return map[string]string{"MAMBA_ROOT_PREFIX": m.rootPrefix}
}

// EnsureRuntimeBinary downloads the micromamba binary into the root
// prefix if it is not already present
func (m *Micromamba) EnsureRuntimeBinary(ctx context.Context) error {
	exists, err := m.fs.FileExists(m.BinaryPath())
	if err != nil {
		return fmt.Errorf("failed to stat micromamba binary: %w", err)
	}
	if exists {
		m.logger.Debug("micromamba binary already present", zap.String("path", m.BinaryPath()))
		return nil
	}

	if mkdirErr := m.fs.MkdirAll(m.rootPrefix, DirPermission); mkdirErr != nil {
		return fmt.Errorf("failed to create root prefix: %w", mkdirErr)
	}

	url := fmt.Sprintf("%s/%s/latest", releaseURL, platformSlug())
	m.logger.Info("downloading micromamba binary",
		zap.String("url", url),
		zap.String("root_prefix", m.rootPrefix))

	// The release is a tar.bz2 containing bin/micromamba
	cmdArgs := []string{
		"sh", "-c",
		fmt.Sprintf("curl -Ls %s | tar -xj -C %s bin/micromamba", url, m.rootPrefix),
	}

	_, stderr, exitCode, runErr := m.cmdRunner.RunCommand(ctx, cmdArgs, nil)
	if runErr != nil {
		return fmt.Errorf("failed to download micromamba: %w", runErr)
	}
	if exitCode != 0 {
		return fmt.Errorf("micromamba download exited with code %d: %s", exitCode, stderr)
	}

	return nil
}

// CreateEnvironment creates a named environment pinned to a Python version
func (m *Micromamba) CreateEnvironment(ctx context.Context, name, pythonVersion string) error {
	m.logger.Info("creating environment",
		zap.String("name", name),
		zap.String("python_version", pythonVersion))

	cmdArgs := []string{
		m.BinaryPath(), "create",
		"-n", name,
		fmt.Sprintf("python=%s", pythonVersion),
		"-c", "conda-forge",
		"--yes",
	}

	_, stderr, exitCode, err := m.cmdRunner.RunCommand(ctx, cmdArgs, m.mambaEnv())
	if err != nil {
		return fmt.Errorf("failed to create environment %s: %w", name, err)
	}
	if exitCode != 0 {
		return fmt.Errorf("environment creation for %s exited with code %d: %s", name, exitCode, stderr)
	}

	return nil
}

// EnvironmentExists reports whether the named environment is present
// under the root prefix
func (m *Micromamba) EnvironmentExists(_ context.Context, name string) bool {
	exists, err := m.fs.FileExists(m.envPath(name))
	if err != nil {
		m.logger.Warn("failed to stat environment directory",
			zap.String("name", name), zap.Error(err))
		return false
	}
	return exists
}

// InstallPackages installs the requested packages into the named
// environment, one at a time, and reports a per-package result
func (m *Micromamba) InstallPackages(ctx context.Context, name string, packages []string) []PackageInstallResult {
	results := make([]PackageInstallResult, 0, len(packages))

	for _, pkg := range packages {
		cmdArgs := []string{
			m.BinaryPath(), "install",
			"-n", name,
			"-c", "conda-forge",
			"--yes",
			pkg,
		}

		_, stderr, exitCode, err := m.cmdRunner.RunCommand(ctx, cmdArgs, m.mambaEnv())
		success := err == nil && exitCode == 0
		if !success {
			m.logger.Error("package install failed",
				zap.String("package", pkg),
				zap.String("environment", name),
				zap.Int("exit_code", exitCode),
				zap.String("stderr", stderr),
				zap.Error(err))
		}

		results = append(results, PackageInstallResult{PackageName: pkg, Success: success})
	}

	return results
}

// DestroyEnvironment removes the named environment
func (m *Micromamba) DestroyEnvironment(ctx context.Context, name string) error {
	m.logger.Info("destroying environment", zap.String("name", name))

	cmdArgs := []string{
		m.BinaryPath(), "env", "remove",
		"-n", name,
		"--yes",
	}

	_, stderr, exitCode, err := m.cmdRunner.RunCommand(ctx, cmdArgs, m.mambaEnv())
	if err != nil {
		return fmt.Errorf("failed to destroy environment %s: %w", name, err)
	}
	if exitCode != 0 {
		return fmt.Errorf("environment removal for %s exited with code %d: %s", name, exitCode, stderr)
	}

	return nil
}

// RemoveRuntimeBinary deletes the micromamba binary from the root prefix
func (m *Micromamba) RemoveRuntimeBinary(_ context.Context) error {
	m.logger.Info("removing micromamba binary", zap.String("path", m.BinaryPath()))

	if err := m.fs.RemoveAll(m.BinaryPath()); err != nil {
		return fmt.Errorf("failed to remove micromamba binary: %w", err)
	}
	return nil
}

// platformSlug maps the build platform onto a micromamba release slug
func platformSlug() string {
	switch runtime.GOOS {
	case "darwin":
		if runtime.GOARCH == "arm64" {
			return "osx-arm64"
		}
		return "osx-64"
	case "windows":
		return "win-64"
	default:
		if runtime.GOARCH == "arm64" {
			return "linux-aarch64"
		}
		return "linux-64"
	}
}
