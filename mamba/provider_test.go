package mamba

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type commandResult struct {
	stdout   string
	stderr   string
	exitCode int
	err      error
}

// MockCommandRunner implements CommandRunner for testing
type MockCommandRunner struct {
	commandResults map[string]commandResult
	defaultResult  commandResult
	calls          []string
	envs           []map[string]string
}

func (m *MockCommandRunner) RunCommand(_ context.Context, args []string, extraEnv map[string]string) (stdout, stderr string, exitCode int, err error) {
	cmdKey := strings.Join(args, " ")
	m.calls = append(m.calls, cmdKey)
	m.envs = append(m.envs, extraEnv)

	if result, exists := m.commandResults[cmdKey]; exists {
		return result.stdout, result.stderr, result.exitCode, result.err
	}

	return m.defaultResult.stdout, m.defaultResult.stderr, m.defaultResult.exitCode, m.defaultResult.err
}

// MockFileSystem implements FileSystem for testing
type MockFileSystem struct {
	existing       map[string]bool
	mkdirAllErrors map[string]error
	removedPaths   []string
}

func (m *MockFileSystem) MkdirAll(path string, _ os.FileMode) error {
	if err, exists := m.mkdirAllErrors[path]; exists {
		return err
	}
	return nil
}

func (m *MockFileSystem) RemoveAll(path string) error {
	m.removedPaths = append(m.removedPaths, path)
	return nil
}

func (m *MockFileSystem) FileExists(path string) (bool, error) {
	return m.existing[path], nil
}

func TestMicromambaConstructors(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("DefaultConstructor", func(t *testing.T) {
		provider := NewMicromamba(logger, "/opt/micromamba")
		require.NotNil(t, provider)
		assert.Equal(t, logger, provider.logger)
		assert.Equal(t, "/opt/micromamba", provider.rootPrefix)
		// Default implementations should be set
		assert.NotNil(t, provider.cmdRunner)
		assert.NotNil(t, provider.fs)
	})

	t.Run("ConstructorWithOptions", func(t *testing.T) {
		mockRunner := &MockCommandRunner{}
		mockFS := &MockFileSystem{}

		provider := NewMicromamba(
			logger,
			"/opt/micromamba",
			WithCommandRunner(mockRunner),
			WithFileSystem(mockFS),
		)
		require.NotNil(t, provider)
		assert.Equal(t, mockRunner, provider.cmdRunner)
		assert.Equal(t, mockFS, provider.fs)
	})
}

func TestMicromambaEnsureRuntimeBinary(t *testing.T) {
	logger := zaptest.NewLogger(t)
	rootPrefix := "/opt/micromamba"
	binaryPath := filepath.Join(rootPrefix, "bin", "micromamba")

	t.Run("BinaryAlreadyPresent", func(t *testing.T) {
		mockRunner := &MockCommandRunner{}
		mockFS := &MockFileSystem{existing: map[string]bool{binaryPath: true}}

		provider := NewMicromamba(logger, rootPrefix,
			WithCommandRunner(mockRunner), WithFileSystem(mockFS))

		err := provider.EnsureRuntimeBinary(context.Background())
		require.NoError(t, err)
		assert.Empty(t, mockRunner.calls, "no download should run when the binary exists")
	})

	t.Run("DownloadsWhenMissing", func(t *testing.T) {
		mockRunner := &MockCommandRunner{}
		mockFS := &MockFileSystem{existing: map[string]bool{}}

		provider := NewMicromamba(logger, rootPrefix,
			WithCommandRunner(mockRunner), WithFileSystem(mockFS))

		err := provider.EnsureRuntimeBinary(context.Background())
		require.NoError(t, err)
		require.Len(t, mockRunner.calls, 1)
		assert.Contains(t, mockRunner.calls[0], "curl -Ls")
		assert.Contains(t, mockRunner.calls[0], "micro.mamba.pm")
	})

	t.Run("DownloadFailure", func(t *testing.T) {
		mockRunner := &MockCommandRunner{
			defaultResult: commandResult{stderr: "curl: (6) could not resolve host", exitCode: 6},
		}
		mockFS := &MockFileSystem{existing: map[string]bool{}}

		provider := NewMicromamba(logger, rootPrefix,
			WithCommandRunner(mockRunner), WithFileSystem(mockFS))

		err := provider.EnsureRuntimeBinary(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exited with code 6")
	})
}

func TestMicromambaCreateEnvironment(t *testing.T) {
	logger := zaptest.NewLogger(t)
	rootPrefix := "/opt/micromamba"

	t.Run("Success", func(t *testing.T) {
		mockRunner := &MockCommandRunner{}
		provider := NewMicromamba(logger, rootPrefix, WithCommandRunner(mockRunner))

		err := provider.CreateEnvironment(context.Background(), "langchain", "3.11")
		require.NoError(t, err)
		require.Len(t, mockRunner.calls, 1)
		assert.Contains(t, mockRunner.calls[0], "create -n langchain python=3.11 -c conda-forge --yes")
		assert.Equal(t, rootPrefix, mockRunner.envs[0]["MAMBA_ROOT_PREFIX"])
	})

	t.Run("NonZeroExit", func(t *testing.T) {
		mockRunner := &MockCommandRunner{
			defaultResult: commandResult{stderr: "solver error", exitCode: 1},
		}
		provider := NewMicromamba(logger, rootPrefix, WithCommandRunner(mockRunner))

		err := provider.CreateEnvironment(context.Background(), "langchain", "3.11")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "langchain")
		assert.Contains(t, err.Error(), "solver error")
	})
}

func TestMicromambaEnvironmentExists(t *testing.T) {
	logger := zaptest.NewLogger(t)
	rootPrefix := "/opt/micromamba"
	envPath := filepath.Join(rootPrefix, "envs", "langchain")

	t.Run("Present", func(t *testing.T) {
		mockFS := &MockFileSystem{existing: map[string]bool{envPath: true}}
		provider := NewMicromamba(logger, rootPrefix, WithFileSystem(mockFS))

		assert.True(t, provider.EnvironmentExists(context.Background(), "langchain"))
	})

	t.Run("Absent", func(t *testing.T) {
		mockFS := &MockFileSystem{existing: map[string]bool{}}
		provider := NewMicromamba(logger, rootPrefix, WithFileSystem(mockFS))

		assert.False(t, provider.EnvironmentExists(context.Background(), "langchain"))
	})
}

func TestMicromambaInstallPackages(t *testing.T) {
	logger := zaptest.NewLogger(t)
	rootPrefix := "/opt/micromamba"
	binary := filepath.Join(rootPrefix, "bin", "micromamba")

	t.Run("AllSucceed", func(t *testing.T) {
		mockRunner := &MockCommandRunner{}
		provider := NewMicromamba(logger, rootPrefix, WithCommandRunner(mockRunner))

		results := provider.InstallPackages(context.Background(), "langchain", []string{"langchain", "openai"})
		require.Len(t, results, 2)
		assert.Equal(t, PackageInstallResult{PackageName: "langchain", Success: true}, results[0])
		assert.Equal(t, PackageInstallResult{PackageName: "openai", Success: true}, results[1])
		assert.Len(t, mockRunner.calls, 2)
	})

	t.Run("SingleFailureReported", func(t *testing.T) {
		failingKey := strings.Join([]string{
			binary, "install", "-n", "langchain", "-c", "conda-forge", "--yes", "no-such-pkg",
		}, " ")
		mockRunner := &MockCommandRunner{
			commandResults: map[string]commandResult{
				failingKey: {stderr: "nothing provides no-such-pkg", exitCode: 1},
			},
		}
		provider := NewMicromamba(logger, rootPrefix, WithCommandRunner(mockRunner))

		results := provider.InstallPackages(context.Background(), "langchain", []string{"langchain", "no-such-pkg"})
		require.Len(t, results, 2)
		assert.True(t, results[0].Success)
		assert.False(t, results[1].Success)
		assert.Equal(t, "no-such-pkg", results[1].PackageName)
	})

	t.Run("EmptyList", func(t *testing.T) {
		mockRunner := &MockCommandRunner{}
		provider := NewMicromamba(logger, rootPrefix, WithCommandRunner(mockRunner))

		results := provider.InstallPackages(context.Background(), "langchain", nil)
		assert.Empty(t, results)
		assert.Empty(t, mockRunner.calls)
	})
}

func TestMicromambaTeardown(t *testing.T) {
	logger := zaptest.NewLogger(t)
	rootPrefix := "/opt/micromamba"

	t.Run("DestroyEnvironment", func(t *testing.T) {
		mockRunner := &MockCommandRunner{}
		provider := NewMicromamba(logger, rootPrefix, WithCommandRunner(mockRunner))

		err := provider.DestroyEnvironment(context.Background(), "langchain")
		require.NoError(t, err)
		require.Len(t, mockRunner.calls, 1)
		assert.Contains(t, mockRunner.calls[0], "env remove -n langchain --yes")
	})

	t.Run("DestroyEnvironmentFailure", func(t *testing.T) {
		mockRunner := &MockCommandRunner{
			defaultResult: commandResult{stderr: "environment busy", exitCode: 1},
		}
		provider := NewMicromamba(logger, rootPrefix, WithCommandRunner(mockRunner))

		err := provider.DestroyEnvironment(context.Background(), "langchain")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "environment busy")
	})

	t.Run("RemoveRuntimeBinary", func(t *testing.T) {
		mockFS := &MockFileSystem{}
		provider := NewMicromamba(logger, rootPrefix, WithFileSystem(mockFS))

		err := provider.RemoveRuntimeBinary(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{provider.BinaryPath()}, mockFS.removedPaths)
	})
}
