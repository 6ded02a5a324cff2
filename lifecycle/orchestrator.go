package lifecycle

import (
	"context"

	"go.uber.org/zap"

	"github.com/zhazhalove/mambarun/config"
	"github.com/zhazhalove/mambarun/mamba"
	"github.com/zhazhalove/mambarun/sanitize"
)

// FallbackResult is returned when the script runs but produces no output
const FallbackResult = "Failed to retrieve result from the Python script."

// Orchestrator sequences a full provision/execute/teardown run:
// validate the input, ensure the runtime binary and environment exist,
// install any requested packages, run the script, and tear the
// environment down again on every exit path.
type Orchestrator struct {
	logger   *zap.Logger
	provider mamba.EnvironmentProvider
	runner   mamba.ScriptRunner
}

// New creates a new Orchestrator
func New(logger *zap.Logger, provider mamba.EnvironmentProvider, runner mamba.ScriptRunner) *Orchestrator {
	return &Orchestrator{
		logger:   logger,
		provider: provider,
		runner:   runner,
	}
}

// Run executes one orchestrated lifecycle. Teardown runs exactly once
// per call, on success, fatal error, and caller cancellation alike, and
// its failures never mask the primary error.
func (o *Orchestrator) Run(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", opError(opValidateRequest, err)
	}

	defer o.cleanup(ctx, req.EnvName)

	extraEnv, err := loadDotEnv(req.DotEnvPath)
	if err != nil {
		return "", opError(opLoadDotEnv, err)
	}

	message := sanitizeInput(o.logger, req.InputMessage)

	if err := o.provision(ctx, req); err != nil {
		return "", opError(opProvision, err)
	}

	if len(req.Packages) > 0 {
		if err := o.installPackages(ctx, req); err != nil {
			return "", opError(opInstall, err)
		}
	}

	output, err := o.runner.Run(ctx, req.ScriptPath, req.EnvName, req.ScriptArgs(message), extraEnv)
	if err != nil {
		return "", opError(opExecute, err)
	}

	if output == "" {
		o.logger.Warn("script produced no output, returning fallback result",
			zap.String("script", req.ScriptPath))
		return FallbackResult, nil
	}

	return output, nil
}

// sanitizeInput runs the sanitizer in recovery mode: a message that
// fails hard validation is stripped and the run continues with the
// remainder, which may be empty.
func sanitizeInput(logger *zap.Logger, message string) string {
	res := sanitize.Clean(message)
	if res.Sanitized {
		logger.Warn("input message failed validation, continuing with sanitized message",
			zap.Int("original_len", len(message)),
			zap.Int("sanitized_len", len(res.Message)))
	}
	return res.Message
}

// provision ensures the micromamba binary is present and the named
// environment exists
func (o *Orchestrator) provision(ctx context.Context, req Request) error {
	if err := o.provider.EnsureRuntimeBinary(ctx); err != nil {
		return err
	}

	if o.provider.EnvironmentExists(ctx, req.EnvName) {
		o.logger.Debug("environment already exists", zap.String("name", req.EnvName))
		return nil
	}

	return o.provider.CreateEnvironment(ctx, req.EnvName, req.PythonVersion)
}

// installPackages installs the requested packages; any single failure
// is fatal for the run and names the failing package. Packages already
// installed when a later one fails are left in place.
func (o *Orchestrator) installPackages(ctx context.Context, req Request) error {
	results := o.provider.InstallPackages(ctx, req.EnvName, req.Packages)
	for _, result := range results {
		if !result.Success {
			return &PackageInstallError{Package: result.PackageName}
		}
	}
	return nil
}

// cleanup destroys the environment and removes the runtime binary.
// Failures are logged and swallowed so they never override the run's
// primary outcome. The teardown context survives caller cancellation.
func (o *Orchestrator) cleanup(ctx context.Context, envName string) {
	ctx = context.WithoutCancel(ctx)

	if err := o.provider.DestroyEnvironment(ctx, envName); err != nil {
		o.logger.Warn("best-effort environment teardown failed",
			zap.String("name", envName), zap.Error(err))
	}

	if err := o.provider.RemoveRuntimeBinary(ctx); err != nil {
		o.logger.Warn("best-effort runtime binary removal failed", zap.Error(err))
	}
}

// loadDotEnv reads the optional dotenv file into an explicit map that
// is threaded into the script invocation, never into process-wide state
func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	return config.ReadDotEnv(path)
}
