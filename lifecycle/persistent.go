package lifecycle

import (
	"context"

	"go.uber.org/zap"

	"github.com/zhazhalove/mambarun/mamba"
)

// Persistent is the low-overhead orchestrator variant for repeated
// invocations: it never provisions, installs, or tears down. The
// environment must already exist; provisioning cost is paid once
// out-of-band.
type Persistent struct {
	logger   *zap.Logger
	provider mamba.EnvironmentProvider
	runner   mamba.ScriptRunner
}

// NewPersistent creates a new Persistent orchestrator
func NewPersistent(logger *zap.Logger, provider mamba.EnvironmentProvider, runner mamba.ScriptRunner) *Persistent {
	return &Persistent{
		logger:   logger,
		provider: provider,
		runner:   runner,
	}
}

// Run executes the script against an already-provisioned environment.
// When the environment is absent the run is a silent no-op: empty
// result, no error. This is intentionally a "run only if ready" mode.
func (p *Persistent) Run(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", opError(opValidateRequest, err)
	}

	if !p.provider.EnvironmentExists(ctx, req.EnvName) {
		p.logger.Warn("environment not found, skipping run",
			zap.String("name", req.EnvName))
		return "", nil
	}

	extraEnv, err := loadDotEnv(req.DotEnvPath)
	if err != nil {
		return "", opError(opLoadDotEnv, err)
	}

	res := sanitizeInput(p.logger, req.InputMessage)

	output, err := p.runner.Run(ctx, req.ScriptPath, req.EnvName, req.ScriptArgs(res), extraEnv)
	if err != nil {
		return "", opError(opExecute, err)
	}

	if output == "" {
		p.logger.Warn("script produced no output, returning fallback result",
			zap.String("script", req.ScriptPath))
		return FallbackResult, nil
	}

	return output, nil
}
