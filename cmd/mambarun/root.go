package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zhazhalove/mambarun/config"
	"github.com/zhazhalove/mambarun/lifecycle"
	"github.com/zhazhalove/mambarun/logger"
	"github.com/zhazhalove/mambarun/mamba"
)

var (
	inputMessage  string
	scriptPath    string
	envName       string
	pythonVersion string
	rootPrefix    string
	packages      []string
	envFile       string
	temperature   float64
	modelName     string
	maxRetries    int
	persistent    bool

	rootCmd = &cobra.Command{
		Use:   "mambarun",
		Short: "Run a Python script in a provisioned micromamba environment",
		Long: `mambarun provisions an isolated micromamba environment, runs a single
Python script inside it with sanitized input, and tears the environment
down afterward regardless of outcome.

With --persistent the provisioning and teardown steps are skipped and
the script only runs when the environment already exists, for repeated
low-overhead invocations.`,
		SilenceUsage: true,
		RunE:         run,
	}
)

func init() {
	rootCmd.Flags().StringVarP(&inputMessage, "input", "i", "", "free-text input forwarded to the script (required)")
	rootCmd.Flags().StringVarP(&scriptPath, "script", "s", "", "path of the Python script to run (required)")
	rootCmd.Flags().StringVar(&envName, "env-name", "", "micromamba environment name")
	rootCmd.Flags().StringVar(&pythonVersion, "python-version", "", "Python version for environment creation")
	rootCmd.Flags().StringVar(&rootPrefix, "root-prefix", "", "micromamba root prefix directory")
	rootCmd.Flags().StringArrayVarP(&packages, "package", "p", nil, "extra conda-forge package to install (repeatable)")
	rootCmd.Flags().StringVar(&envFile, "env-file", "", "dotenv file threaded into the script process")
	rootCmd.Flags().Float64Var(&temperature, "temperature", 0.0, "model temperature passed to the script")
	rootCmd.Flags().StringVar(&modelName, "model-name", "", "model name passed to the script")
	rootCmd.Flags().IntVar(&maxRetries, "max-retries", 0, "retry budget passed to the script")
	rootCmd.Flags().BoolVar(&persistent, "persistent", false, "run against an existing environment without provisioning or teardown")

	_ = rootCmd.MarkFlagRequired("input")
	_ = rootCmd.MarkFlagRequired("script")
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.New()
	if err != nil {
		return err
	}

	log, err := logger.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck // Best-effort flush on exit

	req := lifecycle.FromConfig(cfg)
	req.InputMessage = inputMessage
	req.ScriptPath = scriptPath
	req.Packages = packages
	req.DotEnvPath = envFile

	// Flags override configured defaults only when actually set
	flags := cmd.Flags()
	if flags.Changed("env-name") {
		req.EnvName = envName
	}
	if flags.Changed("python-version") {
		req.PythonVersion = pythonVersion
	}
	if flags.Changed("temperature") {
		req.Temperature = temperature
	}
	if flags.Changed("model-name") {
		req.ModelName = modelName
	}
	if flags.Changed("max-retries") {
		req.MaxRetries = maxRetries
	}

	prefix := cfg.Runtime.RootPrefix
	if flags.Changed("root-prefix") {
		prefix = rootPrefix
	}

	provider := mamba.NewMicromamba(log, prefix)
	runner := mamba.NewPythonRunner(log, prefix)

	var result string
	if persistent {
		result, err = lifecycle.NewPersistent(log, provider, runner).Run(cmd.Context(), req)
	} else {
		result, err = lifecycle.New(log, provider, runner).Run(cmd.Context(), req)
	}
	if err != nil {
		return err
	}

	if result != "" {
		fmt.Fprintln(cmd.OutOrStdout(), result)
	} else {
		log.Warn("no result produced", zap.String("environment", req.EnvName))
	}

	return nil
}
