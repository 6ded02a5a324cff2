// Package main is the entry point for the mambarun MCP server.
//
// The mambarun server exposes Model Context Protocol (MCP) tools that
// provision isolated micromamba environments on demand and run Python
// scripts inside them with sanitized input and guaranteed teardown. The
// server supports both stdio and HTTP transports.
//
// The application uses Uber's fx framework for dependency injection and
// lifecycle management, with zap for structured logging and viper for
// configuration.
package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/zhazhalove/mambarun/config"
	"github.com/zhazhalove/mambarun/lifecycle"
	"github.com/zhazhalove/mambarun/logger"
	"github.com/zhazhalove/mambarun/mamba"
	"github.com/zhazhalove/mambarun/mcpserver"
)

// newProvider builds the micromamba environment provider from config
func newProvider(cfg *config.Config, log *zap.Logger) mamba.EnvironmentProvider {
	return mamba.NewMicromamba(log, cfg.Runtime.RootPrefix)
}

// newRunner builds the Python script runner from config
func newRunner(cfg *config.Config, log *zap.Logger) mamba.ScriptRunner {
	return mamba.NewPythonRunner(log, cfg.Runtime.RootPrefix)
}

func main() {
	app := fx.New(
		// Provide dependencies
		fx.Provide(
			// Config
			config.New,

			// Logger with configuration
			logger.NewFromConfig,

			// Micromamba provider and script runner
			newProvider,
			newRunner,

			// Orchestrators
			lifecycle.New,
			lifecycle.NewPersistent,

			// MCP Server
			mcpserver.New,
		),

		// Start the appropriate transport based on config
		fx.Invoke(
			func(cfg *config.Config, server *mcpserver.MCPServer) {
				switch cfg.Server.Transport {
				case "stdio":
					// Use fx to run this as a background task
					go func() {
						if err := server.ServeStdio(); err != nil {
							panic(err)
						}
					}()
				case "http":
					go func() {
						if err := server.ServeHTTP(); err != nil {
							panic(err)
						}
					}()
				default:
					panic("unsupported transport: " + cfg.Server.Transport)
				}
			},
		),

		// Use the application logger for fx logs
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)

	// Start the application
	app.Run()
}
