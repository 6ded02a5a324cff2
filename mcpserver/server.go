package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/zhazhalove/mambarun/config"
	"github.com/zhazhalove/mambarun/lifecycle"
)

// RunFunc is the orchestrator surface the server depends on; both the
// full-lifecycle and the persistent orchestrator satisfy it.
type RunFunc interface {
	Run(ctx context.Context, req lifecycle.Request) (string, error)
}

// MCPServer represents the MCP server
type MCPServer struct {
	config     *config.Config
	logger     *zap.Logger
	orch       RunFunc
	persistent RunFunc
	mcpServer  *server.MCPServer
}

// New creates a new MCPServer
func New(cfg *config.Config, logger *zap.Logger, orch *lifecycle.Orchestrator, persistent *lifecycle.Persistent) (*MCPServer, error) {
	s := &MCPServer{
		config:     cfg,
		logger:     logger,
		orch:       orch,
		persistent: persistent,
	}

	// Log configuration parameters on startup
	logger.Info("configuration loaded",
		zap.String("server.transport", s.config.Server.Transport),
		zap.Int("server.http_port", s.config.Server.HTTPPort),
		zap.String("runtime.env_name", s.config.Runtime.EnvName),
		zap.String("runtime.python_version", s.config.Runtime.PythonVersion),
		zap.String("runtime.root_prefix", s.config.Runtime.RootPrefix),
		zap.Float64("invocation.temperature", s.config.Invocation.Temperature),
		zap.String("invocation.model_name", s.config.Invocation.ModelName),
		zap.Int("invocation.max_retries", s.config.Invocation.MaxRetries),
	)

	// Create the MCP server
	s.mcpServer = server.NewMCPServer("mambarun", "Runs Python scripts in provisioned micromamba environments")

	// Register the script execution tools
	s.registerRunScriptTool()
	s.registerRunScriptPersistentTool()

	return s, nil
}

// scriptToolSchema is shared by both tools; only provisioning behavior differs
func scriptToolSchema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]any{
			"input": map[string]any{
				"type":        "string",
				"description": "Free-text input forwarded to the script after sanitization",
			},
			"script": map[string]any{
				"type":        "string",
				"description": "Path of the Python script to run",
			},
			"env_name": map[string]any{
				"type":        "string",
				"description": "Environment name (optional, defaults from config)",
			},
			"python_version": map[string]any{
				"type":        "string",
				"description": "Python version for environment creation (optional)",
			},
			"packages": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Extra conda-forge packages to install (optional)",
			},
			"temperature": map[string]any{
				"type":        "number",
				"description": "Model temperature passed to the script (optional)",
			},
			"model_name": map[string]any{
				"type":        "string",
				"description": "Model name passed to the script (optional)",
			},
			"max_retries": map[string]any{
				"type":        "number",
				"description": "Retry budget passed to the script (optional)",
			},
			"dotenv_path": map[string]any{
				"type":        "string",
				"description": "Path of a dotenv file threaded into the script process (optional)",
			},
		},
		Required: []string{"input", "script"},
	}
}

// registerRunScriptTool registers the full provision/execute/teardown tool
func (s *MCPServer) registerRunScriptTool() {
	tool := mcp.Tool{
		Name:        "run_langchain_script",
		Description: "Provision a micromamba environment, run a Python script in it, and tear the environment down",
		InputSchema: scriptToolSchema(),
	}

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.handleRun(ctx, request, s.orch, "run_langchain_script")
	})
}

// registerRunScriptPersistentTool registers the run-only-if-ready variant
func (s *MCPServer) registerRunScriptPersistentTool() {
	tool := mcp.Tool{
		Name:        "run_langchain_script_persistent",
		Description: "Run a Python script in an already-provisioned micromamba environment, without teardown",
		InputSchema: scriptToolSchema(),
	}

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.handleRun(ctx, request, s.persistent, "run_langchain_script_persistent")
	})
}

// handleRun maps tool parameters onto a lifecycle request and executes it
func (s *MCPServer) handleRun(ctx context.Context, request mcp.CallToolRequest, orch RunFunc, tool string) (*mcp.CallToolResult, error) {
	input, err := request.RequireString("input")
	if err != nil {
		return nil, fmt.Errorf("input parameter is required: %w", err)
	}

	script, err := request.RequireString("script")
	if err != nil {
		return nil, fmt.Errorf("script parameter is required: %w", err)
	}

	req := lifecycle.FromConfig(s.config)
	req.InputMessage = input
	req.ScriptPath = script
	req.EnvName = request.GetString("env_name", req.EnvName)
	req.PythonVersion = request.GetString("python_version", req.PythonVersion)
	req.Packages = request.GetStringSlice("packages", nil)
	req.Temperature = request.GetFloat("temperature", req.Temperature)
	req.MaxRetries = request.GetInt("max_retries", req.MaxRetries)
	req.ModelName = request.GetString("model_name", req.ModelName)
	req.DotEnvPath = request.GetString("dotenv_path", "")

	s.logger.Info("script run requested",
		zap.String("tool", tool),
		zap.String("script", req.ScriptPath),
		zap.String("environment", req.EnvName),
		zap.Int("package_count", len(req.Packages)))

	result, err := orch.Run(ctx, req)
	if err != nil {
		s.logger.Error("script run failed",
			zap.String("tool", tool),
			zap.String("script", req.ScriptPath),
			zap.Error(err))
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.TextContent{
					Type: "text",
					Text: err.Error(),
				},
			},
			IsError: true,
		}, nil
	}

	s.logger.Info("script run completed",
		zap.String("tool", tool),
		zap.Int("result_len", len(result)))

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: result,
			},
		},
	}, nil
}

// ServeStdio starts the server on stdio
func (s *MCPServer) ServeStdio() error {
	s.logger.Info("starting MCP server on stdio")
	return server.ServeStdio(s.mcpServer)
}

// ServeHTTP starts the server on HTTP
func (s *MCPServer) ServeHTTP() error {
	port := s.config.Server.HTTPPort
	s.logger.Info("starting MCP server on HTTP", zap.Int("port", port))

	httpServer := server.NewStreamableHTTPServer(s.mcpServer)
	return httpServer.Start(fmt.Sprintf(":%d", port))
}

// GetMCPServer returns the underlying MCP server for fx
func (s *MCPServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}
