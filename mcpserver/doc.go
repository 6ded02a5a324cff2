// Package mcpserver provides the Model Context Protocol (MCP) server implementation.
//
// The mcpserver package implements an MCP-compliant server that exposes
// the script run orchestrators as tools. It uses the mark3labs/mcp-go
// library to handle the protocol details and provides the
// run_langchain_script tool (full provision/execute/teardown cycle) and
// the run_langchain_script_persistent tool (execution against an
// already-provisioned environment).
//
// The server supports both stdio and HTTP transports as configured by
// the application configuration.
//
// Usage:
//
//	server, err := mcpserver.New(config, logger, orch, persistent)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = server.ServeStdio() // or server.ServeHTTP()
package mcpserver
