// Package config provides application configuration management.
//
// The config package handles loading and validation of the application's
// configuration from YAML files. It supports configuration for the MCP
// server, the micromamba runtime (environment name, Python version,
// root prefix) and the default script invocation parameters, and reads
// dotenv files into explicit key/value maps.
//
// Usage:
//
//	cfg, err := config.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Environment: %s\n", cfg.Runtime.EnvName)
package config
