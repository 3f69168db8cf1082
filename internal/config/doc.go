// Package config holds the process-level ServerConfig and the per-request
// ClientConfig.
//
// ServerConfig is layered: built-in defaults, then an optional YAML file,
// then environment variables, then command-line flags (applied by cmd/).
//
//	cfg, err := config.Load("/etc/fmpmcp/config.yaml")
//	if err != nil {
//	    return err
//	}
//	config.ApplyEnv(&cfg, os.Getenv)
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//
// ClientConfig carries exactly three keys, ACCESS_CREDENTIAL, TOOL_SETS and
// DYNAMIC_TOOL_DISCOVERY, read from the query string of an MCP request or from a
// base64-encoded JSON document in the "config" query parameter. Unknown keys
// are ignored.
//
// Watcher reloads the YAML file on change and hands the new ServerConfig to a
// callback; only the default credential and the log level are applied live.
package config
