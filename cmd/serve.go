package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fmpmcp/internal/app"
	"fmpmcp/internal/config"
)

// serveFlags holds the values of the serve command's flags. Only flags the
// user actually set override file and environment configuration.
type serveFlags struct {
	configPath           string
	debug                bool
	host                 string
	port                 int
	accessToken          string
	cacheMaxSize         int
	cacheTTL             time.Duration
	loadTimeout          time.Duration
	toolSets             string
	dynamicToolDiscovery string
	logLevel             string
	metricsExporter      string
}

var serve serveFlags

// serveCmd defines the serve command structure.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the fmpmcp HTTP server",
	Long: `Starts the fmpmcp HTTP server.

Endpoints:
  /mcp      MCP streamable HTTP endpoint. Clients pass their configuration
            on the query string: ACCESS_CREDENTIAL, TOOL_SETS and
            DYNAMIC_TOOL_DISCOVERY, or a base64-encoded JSON "config" parameter.
  /health   JSON health report.
  /metrics  Prometheus metrics (when --metrics-exporter=prometheus).

Configuration is layered: built-in defaults, then the YAML file given with
--config-path, then environment variables (FMP_ACCESS_TOKEN, PORT,
FMP_TOOL_SETS, FMP_DYNAMIC_TOOL_DISCOVERY, FMP_LOG_LEVEL), then flags.

Setting --tool-sets or --dynamic-tool-discovery pins the operating mode for
every client; per-request TOOL_SETS and DYNAMIC_TOOL_DISCOVERY are then ignored.

The config file is watched; changes to fmp.accessToken and logLevel apply
without a restart.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// runServe is the main entry point for the serve command
func runServe(cmd *cobra.Command, args []string) error {
	overrides, err := serve.overrides(cmd)
	if err != nil {
		return &configError{err: err}
	}

	cfg := app.NewConfig(serve.debug, serve.configPath, GetVersion())
	cfg.Overrides = overrides
	cfg.LogOutput = cmd.OutOrStdout()

	application, err := app.NewApplication(cfg)
	if err != nil {
		return &configError{err: fmt.Errorf("failed to initialize application: %w", err)}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}

// overrides parses the flags the user set into a function applied on top of
// file and environment configuration.
func (f serveFlags) overrides(cmd *cobra.Command) (func(*config.ServerConfig), error) {
	changed := cmd.Flags().Changed
	var apply []func(*config.ServerConfig)

	if changed("host") {
		apply = append(apply, func(c *config.ServerConfig) { c.Server.Host = f.host })
	}
	if changed("port") {
		apply = append(apply, func(c *config.ServerConfig) { c.Server.Port = f.port })
	}
	if changed("access-token") {
		token := strings.TrimSpace(f.accessToken)
		apply = append(apply, func(c *config.ServerConfig) { c.FMP.AccessToken = token })
	}
	if changed("cache-max-size") {
		apply = append(apply, func(c *config.ServerConfig) { c.Cache.MaxSize = f.cacheMaxSize })
	}
	if changed("cache-ttl") {
		apply = append(apply, func(c *config.ServerConfig) { c.Cache.TTL = f.cacheTTL })
	}
	if changed("module-load-timeout") {
		apply = append(apply, func(c *config.ServerConfig) { c.Modules.LoadTimeout = f.loadTimeout })
	}
	if changed("tool-sets") {
		apply = append(apply, func(c *config.ServerConfig) { c.Mode.ToolSets = f.toolSets })
	}
	if changed("dynamic-tool-discovery") {
		flag := config.ParseBoolFlag(f.dynamicToolDiscovery)
		if flag.Invalid != "" {
			return nil, fmt.Errorf("--dynamic-tool-discovery must be true or false, got %q", flag.Invalid)
		}
		apply = append(apply, func(c *config.ServerConfig) { c.Mode.DynamicToolDiscovery = flag })
	}
	if changed("log-level") {
		apply = append(apply, func(c *config.ServerConfig) { c.LogLevel = f.logLevel })
	}
	if changed("metrics-exporter") {
		apply = append(apply, func(c *config.ServerConfig) { c.Metrics.Exporter = f.metricsExporter })
	}

	return func(c *config.ServerConfig) {
		for _, fn := range apply {
			fn(c)
		}
	}, nil
}

// init registers the serve command and its flags with the root command.
func init() {
	rootCmd.AddCommand(serveCmd)

	flags := serveCmd.Flags()
	flags.StringVar(&serve.configPath, "config-path", "", "YAML configuration file (watched for changes)")
	flags.BoolVar(&serve.debug, "debug", false, "Enable debug logging (overrides the configured log level)")
	flags.StringVar(&serve.host, "host", config.DefaultHost, "Listen host")
	flags.IntVar(&serve.port, "port", config.DefaultPort, "Listen port")
	flags.StringVar(&serve.accessToken, "access-token", "", "Default FMP access token for clients that pass none")
	flags.IntVar(&serve.cacheMaxSize, "cache-max-size", config.DefaultCacheMaxSize, "Maximum number of cached client servers")
	flags.DurationVar(&serve.cacheTTL, "cache-ttl", config.DefaultCacheTTL, "Idle time after which a cached client server is evicted")
	flags.DurationVar(&serve.loadTimeout, "module-load-timeout", config.DefaultLoadTimeout, "Maximum time to construct one operation module")
	flags.StringVar(&serve.toolSets, "tool-sets", "", "Comma-separated toolsets to expose to every client (pins the mode)")
	flags.StringVar(&serve.dynamicToolDiscovery, "dynamic-tool-discovery", "", "true to force dynamic toolset discovery for every client (pins the mode)")
	flags.StringVar(&serve.logLevel, "log-level", config.DefaultLogLevel, "Log level: debug, info, warn, error")
	flags.StringVar(&serve.metricsExporter, "metrics-exporter", config.DefaultMetricsExporter, "Metrics exporter: prometheus, stdout, none")
}
