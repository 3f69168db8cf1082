package factory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"fmpmcp/internal/config"
	"fmpmcp/internal/dynamic"
	"fmpmcp/internal/loader"
	"fmpmcp/internal/metrics"
	"fmpmcp/internal/modules"
	"fmpmcp/internal/session"
	"fmpmcp/internal/toolsets"
	"fmpmcp/pkg/logging"
	pkgstrings "fmpmcp/pkg/strings"
)

// DefaultServerName is the implementation name advertised to clients.
const DefaultServerName = "fmpmcp"

// ConstructionError reports that a client server could not be built.
type ConstructionError struct {
	Mode  Mode
	Cause error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("failed to construct %s server: %v", e.Mode, e.Cause)
}

func (e *ConstructionError) Unwrap() error {
	return e.Cause
}

// Options configures a Factory.
type Options struct {
	Catalog  *modules.Catalog
	Registry *toolsets.Registry
	Fetcher  modules.Fetcher

	// DefaultCredential is used by operations when the client supplied none.
	DefaultCredential *config.DefaultCredential
	// EnforcedMode, when set, overrides the client's mode keys.
	EnforcedMode config.ModeConfig

	LoadTimeout time.Duration
	Recorder    *metrics.Recorder

	Name    string
	Version string
}

// Factory builds one protocol server per client configuration.
type Factory struct {
	opts Options
}

// New validates opts and returns a Factory.
func New(opts Options) (*Factory, error) {
	if opts.Catalog == nil {
		return nil, errors.New("factory requires a module catalog")
	}
	if opts.Registry == nil {
		return nil, errors.New("factory requires a toolset registry")
	}
	if opts.Fetcher == nil {
		return nil, errors.New("factory requires a fetcher")
	}
	if opts.DefaultCredential == nil {
		opts.DefaultCredential = config.NewDefaultCredential("")
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = loader.DefaultTimeout
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NewNoopRecorder()
	}
	if opts.Name == "" {
		opts.Name = DefaultServerName
	}
	return &Factory{opts: opts}, nil
}

// Instance is a constructed client server. It is what the session cache holds.
type Instance struct {
	Mode   Mode
	Server *server.MCPServer
	// Manager is nil unless Mode is ModeDynamicDiscovery.
	Manager *dynamic.Manager

	handler http.Handler
}

// ServeHTTP serves the protocol over streamable HTTP.
func (i *Instance) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	i.handler.ServeHTTP(w, r)
}

// Close releases the instance. Transitions started afterwards on its manager fail.
func (i *Instance) Close() {
	if i.Manager != nil {
		i.Manager.Close()
	}
}

// Create builds the server for a client. An anonymous clientID is also issued
// as the transport session id, so the client presents it on every later
// request of its connection.
func (f *Factory) Create(ctx context.Context, clientID string, cfg config.ClientConfig) (*Instance, error) {
	cfg = Enforce(cfg, f.opts.EnforcedMode)
	mode := ResolveMode(cfg)

	inst, err := f.create(ctx, clientID, mode, cfg)
	f.opts.Recorder.ServerConstructed(ctx, mode.String(), err)
	if err != nil {
		err = &ConstructionError{Mode: mode, Cause: err}
		logging.Error("Factory", err, "Server construction failed for %s", logging.TruncateIdentifier(clientID))
		return nil, err
	}
	logging.Info("Factory", "Constructed %s server for %s with %d operation(s)",
		mode, logging.TruncateIdentifier(clientID), len(inst.Server.ListTools()))
	return inst, nil
}

func (f *Factory) create(ctx context.Context, clientID string, mode Mode, cfg config.ClientConfig) (*Instance, error) {
	listChanged := mode == ModeDynamicDiscovery
	srv := server.NewMCPServer(
		f.opts.Name,
		f.opts.Version,
		server.WithToolCapabilities(listChanged),
		server.WithRecovery(),
	)
	var httpOpts []server.StreamableHTTPOption
	if session.IsAnonymous(clientID) {
		httpOpts = append(httpOpts, server.WithSessionIdManager(boundSessionID(clientID)))
	}
	inst := &Instance{
		Mode:    mode,
		Server:  srv,
		handler: server.NewStreamableHTTPServer(srv, httpOpts...),
	}

	binding := f.binding(cfg.AccessCredential)
	if cfg.AccessCredential == "" && !f.opts.DefaultCredential.Configured() {
		logging.Warn("Factory", "No credential available for %s; operations will fail until one is supplied",
			logging.TruncateIdentifier(clientID))
	}

	switch mode {
	case ModeDynamicDiscovery:
		host := dynamic.NewMCPHost(srv, listChanged)
		manager, err := dynamic.NewManager(dynamic.Options{
			Registry: f.opts.Registry,
			Host:     host,
			Load:     f.moduleLoader(binding),
			Recorder: f.opts.Recorder,
			ClientID: clientID,
		})
		if err != nil {
			return nil, err
		}
		meta, err := manager.MetaTools()
		if err != nil {
			return nil, fmt.Errorf("failed to build meta operations: %w", err)
		}
		host.RegisterOperations(meta...)
		inst.Manager = manager

	case ModeStaticSubset:
		names := f.validToolsets(clientID, cfg.ToolSets)
		if err := f.registerModules(ctx, srv, binding, f.opts.Registry.ModulesFor(names...)); err != nil {
			return nil, err
		}

	default:
		if err := f.registerModules(ctx, srv, binding, f.opts.Catalog.IDs()); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

// binding resolves the credential on every call so that a reloaded default
// credential reaches servers that are already cached.
func (f *Factory) binding(explicit string) modules.Binding {
	def := f.opts.DefaultCredential
	return modules.Binding{
		Fetcher: f.opts.Fetcher,
		Credential: func() string {
			if explicit != "" {
				return explicit
			}
			return def.Get()
		},
	}
}

// validToolsets keeps the names the registry knows. Each dropped name is
// logged on its own.
func (f *Factory) validToolsets(clientID, raw string) []string {
	var names []string
	for _, name := range pkgstrings.SplitList(raw) {
		switch {
		case name == "":
			logging.Debug("Factory", "Dropping blank toolset entry for %s", logging.TruncateIdentifier(clientID))
		case !f.opts.Registry.IsValidName(name):
			logging.Warn("Factory", "Dropping unknown toolset %q for %s", name, logging.TruncateIdentifier(clientID))
		default:
			names = append(names, name)
		}
	}
	return pkgstrings.Dedupe(names)
}

func (f *Factory) registerModules(ctx context.Context, srv *server.MCPServer, b modules.Binding, ids []string) error {
	load := f.moduleLoader(b)
	var tools []server.ServerTool
	for _, id := range ids {
		mod, err := load(ctx, id)
		if err != nil {
			return err
		}
		tools = append(tools, mod.Tools...)
	}
	if len(tools) > 0 {
		srv.AddTools(tools...)
	}
	return nil
}

// moduleLoader builds catalog modules through the bounded loader and records
// how long each took.
func (f *Factory) moduleLoader(b modules.Binding) dynamic.ModuleLoader {
	return func(ctx context.Context, id string) (*modules.Module, error) {
		start := time.Now()
		mod, err := loader.Load(ctx, id, f.opts.LoadTimeout, func(ctx context.Context) (*modules.Module, error) {
			return f.opts.Catalog.Build(ctx, id, b)
		})
		f.opts.Recorder.ModuleLoaded(ctx, id, time.Since(start), err)
		return mod, err
	}
}

// boundSessionID hands out a single fixed session id and accepts only that id.
type boundSessionID string

func (id boundSessionID) Generate() string {
	return string(id)
}

func (id boundSessionID) Validate(sessionID string) (bool, error) {
	if sessionID != string(id) {
		return false, fmt.Errorf("session %s is not served here", logging.TruncateIdentifier(sessionID))
	}
	return false, nil
}

func (id boundSessionID) Terminate(string) (bool, error) {
	return false, nil
}
