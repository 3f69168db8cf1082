package factory

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fmpmcp/internal/config"
	"fmpmcp/internal/dynamic"
	"fmpmcp/internal/loader"
	"fmpmcp/internal/modules"
	"fmpmcp/internal/toolsets"
)

type recordingFetcher struct {
	mu          sync.Mutex
	credentials []string
}

func (f *recordingFetcher) Get(_ context.Context, credential, _ string, _ url.Values) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.credentials = append(f.credentials, credential)
	return []any{map[string]any{"symbol": "AAPL"}}, nil
}

func (f *recordingFetcher) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.credentials) == 0 {
		return ""
	}
	return f.credentials[len(f.credentials)-1]
}

func newTestFactory(t *testing.T, fetcher modules.Fetcher, def *config.DefaultCredential) *Factory {
	t.Helper()
	f, err := New(Options{
		Catalog:           modules.Default(),
		Registry:          toolsets.Default(),
		Fetcher:           fetcher,
		DefaultCredential: def,
		Version:           "test",
	})
	require.NoError(t, err)
	return f
}

func toolNames(srv *server.MCPServer) []string {
	var names []string
	for name := range srv.ListTools() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func moduleToolNames(t *testing.T, ids ...string) []string {
	t.Helper()
	var names []string
	for _, id := range ids {
		m, err := modules.Default().Build(context.Background(), id, modules.Binding{Fetcher: &recordingFetcher{}})
		require.NoError(t, err)
		names = append(names, m.ToolNames()...)
	}
	sort.Strings(names)
	return names
}

func listChangedDeclared(t *testing.T, srv *server.MCPServer) bool {
	t.Helper()
	msg := srv.HandleMessage(context.Background(), []byte(
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1"}}}`))
	resp, ok := msg.(mcp.JSONRPCResponse)
	require.True(t, ok, "unexpected response %T", msg)
	result, ok := resp.Result.(mcp.InitializeResult)
	require.True(t, ok, "unexpected result %T", resp.Result)
	require.NotNil(t, result.Capabilities.Tools)
	return result.Capabilities.Tools.ListChanged
}

func callTool(t *testing.T, srv *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := srv.GetTool(name)
	require.NotNil(t, tool, "tool %s not registered", name)
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err)
	return res
}

func TestResolveMode(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ClientConfig
		want Mode
	}{
		{"empty config", config.ClientConfig{}, ModeAllOperations},
		{"toolsets only", config.ClientConfig{ToolSets: "quotes,news"}, ModeStaticSubset},
		{"blank toolsets", config.ClientConfig{ToolSets: " , ,"}, ModeAllOperations},
		{"dynamic true", config.ClientConfig{DynamicToolDiscovery: config.ParseBoolFlag("TRUE")}, ModeDynamicDiscovery},
		{"dynamic wins over toolsets", config.ClientConfig{ToolSets: "quotes", DynamicToolDiscovery: config.ParseBoolFlag("true")}, ModeDynamicDiscovery},
		{"dynamic false falls through", config.ClientConfig{ToolSets: "quotes", DynamicToolDiscovery: config.ParseBoolFlag("false")}, ModeStaticSubset},
		{"invalid flag is disabled", config.ClientConfig{DynamicToolDiscovery: config.ParseBoolFlag("yes")}, ModeAllOperations},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveMode(tt.cfg))
		})
	}
}

func TestEnforce(t *testing.T) {
	client := config.ClientConfig{
		AccessCredential:     "client-key",
		ToolSets:             "news",
		DynamicToolDiscovery: config.ParseBoolFlag("true"),
	}

	t.Run("no server mode keeps client keys", func(t *testing.T) {
		assert.Equal(t, client, Enforce(client, config.ModeConfig{}))
	})

	t.Run("server mode replaces mode keys only", func(t *testing.T) {
		got := Enforce(client, config.ModeConfig{ToolSets: "quotes"})
		assert.Equal(t, "client-key", got.AccessCredential)
		assert.Equal(t, "quotes", got.ToolSets)
		assert.False(t, got.DynamicToolDiscovery.Enabled())
		assert.Equal(t, ModeStaticSubset, ResolveMode(got))
	})
}

func TestModeFor(t *testing.T) {
	client := config.ClientConfig{ToolSets: "quotes"}
	assert.Equal(t, ModeStaticSubset, ModeFor(client, config.ModeConfig{}))
	assert.Equal(t, ModeDynamicDiscovery,
		ModeFor(client, config.ModeConfig{DynamicToolDiscovery: config.ParseBoolFlag("true")}))
	assert.Equal(t, ModeAllOperations,
		ModeFor(config.ClientConfig{DynamicToolDiscovery: config.ParseBoolFlag("maybe")}, config.ModeConfig{}))
}

func TestBoundSessionID(t *testing.T) {
	ids := boundSessionID("anon-1234")
	assert.Equal(t, "anon-1234", ids.Generate())

	terminated, err := ids.Validate("anon-1234")
	assert.NoError(t, err)
	assert.False(t, terminated)

	_, err = ids.Validate("anon-5678")
	assert.Error(t, err)
	_, err = ids.Validate("")
	assert.Error(t, err)

	notAllowed, err := ids.Terminate("anon-1234")
	assert.NoError(t, err)
	assert.False(t, notAllowed)
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Options{Registry: toolsets.Default(), Fetcher: &recordingFetcher{}})
	assert.Error(t, err)
	_, err = New(Options{Catalog: modules.Default(), Fetcher: &recordingFetcher{}})
	assert.Error(t, err)
	_, err = New(Options{Catalog: modules.Default(), Registry: toolsets.Default()})
	assert.Error(t, err)
}

func TestCreate_AllOperations(t *testing.T) {
	f := newTestFactory(t, &recordingFetcher{}, nil)

	inst, err := f.Create(context.Background(), "client", config.ClientConfig{})
	require.NoError(t, err)
	defer inst.Close()

	assert.Equal(t, ModeAllOperations, inst.Mode)
	assert.Nil(t, inst.Manager)
	assert.Equal(t, moduleToolNames(t, modules.Default().IDs()...), toolNames(inst.Server))
	assert.False(t, listChangedDeclared(t, inst.Server))
}

func TestCreate_StaticSubset(t *testing.T) {
	f := newTestFactory(t, &recordingFetcher{}, nil)

	inst, err := f.Create(context.Background(), "client", config.ClientConfig{ToolSets: "quotes, ,bogus,quotes"})
	require.NoError(t, err)
	defer inst.Close()

	assert.Equal(t, ModeStaticSubset, inst.Mode)
	assert.Nil(t, inst.Manager)
	assert.Equal(t, moduleToolNames(t, modules.Quotes, modules.Charts), toolNames(inst.Server))
	assert.False(t, listChangedDeclared(t, inst.Server))
}

func TestCreate_StaticSubsetWithOnlyUnknownNames(t *testing.T) {
	f := newTestFactory(t, &recordingFetcher{}, nil)

	inst, err := f.Create(context.Background(), "client", config.ClientConfig{ToolSets: "bogus"})
	require.NoError(t, err)
	defer inst.Close()

	assert.Equal(t, ModeStaticSubset, inst.Mode)
	assert.Empty(t, toolNames(inst.Server))
}

func TestCreate_DynamicDiscovery(t *testing.T) {
	f := newTestFactory(t, &recordingFetcher{}, nil)

	inst, err := f.Create(context.Background(), "client", config.ClientConfig{DynamicToolDiscovery: config.ParseBoolFlag("true")})
	require.NoError(t, err)
	defer inst.Close()

	assert.Equal(t, ModeDynamicDiscovery, inst.Mode)
	require.NotNil(t, inst.Manager)
	assert.Equal(t, []string{dynamic.DisableToolName, dynamic.EnableToolName, dynamic.StatusToolName}, toolNames(inst.Server))
	assert.True(t, listChangedDeclared(t, inst.Server))

	res := inst.Manager.EnableToolset(context.Background(), "news")
	require.True(t, res.Success, res.Message)
	assert.Subset(t, toolNames(inst.Server), moduleToolNames(t, modules.News))
}

func TestCreate_ServerModeEnforced(t *testing.T) {
	f, err := New(Options{
		Catalog:      modules.Default(),
		Registry:     toolsets.Default(),
		Fetcher:      &recordingFetcher{},
		EnforcedMode: config.ModeConfig{DynamicToolDiscovery: config.ParseBoolFlag("true")},
	})
	require.NoError(t, err)

	inst, err := f.Create(context.Background(), "client", config.ClientConfig{ToolSets: "quotes"})
	require.NoError(t, err)
	defer inst.Close()
	assert.Equal(t, ModeDynamicDiscovery, inst.Mode)
}

func TestCreate_CredentialPrecedence(t *testing.T) {
	args := map[string]any{"symbol": "AAPL"}

	t.Run("explicit credential wins over default", func(t *testing.T) {
		fetcher := &recordingFetcher{}
		f := newTestFactory(t, fetcher, config.NewDefaultCredential("default-key"))
		inst, err := f.Create(context.Background(), "c", config.ClientConfig{AccessCredential: "client-key", ToolSets: "quotes"})
		require.NoError(t, err)

		res := callTool(t, inst.Server, "getQuote", args)
		assert.False(t, res.IsError)
		assert.Equal(t, "client-key", fetcher.last())
	})

	t.Run("default credential is read at call time", func(t *testing.T) {
		fetcher := &recordingFetcher{}
		def := config.NewDefaultCredential("default-key")
		f := newTestFactory(t, fetcher, def)
		inst, err := f.Create(context.Background(), "c", config.ClientConfig{ToolSets: "quotes"})
		require.NoError(t, err)

		callTool(t, inst.Server, "getQuote", args)
		assert.Equal(t, "default-key", fetcher.last())

		def.Set("rotated-key")
		callTool(t, inst.Server, "getQuote", args)
		assert.Equal(t, "rotated-key", fetcher.last())
	})

	t.Run("missing credential fails at call time only", func(t *testing.T) {
		fetcher := &recordingFetcher{}
		f := newTestFactory(t, fetcher, nil)
		inst, err := f.Create(context.Background(), "c", config.ClientConfig{ToolSets: "quotes"})
		require.NoError(t, err)

		res := callTool(t, inst.Server, "getQuote", args)
		assert.True(t, res.IsError)
		require.NotEmpty(t, res.Content)
		assert.Contains(t, mcp.GetTextFromContent(res.Content[0]), "credential")
		assert.Empty(t, fetcher.credentials)
	})
}

func TestCreate_ModuleFailureIsConstructionError(t *testing.T) {
	boom := errors.New("boom")
	catalog := modules.NewCatalog(map[string]modules.Constructor{
		"broken": func(context.Context, modules.Binding) (*modules.Module, error) { return nil, boom },
	})
	registry, err := toolsets.NewRegistry([]toolsets.Definition{{Name: "broken", Description: "broken", Modules: []string{"broken"}}})
	require.NoError(t, err)

	f, err := New(Options{Catalog: catalog, Registry: registry, Fetcher: &recordingFetcher{}})
	require.NoError(t, err)

	_, err = f.Create(context.Background(), "client", config.ClientConfig{})
	require.Error(t, err)

	var cerr *ConstructionError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, ModeAllOperations, cerr.Mode)

	var lerr *loader.ModuleLoadFailureError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, "broken", lerr.Name)
	assert.ErrorIs(t, err, boom)
}

func TestCreate_ModuleTimeoutIsConstructionError(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	catalog := modules.NewCatalog(map[string]modules.Constructor{
		"slow": func(context.Context, modules.Binding) (*modules.Module, error) {
			<-release
			return &modules.Module{ID: "slow"}, nil
		},
	})
	registry, err := toolsets.NewRegistry([]toolsets.Definition{{Name: "slow", Description: "slow", Modules: []string{"slow"}}})
	require.NoError(t, err)

	f, err := New(Options{Catalog: catalog, Registry: registry, Fetcher: &recordingFetcher{}, LoadTimeout: 30 * time.Millisecond})
	require.NoError(t, err)

	_, err = f.Create(context.Background(), "client", config.ClientConfig{ToolSets: "slow"})
	var terr *loader.ModuleLoadTimeoutError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "slow", terr.Name)

	var cerr *ConstructionError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, ModeStaticSubset, cerr.Mode)
}

func TestInstance_CloseStopsManager(t *testing.T) {
	f := newTestFactory(t, &recordingFetcher{}, nil)
	inst, err := f.Create(context.Background(), "client", config.ClientConfig{DynamicToolDiscovery: config.ParseBoolFlag("true")})
	require.NoError(t, err)

	inst.Close()
	res := inst.Manager.EnableToolset(context.Background(), "news")
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, dynamic.ErrManagerClosed)
}
