package dynamic

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fmpmcp/internal/loader"
	"fmpmcp/internal/modules"
	"fmpmcp/internal/toolsets"
)

type fakeHost struct {
	mu       sync.Mutex
	tools    map[string]bool
	notifies int
}

func newFakeHost() *fakeHost { return &fakeHost{tools: map[string]bool{}} }

func (h *fakeHost) RegisterOperations(tools ...server.ServerTool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range tools {
		h.tools[t.Tool.Name] = true
	}
}

func (h *fakeHost) UnregisterOperations(names ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, n := range names {
		delete(h.tools, n)
	}
}

func (h *fakeHost) NotifyToolsChanged() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notifies++
}

func (h *fakeHost) ListChangedEnabled() bool { return true }

func (h *fakeHost) toolNames() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for n := range h.tools {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (h *fakeHost) notifyCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.notifies
}

type recorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recorder) RecordToolsetTransition(_ context.Context, op, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, op+":"+outcome)
}

func fakeModule(id string) *modules.Module {
	return &modules.Module{ID: id, Tools: []server.ServerTool{{
		Tool:    mcp.NewTool(id + "_op"),
		Handler: func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) { return mcp.NewToolResultText(id), nil },
	}}}
}

type testSetup struct {
	mgr      *Manager
	host     *fakeHost
	rec      *recorder
	loads    *atomic.Int32
	registry *toolsets.Registry
}

// newTestManager builds x={m1}, y={m1,m2}, z={m1,m3}, bad={m1,m4}; m3 times
// out and m4 fails to construct.
func newTestManager(t *testing.T) testSetup {
	t.Helper()
	reg, err := toolsets.NewRegistry([]toolsets.Definition{
		{Name: "x", Description: "X", Modules: []string{"m1"}},
		{Name: "y", Description: "Y", Modules: []string{"m1", "m2"}},
		{Name: "z", Description: "Z", Modules: []string{"m1", "m3"}},
		{Name: "bad", Description: "Bad", Modules: []string{"m1", "m4"}},
	})
	require.NoError(t, err)

	host := newFakeHost()
	rec := &recorder{}
	loads := &atomic.Int32{}
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	load := func(ctx context.Context, id string) (*modules.Module, error) {
		return loader.Load(ctx, id, 50*time.Millisecond, func(context.Context) (*modules.Module, error) {
			loads.Add(1)
			switch id {
			case "m3":
				<-block
			case "m4":
				return nil, errors.New("constructor failed")
			}
			return fakeModule(id), nil
		})
	}

	mgr, err := NewManager(Options{Registry: reg, Host: host, Load: load, Recorder: rec, ClientID: "client-under-test"})
	require.NoError(t, err)
	return testSetup{mgr: mgr, host: host, rec: rec, loads: loads, registry: reg}
}

func TestNewManager_RequiresCollaborators(t *testing.T) {
	_, err := NewManager(Options{})
	assert.Error(t, err)
}

func TestEnableToolset_RegistersModulesAndNotifies(t *testing.T) {
	s := newTestManager(t)

	res := s.mgr.EnableToolset(context.Background(), "y")
	require.True(t, res.Success, res.Message)
	assert.Equal(t, []string{"m1_op", "m2_op"}, s.host.toolNames())
	assert.Equal(t, 1, s.host.notifyCount())

	st := s.mgr.Status()
	assert.Equal(t, []string{"y"}, st.ActiveToolsets)
	assert.Equal(t, []string{"m1", "m2"}, st.RegisteredModules)
	assert.Equal(t, []string{"bad", "x", "y", "z"}, st.AvailableToolsets)
}

func TestEnableToolset_Idempotent(t *testing.T) {
	s := newTestManager(t)
	ctx := context.Background()

	first := s.mgr.EnableToolset(ctx, "x")
	before := s.mgr.Status()
	second := s.mgr.EnableToolset(ctx, "x")
	after := s.mgr.Status()

	assert.True(t, first.Success)
	assert.True(t, second.Success)
	assert.Contains(t, second.Message, "already active")
	assert.Equal(t, before, after)
	assert.Equal(t, int32(1), s.loads.Load())
	assert.Equal(t, 1, s.host.notifyCount())
}

func TestEnableToolset_UnknownName(t *testing.T) {
	s := newTestManager(t)

	res := s.mgr.EnableToolset(context.Background(), "not-a-real-name")
	assert.False(t, res.Success)

	var verr *toolsets.ValidationError
	require.ErrorAs(t, res.Err, &verr)
	assert.ElementsMatch(t, []string{"x", "y", "z", "bad"}, verr.Valid)
	assert.Contains(t, res.Message, "x, y, z")
	assert.Empty(t, s.mgr.Status().ActiveToolsets)
	assert.Empty(t, s.host.toolNames())
	assert.Equal(t, 0, s.host.notifyCount())
}

func TestDisableToolset_NeverActivatedIsNoop(t *testing.T) {
	s := newTestManager(t)

	res := s.mgr.DisableToolset(context.Background(), "x")
	assert.True(t, res.Success)
	assert.Contains(t, res.Message, "not active")
	assert.Empty(t, s.mgr.Status().ActiveToolsets)
	assert.Equal(t, 0, s.host.notifyCount())
}

func TestDisableToolset_UnknownName(t *testing.T) {
	s := newTestManager(t)
	res := s.mgr.DisableToolset(context.Background(), "nope")
	assert.False(t, res.Success)
	var verr *toolsets.ValidationError
	assert.ErrorAs(t, res.Err, &verr)
}

func TestDisableToolset_SharedModuleStaysRegistered(t *testing.T) {
	s := newTestManager(t)
	ctx := context.Background()

	require.True(t, s.mgr.EnableToolset(ctx, "x").Success)
	require.True(t, s.mgr.EnableToolset(ctx, "y").Success)

	res := s.mgr.DisableToolset(ctx, "x")
	require.True(t, res.Success)

	st := s.mgr.Status()
	assert.Equal(t, []string{"y"}, st.ActiveToolsets)
	assert.Equal(t, []string{"m1", "m2"}, st.RegisteredModules)
	assert.Equal(t, []string{"m1_op", "m2_op"}, s.host.toolNames())
	assert.Equal(t, 3, s.host.notifyCount())

	require.True(t, s.mgr.DisableToolset(ctx, "y").Success)
	assert.Empty(t, s.mgr.Status().RegisteredModules)
	assert.Empty(t, s.host.toolNames())
}

func TestEnableToolset_TimeoutIsAtomic(t *testing.T) {
	s := newTestManager(t)

	res := s.mgr.EnableToolset(context.Background(), "z")
	assert.False(t, res.Success)

	var terr *loader.ModuleLoadTimeoutError
	require.ErrorAs(t, res.Err, &terr)
	assert.Equal(t, "m3", terr.Name)

	st := s.mgr.Status()
	assert.Empty(t, st.ActiveToolsets)
	assert.NotContains(t, st.RegisteredModules, "m1")
	assert.NotContains(t, st.RegisteredModules, "m3")
	assert.Empty(t, s.host.toolNames())
	assert.Equal(t, 0, s.host.notifyCount())
}

func TestEnableToolset_FailureIsRecoverable(t *testing.T) {
	s := newTestManager(t)
	ctx := context.Background()

	res := s.mgr.EnableToolset(ctx, "bad")
	assert.False(t, res.Success)
	var ferr *loader.ModuleLoadFailureError
	require.ErrorAs(t, res.Err, &ferr)

	ok := s.mgr.EnableToolset(ctx, "x")
	assert.True(t, ok.Success)
	assert.Equal(t, []string{"m1"}, s.mgr.Status().RegisteredModules)
}

func TestEnableToolset_OnlyLoadsMissingModules(t *testing.T) {
	s := newTestManager(t)
	ctx := context.Background()

	require.True(t, s.mgr.EnableToolset(ctx, "x").Success)
	require.True(t, s.mgr.EnableToolset(ctx, "y").Success)
	assert.Equal(t, int32(2), s.loads.Load())
}

func TestManager_ConcurrentTransitionsKeepInvariant(t *testing.T) {
	s := newTestManager(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				s.mgr.EnableToolset(ctx, []string{"x", "y"}[i%4/2])
			} else {
				s.mgr.DisableToolset(ctx, []string{"x", "y"}[i%4/2])
			}
		}(i)
	}
	wg.Wait()

	st := s.mgr.Status()
	want := s.registry.ModulesFor(st.ActiveToolsets...)
	sort.Strings(want)
	if want == nil {
		want = []string{}
	}
	assert.Equal(t, want, st.RegisteredModules)
}

func TestManager_ClosedRejectsTransitions(t *testing.T) {
	s := newTestManager(t)
	s.mgr.Close()

	res := s.mgr.EnableToolset(context.Background(), "x")
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, ErrManagerClosed)
	assert.Empty(t, s.host.toolNames())
}

func TestManager_RecordsOutcomes(t *testing.T) {
	s := newTestManager(t)
	ctx := context.Background()

	s.mgr.EnableToolset(ctx, "x")
	s.mgr.EnableToolset(ctx, "x")
	s.mgr.EnableToolset(ctx, "nope")
	s.mgr.DisableToolset(ctx, "x")

	assert.Equal(t, []string{"enable:enabled", "enable:noop", "enable:invalid", "disable:disabled"}, s.rec.outcomes)
}
