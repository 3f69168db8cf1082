// Package dynamic implements per-client runtime toolset activation.
//
// A Manager belongs to exactly one cached client entry and one protocol
// server. It tracks which toolsets are active and which modules are therefore
// registered, keeping registered modules equal to the union of the modules of
// the active toolsets at every commit point.
package dynamic

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"fmpmcp/internal/loader"
	"fmpmcp/internal/modules"
	"fmpmcp/internal/toolsets"
	"fmpmcp/pkg/logging"
)

// ErrManagerClosed is returned for transitions on a manager whose cache entry
// has been evicted.
var ErrManagerClosed = errors.New("toolset manager is closed")

// ModuleLoader acquires a module by id, normally through a bounded load.
type ModuleLoader func(ctx context.Context, id string) (*modules.Module, error)

// TransitionRecorder observes the outcome of enable/disable calls.
type TransitionRecorder interface {
	RecordToolsetTransition(ctx context.Context, op, outcome string)
}

// Transition outcomes reported to the recorder.
const (
	OutcomeEnabled       = "enabled"
	OutcomeDisabled      = "disabled"
	OutcomeNoop          = "noop"
	OutcomeInvalid       = "invalid"
	OutcomeLoadTimeout   = "load_timeout"
	OutcomeLoadFailure   = "load_failure"
	OutcomeManagerClosed = "closed"
)

// Result is the structured outcome of a transition.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Toolset string `json:"toolset,omitempty"`
	Err     error  `json:"-"`
}

// Status is a point-in-time snapshot of a manager.
type Status struct {
	AvailableToolsets []string `json:"availableToolsets"`
	ActiveToolsets    []string `json:"activeToolsets"`
	RegisteredModules []string `json:"registeredModules"`
}

// Options configures a Manager.
type Options struct {
	Registry *toolsets.Registry
	Host     Host
	Load     ModuleLoader
	Recorder TransitionRecorder
	// ClientID only labels log lines.
	ClientID string
}

// Manager is the per-client toolset state machine.
type Manager struct {
	registry *toolsets.Registry
	host     Host
	load     ModuleLoader
	recorder TransitionRecorder
	clientID string

	// mu serializes transitions and guards active and registered.
	mu         sync.Mutex
	active     map[string]struct{}
	registered map[string]*modules.Module

	closed atomic.Bool
}

// NewManager creates a manager with no active toolsets.
func NewManager(opts Options) (*Manager, error) {
	if opts.Registry == nil || opts.Host == nil || opts.Load == nil {
		return nil, errors.New("dynamic manager requires a registry, a host and a module loader")
	}
	return &Manager{
		registry:   opts.Registry,
		host:       opts.Host,
		load:       opts.Load,
		recorder:   opts.Recorder,
		clientID:   opts.ClientID,
		active:     make(map[string]struct{}),
		registered: make(map[string]*modules.Module),
	}, nil
}

// EnableToolset activates name, loading and registering any of its modules
// not already registered. Either every missing module loads and the toolset
// becomes active, or nothing changes.
func (m *Manager) EnableToolset(ctx context.Context, name string) Result {
	if err := m.registry.Validate(name); err != nil {
		return m.fail(ctx, "enable", name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed.Load() {
		return m.fail(ctx, "enable", name, ErrManagerClosed)
	}
	if _, ok := m.active[name]; ok {
		m.record(ctx, "enable", OutcomeNoop)
		return Result{Success: true, Toolset: name, Message: fmt.Sprintf("Toolset %q is already active", name)}
	}

	def, _ := m.registry.Get(name)
	var missing []string
	for _, id := range def.Modules {
		if _, ok := m.registered[id]; !ok {
			missing = append(missing, id)
		}
	}

	loaded := make([]*modules.Module, len(missing))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range missing {
		g.Go(func() error {
			mod, err := m.load(gctx, id)
			if err != nil {
				return err
			}
			loaded[i] = mod
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logging.Warn("Toolsets", "Enabling %s for client %s aborted: %v", name, logging.TruncateIdentifier(m.clientID), err)
		return m.fail(ctx, "enable", name, err)
	}
	if m.closed.Load() {
		return m.fail(ctx, "enable", name, ErrManagerClosed)
	}

	var tools []server.ServerTool
	for _, mod := range loaded {
		tools = append(tools, mod.Tools...)
	}
	m.host.RegisterOperations(tools...)
	for i, mod := range loaded {
		m.registered[missing[i]] = mod
	}
	m.active[name] = struct{}{}
	m.host.NotifyToolsChanged()

	logging.Info("Toolsets", "Enabled %s for client %s (%d new module(s), %d operation(s))",
		name, logging.TruncateIdentifier(m.clientID), len(loaded), len(tools))
	m.record(ctx, "enable", OutcomeEnabled)
	return Result{
		Success: true,
		Toolset: name,
		Message: fmt.Sprintf("Toolset %q enabled: %d module(s) loaded, %d operation(s) registered", name, len(loaded), len(tools)),
	}
}

// DisableToolset deactivates name and unregisters the modules no other active
// toolset still needs.
func (m *Manager) DisableToolset(ctx context.Context, name string) Result {
	if err := m.registry.Validate(name); err != nil {
		return m.fail(ctx, "disable", name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed.Load() {
		return m.fail(ctx, "disable", name, ErrManagerClosed)
	}
	if _, ok := m.active[name]; !ok {
		m.record(ctx, "disable", OutcomeNoop)
		return Result{Success: true, Toolset: name, Message: fmt.Sprintf("Toolset %q is not active", name)}
	}

	others := make([]string, 0, len(m.active))
	for n := range m.active {
		if n != name {
			others = append(others, n)
		}
	}
	stillNeeded := make(map[string]struct{})
	for _, id := range m.registry.ModulesFor(others...) {
		stillNeeded[id] = struct{}{}
	}

	def, _ := m.registry.Get(name)
	var dropped []string
	var toolNames []string
	for _, id := range def.Modules {
		if _, keep := stillNeeded[id]; keep {
			continue
		}
		mod, ok := m.registered[id]
		if !ok {
			continue
		}
		dropped = append(dropped, id)
		toolNames = append(toolNames, mod.ToolNames()...)
	}

	m.host.UnregisterOperations(toolNames...)
	for _, id := range dropped {
		delete(m.registered, id)
	}
	delete(m.active, name)
	m.host.NotifyToolsChanged()

	logging.Info("Toolsets", "Disabled %s for client %s (%d module(s) unregistered)",
		name, logging.TruncateIdentifier(m.clientID), len(dropped))
	m.record(ctx, "disable", OutcomeDisabled)
	return Result{
		Success: true,
		Toolset: name,
		Message: fmt.Sprintf("Toolset %q disabled: %d module(s), %d operation(s) unregistered", name, len(dropped), len(toolNames)),
	}
}

// Status returns a snapshot of the manager's state.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Status{
		AvailableToolsets: m.registry.Names(),
		ActiveToolsets:    make([]string, 0, len(m.active)),
		RegisteredModules: make([]string, 0, len(m.registered)),
	}
	for n := range m.active {
		st.ActiveToolsets = append(st.ActiveToolsets, n)
	}
	for id := range m.registered {
		st.RegisteredModules = append(st.RegisteredModules, id)
	}
	sort.Strings(st.ActiveToolsets)
	sort.Strings(st.RegisteredModules)
	return st
}

// Close marks the manager dead. Later transitions fail with ErrManagerClosed
// and an in-flight enable discards its loaded modules.
func (m *Manager) Close() {
	m.closed.Store(true)
}

func (m *Manager) fail(ctx context.Context, op, name string, err error) Result {
	m.record(ctx, op, outcomeFor(err))
	return Result{Success: false, Toolset: name, Message: err.Error(), Err: err}
}

func (m *Manager) record(ctx context.Context, op, outcome string) {
	if m.recorder != nil {
		m.recorder.RecordToolsetTransition(ctx, op, outcome)
	}
}

func outcomeFor(err error) string {
	var verr *toolsets.ValidationError
	var terr *loader.ModuleLoadTimeoutError
	switch {
	case errors.As(err, &verr):
		return OutcomeInvalid
	case errors.As(err, &terr):
		return OutcomeLoadTimeout
	case errors.Is(err, ErrManagerClosed):
		return OutcomeManagerClosed
	default:
		return OutcomeLoadFailure
	}
}
