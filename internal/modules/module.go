package modules

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"github.com/mark3labs/mcp-go/server"
)

// Fetcher performs one authenticated GET against the data API.
type Fetcher interface {
	Get(ctx context.Context, credential, path string, params url.Values) (any, error)
}

// Binding carries what operations need at call time.
type Binding struct {
	// Credential returns the credential to use for a call. It is consulted on
	// every call so that default-credential reloads take effect.
	Credential func() string
	Fetcher    Fetcher
}

func (b Binding) credential() string {
	if b.Credential == nil {
		return ""
	}
	return b.Credential()
}

// Module is a constructed unit of operations, ready to register on a server.
type Module struct {
	ID    string
	Tools []server.ServerTool
}

// ToolNames lists the operation names the module registers.
func (m *Module) ToolNames() []string {
	names := make([]string, 0, len(m.Tools))
	for _, t := range m.Tools {
		names = append(names, t.Tool.Name)
	}
	return names
}

// Constructor builds a module for a binding.
type Constructor func(ctx context.Context, b Binding) (*Module, error)

// UnknownModuleError is returned when a module id is not in the catalog.
type UnknownModuleError struct {
	ID string
}

func (e *UnknownModuleError) Error() string {
	return fmt.Sprintf("unknown module %q", e.ID)
}

// Catalog maps module ids to constructors.
type Catalog struct {
	constructors map[string]Constructor
	ids          []string
}

// NewCatalog builds a catalog from explicit constructors.
func NewCatalog(constructors map[string]Constructor) *Catalog {
	c := &Catalog{constructors: make(map[string]Constructor, len(constructors))}
	for id, ctor := range constructors {
		c.constructors[id] = ctor
		c.ids = append(c.ids, id)
	}
	sort.Strings(c.ids)
	return c
}

// IDs returns every module id in sorted order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.ids))
	copy(out, c.ids)
	return out
}

// Has reports whether id is a known module.
func (c *Catalog) Has(id string) bool {
	_, ok := c.constructors[id]
	return ok
}

// Build constructs the module id for b.
func (c *Catalog) Build(ctx context.Context, id string, b Binding) (*Module, error) {
	ctor, ok := c.constructors[id]
	if !ok {
		return nil, &UnknownModuleError{ID: id}
	}
	m, err := ctor(ctx, b)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("constructor for module %q returned no module", id)
	}
	return m, nil
}
