package dynamic

import (
	"sync/atomic"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Host is the protocol server a manager registers operations on.
type Host interface {
	RegisterOperations(tools ...server.ServerTool)
	UnregisterOperations(names ...string)
	NotifyToolsChanged()
	ListChangedEnabled() bool
}

// MCPHost adapts an mcp-go server to Host.
//
// mcp-go already emits notifications/tools/list_changed from AddTools and
// DeleteTools when the list-changed capability is declared. MCPHost remembers
// that and NotifyToolsChanged only sends when no mutation since the previous
// call has notified, so each transition yields exactly one notification.
type MCPHost struct {
	srv         *server.MCPServer
	listChanged bool
	notified    atomic.Bool
}

// NewMCPHost wraps srv. listChanged must match the capability srv was built with.
func NewMCPHost(srv *server.MCPServer, listChanged bool) *MCPHost {
	return &MCPHost{srv: srv, listChanged: listChanged}
}

// Server returns the wrapped server.
func (h *MCPHost) Server() *server.MCPServer {
	return h.srv
}

func (h *MCPHost) RegisterOperations(tools ...server.ServerTool) {
	if len(tools) == 0 {
		return
	}
	h.srv.AddTools(tools...)
	if h.listChanged {
		h.notified.Store(true)
	}
}

func (h *MCPHost) UnregisterOperations(names ...string) {
	if len(names) == 0 {
		return
	}
	existed := false
	for _, name := range names {
		if h.srv.GetTool(name) != nil {
			existed = true
			break
		}
	}
	h.srv.DeleteTools(names...)
	if existed && h.listChanged {
		h.notified.Store(true)
	}
}

func (h *MCPHost) NotifyToolsChanged() {
	if !h.listChanged {
		return
	}
	if h.notified.Swap(false) {
		return
	}
	h.srv.SendNotificationToAllClients(mcp.MethodNotificationToolsListChanged, nil)
}

func (h *MCPHost) ListChangedEnabled() bool {
	return h.listChanged
}
