package dynamic

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"fmpmcp/internal/toolsets"
)

// Meta-operation names.
const (
	EnableToolName  = "enable_toolset"
	DisableToolName = "disable_toolset"
	StatusToolName  = "get_toolset_status"
)

const toolsetArg = "name"

var enableDescription = template.Must(template.New("enable").Funcs(sprig.TxtFuncMap()).Parse(
	`Enable a toolset so its operations become available in this session. The tool list is refreshed after a successful call.
Available toolsets:
{{- range .Toolsets }}
- {{ .Name }}: {{ .Description | trunc 160 }}{{ with .DecisionCriteria }}. {{ . }}{{ end }}
{{- end }}`))

var disableDescription = template.Must(template.New("disable").Funcs(sprig.TxtFuncMap()).Parse(
	`Disable an active toolset and remove its operations from this session. Operations still needed by another active toolset stay registered.
Toolsets: {{ .Names | join ", " }}`))

type descriptionData struct {
	Toolsets []toolsets.Definition
	Names    []string
}

func renderDescription(tmpl *template.Template, reg *toolsets.Registry) (string, error) {
	defs := reg.Definitions()
	data := descriptionData{Names: reg.Names()}
	for _, n := range data.Names {
		data.Toolsets = append(data.Toolsets, defs[n])
	}
	sort.Slice(data.Toolsets, func(i, j int) bool { return data.Toolsets[i].Name < data.Toolsets[j].Name })

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s description: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// MetaTools returns the three operations that delegate to m.
func (m *Manager) MetaTools() ([]server.ServerTool, error) {
	enableDesc, err := renderDescription(enableDescription, m.registry)
	if err != nil {
		return nil, err
	}
	disableDesc, err := renderDescription(disableDescription, m.registry)
	if err != nil {
		return nil, err
	}
	names := m.registry.Names()

	enable := mcp.NewTool(EnableToolName,
		mcp.WithDescription(enableDesc),
		mcp.WithTitleAnnotation("Enable toolset"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
		mcp.WithString(toolsetArg, mcp.Required(), mcp.Description("Toolset to enable"), mcp.Enum(names...)),
	)
	disable := mcp.NewTool(DisableToolName,
		mcp.WithDescription(disableDesc),
		mcp.WithTitleAnnotation("Disable toolset"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
		mcp.WithString(toolsetArg, mcp.Required(), mcp.Description("Toolset to disable"), mcp.Enum(names...)),
	)
	status := mcp.NewTool(StatusToolName,
		mcp.WithDescription("Show available toolsets, the toolsets active in this session and the modules currently registered"),
		mcp.WithTitleAnnotation("Toolset status"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	return []server.ServerTool{
		{Tool: enable, Handler: m.transitionHandler(m.EnableToolset)},
		{Tool: disable, Handler: m.transitionHandler(m.DisableToolset)},
		{Tool: status, Handler: m.handleStatus},
	}, nil
}

func (m *Manager) transitionHandler(transition func(context.Context, string) Result) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString(toolsetArg)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		res := transition(ctx, name)
		out := mcp.NewToolResultStructured(res, res.Message)
		out.IsError = !res.Success
		return out, nil
	}
}

func (m *Manager) handleStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultStructuredOnly(m.Status()), nil
}
