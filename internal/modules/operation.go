package modules

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"fmpmcp/internal/fmp"
	"fmpmcp/pkg/logging"
)

type paramKind int

const (
	kindString paramKind = iota
	kindNumber
	kindBool
)

type param struct {
	name     string
	kind     paramKind
	desc     string
	required bool
	enum     []string
}

func str(name, desc string) param  { return param{name: name, kind: kindString, desc: desc} }
func num(name, desc string) param  { return param{name: name, kind: kindNumber, desc: desc} }
func flag(name, desc string) param { return param{name: name, kind: kindBool, desc: desc} }

func (p param) req() param {
	p.required = true
	return p
}

func (p param) oneOf(values ...string) param {
	p.enum = values
	return p
}

// Commonly repeated parameters.
var (
	symbolParam = str("symbol", "Ticker symbol, e.g. AAPL").req()
	limitParam  = num("limit", "Maximum number of records to return")
	pageParam   = num("page", "Page number, starting at 0")
	fromParam   = str("from", "Start date (YYYY-MM-DD)")
	toParam     = str("to", "End date (YYYY-MM-DD)")
	periodParam = str("period", "Reporting period").oneOf("annual", "quarter", "Q1", "Q2", "Q3", "Q4", "FY")
)

type operation struct {
	name        string
	title       string
	description string
	path        string
	params      []param
}

type definition struct {
	id         string
	operations []operation
}

// tool renders the operation as an mcp.Tool.
func (op operation) tool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(op.description),
		mcp.WithTitleAnnotation(op.title),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	}
	for _, p := range op.params {
		props := []mcp.PropertyOption{mcp.Description(p.desc)}
		if p.required {
			props = append(props, mcp.Required())
		}
		switch p.kind {
		case kindNumber:
			opts = append(opts, mcp.WithNumber(p.name, props...))
		case kindBool:
			opts = append(opts, mcp.WithBoolean(p.name, props...))
		default:
			if len(p.enum) > 0 {
				props = append(props, mcp.Enum(p.enum...))
			}
			opts = append(opts, mcp.WithString(p.name, props...))
		}
	}
	return mcp.NewTool(op.name, opts...)
}

// handler returns the tool handler issuing the operation's GET.
func (op operation) handler(b Binding) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		credential := b.credential()
		if credential == "" {
			return mcp.NewToolResultError(fmt.Sprintf("%s: %v", op.name, fmp.ErrMissingCredential)), nil
		}

		params, err := op.queryParams(req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := b.Fetcher.Get(ctx, credential, op.path, params)
		if err != nil {
			var apiErr *fmp.APIError
			if errors.As(err, &apiErr) {
				logging.Debug("FMP", "%s rejected with status %d", op.name, apiErr.StatusCode)
			}
			return mcp.NewToolResultErrorFromErr(fmt.Sprintf("%s failed", op.name), err), nil
		}
		return mcp.NewToolResultStructuredOnly(map[string]any{"data": data}), nil
	}
}

func (op operation) queryParams(args map[string]any) (url.Values, error) {
	values := url.Values{}
	var missing []string
	for _, p := range op.params {
		raw, ok := args[p.name]
		if !ok || raw == nil {
			if p.required {
				missing = append(missing, p.name)
			}
			continue
		}
		v, err := formatArg(p, raw)
		if err != nil {
			return nil, err
		}
		if v == "" && p.required {
			missing = append(missing, p.name)
			continue
		}
		values.Set(p.name, v)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required parameter(s): %s", strings.Join(missing, ", "))
	}
	return values, nil
}

func formatArg(p param, raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("parameter %q has unsupported type %T", p.name, raw)
	}
}

// constructor compiles a definition into a Constructor.
func (d definition) constructor() Constructor {
	return func(ctx context.Context, b Binding) (*Module, error) {
		if b.Fetcher == nil {
			return nil, fmt.Errorf("module %q: no data client bound", d.id)
		}
		m := &Module{ID: d.id, Tools: make([]server.ServerTool, 0, len(d.operations))}
		for _, op := range d.operations {
			m.Tools = append(m.Tools, server.ServerTool{Tool: op.tool(), Handler: op.handler(b)})
		}
		return m, nil
	}
}
