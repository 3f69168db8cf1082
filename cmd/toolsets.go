package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"fmpmcp/internal/modules"
	"fmpmcp/internal/toolsets"
	pkgstrings "fmpmcp/pkg/strings"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

// toolsetDescriptionWidth keeps the table readable in an 80-column terminal.
const toolsetDescriptionWidth = 48

// newToolsetsCmd creates the command that lists the toolsets clients can
// select with TOOL_SETS or enable at runtime.
func newToolsetsCmd() *cobra.Command {
	var output string
	var wide bool

	cmd := &cobra.Command{
		Use:   "toolsets",
		Short: "List the available toolsets and the modules they contain",
		Long: `Lists every toolset a client can pass in TOOL_SETS or enable with the
enable_toolset operation, together with the operation modules it registers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := toolsets.Default()
			if err := registry.CheckModules(modules.Default().Has); err != nil {
				return err
			}
			switch output {
			case outputTable:
				renderToolsetTable(cmd.OutOrStdout(), registry, wide)
				return nil
			case outputJSON:
				return renderToolsetJSON(cmd.OutOrStdout(), registry)
			default:
				return fmt.Errorf("unsupported output format %q (use %s or %s)", output, outputTable, outputJSON)
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "Output format: table or json")
	cmd.Flags().BoolVar(&wide, "wide", false, "Show full descriptions and decision guidance")
	return cmd
}

func renderToolsetTable(w io.Writer, registry *toolsets.Registry, wide bool) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)

	header := table.Row{
		text.FgHiCyan.Sprint("NAME"),
		text.FgHiCyan.Sprint("MODULES"),
		text.FgHiCyan.Sprint("DESCRIPTION"),
	}
	if wide {
		header = append(header, text.FgHiCyan.Sprint("USE WHEN"))
	}
	t.AppendHeader(header)

	for _, name := range registry.Names() {
		def, _ := registry.Get(name)
		desc := def.Description
		if !wide {
			desc = pkgstrings.TruncateDescription(desc, toolsetDescriptionWidth)
		}
		row := table.Row{name, strings.Join(def.Modules, ", "), desc}
		if wide {
			row = append(row, def.DecisionCriteria)
		}
		t.AppendRow(row)
	}
	t.AppendFooter(table.Row{text.FgHiBlue.Sprintf("%d toolsets", len(registry.Names()))})
	t.Render()
}

func renderToolsetJSON(w io.Writer, registry *toolsets.Registry) error {
	defs := make([]toolsets.Definition, 0, len(registry.Names()))
	for _, name := range registry.Names() {
		def, _ := registry.Get(name)
		defs = append(defs, def)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(defs)
}

func init() {
	rootCmd.AddCommand(newToolsetsCmd())
}
