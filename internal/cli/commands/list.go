package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/buildcheck/internal/cli/output"
	"github.com/leapstack-labs/buildcheck/internal/manifest"
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List models found in the manifest",
		Long: `List every model node in the manifest with its materialization,
declared file path, and column count.

Use --output to override the format: auto, text, json`,
		Example: `  # List all models
  buildcheck list -m target/manifest.json

  # List models as JSON
  buildcheck list --output json

  # List only models touched by a change set
  buildcheck list --restrict-to-files changed_files.txt`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd)
		},
	}

	return cmd
}

func runList(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)

	m, err := loadManifest(cmdCtx.Cfg)
	if err != nil {
		return err
	}

	if cmdCtx.Renderer.EffectiveMode() == output.ModeJSON {
		return listJSON(m, cmdCtx.Renderer)
	}
	return listTable(m, cmdCtx.Renderer)
}

// listTable renders the models as a styled table.
func listTable(m *manifest.Manifest, r *output.Renderer) error {
	ids := m.ModelIDs()
	r.Header(1, fmt.Sprintf("Models (%d total)", len(ids)))

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Node ID", "Name", "Materialization", "Path", "Columns"})

	for _, id := range ids {
		node := m.Model(id)
		if node == nil {
			continue
		}
		t.AppendRow(table.Row{id, node.Name, node.Materialization(), node.OriginalFilePath, len(node.Columns)})
	}

	t.Render()
	return nil
}

// modelListing is one row of the list command's JSON output.
type modelListing struct {
	NodeID           string   `json:"node_id"`
	Name             string   `json:"name"`
	Materialization  string   `json:"materialization"`
	OriginalFilePath string   `json:"original_file_path"`
	Columns          []string `json:"columns"`
}

func listJSON(m *manifest.Manifest, r *output.Renderer) error {
	ids := m.ModelIDs()
	listings := make([]modelListing, 0, len(ids))

	for _, id := range ids {
		node := m.Model(id)
		if node == nil {
			continue
		}
		listings = append(listings, modelListing{
			NodeID:           id,
			Name:             node.Name,
			Materialization:  node.Materialization(),
			OriginalFilePath: node.OriginalFilePath,
			Columns:          m.ModelColumns(id),
		})
	}

	return r.JSON(listings)
}
