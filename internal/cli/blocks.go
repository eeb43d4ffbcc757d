package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/blockc/internal/catalog"
	"github.com/roach88/blockc/internal/profile"
)

// BlockInfo describes one block type available for a target.
type BlockInfo struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Shape    string `json:"shape"`
	Output   string `json:"output,omitempty"`
	Custom   bool   `json:"custom,omitempty"`
}

// BlocksOptions holds flags for the blocks command.
type BlocksOptions struct {
	*RootOptions
	Build BuildFlags
}

// NewBlocksCommand creates the blocks command.
func NewBlocksCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BlocksOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "blocks",
		Short: "List the block types available for a target",
		Long: `List the builtin block types and any custom types from the blocks
directory that have code for the selected target.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlocks(opts, cmd)
		},
	}
	addBuildFlags(cmd, &opts.Build)
	return cmd
}

func runBlocks(opts *BlocksOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	settings, err := resolveSettings(cmd, opts.RootOptions, &opts.Build)
	if err != nil {
		return fail(formatter, ExitCommandError, &LoadError{Code: ErrCodeManifest, Message: err.Error()})
	}
	p, err := profile.Lookup(settings.Target, settings.Device)
	if err != nil {
		return fail(formatter, ExitCommandError, &LoadError{Code: ErrCodeUnknownTarget, Message: err.Error()})
	}
	cat, err := loadCatalog(settings)
	if err != nil {
		return fail(formatter, ExitCommandError, err)
	}

	blocks := AvailableBlocks(cat, p.Target.ID)
	if formatter.JSON() {
		return formatter.Success(blocks)
	}

	fmt.Fprintf(formatter.Writer, "Blocks for %s/%s (%s):\n", p.Target.ID, p.Device, p.Name)
	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	for _, b := range blocks {
		kind := b.Shape
		if b.Output != "" {
			kind += " → " + b.Output
		}
		if b.Custom {
			kind += " (custom)"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", b.Category, b.ID, kind)
	}
	return tw.Flush()
}

// AvailableBlocks lists the catalog types a target can generate, in
// catalog order. Custom types need code for the target.
func AvailableBlocks(cat *catalog.Catalog, target string) []BlockInfo {
	out := []BlockInfo{}
	for _, t := range cat.Types() {
		custom := t.Kind == catalog.BlockCustom
		if custom {
			if _, ok := t.Code[target]; !ok {
				continue
			}
		}
		info := BlockInfo{ID: t.ID, Category: t.Category, Shape: string(t.Shape), Custom: custom}
		if t.Shape == catalog.ShapeValue {
			info.Output = string(t.Output)
		}
		out = append(out, info)
	}
	return out
}
