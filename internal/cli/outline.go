package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/render/outline"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

type outlineOpts struct {
	output   string
	format   string
	detailed bool
}

// outlineCommand draws the component tree of a layout.
func (c *CLI) outlineCommand() *cobra.Command {
	opts := outlineOpts{format: formatDOT}

	cmd := &cobra.Command{
		Use:   "outline [content.json]",
		Short: "Draw a layout's component tree as a Graphviz diagram",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != formatDOT && opts.format != formatSVG {
				return fmt.Errorf("invalid format %q: must be %s or %s", opts.format, formatDOT, formatSVG)
			}
			ctx := cmd.Context()
			s, _, err := c.openSession(ctx, args)
			if err != nil {
				return friendly(err)
			}

			data := []byte(outline.ToDOT(s.Document(), outline.Options{Detailed: opts.detailed}))
			if opts.format == formatSVG {
				if data, err = outline.RenderSVG(ctx, string(data)); err != nil {
					return err
				}
			}
			if err := c.writeOutput(opts.output, data); err != nil {
				return err
			}
			if opts.output != "" && opts.output != "-" {
				printSuccess(c.out, "Outlined %s", plural(countNodes(s.Document()), "component"))
				printFile(c.out, opts.output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot (default), svg")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "summarize component properties")
	return cmd
}
