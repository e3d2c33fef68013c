package cli

import (
	"github.com/spf13/cobra"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/layout"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/typst"
)

type generateOpts struct {
	output string
	stats  bool
}

// generateCommand prints the Typst markup for a layout.
func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate [content.json]",
		Short: "Generate Typst markup from a template layout",
		Long: `Generate Typst markup from a template layout.

The layout is read from the given file ("-" for stdin) or, without an
argument, from the saved editor snapshot. Placeholders such as {{.CustomerName}}
are kept as-is for the compile service to fill in.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			s, source, err := c.openSession(ctx, args)
			if err != nil {
				return friendly(err)
			}
			for _, path := range s.Dangling() {
				logger.Warn("placeholder has no variable", "path", path)
			}

			markup := s.Markup()
			if err := c.writeOutput(opts.output, []byte(markup)); err != nil {
				return err
			}
			if opts.output != "" && opts.output != "-" {
				printSuccess(c.out, "Generated markup from %s", source)
				printFile(c.out, opts.output)
			}
			if opts.stats {
				doc := s.Document()
				printStats(c.out, countNodes(doc), len(typst.Pages(doc)), false)
			}
			logger.Debug("generated markup", "source", source, "bytes", len(markup), "version", s.Version())
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "print component and page counts")
	return cmd
}

// countNodes counts every component including container children.
func countNodes(doc *layout.Document) int {
	n := 0
	doc.Walk(func(*layout.Node) bool { n++; return true })
	return n
}
