package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/preview"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/typst"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/variables"
)

type compileOpts struct {
	output   string
	vars     map[string]string
	examples bool
	noCache  bool
}

// compileCommand sends a layout's markup to the compile service and writes
// the resulting PDF.
func (c *CLI) compileCommand() *cobra.Command {
	opts := compileOpts{examples: true}

	cmd := &cobra.Command{
		Use:   "compile [content.json]",
		Short: "Compile a template layout to PDF",
		Long: `Compile a template layout to PDF through the compile service.

Variable values come from --var path=value. Variables without a value use
their example value unless --examples=false.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCompile(cmd, args, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output PDF (default <input>.pdf)")
	cmd.Flags().StringToStringVar(&opts.vars, "var", nil, "variable value as path=value (repeatable)")
	cmd.Flags().BoolVar(&opts.examples, "examples", opts.examples, "fill unset variables with their example values")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the preview cache")
	return cmd
}

func (c *CLI) runCompile(cmd *cobra.Command, args []string, opts *compileOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	s, source, err := c.openSession(ctx, args)
	if err != nil {
		return friendly(err)
	}

	values, err := compileValues(s.Variables(), opts.vars, opts.examples)
	if err != nil {
		return err
	}

	api, err := c.newClient()
	if err != nil {
		return friendly(err)
	}
	pc, err := c.newPreviewCache(opts.noCache)
	if err != nil {
		return err
	}
	defer pc.Close()

	pv := preview.New(api.Compiler(), preview.Options{
		Cache:  pc,
		TTL:    c.cfg.Cache.TTL.Std(),
		Logger: logger,
	})

	prog := newProgress(logger)
	spin := newSpinner(ctx, cmd.ErrOrStderr(), "Compiling "+source+"...")
	spin.Start()
	res, err := pv.Preview(ctx, s.Markup(), values)
	spin.Stop()
	if err != nil {
		if spin.Cancelled() {
			printWarning(c.out, "Compile cancelled")
			return err
		}
		printError(c.out, "Compile failed")
		return friendly(err)
	}

	out := opts.output
	if out == "" {
		out = defaultPDFName(source)
	}
	if err := c.writeOutput(out, res.Document); err != nil {
		return err
	}
	prog.done("Compiled " + source)

	doc := s.Document()
	printSuccess(c.out, "Compiled %s", source)
	printFile(c.out, out)
	printStats(c.out, countNodes(doc), len(typst.Pages(doc)), res.Cached)
	return nil
}

// compileValues builds the path to value map sent to the compiler. Flag keys
// are variable paths, with or without a leading dot.
func compileValues(vars []variables.Variable, flags map[string]string, examples bool) (map[string]string, error) {
	var values []variables.Value
	if examples {
		values = variables.ExampleValues(vars)
	}
	out := variables.BuildMap(vars, values)

	known := make(map[string]bool, len(vars))
	for _, v := range vars {
		known[variables.NormalizePath(v.Path)] = true
	}
	for k, v := range flags {
		path := variables.NormalizePath(k)
		if !known[path] {
			return nil, fmt.Errorf("unknown variable %q (have %s)", k, strings.Join(variables.Paths(vars), ", "))
		}
		out[path] = v
	}
	return out, nil
}

func defaultPDFName(source string) string {
	if source == "-" || source == "snapshot" {
		return appName + ".pdf"
	}
	return strings.TrimSuffix(filepath.Base(source), filepath.Ext(source)) + ".pdf"
}
