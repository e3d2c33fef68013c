package cli

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nathanaelcunningham/typst-pdftemplater/internal/server"
)

// serveCommand runs the template storage service until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var origins []string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the template storage service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			if cmd.Flags().Changed("addr") {
				c.cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("allowed-origin") {
				c.cfg.Server.AllowedOrigins = origins
			}

			repo, err := c.newRepository(ctx)
			if err != nil {
				return err
			}
			logger.Info("Template store ready", "backend", c.cfg.Server.Store)

			srv := server.New(server.Config{
				Addr:           c.cfg.Server.Addr,
				AllowedOrigins: c.cfg.Server.AllowedOrigins,
				Repository:     repo,
				Logger:         logger,
			})

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return srv.Run(gctx) })
			g.Go(func() error {
				<-gctx.Done()
				return repo.Close(context.WithoutCancel(gctx))
			})
			if err := g.Wait(); err != nil {
				return err
			}
			return ctx.Err()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :1234)")
	cmd.Flags().StringSliceVar(&origins, "allowed-origin", nil, "CORS allowed origin (repeatable)")
	return cmd
}
