package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/pkg/logger"
)

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and session event streams",
		Long:  "Serve the REST API and websockets. Gestures arrive as classifier records over HTTP.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			rt, err := newRuntime(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer rt.Close(context.WithoutCancel(ctx))

			srv := server.New(server.Config{
				StaticDir:    staticDir(opts.cfg),
				Store:        rt.store,
				Sessions:     rt.sessions,
				DefaultMode:  opts.cfg.DefaultMode,
				Templates:    rt.templates,
				TrackingMode: func() string { return "manual" },
			})

			rt.log.Info(ctx, "starting server", logger.String("addr", opts.cfg.Addr))
			return srv.ListenAndServe(ctx, opts.cfg.Addr)
		},
	}
}
