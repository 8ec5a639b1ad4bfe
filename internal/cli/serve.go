package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/HamStudy/vtable/internal/components/performance"
	"github.com/HamStudy/vtable/internal/core"
	"github.com/HamStudy/vtable/internal/logging"
	"github.com/HamStudy/vtable/internal/server"
	"github.com/HamStudy/vtable/internal/source"
)

func newServeCmd(e *env) *cobra.Command {
	var (
		flags tableFlags
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve [definition.yaml]",
		Short: "Serve a table as a web page",
		Long: `Serves the table as HTML. Each browser tab gets its own window over the
records and receives only the rows around its scroll position over a websocket.`,
		Example: `  vtable serve servers.yaml --addr :8080 --watch
  vtable serve --generate 100000`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := e.loadTable(args, &flags)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = e.config.Server.Addr
			}

			var watcher source.Watcher
			if watch {
				w, ok := spec.src.(source.Watcher)
				if !ok {
					return fmt.Errorf("%s cannot be watched", spec.src.Describe())
				}
				watcher = w
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return e.serve(ctx, spec, addr, watcher)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, localhost:8080)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload when the data file changes")
	return cmd
}

func (e *env) serve(ctx context.Context, spec *tableSpec, addr string, watcher source.Watcher) error {
	state := core.NewState(e.config, spec.src.Describe())
	srv := server.New(spec.src, spec.columns, spec.rowKey, state, server.Options{
		Addr:     addr,
		RowCount: spec.rowCount,
		Logger:   logging.Component(e.logger, "server"),
		Monitor:  performance.NewMonitor(),
	})
	if err := srv.Reload(ctx); err != nil {
		return err
	}

	if err := srv.Run(ctx, watcher); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
