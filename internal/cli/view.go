package cli

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/HamStudy/vtable/internal/components/style"
	"github.com/HamStudy/vtable/internal/core"
	"github.com/HamStudy/vtable/internal/logging"
	"github.com/HamStudy/vtable/internal/source"
	"github.com/HamStudy/vtable/internal/ui"
)

const defaultPrintWidth = 100

func newViewCmd(e *env) *cobra.Command {
	var (
		flags tableFlags
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "view [definition.yaml]",
		Short: "Browse a table in the terminal",
		Long: `Opens an interactive, scrollable table. Only the rows around the visible
ones are rendered, so very large record sets scroll smoothly.

When stdout is not a terminal a single frame is printed instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := e.loadTable(args, &flags)
			if err != nil {
				return err
			}
			if !e.stdout() {
				return e.printFrame(cmd.Context(), cmd.OutOrStdout(), spec, defaultPrintWidth, spec.rowCount+1, 0)
			}

			var watcher source.Watcher
			if watch {
				w, ok := spec.src.(source.Watcher)
				if !ok {
					return fmt.Errorf("%s cannot be watched", spec.src.Describe())
				}
				watcher = w
			}
			return e.runInteractive(cmd.Context(), spec, watcher)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload when the data file changes")
	return cmd
}

// runInteractive runs the terminal app until the user quits.
// A watcher's change notifications become reloads.
func (e *env) runInteractive(ctx context.Context, spec *tableSpec, watcher source.Watcher) error {
	theme, err := resolveTheme(spec.theme)
	if err != nil {
		return err
	}
	if err := e.logToFile(); err != nil {
		return err
	}

	state := core.NewState(e.config, spec.src.Describe())
	app := ui.NewApp(ctx, spec.src, spec.newModel(), state, logging.Component(e.logger, "ui"))
	app.SetTheme(theme)

	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if watcher != nil {
		go func() {
			err := watcher.Watch(watchCtx, func() { program.Send(ui.ReloadMsg{}) })
			if err != nil {
				e.logger.Error().Err(err).Str("source", watcher.Describe()).Msg("watch stopped")
			}
		}()
	}

	e.logger.Info().Str("source", spec.src.Describe()).Int("rowCount", spec.rowCount).Msg("starting")
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run: %w", err)
	}
	return nil
}

// printFrame loads the source once and writes the rows visible at offset in a height line table
func (e *env) printFrame(ctx context.Context, w io.Writer, spec *tableSpec, width, height int, offset float64) error {
	theme, err := resolveTheme(spec.theme)
	if err != nil {
		return err
	}
	records, err := spec.src.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", spec.src.Describe(), err)
	}

	styles := style.NewManager()
	styles.SetTheme(theme)

	tbl := spec.newModel()
	tbl.SetStyles(styles)
	tbl.SetSize(width, height)
	tbl.SetRecords(records)
	tbl.ScrollTo(offset)

	e.logger.Debug().Interface("viewport", tbl.Viewport().Stats()).Msg("rendered frame")
	_, err = fmt.Fprintln(w, tbl.View())
	return err
}
