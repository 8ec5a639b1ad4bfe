// Package cli implements the vtable command line.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/HamStudy/vtable/internal/core"
	"github.com/HamStudy/vtable/internal/logging"
	"github.com/HamStudy/vtable/internal/source"
)

// isTerminal checks if the given file is a terminal
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// env is what every command shares once the root command ran its setup
type env struct {
	configFile string
	viper      *viper.Viper
	config     *core.Config
	log        *logging.Result
	logger     zerolog.Logger

	// stdout reports whether output goes to a terminal
	stdout func() bool
	// kube overrides how cluster clients are built
	kube func(source.KubeOptions) (*kubeClients, error)
}

// NewRootCmd creates the root command with all subcommands
func NewRootCmd(ver string) *cobra.Command {
	return newRootCmd(ver, &env{
		stdout: func() bool { return isTerminal(os.Stdout) },
	})
}

func newRootCmd(ver string, e *env) *cobra.Command {
	e.logger = zerolog.Nop()

	cmd := &cobra.Command{
		Use:   "vtable",
		Short: "Virtualized tables for the terminal and the browser",
		Long: `vtable renders large record sets as scrollable tables, materializing only the
rows around the visible ones.

Records come from a YAML table definition, a data file, generated test data or
a Kubernetes cluster.`,
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return e.close()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&e.configFile, "config", "", "config file (default ~/.config/vtable/config.yaml, can also use VTABLE_CONFIG_FILE)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")

	cmd.AddCommand(
		newViewCmd(e),
		newRenderCmd(e),
		newKubeCmd(e),
		newServeCmd(e),
		newVersionCmd(ver),
	)
	return cmd
}

const rootCmdExample = `  # Browse a table definition in the terminal
  vtable view servers.yaml

  # Reload whenever the data file changes
  vtable view servers.yaml --watch

  # Try the table with 100000 generated rows
  vtable view --generate 100000

  # Print the rows visible at scroll offset 120 in a 20 line viewport
  vtable render servers.yaml --offset 120 --height 20

  # Browse pods across all namespaces
  vtable kube pods -A

  # Serve the table as a web page
  vtable serve servers.yaml --addr :8080`

// setup reads settings and builds the stderr logger
func (e *env) setup(cmd *cobra.Command) error {
	v, err := core.NewViper(e.configFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	for key, flag := range map[string]string{
		"log.level":  "log-level",
		"log.format": "log-format",
	} {
		if f := flags.Lookup(flag); f != nil && f.Changed {
			v.Set(key, f.Value.String())
		}
	}

	config, err := core.LoadConfig(v)
	if err != nil {
		return err
	}
	e.viper = v
	e.config = config

	return e.openLog(cmd.ErrOrStderr(), "")
}

// logToFile moves logging to the configured log file, for commands that take over the terminal
func (e *env) logToFile() error {
	return e.openLog(nil, e.config.Log.File)
}

func (e *env) openLog(stderr io.Writer, file string) error {
	result, err := logging.New(logging.Config{
		Level:  e.config.Log.Level,
		Format: e.config.Log.Format,
		File:   file,
		Stderr: stderr,
	})
	if err != nil {
		return err
	}
	if err := e.close(); err != nil {
		return err
	}
	e.log = result
	e.logger = result.Logger
	return nil
}

func (e *env) close() error {
	if e.log == nil {
		return nil
	}
	if err := e.log.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}
