package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lanonasis/lanonasis-maas-sub005/pkg/config"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/errx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/logx"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", errx.From(err).UserMessage())
		os.Exit(1)
	}
}

// app carries state shared by the subcommands of one invocation.
type app struct {
	cfg       *config.Config
	container *Container
	output    string
	logLevel  string
	out       io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:           "lanonasis",
		Short:         "LanOnasis memory service client",
		Long:          "Create, search and manage memories on the LanOnasis memory service, directly or in plain language.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.container != nil {
				a.container.Cleanup()
			}
		},
		RunE: a.runREPL,
	}

	root.PersistentFlags().StringVarP(&a.output, "output", "o", "text", "Output format: text or json")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (default: $LOG_LEVEL or warn)")

	root.AddCommand(
		a.replCmd(),
		a.createCmd(),
		a.getCmd(),
		a.listCmd(),
		a.searchCmd(),
		a.updateCmd(),
		a.deleteCmd(),
		a.topicsCmd(),
		a.statsCmd(),
		a.exportCmd(),
		a.serveCmd(),
		a.mcpCmd(),
		a.statusCmd(),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	logx.SetLevel(logx.ParseLevel(level))
	logx.SetOutput(os.Stderr)

	container, err := NewContainer(cfg)
	if err != nil {
		return err
	}
	a.container = container
	return nil
}

// print writes v as indented JSON in json mode and calls text otherwise.
func (a *app) print(v any, text func(w io.Writer)) error {
	if a.output == "json" {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(a.out, string(b))
		return err
	}
	text(a.out)
	return nil
}

var errNotAuthenticated = errors.New("not authenticated: set LANONASIS_TOKEN or LANONASIS_API_KEY")

func (a *app) requireCredentials() error {
	if !a.cfg.API.HasCredentials() {
		return errx.Wrap(errNotAuthenticated, "no credentials configured", errx.CodeAuth)
	}
	return nil
}
