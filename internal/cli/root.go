// Package cli implements the explorer command: a terminal front end that
// pages through result tables with the same controller the UI uses.
package cli

import (
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/maxviazov/query-explorer/internal/config"
	applog "github.com/maxviazov/query-explorer/internal/logger"
)

// Defaults used when no config file is given.
const (
	DefaultBaseURL = "http://localhost:8080"
	DefaultTimeout = 15 * time.Second
)

type globalFlags struct {
	configPath string
	baseURL    string
	timeout    time.Duration
	verbose    bool
	noColor    bool

	cfg *config.Config
}

// NewRootCmd creates the root Cobra command for the explorer CLI.
func NewRootCmd(ver string) *cobra.Command {
	g := &globalFlags{}
	cmd := &cobra.Command{
		Use:           "explorer",
		Short:         "Page through query result tables",
		Long:          "explorer fetches server-rendered pages of stored result tables and prints them with their navigation controls.",
		Version:       ver,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&g.configPath, "config", "", "config file; its client section supplies base url and timeout")
	cmd.PersistentFlags().StringVar(&g.baseURL, "base-url", "", "backend base URL (default "+DefaultBaseURL+")")
	cmd.PersistentFlags().DurationVar(&g.timeout, "timeout", 0, "request timeout (default 15s)")
	cmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log requests to stderr")
	cmd.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "disable colored log output")

	cmd.AddCommand(newPageCmd(g), newWindowCmd())
	return cmd
}

// load reads the config file once; nil without --config.
func (g *globalFlags) load() (*config.Config, error) {
	if g.configPath == "" || g.cfg != nil {
		return g.cfg, nil
	}
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	g.cfg = cfg
	return cfg, nil
}

// clientConfig resolves base url and timeout: flags win over the config file,
// the config file over defaults.
func (g *globalFlags) clientConfig() (config.ClientConfig, error) {
	out := config.ClientConfig{BaseURL: DefaultBaseURL, Timeout: DefaultTimeout}
	cfg, err := g.load()
	if err != nil {
		return out, err
	}
	if cfg != nil {
		if cfg.Client.BaseURL != "" {
			out.BaseURL = cfg.Client.BaseURL
		}
		if cfg.Client.Timeout > 0 {
			out.Timeout = cfg.Client.Timeout
		}
	}
	if g.baseURL != "" {
		out.BaseURL = g.baseURL
	}
	if g.timeout > 0 {
		out.Timeout = g.timeout
	}
	return out, nil
}

// logger builds the CLI logger from the config file's logger section, forced
// onto the console at errOut so stdout carries only results. Without -v only
// warnings and errors are shown.
func (g *globalFlags) logger(errOut io.Writer) (zerolog.Logger, error) {
	var lc applog.LoggerConfig
	cfg, err := g.load()
	if err != nil {
		return zerolog.Nop(), err
	}
	if cfg != nil {
		lc = cfg.Logger
	}
	lc.Format = "console"
	lc.OutputTarget = "stderr"
	lc.Writer = errOut
	lc.NoColor = lc.NoColor || g.noColor
	lc.ServiceName = "explorer"
	lc.Level = "warn"
	if g.verbose {
		lc.Level = "debug"
	}
	if lc.StacktraceMinLevel == "" {
		lc.StacktraceMinLevel = "fatal"
	}
	return applog.New(&lc)
}
