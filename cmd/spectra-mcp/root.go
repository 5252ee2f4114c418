package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/spectra-mcp/internal/config"
	"github.com/ironsheep/spectra-mcp/internal/frequency"
	"github.com/ironsheep/spectra-mcp/internal/logging"
	"github.com/ironsheep/spectra-mcp/internal/project"
	"github.com/ironsheep/spectra-mcp/internal/report"
)

var (
	cfgFile string

	cfgManager *config.Manager
	cfg        *config.Config
	logger     *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "spectra-mcp",
	Short: "Isolatable section assignment for P&ID leak frequency studies",
	Long: `spectra-mcp assigns detected P&ID objects to hand-drawn isolatable
sections and aggregates leak frequencies per section.

Run without a subcommand to serve the MCP protocol on stdin/stdout.

Every flag below can also be set in config.yaml (./ or ~/.spectra/) or with a
SPECTRA_<KEY> environment variable, e.g. SPECTRA_FREQUENCY_TABLE.`,
	SilenceUsage: true,
	RunE:         runServe,
}

// flagKeys maps persistent flags to config keys.
var flagKeys = map[string]string{
	"log-level":    "log_level",
	"table":        "frequency_table",
	"project":      "project",
	"pdf":          "pdf",
	"output":       "output",
	"page-dir":     "page_dir",
	"page-pattern": "page_pattern",
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.spectra/config.yaml)")
	pf.String("log-level", "", "log level: debug, info, warn or error")
	pf.String("table", "", "frequency table CSV")
	pf.StringP("project", "p", "", "project JSON file")
	pf.String("pdf", "", "source PDF, used to validate page numbers")
	pf.StringP("output", "o", "", "output format: yaml, json or csv")
	pf.String("page-dir", "", "directory of rendered page images")
	pf.String("page-pattern", "", "page image file name pattern (default: page-%d.png)")

	// Resolve config and the logger before any command runs
	rootCmd.PersistentPreRunE = setup

	rootCmd.AddCommand(serveCmd, assignCmd, reportCmd, overlayCmd, watchCmd, configCmd, versionCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	cm, err := config.NewManager(cfgFile)
	if err != nil {
		return err
	}
	for flag, key := range flagKeys {
		if err := cm.Viper().BindPFlag(key, cmd.Root().PersistentFlags().Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", flag, err)
		}
	}
	c, err := cm.Reload()
	if err != nil {
		return err
	}
	l, err := logging.New(c.LogLevel, os.Stderr)
	if err != nil {
		return err
	}
	cfgManager, cfg, logger = cm, c, l
	if f := cm.ConfigFile(); f != "" {
		logger.Debug("using config file", "path", f)
	}
	return nil
}

// projectPath returns the first positional argument or the configured project.
func projectPath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Project == "" {
		return "", fmt.Errorf("no project file given (pass a path, --project or SPECTRA_PROJECT)")
	}
	return cfg.Project, nil
}

// loadProject reads and assigns the project named by args or config.
func loadProject(args []string) (*project.Project, string, error) {
	path, err := projectPath(args)
	if err != nil {
		return nil, "", err
	}
	p := project.New(logger.With("component", "project"))
	if err := p.Load(path); err != nil {
		return nil, "", err
	}
	return p, path, nil
}

func loadTable() (*frequency.Table, error) {
	if cfg.FrequencyTable == "" {
		return nil, fmt.Errorf("no frequency table configured (set --table or SPECTRA_FREQUENCY_TABLE)")
	}
	return frequency.LoadTable(cfg.FrequencyTable)
}

func outputFormat() (report.Format, error) {
	return report.ParseFormat(cfg.Output)
}
