package main

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/spectra-mcp/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the MCP protocol on stdin/stdout",
	Long: `Serve the MCP protocol on stdin/stdout.

The configured project is loaded at startup when it exists and is the default
target of project_save. Logs go to stderr.

Examples:
  spectra-mcp serve -p plant.json --table frequencies.csv
  SPECTRA_LOG_LEVEL=debug spectra-mcp`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	logger.Debug("starting MCP server", "version", Version, "commit", GitCommit, "built", BuildTime)
	srv := server.New(server.Options{
		ProjectPath: cfg.Project,
		TablePath:   cfg.FrequencyTable,
		PageDir:     cfg.PageDir,
		PagePattern: cfg.PagePattern,
		Logger:      logger,
		Version:     Version,
	})
	return srv.Run(cmd.Context())
}
