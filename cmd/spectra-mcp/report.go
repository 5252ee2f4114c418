package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/spectra-mcp/internal/frequency"
	"github.com/ironsheep/spectra-mcp/internal/report"
)

var reportSection string

var reportCmd = &cobra.Command{
	Use:   "report [project.json]",
	Short: "Print per-section leak frequencies",
	Long: `Print per-section leak frequencies for a project.

Examples:
  spectra-mcp report plant.json --table frequencies.csv
  spectra-mcp report plant.json --section "Feed" -o json
  spectra-mcp report -o csv > results.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat()
		if err != nil {
			return err
		}
		table, err := loadTable()
		if err != nil {
			return err
		}
		p, _, err := loadProject(args)
		if err != nil {
			return err
		}
		results, err := p.Results(table, nil)
		if err != nil {
			return err
		}
		return report.WriteResults(os.Stdout, format, frequency.Filter(results, reportSection))
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportSection, "section", frequency.AllSections, "only report this section")
}
