package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/spectra-mcp/internal/project"
	"github.com/ironsheep/spectra-mcp/internal/report"
)

var assignDryRun bool

type assignOutput struct {
	Project    string          `json:"project" yaml:"project"`
	Saved      bool            `json:"saved" yaml:"saved"`
	Changed    int             `json:"changed" yaml:"changed"`
	Summary    project.Summary `json:"summary" yaml:"summary"`
	PageIssues []string        `json:"page_issues,omitempty" yaml:"page_issues,omitempty"`
}

var assignCmd = &cobra.Command{
	Use:   "assign [project.json]",
	Short: "Assign every detection to a section and save the project",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat()
		if err != nil {
			return err
		}
		p, path, err := loadProject(args)
		if err != nil {
			return err
		}
		// Loading keeps stored sections; this command recomputes them from geometry
		_, changed := p.Recompute()
		out := assignOutput{Project: path, Changed: changed, Summary: p.Summary()}

		pdf := cfg.PDF
		if pdf == "" {
			pdf = p.PDFPath
		}
		if pdf != "" {
			if n, err := project.PDFPageCount(pdf); err != nil {
				logger.Warn("cannot validate page numbers", "pdf", pdf, "error", err)
			} else {
				for _, issue := range p.ValidatePages(n) {
					out.PageIssues = append(out.PageIssues, issue.String())
				}
			}
		}

		if !assignDryRun {
			if err := p.Save(path); err != nil {
				return err
			}
			out.Saved = true
		}
		return report.Write(os.Stdout, format, out)
	},
}

func init() {
	assignCmd.Flags().BoolVar(&assignDryRun, "dry-run", false, "report assignments without saving")
}
