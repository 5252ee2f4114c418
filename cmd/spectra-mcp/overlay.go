package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/spectra-mcp/internal/imaging"
)

var (
	overlayPage   int
	overlayOut    string
	overlayFade   float64
	overlayLabels bool
)

var overlayCmd = &cobra.Command{
	Use:   "overlay [project.json]",
	Short: "Draw sections and detections over a rendered page image",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.PageDir == "" {
			return fmt.Errorf("no page image directory configured (set --page-dir or SPECTRA_PAGE_DIR)")
		}
		p, _, err := loadProject(args)
		if err != nil {
			return err
		}
		src, err := imaging.NewPageSource(cfg.PageDir, cfg.PagePattern, nil)
		if err != nil {
			return err
		}
		img, err := src.Page(overlayPage)
		if err != nil {
			return err
		}

		opts := imaging.DefaultOverlayOptions()
		opts.Fade = overlayFade
		opts.Labels = overlayLabels
		out := imaging.RenderOverlay(img, overlayPage, p.Sections, p.Detections, opts)

		path := overlayOut
		if path == "" {
			path = fmt.Sprintf("overlay-page-%d.png", overlayPage)
		}
		if err := imaging.SaveOverlay(path, out); err != nil {
			return err
		}
		logger.Info("overlay written", "page", overlayPage, "path", path)
		return nil
	},
}

func init() {
	d := imaging.DefaultOverlayOptions()
	overlayCmd.Flags().IntVar(&overlayPage, "page", 1, "1-indexed page number")
	overlayCmd.Flags().StringVar(&overlayOut, "out", "", "output PNG (default: overlay-page-N.png)")
	overlayCmd.Flags().Float64Var(&overlayFade, "fade", d.Fade, "page lightening before drawing, 0 to 1")
	overlayCmd.Flags().BoolVar(&overlayLabels, "labels", d.Labels, "draw detection index labels")
}
