package project

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFPageCount returns the number of pages in the PDF at path.
func PDFPageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer f.Close()

	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed

	n, err := api.PageCount(f, conf)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count for %s: %w", path, err)
	}
	return n, nil
}

// PageIssue reports a polyline or detection on a page the drawing lacks.
type PageIssue struct {
	Kind    string `json:"kind"`
	Section string `json:"section,omitempty"`
	Index   int    `json:"index"`
	Page    int    `json:"page"`
}

func (i PageIssue) String() string {
	if i.Kind == "polyline" {
		return fmt.Sprintf("section %q polyline %d is on page %d", i.Section, i.Index, i.Page)
	}
	return fmt.Sprintf("detection %d is on page %d", i.Index, i.Page)
}

// ValidatePages lists polylines and detections referencing pages beyond
// pageCount. Page 0 means unknown and is never reported.
func (p *Project) ValidatePages(pageCount int) []PageIssue {
	var issues []PageIssue
	for _, s := range p.Sections {
		for i, pl := range s.Polylines {
			if pl.Page > pageCount {
				issues = append(issues, PageIssue{Kind: "polyline", Section: s.Name, Index: i, Page: pl.Page})
			}
		}
	}
	for i, d := range p.Detections {
		if d.Page > pageCount {
			issues = append(issues, PageIssue{Kind: "detection", Index: i, Page: d.Page})
		}
	}
	return issues
}
