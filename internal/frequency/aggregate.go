package frequency

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/ironsheep/spectra-mcp/internal/model"
)

// ErrNoLineSize is returned when neither a detection nor its section carries
// a line size.
var ErrNoLineSize = errors.New("no line size")

// AllSections is the filter value that keeps every result row.
const AllSections = "All"

// CategoryMapper resolves a detection's object category to a frequency table
// category. The second result is false when there is no mapping.
type CategoryMapper func(objectType string) (string, bool)

// Result is the aggregated frequency row for one section.
type Result struct {
	Section string `json:"section" yaml:"section"`
	Buckets `yaml:",inline"`
	Total   float64 `json:"total" yaml:"total"`
}

// Compute returns one Result per section, in section order.
//
// Detections are grouped by their Section field; names that match no section
// contribute nothing. Each member detection uses its own LineSize when set,
// otherwise the section's, and contributes the looked-up row scaled by Count.
func Compute(sections []*model.Section, detections []*model.Detection, table *Table, mapper CategoryMapper) ([]Result, error) {
	groups := make(map[string][]*model.Detection)
	for _, d := range detections {
		groups[d.Section] = append(groups[d.Section], d)
	}

	results := make([]Result, 0, len(sections))
	for _, s := range sections {
		var sum Buckets
		for _, d := range groups[s.Name] {
			b, err := detectionBuckets(s, d, table, mapper)
			if err != nil {
				return nil, err
			}
			sum = sum.Add(b)
		}
		results = append(results, Result{Section: s.Name, Buckets: sum, Total: sum.Sum()})
	}
	return results, nil
}

func detectionBuckets(s *model.Section, d *model.Detection, table *Table, mapper CategoryMapper) (Buckets, error) {
	category, ok := mapper(d.Name)
	if !ok {
		return Buckets{}, &LookupError{Category: d.Name, Section: s.Name, Err: ErrUnknownCategory}
	}

	lineSize := s.LineSize
	if d.LineSize != nil {
		lineSize = d.LineSize
	}
	if lineSize == nil {
		return Buckets{}, fmt.Errorf("section %q, %s at (%d,%d) page %d: %w",
			s.Name, d.Name, d.BBox.X1, d.BBox.Y1, d.Page, ErrNoLineSize)
	}

	row, err := table.Lookup(category, *lineSize)
	if err != nil {
		var le *LookupError
		if errors.As(err, &le) {
			le.Section = s.Name
		}
		return Buckets{}, err
	}

	count := d.Count
	if count < 1 {
		count = 1
	}
	return row.Buckets.Scale(float64(count)), nil
}

// Filter keeps the rows for section, or every row for AllSections.
func Filter(results []Result, section string) []Result {
	if section == AllSections || section == "" {
		return results
	}
	out := make([]Result, 0, 1)
	for _, r := range results {
		if r.Section == section {
			out = append(out, r)
		}
	}
	return out
}

// CSVHeader is the column row written by WriteCSV.
var CSVHeader = []string{
	"Section",
	"Tiny (1-3 mm)",
	"Small (3-10 mm)",
	"Medium (10-50 mm)",
	"Large (50-150 mm)",
	"FBR (>150 mm)",
	"Total",
}

// WriteCSV exports results with full float precision.
func WriteCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range results {
		rec := []string{
			r.Section,
			formatFloat(r.Tiny),
			formatFloat(r.Small),
			formatFloat(r.Medium),
			formatFloat(r.Large),
			formatFloat(r.FBR),
			formatFloat(r.Total),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write row for %q: %w", r.Section, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
