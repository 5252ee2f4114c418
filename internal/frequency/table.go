package frequency

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrUnknownCategory is wrapped by LookupError when a category cannot be
// resolved or has no rows in the table.
var ErrUnknownCategory = errors.New("no frequency rows for category")

// LookupError names the category that could not be resolved.
type LookupError struct {
	Category string
	Section  string
	Err      error
}

func (e *LookupError) Error() string {
	if e.Section != "" {
		return fmt.Sprintf("section %q: %v: %q", e.Section, e.Err, e.Category)
	}
	return fmt.Sprintf("%v: %q", e.Err, e.Category)
}

func (e *LookupError) Unwrap() error { return e.Err }

// Buckets holds leak frequencies per hole-size class.
type Buckets struct {
	Tiny   float64 `json:"tiny" yaml:"tiny"`
	Small  float64 `json:"small" yaml:"small"`
	Medium float64 `json:"medium" yaml:"medium"`
	Large  float64 `json:"large" yaml:"large"`
	FBR    float64 `json:"fbr" yaml:"fbr"`
}

// Sum returns the total of all buckets.
func (b Buckets) Sum() float64 {
	return b.Tiny + b.Small + b.Medium + b.Large + b.FBR
}

// Scale returns b with every bucket multiplied by f.
func (b Buckets) Scale(f float64) Buckets {
	return Buckets{Tiny: b.Tiny * f, Small: b.Small * f, Medium: b.Medium * f, Large: b.Large * f, FBR: b.FBR * f}
}

// Add returns the bucket-wise sum of b and o.
func (b Buckets) Add(o Buckets) Buckets {
	return Buckets{
		Tiny:   b.Tiny + o.Tiny,
		Small:  b.Small + o.Small,
		Medium: b.Medium + o.Medium,
		Large:  b.Large + o.Large,
		FBR:    b.FBR + o.FBR,
	}
}

// Row is one line of the frequency table: a category, a line-size bracket in
// mm and the leak frequencies for that bracket.
type Row struct {
	Category string  `json:"category"`
	MinSize  float64 `json:"min_size_mm"`
	MaxSize  float64 `json:"max_size_mm"`
	Buckets
}

// Contains reports whether size lies within the inclusive bracket.
func (r Row) Contains(size float64) bool {
	return r.MinSize <= size && size <= r.MaxSize
}

// Table is a static leak-frequency lookup keyed by category and line size.
type Table struct {
	rows []Row
}

// NewTable builds a table from rows kept in the given order.
func NewTable(rows []Row) *Table {
	t := &Table{rows: make([]Row, len(rows))}
	copy(t.rows, rows)
	return t
}

// Rows returns a copy of the table rows in file order.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// Lookup returns the row for category whose [min,max] bracket contains
// lineSize, taking the first match in file order. When no bracket contains the
// size the row with the largest max size is returned, clamping oversize lines
// to the top bracket. A category with no rows is an error.
func (t *Table) Lookup(category string, lineSize float64) (Row, error) {
	var top *Row
	for i := range t.rows {
		r := &t.rows[i]
		if r.Category != category {
			continue
		}
		if r.Contains(lineSize) {
			return *r, nil
		}
		if top == nil || r.MaxSize > top.MaxSize {
			top = r
		}
	}
	if top == nil {
		return Row{}, &LookupError{Category: category, Err: ErrUnknownCategory}
	}
	return *top, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Column headers accepted for each field. Matching is done after trimming
// whitespace and a UTF-8 BOM; the category column is case-insensitive.
var (
	colCategory = "category"
	colMin      = "min_size_mm"
	colMax      = "max_size_mm"
	bucketCols  = [5][]string{
		{"Tiny (1-3 mm)", "Tiny (1-3mm)"},
		{"Small (3-10mm)", "Small (3-10 mm)"},
		{"Medium (10-50 mm)", "Medium (10-50mm)"},
		{"Large (50-150 mm)", "Large (50-150mm)"},
		{"FBR (greater than 150 mm)", "FBR (>150 mm)"},
	}
)

// LoadTable reads a frequency table CSV from path.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open frequency table: %w", err)
	}
	defer f.Close()

	t, err := ParseTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ParseTable reads a frequency table CSV. The header must contain Category,
// min_size_mm, max_size_mm and the five hole-size columns; extra columns are
// ignored.
func ParseTable(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read frequency table header: %w", err)
	}
	idx, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	var rows []Row
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if isBlank(rec) {
			continue
		}
		row, err := parseRow(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return &Table{rows: rows}, nil
}

type columns struct {
	category, min, max int
	buckets            [5]int
}

func normalizeHeader(h string) string {
	return strings.TrimSpace(strings.ReplaceAll(h, "\ufeff", ""))
}

func headerIndex(header []string) (columns, error) {
	c := columns{category: -1, min: -1, max: -1, buckets: [5]int{-1, -1, -1, -1, -1}}
	for i, h := range header {
		h = normalizeHeader(h)
		switch {
		case strings.EqualFold(h, colCategory):
			c.category = i
		case h == colMin:
			c.min = i
		case h == colMax:
			c.max = i
		default:
			for b, names := range bucketCols {
				for _, name := range names {
					if h == name {
						c.buckets[b] = i
					}
				}
			}
		}
	}

	var missing []string
	if c.category < 0 {
		missing = append(missing, "Category")
	}
	if c.min < 0 {
		missing = append(missing, colMin)
	}
	if c.max < 0 {
		missing = append(missing, colMax)
	}
	for b, i := range c.buckets {
		if i < 0 {
			missing = append(missing, bucketCols[b][0])
		}
	}
	if len(missing) > 0 {
		return c, fmt.Errorf("frequency table is missing columns: %s", strings.Join(missing, ", "))
	}
	return c, nil
}

func parseRow(rec []string, c columns) (Row, error) {
	field := func(i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}
	num := func(i int, name string) (float64, error) {
		v, err := strconv.ParseFloat(field(i), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s %q: %w", name, field(i), err)
		}
		return v, nil
	}

	row := Row{Category: field(c.category)}
	var err error
	if row.MinSize, err = num(c.min, colMin); err != nil {
		return Row{}, err
	}
	if row.MaxSize, err = num(c.max, colMax); err != nil {
		return Row{}, err
	}
	vals := [5]*float64{&row.Tiny, &row.Small, &row.Medium, &row.Large, &row.FBR}
	for b, dst := range vals {
		if *dst, err = num(c.buckets[b], bucketCols[b][0]); err != nil {
			return Row{}, err
		}
	}
	return row, nil
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
