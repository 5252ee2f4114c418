package project

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ironsheep/spectra-mcp/internal/assign"
	"github.com/ironsheep/spectra-mcp/internal/categories"
	"github.com/ironsheep/spectra-mcp/internal/frequency"
	"github.com/ironsheep/spectra-mcp/internal/model"
)

// Default detector thresholds stored with new projects.
const (
	DefaultConfidence = 0.5
	DefaultOverlap    = 0.3
)

var (
	// ErrSectionNotFound is returned when a section name does not exist.
	ErrSectionNotFound = errors.New("section not found")

	// ErrDuplicateSection is returned when a name is already taken.
	ErrDuplicateSection = errors.New("section name already exists")

	// ErrInvalidBox is returned for boxes below the minimum size.
	ErrInvalidBox = errors.New("invalid bounding box")

	// ErrDetectionNotFound is returned for an out-of-range detection index.
	ErrDetectionNotFound = errors.New("detection not found")

	// ErrEmptyClipboard is returned by Paste when nothing was cut or copied.
	ErrEmptyClipboard = errors.New("clipboard is empty")
)

// Project is one editing session.
type Project struct {
	// PDFPath is the drawing the project annotates.
	PDFPath string

	// Confidence and Overlap are the thresholds used for the last detector run.
	Confidence float64
	Overlap    float64

	// Sections in creation order. The last section wins ties in assignment.
	Sections []*model.Section

	// Detections in insertion order.
	Detections []*model.Detection

	engine assign.Engine
	cache  *assign.Cache
	logger *slog.Logger

	// nextColor is the palette index of the next new section.
	nextColor int

	clipboard    *model.Detection
	clipboardCut bool
}

// New returns an empty project. A nil logger discards log output.
func New(logger *slog.Logger) *Project {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Project{
		Confidence: DefaultConfidence,
		Overlap:    DefaultOverlap,
		cache:      assign.NewCache(),
		logger:     logger,
	}
}

// Reset clears every section, detection and the clipboard, keeping the logger.
func (p *Project) Reset() {
	p.PDFPath = ""
	p.Confidence = DefaultConfidence
	p.Overlap = DefaultOverlap
	p.Sections = nil
	p.Detections = nil
	p.nextColor = 0
	p.clipboard = nil
	p.clipboardCut = false
	p.cache.Invalidate()
}

// Cache exposes the assignment cache for inspection.
func (p *Project) Cache() *assign.Cache {
	return p.cache
}

// Reassign runs a cache-checked assignment of every detection.
func (p *Project) Reassign() assign.Stats {
	stats := p.cache.AssignAll(p.engine, p.Sections, p.Detections)
	p.logger.Debug("assigned detections",
		"detections", stats.Detections,
		"served_from_cache", stats.Served,
		"fallback", stats.Fallback)
	return stats
}

// Recompute drops the cache and assigns every detection from geometry,
// discarding stored and hand-set sections. It returns the sweep stats and the
// number of detections whose section changed.
func (p *Project) Recompute() (assign.Stats, int) {
	before := make([]string, len(p.Detections))
	for i, d := range p.Detections {
		before[i] = d.Section
	}
	p.cache.Invalidate()
	stats := p.Reassign()
	changed := 0
	for i, d := range p.Detections {
		if d.Section != before[i] {
			changed++
		}
	}
	return stats, changed
}

// invalidate drops the cache and reassigns. Called after every geometric
// mutation.
func (p *Project) invalidate() {
	p.cache.Invalidate()
	p.Reassign()
}

// Results aggregates leak frequencies per section. A nil mapper uses the
// built-in object to frequency category mapping.
func (p *Project) Results(table *frequency.Table, mapper frequency.CategoryMapper) ([]frequency.Result, error) {
	if mapper == nil {
		mapper = categories.FrequencyCategory
	}
	results, err := frequency.Compute(p.Sections, p.Detections, table, mapper)
	if err != nil {
		return nil, fmt.Errorf("failed to compute frequencies: %w", err)
	}
	return results, nil
}

// Summary is a short description of a project's contents.
type Summary struct {
	PDFPath    string         `json:"pdf_path" yaml:"pdf_path"`
	Sections   int            `json:"sections" yaml:"sections"`
	Polylines  int            `json:"polylines" yaml:"polylines"`
	Detections int            `json:"detections" yaml:"detections"`
	Unassigned int            `json:"unassigned" yaml:"unassigned"`
	BySection  map[string]int `json:"by_section" yaml:"by_section"`
}

// Summary counts sections, polylines and detections per section.
func (p *Project) Summary() Summary {
	s := Summary{
		PDFPath:    p.PDFPath,
		Sections:   len(p.Sections),
		Detections: len(p.Detections),
		BySection:  make(map[string]int),
	}
	for _, sec := range p.Sections {
		s.Polylines += len(sec.Polylines)
	}
	for _, d := range p.Detections {
		s.BySection[d.Section]++
		if d.Section == model.Unassigned {
			s.Unassigned++
		}
	}
	return s
}
