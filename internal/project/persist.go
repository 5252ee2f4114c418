package project

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ironsheep/spectra-mcp/internal/model"
)

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func projectSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("project.json", bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("failed to load project schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("project.json")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("failed to compile project schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

// document is the on-disk project layout.
type document struct {
	PDFPath    string             `json:"current_pdf_path"`
	Confidence float64            `json:"confidence"`
	Overlap    float64            `json:"overlap"`
	Sections   []*model.Section   `json:"sections"`
	Detections []*model.Detection `json:"detections"`
}

// Marshal encodes the project as indented JSON.
func (p *Project) Marshal() ([]byte, error) {
	doc := document{
		PDFPath:    p.PDFPath,
		Confidence: p.Confidence,
		Overlap:    p.Overlap,
		Sections:   p.Sections,
		Detections: p.Detections,
	}
	if doc.Sections == nil {
		doc.Sections = []*model.Section{}
	}
	if doc.Detections == nil {
		doc.Detections = []*model.Detection{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode project: %w", err)
	}
	return data, nil
}

// Unmarshal validates data against the project schema and replaces the
// project's contents with it. On error the project is left unchanged.
//
// Detections keep the section they were saved with; no geometry runs. Their
// display colors are rebuilt from the named sections and the assignment cache
// is seeded with the stored result, so the next Reassign without an edit
// leaves every detection as loaded.
func (p *Project) Unmarshal(data []byte) error {
	sch, err := projectSchema()
	if err != nil {
		return err
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid project JSON: %w", err)
	}
	if err := sch.Validate(raw); err != nil {
		return fmt.Errorf("project does not match schema: %w", err)
	}

	doc := document{Confidence: DefaultConfidence, Overlap: DefaultOverlap}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to decode project: %w", err)
	}

	seen := make(map[string]bool, len(doc.Sections))
	for i, s := range doc.Sections {
		if seen[s.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateSection, s.Name)
		}
		seen[s.Name] = true
		if !hasSectionColor(raw, i) {
			s.Color = model.PaletteColor(i)
		}
		s.InvalidateBounds()
	}
	for _, d := range doc.Detections {
		if err := d.BBox.Valid(model.MinBoxSize); err != nil {
			return fmt.Errorf("%w: %s on page %d: %v", ErrInvalidBox, d.Name, d.Page, err)
		}
	}

	p.PDFPath = doc.PDFPath
	p.Confidence = doc.Confidence
	p.Overlap = doc.Overlap
	p.Sections = doc.Sections
	p.Detections = doc.Detections
	p.nextColor = len(p.Sections)
	p.clipboard = nil
	p.clipboardCut = false
	p.restoreColors()
	p.cache.Seed(p.Sections, p.Detections)
	return nil
}

// restoreColors sets each detection's derived color from its named section,
// or nil when the name matches no section.
func (p *Project) restoreColors() {
	colors := make(map[string]model.Color, len(p.Sections))
	for _, s := range p.Sections {
		colors[s.Name] = s.Color
	}
	for _, d := range p.Detections {
		if c, ok := colors[d.Section]; ok && d.Section != model.Unassigned {
			d.Color = &c
		} else {
			d.Color = nil
		}
	}
}

// hasSectionColor reports whether section i of a decoded document carries a
// color. Older files have none.
func hasSectionColor(raw any, i int) bool {
	root, _ := raw.(map[string]any)
	sections, _ := root["sections"].([]any)
	if i >= len(sections) {
		return false
	}
	sec, _ := sections[i].(map[string]any)
	_, ok := sec["color"]
	return ok
}

// Save writes the project to path, creating parent directories.
func (p *Project) Save(path string) error {
	data, err := p.Marshal()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create project directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write project: %w", err)
	}
	p.logger.Info("saved project", "path", path,
		"sections", len(p.Sections), "detections", len(p.Detections))
	return nil
}

// Load replaces the project's contents with the file at path.
func (p *Project) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read project: %w", err)
	}
	if err := p.Unmarshal(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	p.logger.Info("loaded project", "path", path,
		"sections", len(p.Sections), "detections", len(p.Detections))
	return nil
}
