package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ironsheep/spectra-mcp/internal/categories"
	"github.com/ironsheep/spectra-mcp/internal/frequency"
	"github.com/ironsheep/spectra-mcp/internal/geometry"
	"github.com/ironsheep/spectra-mcp/internal/imaging"
	"github.com/ironsheep/spectra-mcp/internal/model"
	"github.com/ironsheep/spectra-mcp/internal/project"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "section_draw", "assign_objects").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}
	if len(params.Arguments) == 0 {
		params.Arguments = json.RawMessage("{}")
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Project
	case "project_new":
		return s.handleProjectNew(args)
	case "project_load":
		return s.handleProjectLoad(args)
	case "project_save":
		return s.handleProjectSave(args)
	case "project_summary":
		return s.handleProjectSummary(args)

	// Sections
	case "sections_list":
		return s.handleSectionsList(args)
	case "section_add":
		return s.handleSectionAdd(args)
	case "section_draw":
		return s.handleSectionDraw(args)
	case "section_add_polyline":
		return s.handleSectionAddPolyline(args)
	case "section_remove_polyline":
		return s.handleSectionRemovePolyline(args)
	case "section_edit_polyline":
		return s.handleSectionEditPolyline(args)
	case "section_rename":
		return s.handleSectionRename(args)
	case "section_set_line_size":
		return s.handleSectionSetLineSize(args)
	case "section_set_color":
		return s.handleSectionSetColor(args)
	case "section_delete":
		return s.handleSectionDelete(args)
	case "section_move":
		return s.handleSectionMove(args)
	case "sections_import_csv":
		return s.handleSectionsImportCSV(args)

	// Detections
	case "detections_import":
		return s.handleDetectionsImport(args)
	case "detection_add":
		return s.handleDetectionAdd(args)
	case "detection_move":
		return s.handleDetectionMove(args)
	case "detection_update":
		return s.handleDetectionUpdate(args)
	case "detection_delete":
		return s.handleDetectionDelete(args)
	case "detection_clipboard":
		return s.handleDetectionClipboard(args)
	case "detections_list":
		return s.handleDetectionsList(args)

	// Assignment
	case "assign_objects":
		return s.handleAssignObjects(args)
	case "assign_point":
		return s.handleAssignPoint(args)

	// Frequency
	case "frequency_results":
		return s.handleFrequencyResults(args)
	case "frequency_export_csv":
		return s.handleFrequencyExportCSV(args)
	case "categories_list":
		return s.handleCategoriesList(args)

	// Imaging
	case "overlay_render":
		return s.handleOverlayRender(args)
	case "detection_crop":
		return s.handleDetectionCrop(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// okResult is returned by mutations that have nothing else to report.
type okResult struct {
	OK         bool         `json:"ok"`
	Message    string       `json:"message,omitempty"`
	Assignment assignResult `json:"assignment"`
}

type assignResult struct {
	Detections int `json:"detections"`
	Unassigned int `json:"unassigned"`
}

func (s *Server) ok(format string, a ...interface{}) okResult {
	res := okResult{OK: true, Message: fmt.Sprintf(format, a...)}
	res.Assignment.Detections = len(s.project.Detections)
	for _, d := range s.project.Detections {
		if d.Section == model.Unassigned {
			res.Assignment.Unassigned++
		}
	}
	return res
}

func toPoints(raw [][2]float64) []geometry.Point {
	pts := make([]geometry.Point, len(raw))
	for i, p := range raw {
		pts[i] = geometry.Point{X: p[0], Y: p[1]}
	}
	return pts
}

func toBBox(raw []int) (model.BBox, error) {
	if len(raw) != 4 {
		return model.BBox{}, fmt.Errorf("bbox must have 4 values, got %d", len(raw))
	}
	return model.BBox{X1: raw[0], Y1: raw[1], X2: raw[2], Y2: raw[3]}, nil
}

// === Project Handlers ===

type projectNewArgs struct {
	PDFPath string `json:"pdf_path"`
}

func (s *Server) handleProjectNew(args json.RawMessage) (interface{}, error) {
	var a projectNewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	s.project.Reset()
	s.project.PDFPath = a.PDFPath
	s.projectPath = ""
	return s.ok("started a new project"), nil
}

type pathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleProjectLoad(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	if err := s.project.Load(a.Path); err != nil {
		return nil, err
	}
	s.projectPath = a.Path
	return s.project.Summary(), nil
}

func (s *Server) handleProjectSave(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		a.Path = s.projectPath
	}
	if a.Path == "" {
		return nil, errors.New("no path given and the project was never loaded or saved")
	}
	if err := s.project.Save(a.Path); err != nil {
		return nil, err
	}
	s.projectPath = a.Path
	return map[string]interface{}{"ok": true, "path": a.Path}, nil
}

type summaryResult struct {
	project.Summary
	PageCount  int                 `json:"page_count,omitempty"`
	PageIssues []project.PageIssue `json:"page_issues,omitempty"`
	PageError  string              `json:"page_error,omitempty"`
}

func (s *Server) handleProjectSummary(args json.RawMessage) (interface{}, error) {
	res := summaryResult{Summary: s.project.Summary()}
	if s.project.PDFPath != "" {
		n, err := project.PDFPageCount(s.project.PDFPath)
		if err != nil {
			res.PageError = err.Error()
		} else {
			res.PageCount = n
			res.PageIssues = s.project.ValidatePages(n)
		}
	}
	return res, nil
}

// === Section Handlers ===

type sectionInfo struct {
	Index     int              `json:"index"`
	Name      string           `json:"name"`
	LineSize  *float64         `json:"line_size"`
	Color     model.Color      `json:"color"`
	Polylines []model.Polyline `json:"polylines"`
	Bounds    *geometry.Rect   `json:"bounds,omitempty"`
	Members   int              `json:"detections"`
}

func (s *Server) handleSectionsList(args json.RawMessage) (interface{}, error) {
	counts := make(map[string]int)
	for _, d := range s.project.Detections {
		counts[d.Section]++
	}
	out := make([]sectionInfo, 0, len(s.project.Sections))
	for i, sec := range s.project.Sections {
		info := sectionInfo{
			Index:     i,
			Name:      sec.Name,
			LineSize:  sec.LineSize,
			Color:     sec.Color,
			Polylines: sec.Polylines,
			Members:   counts[sec.Name],
		}
		if r, ok := sec.Bounds(); ok {
			info.Bounds = &r
		}
		out = append(out, info)
	}
	return out, nil
}

func (s *Server) handleSectionAdd(args json.RawMessage) (interface{}, error) {
	sec := s.project.AddSection()
	return map[string]interface{}{"name": sec.Name, "color": sec.Color}, nil
}

type sectionDrawArgs struct {
	Section string       `json:"section"`
	Points  [][2]float64 `json:"points"`
	Page    int          `json:"page"`
}

func (s *Server) handleSectionDraw(args json.RawMessage) (interface{}, error) {
	var a sectionDrawArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	sec, err := s.project.AddSectionWithPoints(toPoints(a.Points), a.Page)
	if err != nil {
		return nil, err
	}
	return s.ok("created section %q", sec.Name), nil
}

func (s *Server) handleSectionAddPolyline(args json.RawMessage) (interface{}, error) {
	var a sectionDrawArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	i, err := s.project.AddPolylineToSection(a.Section, toPoints(a.Points), a.Page)
	if err != nil {
		return nil, err
	}
	return s.ok("added polyline %d to %q", i, a.Section), nil
}

type sectionPolylineArgs struct {
	Section  string `json:"section"`
	Polyline int    `json:"polyline"`
}

func (s *Server) handleSectionRemovePolyline(args json.RawMessage) (interface{}, error) {
	var a sectionPolylineArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.project.RemovePolyline(a.Section, a.Polyline); err != nil {
		return nil, err
	}
	return s.ok("removed polyline %d from %q", a.Polyline, a.Section), nil
}

type sectionEditPolylineArgs struct {
	Section string `json:"section"`
	project.PolylineEdit
}

func (s *Server) handleSectionEditPolyline(args json.RawMessage) (interface{}, error) {
	var a sectionEditPolylineArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.project.EditPolyline(a.Section, a.PolylineEdit); err != nil {
		return nil, err
	}
	return s.ok("applied %s to %q polyline %d", a.Kind, a.Section, a.Polyline), nil
}

type sectionRenameArgs struct {
	Section string `json:"section"`
	NewName string `json:"new_name"`
}

func (s *Server) handleSectionRename(args json.RawMessage) (interface{}, error) {
	var a sectionRenameArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.project.RenameSection(a.Section, a.NewName); err != nil {
		return nil, err
	}
	return s.ok("renamed %q to %q", a.Section, a.NewName), nil
}

type sectionLineSizeArgs struct {
	Section  string   `json:"section"`
	LineSize *float64 `json:"line_size"`
}

func (s *Server) handleSectionSetLineSize(args json.RawMessage) (interface{}, error) {
	var a sectionLineSizeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.project.SetSectionLineSize(a.Section, a.LineSize); err != nil {
		return nil, err
	}
	if a.LineSize != nil && *a.LineSize > project.LargeLineSize {
		return s.ok("line size %g mm is unusually large; check the units", *a.LineSize), nil
	}
	return s.ok("updated line size of %q", a.Section), nil
}

type sectionColorArgs struct {
	Section string `json:"section"`
	Color   string `json:"color"`
}

func (s *Server) handleSectionSetColor(args json.RawMessage) (interface{}, error) {
	var a sectionColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	c, err := model.ParseColor(a.Color)
	if err != nil {
		return nil, err
	}
	if err := s.project.SetSectionColor(a.Section, c); err != nil {
		return nil, err
	}
	return s.ok("set color of %q to %s", a.Section, c), nil
}

type sectionArgs struct {
	Section   string `json:"section"`
	Direction string `json:"direction"`
}

func (s *Server) handleSectionDelete(args json.RawMessage) (interface{}, error) {
	var a sectionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.project.DeleteSection(a.Section); err != nil {
		return nil, err
	}
	return s.ok("deleted section %q", a.Section), nil
}

func (s *Server) handleSectionMove(args json.RawMessage) (interface{}, error) {
	var a sectionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	var err error
	switch a.Direction {
	case "up":
		err = s.project.MoveSectionUp(a.Section)
	case "down":
		err = s.project.MoveSectionDown(a.Section)
	default:
		return nil, fmt.Errorf("direction must be up or down, got %q", a.Direction)
	}
	if err != nil {
		return nil, err
	}
	return s.ok("moved %q %s", a.Section, a.Direction), nil
}

func (s *Server) handleSectionsImportCSV(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	f, err := os.Open(a.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sections CSV: %w", err)
	}
	defer f.Close()

	added, err := s.project.ImportSectionsCSV(f)
	if err != nil {
		return nil, err
	}
	if added == nil {
		added = []string{}
	}
	return map[string]interface{}{"added": added}, nil
}

// === Detection Handlers ===

type detectionsImportArgs struct {
	Path          string   `json:"path"`
	MinConfidence *float64 `json:"min_confidence"`
}

func (s *Server) handleDetectionsImport(args json.RawMessage) (interface{}, error) {
	var a detectionsImportArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	f, err := os.Open(a.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open predictions: %w", err)
	}
	defer f.Close()

	pages, err := project.ReadPredictions(f)
	if err != nil {
		return nil, err
	}
	minConf := s.project.Confidence
	if a.MinConfidence != nil {
		minConf = *a.MinConfidence
		s.project.Confidence = minConf
	}
	n := s.project.ImportModelDetections(project.DetectionsFromPredictions(pages, minConf))
	return s.ok("imported %d model detections", n), nil
}

type detectionAddArgs struct {
	Name string `json:"name"`
	BBox []int  `json:"bbox"`
	Page int    `json:"page"`
}

func (s *Server) handleDetectionAdd(args json.RawMessage) (interface{}, error) {
	var a detectionAddArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	box, err := toBBox(a.BBox)
	if err != nil {
		return nil, err
	}
	i, err := s.project.AddManualDetection(a.Name, box, a.Page)
	if err != nil {
		return nil, err
	}
	return project.IndexedDetection{Index: i, Detection: s.project.Detections[i]}, nil
}

type detectionMoveArgs struct {
	Index int   `json:"index"`
	DX    int   `json:"dx"`
	DY    int   `json:"dy"`
	Page  int   `json:"page"`
	BBox  []int `json:"bbox"`
}

func (s *Server) handleDetectionMove(args json.RawMessage) (interface{}, error) {
	var a detectionMoveArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.BBox != nil {
		box, err := toBBox(a.BBox)
		if err != nil {
			return nil, err
		}
		if err := s.project.ResizeDetection(a.Index, box); err != nil {
			return nil, err
		}
	}
	if a.DX != 0 || a.DY != 0 || a.Page > 0 {
		if err := s.project.MoveDetection(a.Index, a.DX, a.DY, a.Page); err != nil {
			return nil, err
		}
	}
	d, err := s.project.Detection(a.Index)
	if err != nil {
		return nil, err
	}
	return project.IndexedDetection{Index: a.Index, Detection: d}, nil
}

type detectionUpdateArgs struct {
	Index    int             `json:"index"`
	Name     *string         `json:"name"`
	Section  *string         `json:"section"`
	LineSize json.RawMessage `json:"line_size"`
	Count    *int            `json:"count"`
}

func (s *Server) handleDetectionUpdate(args json.RawMessage) (interface{}, error) {
	var a detectionUpdateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	u := project.DetectionUpdate{Name: a.Name, Section: a.Section, Count: a.Count}
	// line_size distinguishes absent (unchanged) from null (cleared)
	if len(a.LineSize) > 0 {
		if err := json.Unmarshal(a.LineSize, &u.LineSize); err != nil {
			return nil, fmt.Errorf("invalid line_size: %w", err)
		}
		u.SetLineSize = true
	}
	if err := s.project.UpdateDetection(a.Index, u); err != nil {
		return nil, err
	}
	return project.IndexedDetection{Index: a.Index, Detection: s.project.Detections[a.Index]}, nil
}

type indexArgs struct {
	Index int `json:"index"`
}

func (s *Server) handleDetectionDelete(args json.RawMessage) (interface{}, error) {
	var a indexArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.project.DeleteDetection(a.Index); err != nil {
		return nil, err
	}
	return s.ok("deleted detection %d", a.Index), nil
}

type detectionClipboardArgs struct {
	Action string   `json:"action"`
	Index  int      `json:"index"`
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	Page   int      `json:"page"`
}

func (s *Server) handleDetectionClipboard(args json.RawMessage) (interface{}, error) {
	var a detectionClipboardArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	switch a.Action {
	case "cut":
		if err := s.project.Cut(a.Index); err != nil {
			return nil, err
		}
		return s.ok("cut detection %d", a.Index), nil
	case "copy":
		if err := s.project.Copy(a.Index); err != nil {
			return nil, err
		}
		return s.ok("copied detection %d", a.Index), nil
	case "paste":
		var at *geometry.Point
		if a.X != nil && a.Y != nil {
			at = &geometry.Point{X: *a.X, Y: *a.Y}
		}
		i, err := s.project.Paste(at, a.Page)
		if err != nil {
			return nil, err
		}
		return project.IndexedDetection{Index: i, Detection: s.project.Detections[i]}, nil
	default:
		return nil, fmt.Errorf("action must be cut, copy or paste, got %q", a.Action)
	}
}

type detectionsListArgs struct {
	Section  string `json:"section"`
	Category string `json:"category"`
}

func (s *Server) handleDetectionsList(args json.RawMessage) (interface{}, error) {
	var a detectionsListArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	out := s.project.FilterDetections(a.Section, a.Category)
	if out == nil {
		out = []project.IndexedDetection{}
	}
	return out, nil
}

// === Assignment Handlers ===

type assignObjectsArgs struct {
	Force bool `json:"force"`
}

func (s *Server) handleAssignObjects(args json.RawMessage) (interface{}, error) {
	var a assignObjectsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	result := map[string]interface{}{}
	if a.Force {
		stats, changed := s.project.Recompute()
		result["stats"] = stats
		result["changed"] = changed
	} else {
		result["stats"] = s.project.Reassign()
	}
	result["by_section"] = s.project.Summary().BySection
	return result, nil
}

type assignPointArgs struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Page int     `json:"page"`
}

func (s *Server) handleAssignPoint(args json.RawMessage) (interface{}, error) {
	var a assignPointArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"section": s.project.SectionAt(geometry.Point{X: a.X, Y: a.Y}, a.Page),
	}, nil
}

// === Frequency Handlers ===

// table returns the frequency table at path, or the configured default.
// Parsed tables are kept for the life of the server.
func (s *Server) table(path string) (*frequency.Table, error) {
	if path == "" {
		path = s.tablePath
	}
	if path == "" {
		return nil, errors.New("no frequency table configured; pass table_path")
	}
	if t, ok := s.tables[path]; ok {
		return t, nil
	}
	t, err := frequency.LoadTable(path)
	if err != nil {
		return nil, err
	}
	s.tables[path] = t
	return t, nil
}

// InvalidateTable drops a parsed frequency table so the next use rereads it.
func (s *Server) InvalidateTable(path string) {
	delete(s.tables, path)
}

type frequencyArgs struct {
	Path      string `json:"path"`
	Section   string `json:"section"`
	TablePath string `json:"table_path"`
	Reload    bool   `json:"reload"`
}

func (s *Server) results(a frequencyArgs) ([]frequency.Result, error) {
	if a.Reload {
		path := a.TablePath
		if path == "" {
			path = s.tablePath
		}
		s.InvalidateTable(path)
	}
	t, err := s.table(a.TablePath)
	if err != nil {
		return nil, err
	}
	results, err := s.project.Results(t, categories.FrequencyCategory)
	if err != nil {
		return nil, err
	}
	return frequency.Filter(results, a.Section), nil
}

func (s *Server) handleFrequencyResults(args json.RawMessage) (interface{}, error) {
	var a frequencyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.results(a)
}

func (s *Server) handleFrequencyExportCSV(args json.RawMessage) (interface{}, error) {
	var a frequencyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	results, err := s.results(a)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(a.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(a.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", a.Path, err)
	}
	if err := frequency.WriteCSV(f, results); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return map[string]interface{}{"ok": true, "path": a.Path, "rows": len(results)}, nil
}

type categoryInfo struct {
	Object    string `json:"object"`
	Frequency string `json:"frequency,omitempty"`
}

func (s *Server) handleCategoriesList(args json.RawMessage) (interface{}, error) {
	var objects []categoryInfo
	for _, c := range categories.AllObjectCategories() {
		f, _ := categories.FrequencyCategory(c)
		objects = append(objects, categoryInfo{Object: c, Frequency: f})
	}
	return map[string]interface{}{
		"objects":   objects,
		"frequency": categories.AllFrequencyCategories(),
	}, nil
}

// === Imaging Handlers ===

func (s *Server) pageSource(dir string) (*imaging.PageSource, error) {
	if dir == "" {
		dir = s.pageDir
	}
	if dir == "" {
		return nil, errors.New("no page image directory configured; pass page_dir")
	}
	return imaging.NewPageSource(dir, s.pagePattern, s.cache)
}

type overlayArgs struct {
	Page       int      `json:"page"`
	PageDir    string   `json:"page_dir"`
	OutputPath string   `json:"output_path"`
	Thickness  int      `json:"thickness"`
	Fade       *float64 `json:"fade"`
	Labels     *bool    `json:"labels"`
}

func (s *Server) handleOverlayRender(args json.RawMessage) (interface{}, error) {
	var a overlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	src, err := s.pageSource(a.PageDir)
	if err != nil {
		return nil, err
	}
	img, err := src.Page(a.Page)
	if err != nil {
		return nil, err
	}

	opts := imaging.DefaultOverlayOptions()
	if a.Thickness > 0 {
		opts.Thickness = a.Thickness
	}
	if a.Fade != nil {
		opts.Fade = *a.Fade
	}
	if a.Labels != nil {
		opts.Labels = *a.Labels
	}

	out := imaging.RenderOverlay(img, a.Page, s.project.Sections, s.project.Detections, opts)
	if a.OutputPath != "" {
		if err := imaging.SaveOverlay(a.OutputPath, out); err != nil {
			return nil, err
		}
		b := out.Bounds()
		return &imaging.OverlayResult{Page: a.Page, Width: b.Dx(), Height: b.Dy(), Path: a.OutputPath}, nil
	}
	return imaging.EncodeOverlay(out, a.Page)
}

type detectionCropArgs struct {
	Index   int     `json:"index"`
	Margin  *int    `json:"margin"`
	Scale   float64 `json:"scale"`
	PageDir string  `json:"page_dir"`
}

func (s *Server) handleDetectionCrop(args json.RawMessage) (interface{}, error) {
	var a detectionCropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	margin := 10
	if a.Margin != nil {
		margin = *a.Margin
	}

	d, err := s.project.Detection(a.Index)
	if err != nil {
		return nil, err
	}
	if d.Page < 1 {
		return nil, fmt.Errorf("detection %d has no page", a.Index)
	}
	src, err := s.pageSource(a.PageDir)
	if err != nil {
		return nil, err
	}
	img, err := src.Page(d.Page)
	if err != nil {
		return nil, err
	}
	return imaging.CropDetection(img, d.BBox, margin, a.Scale)
}
