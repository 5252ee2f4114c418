package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// objectSchema builds a JSON Schema object with the given properties.
func objectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	s := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{"type": typ, "description": description}
}

var (
	sectionProp = prop("string", "Section name")
	pageProp    = map[string]interface{}{
		"type":        "integer",
		"description": "1-indexed page number. 0 means unknown and matches every page",
		"minimum":     0,
	}
	indexProp  = prop("integer", "Detection index as reported by detections_list")
	pointsProp = map[string]interface{}{
		"type":        "array",
		"description": "Polyline vertices in page-image pixels, as [[x,y], ...]. At least 2",
		"items": map[string]interface{}{
			"type":     "array",
			"items":    map[string]interface{}{"type": "number"},
			"minItems": 2,
			"maxItems": 2,
		},
		"minItems": 2,
	}
	bboxProp = map[string]interface{}{
		"type":        "array",
		"description": "Bounding box [x1, y1, x2, y2] in page-image pixels",
		"items":       map[string]interface{}{"type": "integer"},
		"minItems":    4,
		"maxItems":    4,
	}
	lineSizeProp = map[string]interface{}{
		"type":        []string{"number", "null"},
		"description": "Line size in mm. null clears it",
		"minimum":     0,
	}
)

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Project
		{
			Name:        "project_new",
			Description: "Discard the current project and start an empty one.",
			InputSchema: objectSchema(map[string]interface{}{
				"pdf_path": prop("string", "Optional path of the drawing PDF the project annotates"),
			}),
		},
		{
			Name:        "project_load",
			Description: "Load a project JSON file, replacing the current project. Detections are reassigned on load.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": prop("string", "Absolute path to the project file"),
			}, "path"),
		},
		{
			Name:        "project_save",
			Description: "Save the project as JSON. Defaults to the path it was loaded from.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": prop("string", "Optional absolute path to write"),
			}),
		},
		{
			Name:        "project_summary",
			Description: "Count sections, polylines and detections, with detections per section. When the drawing PDF is known, also reports items on pages the PDF lacks.",
			InputSchema: objectSchema(map[string]interface{}{}),
		},

		// Sections
		{
			Name:        "sections_list",
			Description: "List sections in order with line size, color, polylines and bounding box. Later sections win when boundaries overlap.",
			InputSchema: objectSchema(map[string]interface{}{}),
		},
		{
			Name:        "section_add",
			Description: "Append an empty section named \"New Section N\".",
			InputSchema: objectSchema(map[string]interface{}{}),
		},
		{
			Name:        "section_draw",
			Description: "Create a new section from a drawn polyline and reassign detections.",
			InputSchema: objectSchema(map[string]interface{}{
				"points": pointsProp,
				"page":   pageProp,
			}, "points", "page"),
		},
		{
			Name:        "section_add_polyline",
			Description: "Add another boundary polyline to an existing section.",
			InputSchema: objectSchema(map[string]interface{}{
				"section": sectionProp,
				"points":  pointsProp,
				"page":    pageProp,
			}, "section", "points", "page"),
		},
		{
			Name:        "section_remove_polyline",
			Description: "Remove one polyline from a section.",
			InputSchema: objectSchema(map[string]interface{}{
				"section":  sectionProp,
				"polyline": prop("integer", "Polyline index within the section"),
			}, "section", "polyline"),
		},
		{
			Name:        "section_edit_polyline",
			Description: "Edit a polyline vertex: move_point, insert_point, delete_point, or translate the whole polyline by point=(dx,dy).",
			InputSchema: objectSchema(map[string]interface{}{
				"section": sectionProp,
				"kind": map[string]interface{}{
					"type": "string",
					"enum": []string{"move_point", "insert_point", "delete_point", "translate"},
				},
				"polyline":    prop("integer", "Polyline index within the section"),
				"point_index": prop("integer", "Vertex index. Ignored by translate"),
				"point": map[string]interface{}{
					"type":        "object",
					"description": "New vertex position, or offset for translate",
					"properties": map[string]interface{}{
						"x": map[string]interface{}{"type": "number"},
						"y": map[string]interface{}{"type": "number"},
					},
				},
			}, "section", "kind", "polyline"),
		},
		{
			Name:        "section_rename",
			Description: "Rename a section. Detections in the section follow the new name.",
			InputSchema: objectSchema(map[string]interface{}{
				"section":  sectionProp,
				"new_name": prop("string", "New unique, non-empty name"),
			}, "section", "new_name"),
		},
		{
			Name:        "section_set_line_size",
			Description: "Set or clear a section's line size in mm. Values above 2000 mm are accepted with a warning.",
			InputSchema: objectSchema(map[string]interface{}{
				"section":   sectionProp,
				"line_size": lineSizeProp,
			}, "section"),
		},
		{
			Name:        "section_set_color",
			Description: "Change a section's display color.",
			InputSchema: objectSchema(map[string]interface{}{
				"section": sectionProp,
				"color":   prop("string", "Hex color such as \"#00ff80\""),
			}, "section", "color"),
		},
		{
			Name:        "section_delete",
			Description: "Delete a section and reassign its detections.",
			InputSchema: objectSchema(map[string]interface{}{
				"section": sectionProp,
			}, "section"),
		},
		{
			Name:        "section_move",
			Description: "Move a section up or down in the list. Order decides which section wins overlaps.",
			InputSchema: objectSchema(map[string]interface{}{
				"section": sectionProp,
				"direction": map[string]interface{}{
					"type": "string",
					"enum": []string{"up", "down"},
				},
			}, "section", "direction"),
		},
		{
			Name:        "sections_import_csv",
			Description: "Append sections from a CSV of name[,line_size] rows. Existing names and blank rows are skipped.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": prop("string", "Absolute path to the CSV file"),
			}, "path"),
		},

		// Detections
		{
			Name:        "detections_import",
			Description: "Replace model detections with detector output from a JSON file of [{\"page\":n,\"predictions\":[{x,y,width,height,class,confidence}]}]. Manual detections are kept.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": prop("string", "Absolute path to the predictions JSON"),
				"min_confidence": map[string]interface{}{
					"type":        "number",
					"description": "Drop predictions scored below this. Defaults to the project confidence",
					"minimum":     0,
					"maximum":     1,
				},
			}, "path"),
		},
		{
			Name:        "detection_add",
			Description: "Add a manual detection and assign it to a section.",
			InputSchema: objectSchema(map[string]interface{}{
				"name": prop("string", "Object category, e.g. \"Manual Valve\""),
				"bbox": bboxProp,
				"page": pageProp,
			}, "name", "bbox", "page"),
		},
		{
			Name:        "detection_move",
			Description: "Move a detection by (dx, dy), optionally to another page, or replace its box with bbox (minimum 5 px per side).",
			InputSchema: objectSchema(map[string]interface{}{
				"index": indexProp,
				"dx":    prop("integer", "Horizontal offset in pixels"),
				"dy":    prop("integer", "Vertical offset in pixels"),
				"page":  pageProp,
				"bbox":  bboxProp,
			}, "index"),
		},
		{
			Name:        "detection_update",
			Description: "Edit a detection's category, section, line size override or count. Omitted fields are unchanged.",
			InputSchema: objectSchema(map[string]interface{}{
				"index":     indexProp,
				"name":      prop("string", "Object category"),
				"section":   prop("string", "Section name or \"Unassigned\""),
				"line_size": lineSizeProp,
				"count": map[string]interface{}{
					"type":    "integer",
					"minimum": 1,
				},
			}, "index"),
		},
		{
			Name:        "detection_delete",
			Description: "Delete a detection. Indices of later detections shift down by one.",
			InputSchema: objectSchema(map[string]interface{}{
				"index": indexProp,
			}, "index"),
		},
		{
			Name:        "detection_clipboard",
			Description: "Cut or copy a detection, or paste the clipboard at an optional position and page.",
			InputSchema: objectSchema(map[string]interface{}{
				"action": map[string]interface{}{
					"type": "string",
					"enum": []string{"cut", "copy", "paste"},
				},
				"index": indexProp,
				"x":     prop("number", "Paste position X. Without x and y the box is offset by 20 px"),
				"y":     prop("number", "Paste position Y"),
				"page":  pageProp,
			}, "action"),
		},
		{
			Name:        "detections_list",
			Description: "List detections with their index, optionally filtered by section and category (\"All\" matches everything).",
			InputSchema: objectSchema(map[string]interface{}{
				"section":  prop("string", "Section filter. Default All"),
				"category": prop("string", "Category filter. Default All"),
			}),
		},

		// Assignment
		{
			Name:        "assign_objects",
			Description: "Assign every detection to the most recent section whose polylines cross its box. Unchanged projects are served from the assignment cache unless force is set.",
			InputSchema: objectSchema(map[string]interface{}{
				"force": prop("boolean", "Recompute every detection from geometry, discarding stored and hand-set sections"),
			}),
		},
		{
			Name:        "assign_point",
			Description: "Report which section's closed polyline contains a point.",
			InputSchema: objectSchema(map[string]interface{}{
				"x":    prop("number", "X in page-image pixels"),
				"y":    prop("number", "Y in page-image pixels"),
				"page": pageProp,
			}, "x", "y"),
		},

		// Frequency
		{
			Name:        "frequency_results",
			Description: "Aggregate leak frequencies per section by hole-size class.",
			InputSchema: objectSchema(map[string]interface{}{
				"section":    prop("string", "Only report this section. Default All"),
				"table_path": prop("string", "Frequency table CSV. Defaults to the configured table"),
				"reload":     prop("boolean", "Reread the table from disk instead of using the parsed copy"),
			}),
		},
		{
			Name:        "frequency_export_csv",
			Description: "Write the frequency results to a CSV file.",
			InputSchema: objectSchema(map[string]interface{}{
				"path":       prop("string", "Absolute path of the CSV to write"),
				"section":    prop("string", "Only export this section. Default All"),
				"table_path": prop("string", "Frequency table CSV. Defaults to the configured table"),
				"reload":     prop("boolean", "Reread the table from disk instead of using the parsed copy"),
			}, "path"),
		},
		{
			Name:        "categories_list",
			Description: "List the object categories the detector produces and the frequency table categories they map to.",
			InputSchema: objectSchema(map[string]interface{}{}),
		},

		// Imaging
		{
			Name:        "overlay_render",
			Description: "Draw sections and detections on a rendered page image. Returns base64 PNG, or writes it to output_path.",
			InputSchema: objectSchema(map[string]interface{}{
				"page":        pageProp,
				"page_dir":    prop("string", "Directory of rendered page images. Defaults to the configured directory"),
				"output_path": prop("string", "Optional PNG path to write instead of returning image data"),
				"thickness":   prop("integer", "Stroke width in pixels. Default 3"),
				"fade":        prop("number", "Lighten the page by this fraction before drawing. Default 0.3"),
				"labels":      prop("boolean", "Draw detection indices. Default true"),
			}, "page"),
		},
		{
			Name:        "detection_crop",
			Description: "Crop a detection from its page image for close inspection.",
			InputSchema: objectSchema(map[string]interface{}{
				"index":    indexProp,
				"margin":   prop("integer", "Pixels of context around the box. Default 10"),
				"scale":    prop("number", "Scale factor. Default 1.0"),
				"page_dir": prop("string", "Directory of rendered page images. Defaults to the configured directory"),
			}, "index"),
		},
	}
}
