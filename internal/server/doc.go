// Package server implements the MCP (Model Context Protocol) server that
// exposes a P&ID sectioning session as tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Project:
//   - project_new, project_load, project_save, project_summary
//
// Sections:
//   - sections_list, section_add, section_draw, section_add_polyline
//   - section_remove_polyline, section_edit_polyline
//   - section_rename, section_set_line_size, section_set_color
//   - section_delete, section_move, sections_import_csv
//
// Detections:
//   - detections_import, detection_add, detection_move, detection_update
//   - detection_delete, detection_clipboard, detections_list
//
// Assignment and results:
//   - assign_objects, assign_point
//   - frequency_results, frequency_export_csv, categories_list
//
// Imaging:
//   - overlay_render, detection_crop
//
// # Session Model
//
// A Server owns exactly one project. Requests are handled sequentially on the
// goroutine running Run, so the project, its assignment cache and the parsed
// frequency tables need no locking. Every tool that changes geometry leaves
// the detections freshly assigned before it returns.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// Lines that are not valid JSON get a -32700 parse error with a null id.
//
// # Usage
//
//	srv := server.New(server.Options{TablePath: "frequencies.csv", Logger: logger})
//	if err := srv.Run(ctx); err != nil {
//	    return err
//	}
package server
