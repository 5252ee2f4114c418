package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ironsheep/spectra-mcp/internal/frequency"
	"github.com/ironsheep/spectra-mcp/internal/imaging"
	"github.com/ironsheep/spectra-mcp/internal/project"
)

// Options configures a Server. Every field is optional.
//
// # Example Usage
//
//	srv := server.New(server.Options{
//	    ProjectPath: "plant.json",
//	    TablePath:   "frequencies.csv",
//	    PageDir:     "render",
//	    Logger:      logger,
//	})
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
type Options struct {
	// ProjectPath is loaded at startup when set, and is the default save target.
	ProjectPath string

	// TablePath is the default frequency table CSV.
	TablePath string

	// PageDir and PagePattern locate rendered page images.
	PageDir     string
	PagePattern string

	Logger  *slog.Logger
	Version string

	// In and Out default to stdin and stdout.
	In  io.Reader
	Out io.Writer
}

// Server handles MCP protocol communication for one project session.
//
// Requests are processed one at a time on the goroutine that calls Run, which
// is the only goroutine that touches the project.
type Server struct {
	project     *project.Project
	projectPath string

	tablePath string
	tables    map[string]*frequency.Table

	cache       *imaging.ImageCache
	pageDir     string
	pagePattern string

	logger  *slog.Logger
	version string
	in      io.Reader
	out     io.Writer
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a server with an empty project.
//
// Parameters:
//   - opts: Server configuration. A nil Logger discards log output, nil In and
//     Out select stdin and stdout, and an empty Version reports "dev".
//
// Returns:
//   - *Server: A server ready for Run. No files are read until Run is called.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	in, out := opts.In, opts.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}
	return &Server{
		project:     project.New(logger.With("component", "project")),
		projectPath: opts.ProjectPath,
		tablePath:   opts.TablePath,
		tables:      make(map[string]*frequency.Table),
		cache:       imaging.NewImageCache(),
		pageDir:     opts.PageDir,
		pagePattern: opts.PagePattern,
		logger:      logger,
		version:     version,
		in:          in,
		out:         out,
	}
}

// Project returns the session's project.
//
// The project is not safe for concurrent use; callers must not touch it while
// Run is serving requests.
func (s *Server) Project() *project.Project {
	return s.project
}

// Run loads the configured project, if any, then serves requests until the
// input is exhausted or ctx is cancelled.
//
// Each input line is one JSON-RPC request; each response is written as one
// line of JSON. Notifications produce no output. A line that fails to parse
// produces a -32700 error response and does not stop the loop.
//
// Parameters:
//   - ctx: Cancelling ctx ends the loop before the next request is handled.
//
// Returns:
//   - error: Nil on end of input or cancellation.
//
// # Errors
//
//   - Returns error if ProjectPath exists but cannot be loaded
//   - Returns error if a response cannot be written to Out
//   - Returns error if reading In fails or a line exceeds 16 MiB
func (s *Server) Run(ctx context.Context) error {
	if s.projectPath != "" {
		if _, err := os.Stat(s.projectPath); err == nil {
			if err := s.project.Load(s.projectPath); err != nil {
				return err
			}
		} else {
			s.logger.Info("project file does not exist yet, starting empty", "path", s.projectPath)
		}
	}

	scanner := bufio.NewScanner(s.in)
	// Polyline-heavy requests can be large
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 16*1024*1024)

	encoder := json.NewEncoder(s.out)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", "error", err)
			if encErr := encoder.Encode(s.errorResponse(nil, -32700, "Parse error", err.Error())); encErr != nil {
				return fmt.Errorf("failed to write response: %w", encErr)
			}
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				return fmt.Errorf("failed to write response: %w", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	s.logger.Debug("request", "method", req.Method, "id", req.ID)

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "spectra-mcp",
				"version": s.version,
			},
		},
	}
}

// handleToolsList returns the tool catalogue
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
