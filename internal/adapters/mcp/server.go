// Package mcp exposes the bot's graph and saved sessions to MCP clients as
// read-only tools and resources. Conversations are not driven through it.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/teevee/internal/presentation/graph"
	"github.com/aretw0/teevee/internal/validator"
	"github.com/aretw0/teevee/pkg/domain"
)

// GraphURI is the resource holding the graph as JSON.
const GraphURI = "teevee://graph"

// GraphSource is the part of the engine the server reads.
type GraphSource interface {
	Inspect() ([]domain.Node, error)
	EntryNodeID() string
}

// SessionReader lists and loads saved conversations.
type SessionReader interface {
	Load(ctx context.Context, sessionID string) (*domain.State, error)
	List(ctx context.Context) ([]string, error)
}

// Config wires the server. Sessions may be nil, which leaves out the
// session tools.
type Config struct {
	Graph     GraphSource
	Sessions  SessionReader
	Checks    []validator.Option
	Redirects map[string][]string
	Version   string
	Logger    *slog.Logger
}

// Server wraps an MCP server with the teevee tools registered.
type Server struct {
	cfg Config
	mcp *server.MCPServer
}

// NewServer registers get_graph, validate_graph and, with sessions,
// list_sessions and inspect_session, plus the graph resource.
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		cfg: cfg,
		mcp: server.NewMCPServer("teevee", cfg.Version,
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, for custom transports.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// ServeStdio speaks JSON-RPC over in and out until ctx is done or in ends.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	s.cfg.Logger.Info("mcp server listening on stdio")
	err := server.NewStdioServer(s.mcp).Listen(ctx, in, out)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the dialogue graph, as JSON nodes or as a Mermaid flowchart."),
		mcp.WithString("format", mcp.Description("'json' (default) or 'mermaid'")),
	), s.handleGetGraph)

	s.mcp.AddTool(mcp.NewTool("validate_graph",
		mcp.WithDescription("Check the dialogue graph for broken targets, dead ends and unreachable states."),
	), s.handleValidate)

	if s.cfg.Sessions == nil {
		return
	}
	s.mcp.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List the ids of saved conversations."),
	), s.handleListSessions)

	s.mcp.AddTool(mcp.NewTool("inspect_session",
		mcp.WithDescription("Get the saved state of one conversation: current state, variables and history."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
	), s.handleInspectSession)
}

func (s *Server) registerResources() {
	s.mcp.AddResource(mcp.NewResource(GraphURI, "Dialogue graph",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		nodes, err := s.cfg.Graph.Inspect()
		if err != nil {
			return nil, fmt.Errorf("failed to inspect graph: %w", err)
		}
		data, err := json.Marshal(nodes)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: GraphURI, MIMEType: "application/json", Text: string(data)},
		}, nil
	})
}

func (s *Server) handleGetGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nodes, err := s.cfg.Graph.Inspect()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("inspect failed: %v", err)), nil
	}
	switch format := request.GetString("format", "json"); format {
	case "mermaid":
		return mcp.NewToolResultText(graph.GenerateMermaid(nodes, graph.Options{
			Entry:     s.cfg.Graph.EntryNodeID(),
			Redirects: s.cfg.Redirects,
		})), nil
	case "json":
		return jsonResult(nodes)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown format %q", format)), nil
	}
}

// Report is the validate_graph result.
type Report struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nodes, err := s.cfg.Graph.Inspect()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("inspect failed: %v", err)), nil
	}
	r := validator.ValidateGraph(nodes, s.cfg.Graph.EntryNodeID(), s.cfg.Checks...)
	return jsonResult(Report{
		Valid:    len(r.Errors) == 0,
		Errors:   nonNil(r.Errors),
		Warnings: nonNil(r.Warnings),
	})
}

func (s *Server) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := s.cfg.Sessions.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	return jsonResult(nonNil(ids))
}

func (s *Server) handleInspectSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	state, err := s.cfg.Sessions.Load(ctx, id)
	if err != nil {
		s.cfg.Logger.Debug("mcp session lookup failed", "session_id", id, "err", err)
		return mcp.NewToolResultError(fmt.Sprintf("session %s: %v", id, err)), nil
	}
	return jsonResult(state)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
