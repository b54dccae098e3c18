// Package server exposes the automation controller as MCP tools so agents
// can read and drive the target app.
package server

import (
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/mj1618/droid-a11y/internal/automation"
	"github.com/mj1618/droid-a11y/internal/clock"
	"github.com/mj1618/droid-a11y/internal/logging"
	"github.com/mj1618/droid-a11y/internal/platform"
)

// Options configures a Server.
type Options struct {
	Name     string        // default "droid-a11y"
	Version  string        // default "dev"
	CacheTTL time.Duration // dump cache lifetime, 0 disables
	Clock    clock.Clock
}

// Server wraps the MCP server with the controller and dump cache.
type Server struct {
	ctl   *automation.Controller
	shots platform.Screenshotter
	cache *DumpCache
	mcp   *mcpserver.MCPServer
	log   zerolog.Logger
}

// New builds a server over ctl. shots may be nil when the backend cannot
// capture the screen.
func New(ctl *automation.Controller, shots platform.Screenshotter, opts Options) *Server {
	if opts.Name == "" {
		opts.Name = "droid-a11y"
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	s := &Server{
		ctl:   ctl,
		shots: shots,
		cache: NewDumpCache(opts.CacheTTL, opts.Clock),
		log:   logging.Module("server"),
	}
	s.mcp = mcpserver.NewMCPServer(
		opts.Name,
		opts.Version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(true, true),
		mcpserver.WithLogging(),
	)
	s.registerTools()
	s.registerResources()
	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcpserver.MCPServer {
	return s.mcp
}

// Serve runs the server on the given transport until it stops.
func (s *Server) Serve(transport, addr string) error {
	s.log.Info().Str("transport", transport).Str("addr", addr).Msg("serving MCP")
	switch transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		return mcpserver.NewStreamableHTTPServer(s.mcp).Start(addr)
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", transport)
	}
}

func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("detect",
			mcp.WithDescription("Bring the target app forward and classify its screen as Chats, Projects or Unknown"),
		),
		s.handleDetect,
	)

	s.mcp.AddTool(
		mcp.NewTool("read_titles",
			mcp.WithDescription("Read the visible list item titles of the target app, top to bottom, with their tap points"),
			mcp.WithBoolean("cached", mcp.Description("Return the last read without touching the device")),
		),
		s.handleReadTitles,
	)

	s.mcp.AddTool(
		mcp.NewTool("scroll_to_end",
			mcp.WithDescription("Scroll the target list until the last visible title stops changing"),
			mcp.WithNumber("max_scrolls", mcp.Description("Scroll attempt budget (default 50)")),
			mcp.WithNumber("stable_repeats", mcp.Description("Unchanged tail reads that mean the end was reached (default 3)")),
		),
		s.handleScrollToEnd,
	)

	s.mcp.AddTool(
		mcp.NewTool("open",
			mcp.WithDescription("Open a list item. Give exactly one of index, title or first. index and first refer to the last read_titles result."),
			mcp.WithNumber("index", mcp.Description("0-based index into the last read")),
			mcp.WithString("title", mcp.Description("Exact title text")),
			mcp.WithBoolean("first", mcp.Description("Open the first title of the last read")),
		),
		s.handleOpen,
	)

	s.mcp.AddTool(
		mcp.NewTool("dump",
			mcp.WithDescription("Dump the target window's accessibility tree"),
			mcp.WithBoolean("flat", mcp.Description("Flat list with path breadcrumbs instead of a tree")),
			mcp.WithString("text", mcp.Description("Keep elements whose text contains this (case-insensitive)")),
			mcp.WithString("roles", mcp.Description("Comma-separated role codes to keep (txt,btn,list,...)")),
			mcp.WithBoolean("prune", mcp.Description("Drop anonymous containers")),
			mcp.WithString("bbox", mcp.Description("Only elements intersecting this box: x,y,w,h")),
			mcp.WithNumber("max_nodes", mcp.Description("Stop copying after this many nodes (0 = unlimited)")),
		),
		s.handleDump,
	)

	s.mcp.AddTool(
		mcp.NewTool("screenshot",
			mcp.WithDescription("Capture the device screen as PNG"),
		),
		s.handleScreenshot,
	)

	s.mcp.AddTool(
		mcp.NewTool("log",
			mcp.WithDescription("Read the automation log"),
			mcp.WithNumber("tail", mcp.Description("Only the last N lines (0 = all)")),
			mcp.WithBoolean("clear", mcp.Description("Clear the log after reading")),
		),
		s.handleLog,
	)
}

func (s *Server) registerResources() {
	s.mcp.AddResource(
		mcp.NewResource(
			"droid-a11y://log",
			"Automation log",
			mcp.WithMIMEType("text/plain"),
		),
		s.handleLogResource,
	)

	s.mcp.AddResource(
		mcp.NewResource(
			"droid-a11y://titles",
			"Titles from the last read",
			mcp.WithMIMEType("application/json"),
		),
		s.handleTitlesResource,
	)
}
