package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/droid-a11y/internal/engine"
	"github.com/mj1618/droid-a11y/internal/model"
	"github.com/mj1618/droid-a11y/internal/output"
)

// resultToText serializes an ActionResult to YAML for the MCP response.
func resultToText(result output.ActionResult) string {
	b, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Sprintf("ok: %v\naction: %s\nerror: %s", result.OK, result.Action, result.Error)
	}
	return string(b)
}

func toolResult(action string, v interface{}, err error) *mcp.CallToolResult {
	result := output.ActionResult{Action: action, Result: v}
	if err != nil {
		result.Error = err.Error()
		result.Result = nil
		return mcp.NewToolResultError(resultToText(result))
	}
	result.OK = true
	return mcp.NewToolResultText(resultToText(result))
}

func (s *Server) handleDetect(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := s.ctl.Detect(ctx)
	return toolResult("detect", r, err), nil
}

type titlesResult struct {
	Count  int               `yaml:"count"         json:"count"`
	Age    string            `yaml:"age,omitempty" json:"age,omitempty"`
	Titles []engine.TitleHit `yaml:"titles"        json:"titles"`
}

func (s *Server) handleReadTitles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	if boolParam(params, "cached", false) {
		hits, at := s.ctl.Engine().CachedTitles()
		r := titlesResult{Count: len(hits), Titles: hits}
		if !at.IsZero() {
			r.Age = time.Since(at).Round(time.Millisecond).String()
		}
		return toolResult("read_titles", r, nil), nil
	}

	hits, err := s.ctl.ReadTitles(ctx)
	s.cache.Invalidate()
	return toolResult("read_titles", titlesResult{Count: len(hits), Titles: hits}, err), nil
}

func (s *Server) handleScrollToEnd(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	r, err := s.ctl.ScrollToEnd(ctx,
		intParam(params, "max_scrolls", 0),
		intParam(params, "stable_repeats", 0))
	s.cache.Invalidate()
	return toolResult("scroll_to_end", r, err), nil
}

func (s *Server) handleOpen(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	first := boolParam(params, "first", false)
	title := stringParam(params, "title", "")
	hasIndex := hasParam(params, "index")

	given := 0
	for _, set := range []bool{first, title != "", hasIndex} {
		if set {
			given++
		}
	}
	if given != 1 {
		return toolResult("open", nil, fmt.Errorf("give exactly one of index, title or first")), nil
	}

	var err error
	var target string
	switch {
	case first:
		target = "first"
		err = s.ctl.OpenFirst(ctx)
	case title != "":
		target = title
		err = s.ctl.OpenTitle(ctx, title)
	default:
		i := intParam(params, "index", -1)
		target = fmt.Sprintf("index %d", i)
		err = s.ctl.OpenIndex(ctx, i)
	}
	s.cache.Invalidate()
	return toolResult("open", map[string]string{"target": target}, err), nil
}

func (s *Server) handleDump(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	snap, hit, err := s.cache.Get(ctx, intParam(params, "max_nodes", 0), s.ctl.Dump)
	if err != nil {
		return toolResult("dump", nil, err), nil
	}
	s.log.Debug().Bool("cache_hit", hit).Msg("dump")

	text := stringParam(params, "text", "")
	roles := listParam(params, "roles")
	prune := boolParam(params, "prune", false)
	bbox, err := model.ParseBBox(stringParam(params, "bbox", ""))
	if err != nil {
		return toolResult("dump", nil, err), nil
	}
	ts := time.Now().Unix()

	if boolParam(params, "flat", false) {
		flat := model.FilterFlat(model.FlattenElements(snap.Elements), roles, text, bbox)
		if prune {
			flat = model.PruneEmptyGroupsFlat(flat)
		}
		return toolResult("dump", output.DumpFlatResult{
			Package:   snap.Package,
			TS:        ts,
			Truncated: snap.Truncated,
			Elements:  flat,
		}, nil), nil
	}

	elements := model.FilterByText(snap.Elements, text)
	elements = model.FilterElements(elements, roles, bbox)
	if prune {
		elements = model.PruneEmptyGroups(elements)
	}
	return toolResult("dump", output.DumpResult{
		Package:   snap.Package,
		TS:        ts,
		Truncated: snap.Truncated,
		Elements:  elements,
	}, nil), nil
}

func (s *Server) handleScreenshot(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.shots == nil {
		return mcp.NewToolResultError("screenshots are not supported by this backend"), nil
	}
	png, err := s.shots.CaptureScreen()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("screenshot failed: %v", err)), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewImageContent(base64.StdEncoding.EncodeToString(png), "image/png"),
			mcp.NewTextContent(fmt.Sprintf("Screenshot captured (%d bytes)", len(png))),
		},
	}, nil
}

func (s *Server) handleLog(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	lines := s.ctl.Log().Snapshot()
	if tail := intParam(params, "tail", 0); tail > 0 && tail < len(lines) {
		lines = lines[len(lines)-tail:]
	}
	if boolParam(params, "clear", false) {
		s.ctl.Log().Clear()
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("(log is empty)"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) handleLogResource(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "text/plain",
			Text:     strings.Join(s.ctl.Log().Snapshot(), "\n"),
		},
	}, nil
}

func (s *Server) handleTitlesResource(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	hits, _ := s.ctl.Engine().CachedTitles()
	if hits == nil {
		hits = []engine.TitleHit{}
	}
	data, err := json.MarshalIndent(hits, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize titles: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
