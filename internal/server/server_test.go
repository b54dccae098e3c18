package server

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/droid-a11y/internal/automation"
	"github.com/mj1618/droid-a11y/internal/clock"
	"github.com/mj1618/droid-a11y/internal/engine"
	"github.com/mj1618/droid-a11y/internal/logbuf"
	"github.com/mj1618/droid-a11y/internal/model"
	"github.com/mj1618/droid-a11y/internal/platform"
	"github.com/mj1618/droid-a11y/internal/platform/fixture"
)

const target = engine.DefaultTargetPackage

func chatsScreen(titles ...string) *fixture.Node {
	list := fixture.New("androidx.recyclerview.widget.RecyclerView", "", fixture.R(0, 200, 1080, 2400)).
		WithActions(model.ActionScrollForward)
	for i, t := range titles {
		top := 300 + i*200
		list.Add(fixture.New("android.widget.LinearLayout", "", fixture.R(0, top-40, 1080, top+100)).
			WithClickable().
			Add(fixture.New("android.widget.TextView", t, fixture.R(40, top, 800, top+60))))
	}
	return fixture.New("android.widget.FrameLayout", "", fixture.R(0, 0, 1080, 2400)).
		WithPackage(target).
		Add(fixture.New("android.widget.TextView", "Chats", fixture.R(40, 100, 400, 160)), list)
}

type testServer struct {
	*Server
	host  *fixture.Host
	clock *clock.Fake
}

func newTestServer(t *testing.T, shots platform.Screenshotter) testServer {
	t.Helper()
	host := fixture.NewHost(platform.Size{Width: 1080, Height: 2400}).
		AddWindow(true, chatsScreen("Recipe Ideas", "Trip to Lisbon"))
	c := clock.NewFake(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	log := logbuf.New(0, logbuf.WithClock(c))
	eng := engine.New(engine.Config{}, engine.WithClock(c), engine.WithLog(log))
	eng.Attach(host)
	ctl := automation.New(eng, host, log, automation.Config{}, automation.WithClock(c))
	t.Cleanup(ctl.Close)
	if shots == nil {
		shots = host
	}
	return testServer{
		Server: New(ctl, shots, Options{CacheTTL: time.Second, Clock: c}),
		host:   host,
		clock:  c,
	}
}

// Helper to create a CallToolRequest with arguments
func makeToolRequest(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// Helper to get text content from result
func getTextContent(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestHandleDetect(t *testing.T) {
	s := newTestServer(t, nil)

	result, err := s.handleDetect(context.Background(), makeToolRequest(nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := getTextContent(result)
	assert.Contains(t, text, "ok: true")
	assert.Contains(t, text, "screen: Chats")
	assert.Contains(t, text, "Found visible text: Chats")
}

func TestHandleReadTitles(t *testing.T) {
	s := newTestServer(t, nil)

	result, err := s.handleReadTitles(context.Background(), makeToolRequest(nil))
	require.NoError(t, err)
	text := getTextContent(result)
	assert.Contains(t, text, "count: 2")
	assert.Contains(t, text, "title: Recipe Ideas")
	assert.Contains(t, text, "title: Trip to Lisbon")

	launches := len(s.host.Launched())
	result, err = s.handleReadTitles(context.Background(), makeToolRequest(map[string]interface{}{"cached": true}))
	require.NoError(t, err)
	assert.Contains(t, getTextContent(result), "count: 2")
	assert.Len(t, s.host.Launched(), launches, "cached read must not touch the device")
}

func TestHandleOpen_ArgumentValidation(t *testing.T) {
	s := newTestServer(t, nil)

	for _, args := range []map[string]interface{}{
		nil,
		{"first": true, "title": "Recipe Ideas"},
		{"index": float64(0), "first": true},
	} {
		result, err := s.handleOpen(context.Background(), makeToolRequest(args))
		require.NoError(t, err)
		assert.True(t, result.IsError, "args %v", args)
		assert.Contains(t, getTextContent(result), "exactly one")
	}
}

func TestHandleOpen(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	_, err := s.handleReadTitles(ctx, makeToolRequest(nil))
	require.NoError(t, err)

	result, err := s.handleOpen(ctx, makeToolRequest(map[string]interface{}{"index": float64(1)}))
	require.NoError(t, err)
	assert.False(t, result.IsError, getTextContent(result))
	assert.Contains(t, getTextContent(result), "target: index 1")

	result, err = s.handleOpen(ctx, makeToolRequest(map[string]interface{}{"title": "Recipe Ideas"}))
	require.NoError(t, err)
	assert.False(t, result.IsError, getTextContent(result))

	result, err = s.handleOpen(ctx, makeToolRequest(map[string]interface{}{"title": "Nope"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, getTextContent(result), "no node with title")

	result, err = s.handleOpen(ctx, makeToolRequest(map[string]interface{}{"index": float64(9)}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, getTextContent(result), "out of range")
}

func TestHandleScrollToEnd(t *testing.T) {
	s := newTestServer(t, nil)

	result, err := s.handleScrollToEnd(context.Background(), makeToolRequest(map[string]interface{}{
		"max_scrolls":    float64(10),
		"stable_repeats": float64(2),
	}))
	require.NoError(t, err)
	text := getTextContent(result)
	assert.Contains(t, text, "reached_end: true")
	assert.Contains(t, text, "last_title: Trip to Lisbon")
}

func TestHandleDump(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	result, err := s.handleDump(ctx, makeToolRequest(map[string]interface{}{"flat": true, "roles": "txt"}))
	require.NoError(t, err)
	require.False(t, result.IsError, getTextContent(result))
	text := getTextContent(result)
	assert.Contains(t, text, "pkg: "+target)
	assert.Contains(t, text, "t: Recipe Ideas")
	assert.Contains(t, text, "p: group > list > group > txt")
	assert.NotContains(t, text, "r: list")

	result, err = s.handleDump(ctx, makeToolRequest(map[string]interface{}{"text": "lisbon", "prune": true}))
	require.NoError(t, err)
	text = getTextContent(result)
	assert.Contains(t, text, "Trip to Lisbon")
	assert.NotContains(t, text, "Recipe Ideas")
}

func TestHandleDump_BBox(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	result, err := s.handleDump(ctx, makeToolRequest(map[string]interface{}{"flat": true, "roles": "txt", "bbox": "0,450,1080,200"}))
	require.NoError(t, err)
	require.False(t, result.IsError, getTextContent(result))
	text := getTextContent(result)
	assert.Contains(t, text, "t: Trip to Lisbon")
	assert.NotContains(t, text, "Recipe Ideas")
	assert.NotContains(t, text, "t: Chats")

	result, err = s.handleDump(ctx, makeToolRequest(map[string]interface{}{"bbox": "0,450,1080,200"}))
	require.NoError(t, err)
	text = getTextContent(result)
	assert.Contains(t, text, "Trip to Lisbon")
	assert.NotContains(t, text, "Recipe Ideas")

	result, err = s.handleDump(ctx, makeToolRequest(map[string]interface{}{"bbox": "0,450"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, getTextContent(result), "invalid bbox")
}

func TestHandleDump_UsesCacheUntilDeviceIsDriven(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()
	dumps := func() int {
		n := 0
		for _, l := range s.ctl.Log().Snapshot() {
			if strings.Contains(l, "Dump nodes=") {
				n++
			}
		}
		return n
	}

	_, err := s.handleDump(ctx, makeToolRequest(nil))
	require.NoError(t, err)
	_, err = s.handleDump(ctx, makeToolRequest(map[string]interface{}{"flat": true}))
	require.NoError(t, err)
	assert.Equal(t, 1, dumps(), "second dump within TTL is served from cache")

	_, err = s.handleScrollToEnd(ctx, makeToolRequest(map[string]interface{}{"max_scrolls": float64(1)}))
	require.NoError(t, err)
	_, err = s.handleDump(ctx, makeToolRequest(nil))
	require.NoError(t, err)
	assert.Equal(t, 2, dumps(), "scrolling invalidates the cache")
}

func TestHandleScreenshot(t *testing.T) {
	s := newTestServer(t, nil)

	result, err := s.handleScreenshot(context.Background(), makeToolRequest(nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var img *mcp.ImageContent
	for _, c := range result.Content {
		if ic, ok := c.(mcp.ImageContent); ok {
			img = &ic
		}
	}
	require.NotNil(t, img)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.NotEmpty(t, img.Data)
}

type brokenCamera struct{}

func (brokenCamera) CaptureScreen() ([]byte, error) { return nil, errors.New("screencap: closed") }

func TestHandleScreenshot_Failure(t *testing.T) {
	s := newTestServer(t, brokenCamera{})

	result, err := s.handleScreenshot(context.Background(), makeToolRequest(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, getTextContent(result), "screencap: closed")
}

func TestHandleLog(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	_, err := s.handleDetect(ctx, makeToolRequest(nil))
	require.NoError(t, err)

	result, err := s.handleLog(ctx, makeToolRequest(map[string]interface{}{"tail": float64(1), "clear": true}))
	require.NoError(t, err)
	text := getTextContent(result)
	assert.Contains(t, text, "Detect screen=Chats")
	assert.Equal(t, 1, strings.Count(text, "\n")+1)

	result, err = s.handleLog(ctx, makeToolRequest(nil))
	require.NoError(t, err)
	assert.Equal(t, "(log is empty)", getTextContent(result))
}

func TestTitlesResource(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	contents, err := s.handleTitlesResource(ctx, mcp.ReadResourceRequest{Params: mcp.ReadResourceParams{URI: "droid-a11y://titles"}})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	assert.Equal(t, "[]", contents[0].(mcp.TextResourceContents).Text)

	_, err = s.handleReadTitles(ctx, makeToolRequest(nil))
	require.NoError(t, err)

	contents, err = s.handleTitlesResource(ctx, mcp.ReadResourceRequest{Params: mcp.ReadResourceParams{URI: "droid-a11y://titles"}})
	require.NoError(t, err)
	var hits []engine.TitleHit
	require.NoError(t, json.Unmarshal([]byte(contents[0].(mcp.TextResourceContents).Text), &hits))
	require.Len(t, hits, 2)
	assert.Equal(t, "Recipe Ideas", hits[0].Title)
	assert.Equal(t, 420, hits[0].TapX)
}

func TestLogResource(t *testing.T) {
	s := newTestServer(t, nil)
	s.ctl.Log().Add("hello")

	contents, err := s.handleLogResource(context.Background(), mcp.ReadResourceRequest{Params: mcp.ReadResourceParams{URI: "droid-a11y://log"}})
	require.NoError(t, err)
	tc := contents[0].(mcp.TextResourceContents)
	assert.Equal(t, "text/plain", tc.MIMEType)
	assert.True(t, strings.HasSuffix(tc.Text, "  hello"))
}

func TestServe_UnsupportedTransport(t *testing.T) {
	s := newTestServer(t, nil)
	assert.Error(t, s.Serve("carrier-pigeon", ""))
}

func TestDumpCache(t *testing.T) {
	c := clock.NewFake(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	cache := NewDumpCache(time.Second, c)
	loads := 0
	load := func(_ context.Context, n int) (automation.Snapshot, error) {
		loads++
		return automation.Snapshot{Package: target, Truncated: n > 0}, nil
	}
	ctx := context.Background()

	_, hit, err := cache.Get(ctx, 0, load)
	require.NoError(t, err)
	assert.False(t, hit)
	_, hit, _ = cache.Get(ctx, 0, load)
	assert.True(t, hit)
	snap, hit, _ := cache.Get(ctx, 5, load)
	assert.False(t, hit, "entries are keyed by node cap")
	assert.True(t, snap.Truncated)
	assert.Equal(t, 2, loads)

	c.Sleep(time.Second)
	_, hit, _ = cache.Get(ctx, 0, load)
	assert.False(t, hit, "expired")

	cache.Invalidate()
	_, hit, _ = cache.Get(ctx, 0, load)
	assert.False(t, hit, "invalidated")
	assert.Equal(t, 4, loads)

	failing := func(context.Context, int) (automation.Snapshot, error) {
		return automation.Snapshot{}, errors.New("no target")
	}
	cache.Invalidate()
	_, _, err = cache.Get(ctx, 0, failing)
	assert.Error(t, err)
	_, hit, _ = cache.Get(ctx, 0, load)
	assert.False(t, hit, "errors are not cached")
}

func TestDumpCache_Disabled(t *testing.T) {
	cache := NewDumpCache(0, nil)
	loads := 0
	load := func(context.Context, int) (automation.Snapshot, error) {
		loads++
		return automation.Snapshot{}, nil
	}
	cache.Get(context.Background(), 0, load)
	cache.Get(context.Background(), 0, load)
	assert.Equal(t, 2, loads)
}

func TestParams(t *testing.T) {
	params := map[string]interface{}{
		"s":     "x",
		"n":     float64(3),
		"b":     true,
		"roles": " txt, btn ,,list",
		"nil":   nil,
	}
	assert.Equal(t, "x", stringParam(params, "s", ""))
	assert.Equal(t, "3", stringParam(params, "n", ""))
	assert.Equal(t, "d", stringParam(params, "missing", "d"))
	assert.Equal(t, 3, intParam(params, "n", 0))
	assert.Equal(t, 7, intParam(params, "s", 7))
	assert.True(t, boolParam(params, "b", false))
	assert.False(t, hasParam(params, "nil"))
	assert.True(t, hasParam(params, "n"))
	assert.Equal(t, []string{"txt", "btn", "list"}, listParam(params, "roles"))
	assert.Nil(t, listParam(params, "missing"))
}
