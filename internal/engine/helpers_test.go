package engine

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mj1618/droid-a11y/internal/clock"
	"github.com/mj1618/droid-a11y/internal/logbuf"
	"github.com/mj1618/droid-a11y/internal/model"
	"github.com/mj1618/droid-a11y/internal/platform"
	"github.com/mj1618/droid-a11y/internal/platform/fixture"
)

const (
	target   = DefaultTargetPackage
	launcher = "com.android.launcher3"
)

var (
	start  = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	phone  = platform.Size{Width: 1080, Height: 2400}
	screen = fixture.R(0, 0, 1080, 2400)
)

func newTestEngine(t *testing.T, svc platform.Service) (*Engine, *clock.Fake, *logbuf.Buffer) {
	t.Helper()
	c := clock.NewFake(start)
	log := logbuf.New(0, logbuf.WithClock(c))
	e := New(Config{}, WithClock(c), WithLog(log))
	if svc != nil {
		e.Attach(svc)
	}
	return e, c, log
}

func logContains(log *logbuf.Buffer, sub string) bool {
	for _, l := range log.Snapshot() {
		if strings.Contains(l, sub) {
			return true
		}
	}
	return false
}

// label is a TextView 760x60 with its top edge at top.
func label(text string, top int) *fixture.Node {
	return fixture.New("android.widget.TextView", text, fixture.R(40, top, 800, top+60))
}

// row is a clickable list row wrapping a label.
func row(text string, top int) *fixture.Node {
	return fixture.New("android.widget.LinearLayout", "", fixture.R(0, top-40, 1080, top+100)).
		WithClickable().
		Add(label(text, top))
}

func list(children ...*fixture.Node) *fixture.Node {
	return fixture.New("androidx.recyclerview.widget.RecyclerView", "", fixture.R(0, 200, 1080, 2400)).
		WithActions(model.ActionScrollForward).
		Add(children...)
}

func window(pkg string, children ...*fixture.Node) *fixture.Node {
	return fixture.New("android.widget.FrameLayout", "", screen).
		WithPackage(pkg).
		Add(children...)
}

// listScreen is a Chats screen whose list holds one row per title.
func listScreen(titles ...string) *fixture.Node {
	rows := make([]*fixture.Node, len(titles))
	for i, t := range titles {
		rows[i] = row(t, 300+i*200)
	}
	return window(target, label("Chats", 100), list(rows...))
}

// countingService counts window-root queries so tests can tell whether an
// operation touched the live tree.
type countingService struct {
	platform.Service
	mu    sync.Mutex
	calls int
}

func (c *countingService) ActiveWindowRoot() model.Node {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.Service.ActiveWindowRoot()
}

func (c *countingService) InteractiveWindowRoots() ([]model.Node, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.Service.InteractiveWindowRoots()
}

func (c *countingService) treeCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
