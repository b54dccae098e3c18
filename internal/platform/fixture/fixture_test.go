package fixture

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mj1618/droid-a11y/internal/model"
	"github.com/mj1618/droid-a11y/internal/platform"
)

const chatgpt = "com.openai.chatgpt"

func loadTestHost(t *testing.T) *Host {
	t.Helper()
	spec, err := Load(filepath.Join("testdata", "chats.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	h, err := spec.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return h
}

func TestLoad_BuildsWindows(t *testing.T) {
	h := loadTestHost(t)

	if got := h.ScreenSize(); got != (platform.Size{Width: 1080, Height: 2400}) {
		t.Errorf("screen = %+v", got)
	}
	if got := h.LastEventPackage(); got != "com.android.launcher3" {
		t.Errorf("last event = %q", got)
	}
	active := h.ActiveWindowRoot()
	if active == nil || active.PackageName() != "com.android.launcher3" {
		t.Fatalf("active root = %v", active)
	}
	roots, err := h.InteractiveWindowRoots()
	if err != nil {
		t.Fatalf("InteractiveWindowRoots: %v", err)
	}
	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(roots))
	}
	if roots[1].PackageName() != chatgpt {
		t.Errorf("second root package = %q", roots[1].PackageName())
	}
}

func TestLoad_NodeFields(t *testing.T) {
	h := loadTestHost(t)
	roots, _ := h.InteractiveWindowRoots()
	root := roots[1].(*Node)

	title := root.Find("Recipe Ideas")
	if title == nil {
		t.Fatal("Recipe Ideas not found")
	}
	if title.Bounds() != R(40, 280, 800, 360) {
		t.Errorf("bounds = %v", title.Bounds())
	}
	if title.PackageName() != chatgpt {
		t.Errorf("inherited package = %q", title.PackageName())
	}
	row := title.Parent()
	if row == nil || !row.Clickable() {
		t.Fatal("expected clickable parent row")
	}
	list := row.Parent()
	if !list.HasAction(model.ActionScrollForward) {
		t.Error("list should support scroll_forward")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no windows", "screen: {width: 1, height: 1}\n"},
		{"bad yaml", "windows: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}

	spec, err := Parse([]byte("windows:\n  - root: {class: x, bounds: \"[0,0]\"}\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := spec.Build(); err == nil {
		t.Error("expected bounds error from Build")
	}
}

func TestNode_PerformAction(t *testing.T) {
	clickable := New("android.widget.LinearLayout", "", R(0, 0, 10, 10)).WithClickable()
	viaAction := New("android.view.View", "", R(0, 0, 10, 10)).WithActions(model.ActionClick)
	plain := New("android.widget.TextView", "hi", R(0, 0, 10, 10))
	refused := New("android.widget.Button", "", R(0, 0, 10, 10)).WithClickable().Refuse(model.ActionClick)

	if !clickable.PerformAction(model.ActionClick) {
		t.Error("clickable node should accept click")
	}
	if !viaAction.PerformAction(model.ActionClick) {
		t.Error("node listing click should accept click")
	}
	if plain.PerformAction(model.ActionClick) {
		t.Error("plain text should refuse click")
	}
	if refused.PerformAction(model.ActionClick) {
		t.Error("refused action should fail")
	}
	if got := plain.Performed(); len(got) != 1 || got[0] != model.ActionClick {
		t.Errorf("performed = %v", got)
	}
}

func TestNode_DroppedChild(t *testing.T) {
	parent := New("x", "", R(0, 0, 1, 1)).Add(
		New("a", "", R(0, 0, 1, 1)),
		New("b", "", R(0, 0, 1, 1)),
	).Drop(0)

	if parent.ChildCount() != 2 {
		t.Fatalf("child count = %d", parent.ChildCount())
	}
	if parent.Child(0) != nil {
		t.Error("dropped child should be nil")
	}
	if parent.Child(1) == nil {
		t.Error("child 1 should remain")
	}
	if parent.Child(5) != nil {
		t.Error("out of range child should be nil")
	}
}

func TestHost_ScrollAdvancesFrames(t *testing.T) {
	h := loadTestHost(t)
	roots, _ := h.InteractiveWindowRoots()
	list := roots[1].(*Node).Find("Recipe Ideas").parent.parent

	if !list.PerformAction(model.ActionScrollForward) {
		t.Fatal("first scroll should succeed")
	}
	if h.Frame(chatgpt) != 1 {
		t.Errorf("frame = %d, want 1", h.Frame(chatgpt))
	}
	if list.PerformAction(model.ActionScrollForward) {
		t.Error("scroll on last frame should fail")
	}
	roots, _ = h.InteractiveWindowRoots()
	if roots[1].(*Node).Find("Go concurrency notes") == nil {
		t.Error("second frame should be showing")
	}
}

func TestHost_GestureModes(t *testing.T) {
	tap := platform.Gesture{Strokes: []platform.Stroke{{Path: []platform.Point{{X: 1, Y: 1}}}}}

	tests := []struct {
		mode        GestureMode
		wantStarted bool
		wantCalled  bool
		wantOK      bool
	}{
		{GestureComplete, true, true, true},
		{GestureCancel, true, true, false},
		{GestureLost, true, false, false},
		{GestureReject, false, false, false},
	}
	for _, tt := range tests {
		h := NewHost(platform.Size{Width: 10, Height: 10})
		h.SetGestureMode(tt.mode)
		called, ok := false, false
		started := h.DispatchGesture(tap, func(c bool) { called, ok = true, c })
		if started != tt.wantStarted || called != tt.wantCalled || ok != tt.wantOK {
			t.Errorf("mode %d: started=%v called=%v ok=%v", tt.mode, started, called, ok)
		}
		if len(h.Gestures()) != 1 {
			t.Errorf("mode %d: gesture not recorded", tt.mode)
		}
	}
}

func TestHost_SwipeScrollsActiveWindow(t *testing.T) {
	h := loadTestHost(t)
	h.SetActive(chatgpt)
	swipe := platform.Gesture{Strokes: []platform.Stroke{{
		Path: []platform.Point{{X: 540, Y: 1920}, {X: 540, Y: 720}},
	}}}

	h.DispatchGesture(swipe, func(bool) {})
	if h.Frame(chatgpt) != 1 {
		t.Errorf("frame = %d, want 1", h.Frame(chatgpt))
	}
}

func TestHost_LaunchApp(t *testing.T) {
	h := loadTestHost(t)

	if err := h.LaunchApp(chatgpt); err != nil {
		t.Fatalf("LaunchApp: %v", err)
	}
	if got := h.ActiveWindowRoot().PackageName(); got != chatgpt {
		t.Errorf("active package = %q", got)
	}
	if got := h.LastEventPackage(); got != chatgpt {
		t.Errorf("last event = %q", got)
	}

	err := h.LaunchApp("com.example.missing")
	if !errors.Is(err, ErrNotInstalled) {
		t.Errorf("err = %v, want ErrNotInstalled", err)
	}
	if got := h.Launched(); len(got) != 2 {
		t.Errorf("launched = %v", got)
	}
}

func TestHost_LaunchWithoutActivation(t *testing.T) {
	h := loadTestHost(t)
	h.SetLaunchActivates(false)

	if err := h.LaunchApp(chatgpt); err != nil {
		t.Fatalf("LaunchApp: %v", err)
	}
	if got := h.ActiveWindowRoot().PackageName(); got == chatgpt {
		t.Error("window should stay in the background")
	}
}

func TestHost_WindowsError(t *testing.T) {
	h := loadTestHost(t)
	h.SetWindowsError(errors.New("binder died"))

	if _, err := h.InteractiveWindowRoots(); err == nil {
		t.Error("expected error")
	}
}

func TestHost_CaptureScreen(t *testing.T) {
	h := NewHost(platform.Size{Width: 20, Height: 30})
	h.AddWindow(true, New("x", "", R(2, 2, 10, 10)).WithPackage("p"))

	data, err := h.CaptureScreen()
	if err != nil {
		t.Fatalf("CaptureScreen: %v", err)
	}
	if !strings.HasPrefix(string(data), "\x89PNG") {
		t.Error("expected PNG data")
	}

	if _, err := NewHost(platform.Size{}).CaptureScreen(); err == nil {
		t.Error("expected error for zero screen")
	}
}

func TestOpen_Backend(t *testing.T) {
	p, err := platform.NewProvider("fixture", platform.Options{FixturePath: filepath.Join("testdata", "chats.yaml")})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if p.Name != "fixture" || p.Service == nil || p.Launcher == nil || p.Screenshotter == nil {
		t.Errorf("provider = %+v", p)
	}

	if _, err := platform.NewProvider("fixture", platform.Options{}); err == nil {
		t.Error("expected error without fixture path")
	}
}

func TestWatch_Reloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "screen.yaml")
	write := func(text string) {
		t.Helper()
		data := "screen: {width: 100, height: 100}\nwindows:\n  - active: true\n    root:\n      class: android.widget.TextView\n      package: p\n      text: " + text + "\n      bounds: \"[0,0][100,100]\"\n"
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("before")

	spec, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	h, err := spec.Build()
	if err != nil {
		t.Fatal(err)
	}
	w, err := Watch(h, path)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	write("after")

	select {
	case <-w.Reloaded():
	case <-time.After(5 * time.Second):
		t.Fatal("fixture was not reloaded")
	}
	if got := h.ActiveWindowRoot().Text(); got != "after" {
		t.Errorf("text after reload = %q", got)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
