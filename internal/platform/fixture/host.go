package fixture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/mj1618/droid-a11y/internal/model"
	"github.com/mj1618/droid-a11y/internal/platform"
)

// ErrNotInstalled is returned by LaunchApp for a package no window belongs to.
var ErrNotInstalled = errors.New("package not installed")

// GestureMode selects how the host answers dispatched gestures.
type GestureMode int

const (
	GestureComplete GestureMode = iota // accept and report completion
	GestureCancel                      // accept and report cancellation
	GestureLost                        // accept and never answer
	GestureReject                      // refuse to schedule
)

type window struct {
	active bool
	frames []*Node
	frame  int
}

func (w *window) root() *Node {
	if len(w.frames) == 0 {
		return nil
	}
	return w.frames[w.frame]
}

func (w *window) pkg() string {
	if r := w.root(); r != nil {
		return r.PackageName()
	}
	return ""
}

// Host is an in-memory platform.Service, platform.Launcher and
// platform.Screenshotter.
type Host struct {
	mu              sync.Mutex
	screen          platform.Size
	windows         []*window
	windowsErr      error
	lastEvent       string
	gestureMode     GestureMode
	launchActivates bool
	gestures        []platform.Gesture
	launched        []string
}

var (
	_ platform.Service       = (*Host)(nil)
	_ platform.Launcher      = (*Host)(nil)
	_ platform.Screenshotter = (*Host)(nil)
)

// NewHost returns an empty host with the given screen size.
func NewHost(screen platform.Size) *Host {
	return &Host{screen: screen, launchActivates: true}
}

// AddWindow adds a window showing frames[0]. Later frames are shown one at
// a time as the window is scrolled forward.
func (h *Host) AddWindow(active bool, frames ...*Node) *Host {
	for _, f := range frames {
		f.attach(h)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if active {
		for _, w := range h.windows {
			w.active = false
		}
	}
	h.windows = append(h.windows, &window{active: active, frames: frames})
	return h
}

// SetActive makes the first window owned by pkg the active one and records
// an event from it. It reports whether such a window exists.
func (h *Host) SetActive(pkg string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.setActiveLocked(pkg)
}

func (h *Host) setActiveLocked(pkg string) bool {
	idx := -1
	for i, w := range h.windows {
		if w.pkg() == pkg {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	for i, w := range h.windows {
		w.active = i == idx
	}
	h.lastEvent = pkg
	return true
}

// RecordEvent notes an accessibility event from pkg.
func (h *Host) RecordEvent(pkg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastEvent = pkg
}

// SetWindowsError makes InteractiveWindowRoots fail with err.
func (h *Host) SetWindowsError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.windowsErr = err
}

// SetGestureMode changes how later gestures are answered.
func (h *Host) SetGestureMode(m GestureMode) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.gestureMode = m
}

// SetLaunchActivates controls whether LaunchApp brings the package's window
// to the front. It does by default.
func (h *Host) SetLaunchActivates(v bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.launchActivates = v
}

// Gestures returns every gesture dispatched so far, accepted or not.
func (h *Host) Gestures() []platform.Gesture {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]platform.Gesture, len(h.gestures))
	copy(out, h.gestures)
	return out
}

// Launched returns every package passed to LaunchApp.
func (h *Host) Launched() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.launched))
	copy(out, h.launched)
	return out
}

// Frame returns the frame index shown by the first window owned by pkg, or
// -1 if there is none.
func (h *Host) Frame(pkg string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, w := range h.windows {
		if w.pkg() == pkg {
			return w.frame
		}
	}
	return -1
}

func (h *Host) ActiveWindowRoot() model.Node {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, w := range h.windows {
		if w.active {
			if r := w.root(); r != nil {
				return r
			}
		}
	}
	return nil
}

func (h *Host) InteractiveWindowRoots() ([]model.Node, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.windowsErr != nil {
		return nil, h.windowsErr
	}
	var roots []model.Node
	for _, w := range h.windows {
		if r := w.root(); r != nil {
			roots = append(roots, r)
		}
	}
	return roots, nil
}

func (h *Host) LastEventPackage() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastEvent
}

func (h *Host) ScreenSize() platform.Size {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.screen
}

// DispatchGesture records g and answers according to the gesture mode.
// Accepted swipes scroll the active window forward one frame.
func (h *Host) DispatchGesture(g platform.Gesture, done func(completed bool)) bool {
	h.mu.Lock()
	h.gestures = append(h.gestures, g)
	mode := h.gestureMode
	if mode != GestureReject && !g.IsTap() {
		for _, w := range h.windows {
			if w.active && w.frame < len(w.frames)-1 {
				w.frame++
			}
		}
	}
	h.mu.Unlock()

	switch mode {
	case GestureReject:
		return false
	case GestureLost:
		return true
	default:
		done(mode == GestureComplete)
		return true
	}
}

// LaunchApp records the launch and, unless disabled, activates the
// package's window.
func (h *Host) LaunchApp(pkg string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.launched = append(h.launched, pkg)
	found := false
	for _, w := range h.windows {
		if w.pkg() == pkg {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("launch %s: %w", pkg, ErrNotInstalled)
	}
	if h.launchActivates {
		h.setActiveLocked(pkg)
	}
	return nil
}

// CaptureScreen renders the active window's node outlines as a PNG.
func (h *Host) CaptureScreen() ([]byte, error) {
	size := h.ScreenSize()
	if size.Width <= 0 || size.Height <= 0 {
		return nil, fmt.Errorf("capture screen: invalid screen size %dx%d", size.Width, size.Height)
	}
	img := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	if root, ok := h.ActiveWindowRoot().(*Node); ok {
		outline(img, root, color.RGBA{R: 0xc0, G: 0xc0, B: 0xc0, A: 0xff})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}
	return buf.Bytes(), nil
}

func outline(img *image.RGBA, n *Node, c color.RGBA) {
	r := n.bounds
	if !r.Empty() {
		for x := r.Left; x < r.Right; x++ {
			img.SetRGBA(x, r.Top, c)
			img.SetRGBA(x, r.Bottom-1, c)
		}
		for y := r.Top; y < r.Bottom; y++ {
			img.SetRGBA(r.Left, y, c)
			img.SetRGBA(r.Right-1, y, c)
		}
	}
	for _, ch := range n.children {
		outline(img, ch, c)
	}
}

// advance moves the window whose frames include root to its next frame.
// It reports false when that window is already on its last frame.
func (h *Host) advance(root *Node) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, w := range h.windows {
		for _, f := range w.frames {
			if f != root {
				continue
			}
			if w.frame >= len(w.frames)-1 {
				return false
			}
			w.frame++
			return true
		}
	}
	return true
}

// replace swaps in the windows and settings of other, keeping the records.
func (h *Host) replace(other *Host) {
	other.mu.Lock()
	windows, screen, lastEvent := other.windows, other.screen, other.lastEvent
	other.mu.Unlock()
	for _, w := range windows {
		for _, f := range w.frames {
			f.attach(h)
		}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.windows = windows
	h.screen = screen
	h.lastEvent = lastEvent
}
