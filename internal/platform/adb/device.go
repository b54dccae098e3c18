package adb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mj1618/droid-a11y/internal/clock"
	"github.com/mj1618/droid-a11y/internal/model"
	"github.com/mj1618/droid-a11y/internal/platform"
)

const (
	// SnapshotTTL is how long one dump serves tree queries before the
	// device is dumped again.
	SnapshotTTL = 400 * time.Millisecond

	dumpPath      = "/data/local/tmp/droid-a11y.xml"
	dumpAttempts  = 2
	longPressMs   = 600
	scrollSwipeMs = 300
)

// ErrLaunchFailed is returned when the monkey launcher cannot start a package.
var ErrLaunchFailed = errors.New("launch failed")

var (
	focusRe = regexp.MustCompile(`mCurrentFocus=Window\{\S+ \S+ ([^/\s}]+)`)
	sizeRe  = regexp.MustCompile(`(Physical|Override) size:\s*(\d+x\d+)`)
)

// Device is a platform.Service backed by adb. Tree queries share one
// uiautomator dump for SnapshotTTL; any input sent through the device
// discards the snapshot.
type Device struct {
	client *Client
	clock  clock.Clock
	ttl    time.Duration
	log    zerolog.Logger

	mu    sync.Mutex
	roots []*Node
	focus string
	at    time.Time
	size  platform.Size
}

// DeviceOption configures a Device.
type DeviceOption func(*Device)

// WithClock sets the clock that ages snapshots.
func WithClock(c clock.Clock) DeviceOption { return func(d *Device) { d.clock = c } }

// WithSnapshotTTL overrides SnapshotTTL.
func WithSnapshotTTL(ttl time.Duration) DeviceOption { return func(d *Device) { d.ttl = ttl } }

// NewDevice wraps client.
func NewDevice(client *Client, log zerolog.Logger, opts ...DeviceOption) *Device {
	d := &Device{
		client: client,
		clock:  clock.Real{},
		ttl:    SnapshotTTL,
		log:    log,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ActiveWindowRoot returns the dumped root owned by the focused package,
// falling back to the first root.
func (d *Device) ActiveWindowRoot() model.Node {
	roots, focus, err := d.snapshot()
	if err != nil {
		d.log.Warn().Err(err).Msg("dump failed")
		return nil
	}
	if len(roots) == 0 {
		return nil
	}
	for _, r := range roots {
		if r.pkg == focus {
			return r
		}
	}
	return roots[0]
}

// InteractiveWindowRoots returns every top-level node of the dump.
func (d *Device) InteractiveWindowRoots() ([]model.Node, error) {
	roots, _, err := d.snapshot()
	if err != nil {
		return nil, err
	}
	out := make([]model.Node, len(roots))
	for i, r := range roots {
		out[i] = r
	}
	return out, nil
}

// LastEventPackage returns the package of the focused window as of the
// latest snapshot.
func (d *Device) LastEventPackage() string {
	_, focus, err := d.snapshot()
	if err != nil {
		return ""
	}
	return focus
}

// ScreenSize queries "wm size" once and caches the answer. An override
// size wins over the physical size.
func (d *Device) ScreenSize() platform.Size {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.size.Width > 0 {
		return d.size
	}
	out, err := d.client.Shell(context.Background(), "wm", "size")
	if err != nil {
		d.log.Warn().Err(err).Msg("wm size failed")
		return platform.Size{}
	}
	size, err := parseWMSize(string(out))
	if err != nil {
		d.log.Warn().Err(err).Msg("wm size unparseable")
		return platform.Size{}
	}
	d.size = size
	return size
}

// DispatchGesture sends the first stroke of g as "input tap" or "input
// swipe" in the background and reports the exit status through done.
func (d *Device) DispatchGesture(g platform.Gesture, done func(completed bool)) bool {
	args, ok := inputArgs(g)
	if !ok {
		return false
	}
	go func() {
		err := d.input(args...)
		if err != nil {
			d.log.Warn().Err(err).Str("gesture", g.String()).Msg("gesture failed")
		}
		done(err == nil)
	}()
	return true
}

// LaunchApp starts pkg's launcher activity via monkey.
func (d *Device) LaunchApp(pkg string) error {
	defer d.Invalidate()
	out, err := d.client.Shell(context.Background(),
		"monkey", "-p", pkg, "-c", "android.intent.category.LAUNCHER", "1")
	if err != nil {
		return fmt.Errorf("launch %s: %w", pkg, err)
	}
	if strings.Contains(string(out), "No activities found") || strings.Contains(string(out), "monkey aborted") {
		return fmt.Errorf("%w: %s: %s", ErrLaunchFailed, pkg, strings.TrimSpace(string(out)))
	}
	return nil
}

// CaptureScreen returns a PNG screenshot.
func (d *Device) CaptureScreen() ([]byte, error) {
	out, err := d.client.Exec(context.Background(), "exec-out", "screencap", "-p")
	if err != nil {
		return nil, fmt.Errorf("screencap: %w", err)
	}
	return out, nil
}

// Invalidate discards the current snapshot.
func (d *Device) Invalidate() {
	d.mu.Lock()
	d.at = time.Time{}
	d.mu.Unlock()
}

func (d *Device) perform(n *Node, a model.Action) bool {
	r := n.bounds
	if r.Empty() {
		return false
	}
	cx, cy := r.CenterX(), r.CenterY()
	var args []string
	switch a {
	case model.ActionClick:
		args = []string{"tap", itoa(cx), itoa(cy)}
	case model.ActionLongClick:
		args = []string{"swipe", itoa(cx), itoa(cy), itoa(cx), itoa(cy), itoa(longPressMs)}
	case model.ActionScrollForward, model.ActionScrollBackward:
		low := r.Top + r.Height()*4/5
		high := r.Top + r.Height()/5
		if a == model.ActionScrollBackward {
			low, high = high, low
		}
		args = []string{"swipe", itoa(cx), itoa(low), itoa(cx), itoa(high), itoa(scrollSwipeMs)}
	default:
		return false
	}
	if err := d.input(args...); err != nil {
		d.log.Warn().Err(err).Str("action", string(a)).Msg("action failed")
		return false
	}
	return true
}

func (d *Device) input(args ...string) error {
	defer d.Invalidate()
	_, err := d.client.Shell(context.Background(), append([]string{"input"}, args...)...)
	return err
}

func (d *Device) snapshot() ([]*Node, string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.at.IsZero() && d.clock.Now().Sub(d.at) < d.ttl {
		return d.roots, d.focus, nil
	}

	ctx := context.Background()
	roots, err := d.dump(ctx)
	if err != nil {
		return nil, "", err
	}
	focus, err := d.focused(ctx)
	if err != nil {
		d.log.Debug().Err(err).Msg("focus query failed")
	}
	d.roots, d.focus, d.at = roots, focus, d.clock.Now()
	return roots, focus, nil
}

func (d *Device) dump(ctx context.Context) ([]*Node, error) {
	var lastErr error
	for i := 0; i < dumpAttempts; i++ {
		if i > 0 {
			_, _ = d.client.Shell(ctx, "pkill", "uiautomator")
		}
		out, err := d.client.Shell(ctx, fmt.Sprintf("uiautomator dump %s >/dev/null && cat %s", dumpPath, dumpPath))
		if err != nil {
			lastErr = err
			continue
		}
		roots, err := ParseHierarchy(out, d)
		if err != nil {
			lastErr = err
			continue
		}
		return roots, nil
	}
	return nil, fmt.Errorf("uiautomator dump: %w", lastErr)
}

func (d *Device) focused(ctx context.Context) (string, error) {
	out, err := d.client.Shell(ctx, "dumpsys", "window", "windows")
	if err != nil {
		return "", err
	}
	return parseFocus(string(out)), nil
}

func parseFocus(dumpsys string) string {
	m := focusRe.FindStringSubmatch(dumpsys)
	if m == nil {
		return ""
	}
	return m[1]
}

func parseWMSize(out string) (platform.Size, error) {
	var physical, override string
	for _, m := range sizeRe.FindAllStringSubmatch(out, -1) {
		if m[1] == "Override" {
			override = m[2]
		} else {
			physical = m[2]
		}
	}
	if override != "" {
		return platform.ParseSize(override)
	}
	if physical != "" {
		return platform.ParseSize(physical)
	}
	return platform.Size{}, fmt.Errorf("no size in %q", strings.TrimSpace(out))
}

func inputArgs(g platform.Gesture) ([]string, bool) {
	if len(g.Strokes) == 0 || len(g.Strokes[0].Path) == 0 {
		return nil, false
	}
	s := g.Strokes[0]
	from, to := s.Path[0], s.Path[len(s.Path)-1]
	if g.IsTap() {
		return []string{"tap", ftoa(from.X), ftoa(from.Y)}, true
	}
	ms := s.Duration.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return []string{"swipe", ftoa(from.X), ftoa(from.Y), ftoa(to.X), ftoa(to.Y), strconv.FormatInt(ms, 10)}, true
}

func itoa(v int) string { return strconv.Itoa(v) }

func ftoa(v float64) string { return strconv.Itoa(int(v + 0.5)) }
