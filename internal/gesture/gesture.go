// Package gesture turns tap and swipe requests into synthetic pointer
// gestures and blocks until the host reports an outcome.
package gesture

import (
	"errors"
	"fmt"
	"time"

	"github.com/mj1618/droid-a11y/internal/clock"
	"github.com/mj1618/droid-a11y/internal/platform"
)

var (
	// ErrGestureFailed is the parent of every dispatch failure.
	ErrGestureFailed = errors.New("gesture dispatch failed")

	ErrNotStarted = fmt.Errorf("%w: not started", ErrGestureFailed)
	ErrCancelled  = fmt.Errorf("%w: cancelled", ErrGestureFailed)
	ErrTimeout    = fmt.Errorf("%w: timed out", ErrGestureFailed)
)

// Default timings.
const (
	TapStroke    = 1 * time.Millisecond
	TapTimeout   = 1500 * time.Millisecond
	SwipeStroke  = 250 * time.Millisecond
	SwipeTimeout = 2 * time.Second
	swipeX       = 0.5
	swipeStartY  = 0.8
	swipeEndY    = 0.3
)

// Logger receives one human-readable line per failed gesture.
type Logger interface {
	Add(msg string)
}

// SwipeParams describes a vertical swipe.
type SwipeParams struct {
	StartX   float64
	StartY   float64
	EndY     float64
	Duration time.Duration // 0 = SwipeStroke
}

// DefaultSwipeUp returns a swipe at half the screen width from 80% to 30%
// of its height, which scrolls a list forward.
func DefaultSwipeUp(screen platform.Size) SwipeParams {
	return SwipeParams{
		StartX: float64(screen.Width) * swipeX,
		StartY: float64(screen.Height) * swipeStartY,
		EndY:   float64(screen.Height) * swipeEndY,
	}
}

// Adapter dispatches gestures through a host primitive.
type Adapter struct {
	Dispatcher   platform.GestureDispatcher
	Clock        clock.Clock   // nil = wall clock
	Log          Logger        // Optional
	TapTimeout   time.Duration // 0 = TapTimeout
	SwipeTimeout time.Duration // 0 = SwipeTimeout
}

// Tap presses (x, y) for a single millisecond.
func (a Adapter) Tap(x, y int) error {
	g := platform.Gesture{Strokes: []platform.Stroke{{
		Path:     []platform.Point{{X: float64(x), Y: float64(y)}},
		Duration: TapStroke,
	}}}
	return a.dispatch(g, orDefault(a.TapTimeout, TapTimeout))
}

// Swipe drags vertically from (StartX, StartY) to (StartX, EndY).
func (a Adapter) Swipe(p SwipeParams) error {
	g := platform.Gesture{Strokes: []platform.Stroke{{
		Path: []platform.Point{
			{X: p.StartX, Y: p.StartY},
			{X: p.StartX, Y: p.EndY},
		},
		Duration: orDefault(p.Duration, SwipeStroke),
	}}}
	return a.dispatch(g, orDefault(a.SwipeTimeout, SwipeTimeout))
}

// SwipeUpDefault performs DefaultSwipeUp for the given screen.
func (a Adapter) SwipeUpDefault(screen platform.Size) error {
	return a.Swipe(DefaultSwipeUp(screen))
}

func (a Adapter) dispatch(g platform.Gesture, timeout time.Duration) error {
	if a.Dispatcher == nil {
		return a.fail(g, ErrNotStarted)
	}
	done := make(chan bool, 1)
	started := a.Dispatcher.DispatchGesture(g, func(completed bool) {
		select {
		case done <- completed:
		default:
		}
	})
	if !started {
		return a.fail(g, ErrNotStarted)
	}

	// Hosts that answer synchronously have already signalled; take that
	// before arming the timer.
	select {
	case ok := <-done:
		return a.outcome(g, ok)
	default:
	}

	c := a.Clock
	if c == nil {
		c = clock.Real{}
	}
	select {
	case ok := <-done:
		return a.outcome(g, ok)
	case <-c.After(timeout):
		return a.fail(g, ErrTimeout)
	}
}

func (a Adapter) outcome(g platform.Gesture, completed bool) error {
	if completed {
		return nil
	}
	return a.fail(g, ErrCancelled)
}

func (a Adapter) fail(g platform.Gesture, err error) error {
	if a.Log != nil {
		a.Log.Add(fmt.Sprintf("Gesture %s: %v", g, err))
	}
	return fmt.Errorf("gesture %s: %w", g, err)
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
