package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/droid-a11y/internal/platform/fixture"
)

// frames returns n list screens whose tails are "Chat 1".."Chat n".
func frames(n int) []*fixture.Node {
	out := make([]*fixture.Node, n)
	for i := range out {
		out[i] = listScreen(fmt.Sprintf("Chat %d", i), fmt.Sprintf("Chat %d", i+1))
	}
	return out
}

func TestScrollToEnd_StableTail(t *testing.T) {
	// The tail changes on each of the first four scrolls, then the list is
	// exhausted and stays put.
	h := fixture.NewHost(phone).AddWindow(true, frames(5)...)
	e, clk, log := newTestEngine(t, h)

	r := e.ScrollToEnd(50, 3)

	assert.Equal(t, ScrollResult{ReachedEnd: true, Steps: 7, LastTitle: "Chat 5"}, r)
	assert.Equal(t, 4, h.Frame(target))
	assert.True(t, logContains(log, "Reached end (tail stable)."))

	// Four scroll actions, then three fallback swipes once the list refuses
	// to scroll past its last frame.
	assert.Len(t, h.Gestures(), 3)
	sleeps := clk.Sleeps()
	require.Len(t, sleeps, 7)
	for _, d := range sleeps {
		assert.Equal(t, 250*time.Millisecond, d)
	}
}

func TestScrollToEnd_BudgetExhausted(t *testing.T) {
	h := fixture.NewHost(phone).AddWindow(true, frames(60)...)
	e, _, log := newTestEngine(t, h)

	r := e.ScrollToEnd(50, 3)

	assert.Equal(t, ScrollResult{ReachedEnd: false, Steps: 50, LastTitle: "Chat 50"}, r)
	assert.True(t, logContains(log, "Hit maxScrolls=50 without stable tail."))
	assert.Empty(t, h.Gestures())
}

func TestScrollToEnd_Defaults(t *testing.T) {
	h := fixture.NewHost(phone).AddWindow(true, frames(60)...)
	e, _, _ := newTestEngine(t, h)

	r := e.ScrollToEnd(0, 0)

	assert.Equal(t, 50, r.Steps)
	assert.False(t, r.ReachedEnd)
}

func TestScrollToEnd_TargetMissing(t *testing.T) {
	h := fixture.NewHost(phone).AddWindow(true, window(launcher))
	e, _, _ := newTestEngine(t, h)

	assert.Equal(t, ScrollResult{}, e.ScrollToEnd(50, 3))
	assert.Empty(t, h.Gestures())
}

func TestScrollToEnd_NoScrollableUsesGestures(t *testing.T) {
	root := window(target, row("Only", 300))
	h := fixture.NewHost(phone).AddWindow(true, root)
	e, _, log := newTestEngine(t, h)

	r := e.ScrollToEnd(50, 3)

	assert.Equal(t, ScrollResult{ReachedEnd: true, Steps: 3, LastTitle: "Only"}, r)
	assert.True(t, logContains(log, "no scrollable node"))
	gestures := h.Gestures()
	require.Len(t, gestures, 3)
	assert.Equal(t, "(540,1920)->(540,720) 250ms", gestures[0].String())
}

func TestScrollToEnd_GestureFailureStops(t *testing.T) {
	root := window(target, row("Only", 300))
	h := fixture.NewHost(phone).AddWindow(true, root)
	h.SetGestureMode(fixture.GestureReject)
	e, _, log := newTestEngine(t, h)

	r := e.ScrollToEnd(50, 3)

	assert.Equal(t, ScrollResult{ReachedEnd: false, Steps: 1, LastTitle: "Only"}, r)
	assert.True(t, logContains(log, "Gesture swipe failed"))
}

func TestScrollToEnd_RefusedScrollFallsBack(t *testing.T) {
	l := list(row("Only", 300)).Refuse("scroll_forward")
	h := fixture.NewHost(phone).AddWindow(true, window(target, l))
	h.SetGestureMode(fixture.GestureCancel)
	e, _, log := newTestEngine(t, h)

	r := e.ScrollToEnd(50, 3)

	assert.False(t, r.ReachedEnd)
	assert.Equal(t, 1, r.Steps)
	assert.True(t, logContains(log, "scroll_forward failed; trying gesture swipe."))
}

func TestScrollToEnd_EmptyListNeverStable(t *testing.T) {
	h := fixture.NewHost(phone).AddWindow(true, window(target, list()))
	e, _, _ := newTestEngine(t, h)

	r := e.ScrollToEnd(5, 3)

	assert.Equal(t, ScrollResult{ReachedEnd: false, Steps: 5}, r)
}
