package engine

import (
	"github.com/mj1618/droid-a11y/internal/model"
)

// ScrollResult is the outcome of one ScrollToEnd call. LastTitle is empty
// when no title was ever seen.
type ScrollResult struct {
	ReachedEnd bool   `yaml:"reached_end"          json:"reached_end"`
	Steps      int    `yaml:"steps"                json:"steps"`
	LastTitle  string `yaml:"last_title,omitempty" json:"last_title,omitempty"`
}

// ScrollToEnd scrolls the target's list forward until the last extracted
// title stays the same for stableTailRepeats consecutive reads, or until
// maxScrolls scrolls were attempted. Non-positive arguments take the
// configured defaults.
//
// Each iteration re-reads the titles, then scrolls the list container
// with scroll_forward. When the container is missing or refuses, a single
// swipe up is tried instead; if that fails too the loop stops.
func (e *Engine) ScrollToEnd(maxScrolls, stableTailRepeats int) ScrollResult {
	if maxScrolls <= 0 {
		maxScrolls = e.cfg.MaxScrolls
	}
	if stableTailRepeats <= 0 {
		stableTailRepeats = e.cfg.StableTailRepeats
	}

	svc, root, err := e.target()
	if err != nil {
		return ScrollResult{}
	}

	list := findScrollable(e.walker(), root)
	if list == nil {
		e.logf("%v (no %s action). Will try gesture scroll.", ErrNoScrollableNode, model.ActionScrollForward)
	}

	stable := 0
	lastTail := ""
	steps := 0
	for steps < maxScrolls {
		titles := e.ReadVisibleTitles()
		tail := ""
		if len(titles) > 0 {
			tail = titles[len(titles)-1]
		}
		if tail != "" && tail == lastTail {
			stable++
		} else {
			stable = 0
		}
		lastTail = tail

		e.logf("Scroll step=%d tail=%s stable=%d/%d", steps, orNone(tail), stable, stableTailRepeats)
		if stable >= stableTailRepeats {
			e.log.Add("Reached end (tail stable).")
			return ScrollResult{ReachedEnd: true, Steps: steps, LastTitle: lastTail}
		}

		ok := list != nil && list.PerformAction(model.ActionScrollForward)
		steps++
		if ok {
			e.clock.Sleep(e.cfg.Settle)
			continue
		}

		e.logf("%s failed; trying gesture swipe.", model.ActionScrollForward)
		if err := e.gestures(svc).SwipeUpDefault(svc.ScreenSize()); err != nil {
			e.logf("Gesture swipe failed: %v", err)
			return ScrollResult{Steps: steps, LastTitle: lastTail}
		}
		e.clock.Sleep(e.cfg.Settle)
	}

	e.logf("Hit maxScrolls=%d without stable tail.", maxScrolls)
	return ScrollResult{Steps: steps, LastTitle: lastTail}
}

func orNone(s string) string {
	if s == "" {
		return "<none>"
	}
	return s
}
