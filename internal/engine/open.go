package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/mj1618/droid-a11y/internal/model"
)

const openSearchHops = 6

// OpenFirstVisibleTitle opens the first title of the last extraction,
// extracting first if the cache is empty or stale.
func (e *Engine) OpenFirstVisibleTitle() error {
	if len(e.ExtractTitles(false)) == 0 {
		e.log.Add("No titles available to open.")
		return ErrNoTitles
	}
	return e.OpenByIndex(0)
}

// OpenByIndex opens the i-th title (0-based) of the cached extraction. An
// out-of-range index fails without touching the tree.
func (e *Engine) OpenByIndex(i int) error {
	var hits []TitleHit
	if i >= 0 {
		hits = e.ExtractTitles(false)
	}
	if i < 0 || i >= len(hits) {
		e.logf("OpenByIndex failed: index=%d out of range (size=%d).", i, len(hits))
		return fmt.Errorf("%w: index %d, size %d", ErrIndexOutOfRange, i, len(hits))
	}
	hit := hits[i]
	e.logf("OpenByIndex index=%d title='%s' rect=%s", i+1, hit.Title, hit.ClickRect)
	return e.openHit(hit)
}

// openHit re-locates hit in the live tree and clicks the match whose click
// target is nearest the hit's tap anchor. Titles may legitimately repeat,
// hence the distance check. Without a clickable match it taps the anchor.
func (e *Engine) openHit(hit TitleHit) error {
	svc, root, err := e.target()
	if err != nil {
		return err
	}
	w := e.walker()
	scope := scopeRoot(w, root)

	matches := w.Collect(scope, func(n model.Node) bool {
		return strings.TrimSpace(n.Text()) == hit.Title
	})

	var best model.Node
	bestDist := math.MaxInt
	for _, n := range matches {
		target := bestClickTarget(n, n.Bounds())
		if target == nil {
			target = n
		}
		r := target.Bounds()
		if r.Empty() {
			continue
		}
		dx := r.CenterX() - hit.TapX
		dy := r.CenterY() - hit.TapY
		if d := dx*dx + dy*dy; d < bestDist {
			best, bestDist = target, d
		}
	}

	if best != nil && best.PerformAction(model.ActionClick) {
		e.logf("Open title='%s' via click ok=true (bestDist=%d)", hit.Title, bestDist)
		return nil
	}

	err = e.gestures(svc).Tap(hit.TapX, hit.TapY)
	e.logf("Open title='%s' via gestureTap ok=%t", hit.Title, err == nil)
	if err != nil {
		return fmt.Errorf("open %q: %w", hit.Title, err)
	}
	return nil
}

// OpenByTitle clicks the first node under the target root whose trimmed
// text equals title, preferring its closest clickable ancestor. When the
// click is refused it taps the center of that node instead.
func (e *Engine) OpenByTitle(title string) error {
	svc, root, err := e.target()
	if err != nil {
		return err
	}
	node := e.walker().Find(root, func(n model.Node) bool {
		return strings.TrimSpace(n.Text()) == title
	})
	if node == nil {
		e.logf("Could not find node with title: %s", title)
		return fmt.Errorf("%w %q", ErrTitleNotFound, title)
	}

	target := closestClickable(node, openSearchHops)
	if target == nil {
		target = node
	}
	if target.PerformAction(model.ActionClick) {
		e.logf("Open title='%s' via click ok=true", title)
		return nil
	}

	r := target.Bounds()
	if r.Empty() {
		e.logf("Open title='%s' failed: empty bounds.", title)
		return fmt.Errorf("open %q: %w", title, ErrEmptyBounds)
	}
	err = e.gestures(svc).Tap(r.CenterX(), r.CenterY())
	e.logf("Open title='%s' via gestureTap ok=%t", title, err == nil)
	if err != nil {
		return fmt.Errorf("open %q: %w", title, err)
	}
	return nil
}
