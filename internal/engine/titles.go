package engine

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mj1618/droid-a11y/internal/model"
	"github.com/mj1618/droid-a11y/internal/walk"
)

const (
	maxTitleLen     = 80
	clickTargetHops = 10
	dedupBucket     = 8
)

// TitleHit is one extracted list-item label. It is a snapshot: ClickRect
// and the tap anchor are screen positions, not live node references.
type TitleHit struct {
	Title     string     `yaml:"title"      json:"title"`
	ClickRect model.Rect `yaml:"click_rect" json:"click_rect"`
	TapX      int        `yaml:"tap_x"      json:"tap_x"`
	TapY      int        `yaml:"tap_y"      json:"tap_y"`
}

type candidate struct {
	hit     TitleHit
	sortTop int
}

// ExtractTitles returns the title labels visible in the target's list, top
// to bottom. Unless force is set, a non-empty cache younger than the TTL is
// returned without touching the tree.
func (e *Engine) ExtractTitles(force bool) []TitleHit {
	now := e.clock.Now()
	if !force {
		if hits, ok := e.cache.fresh(now, e.cfg.CacheTTL); ok {
			return hits
		}
	}

	root, err := e.ResolveTargetRoot()
	if err != nil {
		e.cache.store([]TitleHit{}, now)
		return []TitleHit{}
	}

	w := e.walker()
	scope := scopeRoot(w, root)

	var cands []candidate
	w.Walk(scope, func(n model.Node) {
		text, ok := titleText(n)
		if !ok {
			return
		}
		textRect := n.Bounds()
		if textRect.Empty() {
			return
		}
		clickRect := textRect
		if target := bestClickTarget(n, textRect); target != nil {
			if r := target.Bounds(); !r.Empty() {
				clickRect = r
			}
		}
		cands = append(cands, candidate{
			hit: TitleHit{
				Title:     text,
				ClickRect: clickRect,
				TapX:      textRect.CenterX(),
				TapY:      textRect.CenterY(),
			},
			sortTop: textRect.Top,
		})
	})

	hits := dedupTitles(cands)
	e.cache.store(hits, now)
	e.logf("Extracted titles count=%d", len(hits))
	return hits
}

// ReadVisibleTitles force-refreshes the extraction and returns the titles
// only.
func (e *Engine) ReadVisibleTitles() []string {
	hits := e.ExtractTitles(true)
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.Title
	}
	return out
}

// titleText returns n's trimmed text if n looks like a list-item label.
func titleText(n model.Node) (string, bool) {
	text := strings.TrimSpace(n.Text())
	if text == "" || utf8.RuneCountInString(text) > maxTitleLen || isScreenMarker(text) {
		return "", false
	}
	if !strings.Contains(n.ClassName(), model.TextLabelMarker) {
		return "", false
	}
	return text, true
}

// dedupTitles orders candidates top to bottom and drops repeats of the same
// title within one vertical bucket, keeping the first.
func dedupTitles(cands []candidate) []TitleHit {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].sortTop < cands[j].sortTop
	})
	seen := make(map[string]bool, len(cands))
	out := make([]TitleHit, 0, len(cands))
	for _, c := range cands {
		key := dedupKey(c.hit.Title, c.sortTop)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c.hit)
	}
	return out
}

func dedupKey(title string, top int) string {
	return strings.ToLower(title) + "@" + strconv.Itoa(top/dedupBucket)
}

// bestClickTarget walks from n up at most clickTargetHops nodes (n itself
// included) and returns the clickable node with the smallest positive area
// whose bounds contain the center of textRect. Ties keep the nearer node.
// It returns nil when nothing qualifies.
func bestClickTarget(n model.Node, textRect model.Rect) model.Node {
	cx, cy := textRect.CenterX(), textRect.CenterY()
	var best model.Node
	bestArea := 0
	cur := n
	for hops := 0; cur != nil && hops < clickTargetHops; hops++ {
		if cur.Clickable() || cur.HasAction(model.ActionClick) {
			r := cur.Bounds()
			if !r.Empty() && r.Contains(cx, cy) {
				if area := r.Area(); area > 0 && (best == nil || area < bestArea) {
					best, bestArea = cur, area
				}
			}
		}
		cur = cur.Parent()
	}
	return best
}

// closestClickable returns the first clickable node within maxHops steps up
// from n (n itself included), or nil.
func closestClickable(n model.Node, maxHops int) model.Node {
	cur := n
	for hops := 0; cur != nil && hops < maxHops; hops++ {
		if cur.Clickable() {
			return cur
		}
		cur = cur.Parent()
	}
	return nil
}

func hasScrollForward(n model.Node) bool {
	return n.HasAction(model.ActionScrollForward)
}

// findScrollable returns the scrollable container under root. When several
// nodes can scroll forward, the one visited last in BFS order is chosen.
func findScrollable(w walk.Walker, root model.Node) model.Node {
	return w.Last(root, hasScrollForward)
}

// scopeRoot narrows root to its scrollable container when there is one.
func scopeRoot(w walk.Walker, root model.Node) model.Node {
	if s := findScrollable(w, root); s != nil {
		return s
	}
	return root
}
