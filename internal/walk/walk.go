// Package walk provides bounded breadth-first traversal over accessibility
// trees.
package walk

import (
	"errors"
	"fmt"

	"github.com/mj1618/droid-a11y/internal/model"
)

// DefaultLimit is the visitation cap used when Walker.Limit is zero.
const DefaultLimit = 50_000

// ErrGuardExceeded is returned when a walk stops at the visitation cap.
// Whatever the visitor saw up to that point is a partial result.
var ErrGuardExceeded = errors.New("walk guard exceeded")

// Logger receives one human-readable line when the guard trips.
type Logger interface {
	Add(msg string)
}

// Walker visits subtrees breadth-first with a hard visitation cap that
// protects against malformed, cyclic, or pathologically large trees.
type Walker struct {
	Limit int    // Max nodes visited per walk (0 = DefaultLimit)
	Log   Logger // Optional
}

// Walk visits root and every node reachable through Child links, in BFS
// order. A node's children are queued before visit sees the node, so the
// visitor cannot prune; it can only ignore. Nil children are skipped.
func (w Walker) Walk(root model.Node, visit func(model.Node)) (int, error) {
	if root == nil {
		return 0, nil
	}
	limit := w.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	queue := []model.Node{root}
	visited := 0
	for len(queue) > 0 && visited < limit {
		n := queue[0]
		queue[0] = nil
		queue = queue[1:]

		for i := 0; i < n.ChildCount(); i++ {
			if c := n.Child(i); c != nil {
				queue = append(queue, c)
			}
		}
		visit(n)
		visited++
	}

	if visited >= limit && len(queue) > 0 {
		if w.Log != nil {
			w.Log.Add("Node walk guard hit (" + formatLimit(limit) + ").")
		}
		return visited, ErrGuardExceeded
	}
	return visited, nil
}

// Find returns the first node in BFS order for which match is true.
func (w Walker) Find(root model.Node, match func(model.Node) bool) model.Node {
	var found model.Node
	w.Walk(root, func(n model.Node) {
		if found == nil && match(n) {
			found = n
		}
	})
	return found
}

// Last returns the last node in BFS order for which match is true.
func (w Walker) Last(root model.Node, match func(model.Node) bool) model.Node {
	var found model.Node
	w.Walk(root, func(n model.Node) {
		if match(n) {
			found = n
		}
	})
	return found
}

// Collect returns every node in BFS order for which match is true.
func (w Walker) Collect(root model.Node, match func(model.Node) bool) []model.Node {
	var out []model.Node
	w.Walk(root, func(n model.Node) {
		if match(n) {
			out = append(out, n)
		}
	})
	return out
}

func formatLimit(limit int) string {
	if limit%1000 == 0 {
		return fmt.Sprintf("%dk", limit/1000)
	}
	return fmt.Sprintf("%d", limit)
}
