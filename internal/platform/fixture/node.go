// Package fixture is an in-memory accessibility host built from YAML or Go
// builders. It replays recorded screens offline and doubles as the test
// host for the engine.
package fixture

import (
	"sync"

	"github.com/mj1618/droid-a11y/internal/model"
)

// Node is a fixture accessibility node. Build trees with New and Add; the
// parent links are set by Add.
type Node struct {
	text      string
	class     string
	pkg       string
	bounds    model.Rect
	clickable bool
	actions   []model.Action
	parent    *Node
	children  []*Node
	gone      map[int]bool

	mu        sync.Mutex
	host      *Host
	refuse    map[model.Action]bool
	performed []model.Action
}

var _ model.Node = (*Node)(nil)

// New returns a detached node.
func New(class, text string, bounds model.Rect) *Node {
	return &Node{class: class, text: text, bounds: bounds}
}

// R is shorthand for a model.Rect literal.
func R(left, top, right, bottom int) model.Rect {
	return model.Rect{Left: left, Top: top, Right: right, Bottom: bottom}
}

// Add appends children and returns n for chaining.
func (n *Node) Add(children ...*Node) *Node {
	for _, c := range children {
		c.parent = n
		n.children = append(n.children, c)
	}
	return n
}

// WithPackage sets the owning package. Descendants without their own
// package inherit it.
func (n *Node) WithPackage(pkg string) *Node {
	n.pkg = pkg
	return n
}

// WithClickable marks the node clickable.
func (n *Node) WithClickable() *Node {
	n.clickable = true
	return n
}

// WithActions adds supported actions.
func (n *Node) WithActions(actions ...model.Action) *Node {
	n.actions = append(n.actions, actions...)
	return n
}

// Refuse makes PerformAction report failure for the given actions even
// when the node supports them.
func (n *Node) Refuse(actions ...model.Action) *Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.refuse == nil {
		n.refuse = map[model.Action]bool{}
	}
	for _, a := range actions {
		n.refuse[a] = true
	}
	return n
}

// Drop makes Child(i) return nil, the way a host does when a child was
// recycled between ChildCount and Child.
func (n *Node) Drop(i int) *Node {
	if n.gone == nil {
		n.gone = map[int]bool{}
	}
	n.gone[i] = true
	return n
}

func (n *Node) Text() string       { return n.text }
func (n *Node) ClassName() string  { return n.class }
func (n *Node) Bounds() model.Rect { return n.bounds }
func (n *Node) Clickable() bool    { return n.clickable }
func (n *Node) ChildCount() int    { return len(n.children) }

func (n *Node) PackageName() string {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.pkg != "" {
			return cur.pkg
		}
	}
	return ""
}

func (n *Node) Actions() []model.Action {
	out := make([]model.Action, len(n.actions))
	copy(out, n.actions)
	return out
}

func (n *Node) HasAction(a model.Action) bool {
	return model.HasAction(n.actions, a)
}

func (n *Node) Parent() model.Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *Node) Child(i int) model.Node {
	if i < 0 || i >= len(n.children) || n.gone[i] {
		return nil
	}
	return n.children[i]
}

// PerformAction records the request. Clicks succeed on clickable nodes or
// nodes that list the click action; every other action must be listed.
// A scroll_forward that succeeds advances the owning window to its next
// frame and fails once the last frame is showing.
func (n *Node) PerformAction(a model.Action) bool {
	n.mu.Lock()
	n.performed = append(n.performed, a)
	refused := n.refuse[a]
	host := n.host
	n.mu.Unlock()

	if refused {
		return false
	}
	switch a {
	case model.ActionClick:
		return n.clickable || n.HasAction(a)
	case model.ActionScrollForward:
		if !n.HasAction(a) {
			return false
		}
		if host == nil {
			return true
		}
		return host.advance(n.root())
	default:
		return n.HasAction(a)
	}
}

// Performed returns every action requested on n, in order.
func (n *Node) Performed() []model.Action {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]model.Action, len(n.performed))
	copy(out, n.performed)
	return out
}

// Find returns the first node in depth-first order whose text is text, or
// nil.
func (n *Node) Find(text string) *Node {
	if n.text == text {
		return n
	}
	for _, c := range n.children {
		if f := c.Find(text); f != nil {
			return f
		}
	}
	return nil
}

func (n *Node) root() *Node {
	cur := n
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

func (n *Node) attach(h *Host) {
	n.mu.Lock()
	n.host = h
	n.mu.Unlock()
	for _, c := range n.children {
		c.attach(h)
	}
}
