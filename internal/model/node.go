package model

// Action identifies a semantic accessibility action a node may support.
type Action string

const (
	ActionClick          Action = "click"
	ActionLongClick      Action = "long_click"
	ActionScrollForward  Action = "scroll_forward"
	ActionScrollBackward Action = "scroll_backward"
)

// TextLabelMarker is the class-name fragment that identifies plain text
// labels (as opposed to buttons, icons, or containers).
const TextLabelMarker = "TextView"

// Node is a read-only view over one live accessibility tree node.
//
// Implementations are borrowed handles into a tree that may re-render at any
// time: bounds, text and children can change between two reads, and a Node
// obtained in one traversal must not be assumed valid in the next.
type Node interface {
	Text() string
	ClassName() string
	PackageName() string
	Bounds() Rect
	Clickable() bool
	Actions() []Action
	HasAction(a Action) bool

	// Parent returns nil at the root.
	Parent() Node
	ChildCount() int
	// Child returns nil when the child at i is no longer available.
	Child(i int) Node

	// PerformAction asks the host to run a semantic action on the node and
	// reports whether the host accepted it.
	PerformAction(a Action) bool
}

// HasAction is a helper for Node implementations that keep their actions
// in a slice.
func HasAction(actions []Action, a Action) bool {
	for _, have := range actions {
		if have == a {
			return true
		}
	}
	return false
}
