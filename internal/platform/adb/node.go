package adb

import (
	"github.com/mj1618/droid-a11y/internal/model"
)

// actor performs semantic actions by synthesizing input over a node's bounds.
type actor interface {
	perform(n *Node, a model.Action) bool
}

// Node is one element of a uiautomator dump. Dumps are snapshots: a Node
// never changes after parsing, and a fresh dump yields fresh Nodes.
type Node struct {
	text      string
	class     string
	pkg       string
	bounds    model.Rect
	clickable bool
	actions   []model.Action
	parent    *Node
	children  []*Node
	host      actor
}

func (n *Node) Text() string                  { return n.text }
func (n *Node) ClassName() string             { return n.class }
func (n *Node) PackageName() string           { return n.pkg }
func (n *Node) Bounds() model.Rect            { return n.bounds }
func (n *Node) Clickable() bool               { return n.clickable }
func (n *Node) Actions() []model.Action       { return n.actions }
func (n *Node) HasAction(a model.Action) bool { return model.HasAction(n.actions, a) }
func (n *Node) ChildCount() int               { return len(n.children) }

func (n *Node) Parent() model.Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *Node) Child(i int) model.Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// PerformAction maps the action onto input gestures over the node's bounds.
// Actions the node does not advertise are refused.
func (n *Node) PerformAction(a model.Action) bool {
	if n.host == nil || !n.HasAction(a) {
		return false
	}
	return n.host.perform(n, a)
}
