package model

import "strings"

// Capture copies the live subtree under root into a serializable element
// tree. IDs are assigned in depth-first pre-order starting at 1. At most
// maxNodes nodes are copied (0 = unlimited); the second return value
// reports whether the capture was cut short.
func Capture(root Node, maxNodes int) ([]Element, bool) {
	if root == nil {
		return nil, false
	}
	c := capturer{max: maxNodes}
	el, ok := c.capture(root)
	if !ok {
		return nil, true
	}
	return []Element{el}, c.truncated
}

type capturer struct {
	max       int
	next      int
	truncated bool
}

func (c *capturer) capture(n Node) (Element, bool) {
	if c.max > 0 && c.next >= c.max {
		c.truncated = true
		return Element{}, false
	}
	c.next++

	el := Element{
		ID:        c.next,
		Role:      MapRole(n.ClassName()),
		Class:     n.ClassName(),
		Text:      strings.TrimSpace(n.Text()),
		Bounds:    n.Bounds().XYWH(),
		Clickable: n.Clickable(),
	}
	if n.Parent() == nil {
		el.Package = n.PackageName()
	}
	for _, a := range n.Actions() {
		el.Actions = append(el.Actions, string(a))
	}

	for i := 0; i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		childEl, ok := c.capture(child)
		if !ok {
			break
		}
		el.Children = append(el.Children, childEl)
	}
	return el, true
}
