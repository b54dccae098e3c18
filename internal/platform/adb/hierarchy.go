package adb

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/mj1618/droid-a11y/internal/model"
	"github.com/mj1618/droid-a11y/internal/platform"
)

// ErrNoHierarchy is returned when a dump contains no XML document.
var ErrNoHierarchy = errors.New("no UI hierarchy in dump output")

type xmlHierarchy struct {
	XMLName xml.Name  `xml:"hierarchy"`
	Nodes   []xmlNode `xml:"node"`
}

type xmlNode struct {
	Text          string    `xml:"text,attr"`
	Class         string    `xml:"class,attr"`
	Package       string    `xml:"package,attr"`
	Clickable     string    `xml:"clickable,attr"`
	LongClickable string    `xml:"long-clickable,attr"`
	Scrollable    string    `xml:"scrollable,attr"`
	Bounds        string    `xml:"bounds,attr"`
	Nodes         []xmlNode `xml:"node"`
}

// ParseHierarchy decodes uiautomator dump output into one root per
// top-level window node. Leading and trailing shell noise is stripped.
func ParseHierarchy(raw []byte, host actor) ([]*Node, error) {
	s := string(raw)
	start := strings.Index(s, "<?xml")
	if start < 0 {
		start = strings.Index(s, "<hierarchy")
	}
	if start < 0 {
		return nil, ErrNoHierarchy
	}
	s = s[start:]
	if end := strings.LastIndex(s, ">"); end >= 0 {
		s = s[:end+1]
	}

	var h xmlHierarchy
	if err := xml.Unmarshal([]byte(s), &h); err != nil {
		return nil, fmt.Errorf("parse UI hierarchy (%d bytes): %w", len(s), err)
	}
	roots := make([]*Node, 0, len(h.Nodes))
	for i := range h.Nodes {
		roots = append(roots, build(&h.Nodes[i], nil, host))
	}
	return roots, nil
}

func build(x *xmlNode, parent *Node, host actor) *Node {
	n := &Node{
		text:      x.Text,
		class:     x.Class,
		pkg:       x.Package,
		clickable: x.Clickable == "true",
		parent:    parent,
		host:      host,
	}
	if r, err := platform.ParseBounds(x.Bounds); err == nil {
		n.bounds = r
	}
	if n.clickable {
		n.actions = append(n.actions, model.ActionClick)
	}
	if x.LongClickable == "true" {
		n.actions = append(n.actions, model.ActionLongClick)
	}
	if x.Scrollable == "true" {
		n.actions = append(n.actions, model.ActionScrollForward, model.ActionScrollBackward)
	}
	n.children = make([]*Node, 0, len(x.Nodes))
	for i := range x.Nodes {
		n.children = append(n.children, build(&x.Nodes[i], n, host))
	}
	return n
}
