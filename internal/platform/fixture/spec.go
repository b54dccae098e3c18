package fixture

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mj1618/droid-a11y/internal/model"
	"github.com/mj1618/droid-a11y/internal/platform"
)

// Spec is the YAML form of a fixture host.
//
//	screen: {width: 1080, height: 2400}
//	last_event_package: com.openai.chatgpt
//	windows:
//	  - active: true
//	    root:
//	      class: android.widget.FrameLayout
//	      package: com.openai.chatgpt
//	      bounds: "[0,0][1080,2400]"
//	      children: [...]
//	    frames: [...]   # optional extra roots shown after each scroll
type Spec struct {
	Screen           platform.Size `yaml:"screen"`
	LastEventPackage string        `yaml:"last_event_package,omitempty"`
	Windows          []WindowSpec  `yaml:"windows"`
}

// WindowSpec describes one window. Root is shown first, then Frames in
// order as the window scrolls forward.
type WindowSpec struct {
	Active bool       `yaml:"active,omitempty"`
	Root   NodeSpec   `yaml:"root"`
	Frames []NodeSpec `yaml:"frames,omitempty"`
}

// NodeSpec describes one node and its subtree.
type NodeSpec struct {
	Class     string     `yaml:"class"`
	Text      string     `yaml:"text,omitempty"`
	Package   string     `yaml:"package,omitempty"`
	Bounds    string     `yaml:"bounds,omitempty"` // "[l,t][r,b]"
	Clickable bool       `yaml:"clickable,omitempty"`
	Actions   []string   `yaml:"actions,omitempty"`
	Children  []NodeSpec `yaml:"children,omitempty"`
}

// Load reads a fixture spec from a YAML file.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(data)
}

// Parse decodes a fixture spec.
func Parse(data []byte) (*Spec, error) {
	var s Spec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if len(s.Windows) == 0 {
		return nil, fmt.Errorf("parse fixture: no windows")
	}
	return &s, nil
}

// Build constructs a host from the spec.
func (s *Spec) Build() (*Host, error) {
	h := NewHost(s.Screen)
	for i, ws := range s.Windows {
		frames := make([]*Node, 0, 1+len(ws.Frames))
		for j, ns := range append([]NodeSpec{ws.Root}, ws.Frames...) {
			n, err := ns.build()
			if err != nil {
				return nil, fmt.Errorf("window %d frame %d: %w", i, j, err)
			}
			frames = append(frames, n)
		}
		h.AddWindow(ws.Active, frames...)
	}
	h.RecordEvent(s.LastEventPackage)
	return h, nil
}

func (ns NodeSpec) build() (*Node, error) {
	var bounds model.Rect
	if ns.Bounds != "" {
		b, err := platform.ParseBounds(ns.Bounds)
		if err != nil {
			return nil, err
		}
		bounds = b
	}
	n := New(ns.Class, ns.Text, bounds).WithPackage(ns.Package)
	if ns.Clickable {
		n.WithClickable()
	}
	for _, a := range ns.Actions {
		n.WithActions(model.Action(a))
	}
	for _, cs := range ns.Children {
		c, err := cs.build()
		if err != nil {
			return nil, err
		}
		n.Add(c)
	}
	return n, nil
}
