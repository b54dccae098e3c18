package engine

import (
	"strings"

	"github.com/mj1618/droid-a11y/internal/model"
)

// ScreenType is the classified state of the target app.
type ScreenType string

const (
	ScreenChats    ScreenType = "Chats"
	ScreenProjects ScreenType = "Projects"
	ScreenUnknown  ScreenType = "Unknown"
)

// DetectionResult is the outcome of one DetectScreen call.
type DetectionResult struct {
	Screen      ScreenType `yaml:"screen"            json:"screen"`
	Reason      string     `yaml:"reason"            json:"reason"`
	PackageName string     `yaml:"package,omitempty" json:"package,omitempty"`
}

// isScreenMarker reports whether text is one of the screen heading labels.
func isScreenMarker(text string) bool {
	return strings.EqualFold(text, string(ScreenProjects)) || strings.EqualFold(text, string(ScreenChats))
}

// DetectScreen classifies the target app's current screen from its visible
// text. Projects wins when both headings are visible.
func (e *Engine) DetectScreen() DetectionResult {
	r := e.detect()
	e.logf("Detect screen=%s reason=%s pkg=%s", r.Screen, r.Reason, r.PackageName)
	return r
}

func (e *Engine) detect() DetectionResult {
	root, err := e.ResolveTargetRoot()
	if err != nil {
		return DetectionResult{
			Screen:      ScreenUnknown,
			Reason:      "target not active: " + e.cfg.TargetPackage + " is not the active screen (or window is not accessible)",
			PackageName: e.ActivePackage(),
		}
	}

	pkg := root.PackageName()
	texts := e.visibleTexts(root)
	for _, marker := range []ScreenType{ScreenProjects, ScreenChats} {
		for _, t := range texts {
			if strings.EqualFold(t, string(marker)) {
				return DetectionResult{Screen: marker, Reason: "Found visible text: " + string(marker), PackageName: pkg}
			}
		}
	}
	return DetectionResult{Screen: ScreenUnknown, Reason: "No Projects/Chats labels found in visible text nodes.", PackageName: pkg}
}

// visibleTexts collects every non-empty trimmed text under root in BFS
// order.
func (e *Engine) visibleTexts(root model.Node) []string {
	var out []string
	e.walker().Walk(root, func(n model.Node) {
		if t := strings.TrimSpace(n.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}
