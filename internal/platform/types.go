package platform

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mj1618/droid-a11y/internal/model"
)

// Size is a screen size in device pixels.
type Size struct {
	Width  int `yaml:"width"  json:"width"`
	Height int `yaml:"height" json:"height"`
}

// Point is a position on screen in device pixels.
type Point struct {
	X, Y float64
}

// Stroke is one pointer path within a gesture.
type Stroke struct {
	Path     []Point
	Start    time.Duration // Delay from gesture start
	Duration time.Duration
}

// Gesture describes a complete synthetic pointer interaction.
type Gesture struct {
	Strokes []Stroke
}

// IsTap reports whether the gesture is a single-point stroke.
func (g Gesture) IsTap() bool {
	return len(g.Strokes) == 1 && len(g.Strokes[0].Path) == 1
}

// String renders the gesture compactly for logs.
func (g Gesture) String() string {
	var b strings.Builder
	for i, s := range g.Strokes {
		if i > 0 {
			b.WriteString("; ")
		}
		for j, p := range s.Path {
			if j > 0 {
				b.WriteString("->")
			}
			fmt.Fprintf(&b, "(%.0f,%.0f)", p.X, p.Y)
		}
		fmt.Fprintf(&b, " %dms", s.Duration.Milliseconds())
	}
	return b.String()
}

// ParseBounds parses Android's "[l,t][r,b]" bounds notation.
func ParseBounds(s string) (model.Rect, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return model.Rect{}, fmt.Errorf("invalid bounds %q: expected [l,t][r,b]", s)
	}
	parts := strings.Split(strings.Trim(s, "[]"), "][")
	if len(parts) != 2 {
		return model.Rect{}, fmt.Errorf("invalid bounds %q: expected [l,t][r,b]", s)
	}
	vals := make([]int, 0, 4)
	for _, p := range parts {
		xy := strings.Split(p, ",")
		if len(xy) != 2 {
			return model.Rect{}, fmt.Errorf("invalid bounds %q: expected [l,t][r,b]", s)
		}
		for _, v := range xy {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return model.Rect{}, fmt.Errorf("invalid bounds %q: %w", s, err)
			}
			vals = append(vals, n)
		}
	}
	return model.Rect{Left: vals[0], Top: vals[1], Right: vals[2], Bottom: vals[3]}, nil
}

// ParseSize parses "WIDTHxHEIGHT".
func ParseSize(s string) (Size, error) {
	parts := strings.Split(strings.TrimSpace(s), "x")
	if len(parts) != 2 {
		return Size{}, fmt.Errorf("invalid size %q: expected WIDTHxHEIGHT", s)
	}
	w, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Size{}, fmt.Errorf("invalid size %q: %w", s, err)
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Size{}, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return Size{Width: w, Height: h}, nil
}
