package model

import "fmt"

// Rect is an axis-aligned screen rectangle in device pixels. Right and
// Bottom are exclusive, matching the platform's bounds reporting.
type Rect struct {
	Left   int `yaml:"left"   json:"left"`
	Top    int `yaml:"top"    json:"top"`
	Right  int `yaml:"right"  json:"right"`
	Bottom int `yaml:"bottom" json:"bottom"`
}

// Empty reports whether the rectangle has no area. Inverted rectangles are
// empty too.
func (r Rect) Empty() bool {
	return r.Left >= r.Right || r.Top >= r.Bottom
}

func (r Rect) Width() int  { return r.Right - r.Left }
func (r Rect) Height() int { return r.Bottom - r.Top }

// Area returns width*height. It is only meaningful for non-empty rects.
func (r Rect) Area() int {
	return r.Width() * r.Height()
}

// CenterX returns the horizontal center, rounded toward negative infinity.
func (r Rect) CenterX() int { return (r.Left + r.Right) >> 1 }

// CenterY returns the vertical center, rounded toward negative infinity.
func (r Rect) CenterY() int { return (r.Top + r.Bottom) >> 1 }

// Contains reports whether (x, y) lies inside the rect. The left and top
// edges are inclusive, the right and bottom edges exclusive.
func (r Rect) Contains(x, y int) bool {
	return r.Left < r.Right && r.Top < r.Bottom &&
		x >= r.Left && x < r.Right && y >= r.Top && y < r.Bottom
}

// XYWH converts to the [x, y, width, height] form used in element output.
func (r Rect) XYWH() [4]int {
	return [4]int{r.Left, r.Top, r.Width(), r.Height()}
}

// String flattens the rect to "left top right bottom".
func (r Rect) String() string {
	return fmt.Sprintf("%d %d %d %d", r.Left, r.Top, r.Right, r.Bottom)
}
