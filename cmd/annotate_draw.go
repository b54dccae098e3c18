package cmd

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/mj1618/droid-a11y/internal/engine"
	"github.com/mj1618/droid-a11y/internal/platform"
)

// LabelMode controls what text is drawn on each title box.
type LabelMode int

const (
	// LabelIndex draws "[i] title" with the 0-based index open --index takes.
	LabelIndex LabelMode = iota
	// LabelTap draws the "(x,y)" tap anchor in screen pixels.
	LabelTap
)

// ParseLabelMode maps a --label value to a LabelMode.
func ParseLabelMode(s string) (LabelMode, error) {
	switch s {
	case "", "index":
		return LabelIndex, nil
	case "tap":
		return LabelTap, nil
	}
	return 0, fmt.Errorf("unsupported label %q (want index or tap)", s)
}

const maxLabelRunes = 32

var (
	boxColor     = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	anchorColor  = color.RGBA{R: 0, G: 160, B: 255, A: 255}
	textColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	outlineColor = color.RGBA{R: 0, G: 0, B: 0, A: 255}
)

// AnnotateTitles draws each hit's click rectangle, tap anchor and label on
// img. screen is the device size the hit coordinates refer to; the
// captured image may be scaled relative to it.
func AnnotateTitles(img image.Image, hits []engine.TitleHit, screen platform.Size, mode LabelMode) *image.RGBA {
	rgba := ImageToRGBA(img)

	b := img.Bounds()
	scaleX, scaleY := 1.0, 1.0
	if screen.Width > 0 {
		scaleX = float64(b.Dx()) / float64(screen.Width)
	}
	if screen.Height > 0 {
		scaleY = float64(b.Dy()) / float64(screen.Height)
	}

	for i, h := range hits {
		r := h.ClickRect
		x1 := b.Min.X + int(float64(r.Left)*scaleX)
		y1 := b.Min.Y + int(float64(r.Top)*scaleY)
		x2 := b.Min.X + int(float64(r.Right)*scaleX)
		y2 := b.Min.Y + int(float64(r.Bottom)*scaleY)
		drawRectangle(rgba, x1, y1, x2, y2, boxColor)

		ax := b.Min.X + int(float64(h.TapX)*scaleX)
		ay := b.Min.Y + int(float64(h.TapY)*scaleY)
		drawCross(rgba, ax, ay, 6, anchorColor)

		var label string
		switch mode {
		case LabelTap:
			label = fmt.Sprintf("(%d,%d)", h.TapX, h.TapY)
		default:
			label = fmt.Sprintf("[%d] %s", i, truncateRunes(h.Title, maxLabelRunes))
		}
		drawTextWithOutline(rgba, label, (x1+x2)/2, y1+14, textColor, outlineColor)
	}
	return rgba
}

// ImageToRGBA converts any image to RGBA.
func ImageToRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return rgba
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func isWithinBounds(bounds image.Rectangle, x, y int) bool {
	return x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y
}

// drawRectangle draws a 2px outline, clamped to the image.
func drawRectangle(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	bounds := img.Bounds()
	if x1 < bounds.Min.X {
		x1 = bounds.Min.X
	}
	if y1 < bounds.Min.Y {
		y1 = bounds.Min.Y
	}
	if x2 > bounds.Max.X {
		x2 = bounds.Max.X
	}
	if y2 > bounds.Max.Y {
		y2 = bounds.Max.Y
	}
	if x2 <= x1 || y2 <= y1 {
		return
	}

	for t := 0; t < 2; t++ {
		for x := x1; x < x2; x++ {
			if isWithinBounds(bounds, x, y1+t) {
				img.Set(x, y1+t, c)
			}
			if isWithinBounds(bounds, x, y2-1-t) {
				img.Set(x, y2-1-t, c)
			}
		}
		for y := y1; y < y2; y++ {
			if isWithinBounds(bounds, x1+t, y) {
				img.Set(x1+t, y, c)
			}
			if isWithinBounds(bounds, x2-1-t, y) {
				img.Set(x2-1-t, y, c)
			}
		}
	}
}

func drawCross(img *image.RGBA, x, y, arm int, c color.Color) {
	bounds := img.Bounds()
	for d := -arm; d <= arm; d++ {
		if isWithinBounds(bounds, x+d, y) {
			img.Set(x+d, y, c)
		}
		if isWithinBounds(bounds, x, y+d) {
			img.Set(x, y+d, c)
		}
	}
}

// drawTextWithOutline draws text centered horizontally at x with its
// baseline at y, outlined for contrast.
func drawTextWithOutline(img *image.RGBA, text string, x, y int, fg, outline color.Color) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Round()
	left := x - width/2

	drawAt := func(dx, dy int, c color.Color) {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(c),
			Face: face,
			Dot:  fixed.P(left+dx, y+dy),
		}
		d.DrawString(text)
	}
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx != 0 || dy != 0 {
				drawAt(dx, dy, outline)
			}
		}
	}
	drawAt(0, 0, fg)
}
