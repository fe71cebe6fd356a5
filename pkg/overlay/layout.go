package overlay

import (
	"fmt"
	"image"
	"image/color"
)

// Annotation is one detection to draw. Corners are inclusive pixel
// coordinates already clamped into the image.
type Annotation struct {
	X1, Y1, X2, Y2 int
	Center         image.Point
	Confidence     float64
}

type BadgeLayout struct {
	Text      string
	Rect      image.Rectangle
	Origin    image.Point
	Scale     float64
	Thickness int
	Padding   int
	Flipped   bool
}

// LayoutBadge places the confidence badge just below the box, or above it
// when the bottom placement would run past the image's lower edge.
func (g Geometry) LayoutBadge(a Annotation, m Measurer) BadgeLayout {
	scale := g.BadgeScale(a.X2-a.X1, a.Y2-a.Y1)
	thickness := max(2, roundInt(2.0*scale))
	pad := max(4, roundInt(5*scale))

	text := fmt.Sprintf("%.1f%%", a.Confidence*100)
	size := m.Measure(text, scale, thickness)

	w := size.Width + 2*pad
	h := size.Height + size.Baseline + 2*pad

	x := a.X1 + pad
	y := a.Y2 + pad
	flipped := false
	if y+h > g.Height {
		y = a.Y2 - h - pad
		flipped = true
	}

	return BadgeLayout{
		Text:      text,
		Rect:      image.Rect(x, y, x+w, y+h),
		Origin:    image.Pt(x+pad, y+h-pad-size.Baseline),
		Scale:     scale,
		Thickness: thickness,
		Padding:   pad,
		Flipped:   flipped,
	}
}

type Anchor int

const (
	AnchorTop Anchor = iota
	AnchorBottom
)

type PanelLayout struct {
	Anchor     Anchor
	Lines      []string
	Origins    []image.Point
	Rect       image.Rectangle
	Scale      float64
	Thickness  int
	Padding    int
	LineHeight int
	Fill       color.RGBA
	Opacity    float64
}

// LayoutPanel sizes a translucent panel around lines. It returns nil when
// there is nothing to show.
func (g Geometry) LayoutPanel(lines []string, anchor Anchor, m Measurer) *PanelLayout {
	if len(lines) == 0 {
		return nil
	}

	scale := g.PanelFontScale()
	thickness := max(2, roundInt(2.5*scale))
	pad := max(6, roundInt(8*scale))

	sizes := make([]TextSize, len(lines))
	maxWidth, tallest := 0, 0
	for i, line := range lines {
		sizes[i] = m.Measure(line, scale, thickness)
		maxWidth = max(maxWidth, sizes[i].Width)
		tallest = max(tallest, sizes[i].Height+sizes[i].Baseline)
	}
	lineHeight := tallest + pad/2

	w := maxWidth + 2*pad
	h := len(lines)*lineHeight + pad

	x, y := pad, pad
	fill, opacity := BoxColor, TopPanelOpacity
	if anchor == AnchorBottom {
		fill, opacity = SummaryColor, BottomPanelOpacity
		y = g.Height - h - pad
		if y < 0 {
			y = pad
		}
	}

	origins := make([]image.Point, len(lines))
	for i := range lines {
		origins[i] = image.Pt(x+pad, y+pad+(i+1)*lineHeight-sizes[i].Baseline-pad/2)
	}

	return &PanelLayout{
		Anchor:     anchor,
		Lines:      append([]string(nil), lines...),
		Origins:    origins,
		Rect:       image.Rect(x, y, x+w, y+h),
		Scale:      scale,
		Thickness:  thickness,
		Padding:    pad,
		LineHeight: lineHeight,
		Fill:       fill,
		Opacity:    opacity,
	}
}
