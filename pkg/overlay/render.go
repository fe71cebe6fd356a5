package overlay

import (
	"golang.org/x/image/draw"
)

// Report describes what a render placed on the image.
type Report struct {
	Geometry Geometry
	Badges   []BadgeLayout
	Top      *PanelLayout
	Bottom   *PanelLayout
}

// Renderer is safe for concurrent use; each Render call owns its faces.
type Renderer struct {
	typeface *Typeface
}

func NewRenderer() (*Renderer, error) {
	tf, err := NewTypeface()
	if err != nil {
		return nil, err
	}
	return &Renderer{typeface: tf}, nil
}

// Render mutates dst in place: per annotation a box, a center marker and a
// confidence badge, then the top panel (per-eye lines) and the bottom panel
// (summary lines). Empty line sets produce no panel.
func (r *Renderer) Render(dst draw.Image, annotations []Annotation, topLines, bottomLines []string) Report {
	bounds := dst.Bounds()
	geo := NewGeometry(bounds.Dx(), bounds.Dy())

	faces := r.typeface.newFaceSet()
	defer faces.Close()

	report := Report{Geometry: geo}

	for _, a := range annotations {
		strokeRect(dst, a.X1, a.Y1, a.X2, a.Y2, geo.LineThickness, BoxColor)
		fillCircle(dst, a.Center, geo.MarkerRadius, MarkerColor)

		badge := geo.LayoutBadge(a, faces)
		blendRect(dst, badge.Rect, BoxColor, BadgeOpacity)
		faces.Draw(dst, badge.Text, badge.Origin, badge.Scale, badge.Thickness, TextColor)
		report.Badges = append(report.Badges, badge)
	}

	report.Top = geo.LayoutPanel(topLines, AnchorTop, faces)
	drawPanel(dst, report.Top, faces)

	report.Bottom = geo.LayoutPanel(bottomLines, AnchorBottom, faces)
	drawPanel(dst, report.Bottom, faces)

	return report
}

func drawPanel(dst draw.Image, p *PanelLayout, faces *faceSet) {
	if p == nil {
		return
	}
	blendRect(dst, p.Rect, p.Fill, p.Opacity)
	for i, line := range p.Lines {
		faces.Draw(dst, line, p.Origins[i], p.Scale, p.Thickness, TextColor)
	}
}
