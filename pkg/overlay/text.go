package overlay

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// pixelsPerFontScale is the em size, in pixels, of font scale 1.0. It puts
// the cap height of Go Regular at roughly 22px.
const pixelsPerFontScale = 30.0

// TextSize is the footprint of a rendered line. Baseline is the extent of
// descenders below the origin row.
type TextSize struct {
	Width    int
	Height   int
	Baseline int
}

type Measurer interface {
	Measure(text string, scale float64, thickness int) TextSize
}

// Typeface is a parsed font shared by all renders. Faces are created per
// render because font.Face values are not safe for concurrent use.
type Typeface struct {
	font *opentype.Font
}

func NewTypeface() (*Typeface, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse overlay font: %w", err)
	}
	return &Typeface{font: f}, nil
}

type faceSet struct {
	typeface *Typeface
	faces    map[float64]font.Face
}

func (t *Typeface) newFaceSet() *faceSet {
	return &faceSet{typeface: t, faces: make(map[float64]font.Face)}
}

func (s *faceSet) face(scale float64) font.Face {
	if f, ok := s.faces[scale]; ok {
		return f
	}
	f, err := opentype.NewFace(s.typeface.font, &opentype.FaceOptions{
		Size:    scale * pixelsPerFontScale,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		f = basicfont.Face7x13
	}
	s.faces[scale] = f
	return f
}

func (s *faceSet) Measure(text string, scale float64, thickness int) TextSize {
	f := s.face(scale)
	metrics := f.Metrics()

	capHeight := metrics.CapHeight.Ceil()
	if capHeight <= 0 {
		capHeight = metrics.Ascent.Ceil()
	}
	stroke := (thickness + 1) / 2

	return TextSize{
		Width:    font.MeasureString(f, text).Ceil() + stroke,
		Height:   capHeight + stroke,
		Baseline: metrics.Descent.Ceil(),
	}
}

// Draw renders text with its baseline starting at origin. Thickness is
// emulated by stamping the glyphs over a disc of offsets.
func (s *faceSet) Draw(dst draw.Image, text string, origin image.Point, scale float64, thickness int, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: s.face(scale),
	}

	radius := (thickness - 1) / 2
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > radius*radius {
				continue
			}
			d.Dot = fixed.P(origin.X+dx, origin.Y+dy)
			d.DrawString(text)
		}
	}
}

func (s *faceSet) Close() {
	for _, f := range s.faces {
		f.Close()
	}
}
