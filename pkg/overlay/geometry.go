// Package overlay draws detection annotations and metric panels onto an
// image. Every size (stroke width, marker radius, font scale, padding) is
// derived from the image resolution so the overlay reads the same on a
// 640px phone crop and on a 4000px camera frame.
package overlay

import (
	"image/color"
	"math"
)

const (
	referenceArea  = 1280 * 720
	minGlobalScale = 1.2

	baseLineThickness = 4.0
	minLineThickness  = 3
	baseMarkerRadius  = 6.0
	minMarkerRadius   = 4

	badgeReferenceSide = 180.0
	badgeScaleBoost    = 1.2
	minBadgeScale      = 0.9
	maxBadgeScale      = 2.0

	panelReferencePerimeter = 1800.0
	minPanelScale           = 1.0
	maxPanelScale           = 2.0

	// Photos in the common 1000-2000px range get smaller panels.
	compactionMinDim = 1000
	compactionMaxDim = 2000
	compactionFactor = 0.75

	BadgeOpacity       = 0.75
	TopPanelOpacity    = 0.65
	BottomPanelOpacity = 0.85
)

var (
	BoxColor     = color.RGBA{R: 139, A: 255}
	MarkerColor  = color.RGBA{R: 255, A: 255}
	SummaryColor = color.RGBA{G: 128, A: 255}
	TextColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Geometry holds the resolution-derived drawing parameters of one image.
type Geometry struct {
	Width           int
	Height          int
	GlobalScale     float64
	LineThickness   int
	MarkerRadius    int
	PanelCompaction float64
}

func NewGeometry(width, height int) Geometry {
	global := math.Max(minGlobalScale, math.Sqrt(float64(width)*float64(height)/referenceArea))

	compaction := 1.0
	if maxDim := max(width, height); maxDim >= compactionMinDim && maxDim <= compactionMaxDim {
		compaction = compactionFactor
	}

	return Geometry{
		Width:           width,
		Height:          height,
		GlobalScale:     global,
		LineThickness:   max(minLineThickness, int(baseLineThickness*global)),
		MarkerRadius:    max(minMarkerRadius, int(baseMarkerRadius*global)),
		PanelCompaction: compaction,
	}
}

// BadgeScale is the font scale of the confidence badge attached to a box of
// the given size.
func (g Geometry) BadgeScale(boxWidth, boxHeight int) float64 {
	base := float64(min(boxWidth, boxHeight)) / badgeReferenceSide
	return clamp(base*badgeScaleBoost*g.GlobalScale, minBadgeScale, maxBadgeScale)
}

// PanelFontScale is shared by the top and bottom panels.
func (g Geometry) PanelFontScale() float64 {
	perimeter := float64(g.Width + g.Height)
	return clamp(perimeter/panelReferencePerimeter*g.GlobalScale, minPanelScale, maxPanelScale) * g.PanelCompaction
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// roundInt rounds half to even.
func roundInt(v float64) int {
	return int(math.RoundToEven(v))
}
