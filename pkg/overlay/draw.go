package overlay

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

func fillRect(dst draw.Image, r image.Rectangle, c color.Color) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// strokeRect outlines the inclusive box (x1,y1)-(x2,y2) with a band of the
// given thickness centred on its edges.
func strokeRect(dst draw.Image, x1, y1, x2, y2, thickness int, c color.Color) {
	half := thickness / 2
	outer := image.Rect(x1-half, y1-half, x2-half+thickness, y2-half+thickness)
	inner := image.Rect(outer.Min.X+thickness, outer.Min.Y+thickness, outer.Max.X-thickness, outer.Max.Y-thickness)

	if inner.Empty() {
		fillRect(dst, outer, c)
		return
	}

	fillRect(dst, image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, inner.Min.Y), c)
	fillRect(dst, image.Rect(outer.Min.X, inner.Max.Y, outer.Max.X, outer.Max.Y), c)
	fillRect(dst, image.Rect(outer.Min.X, inner.Min.Y, inner.Min.X, inner.Max.Y), c)
	fillRect(dst, image.Rect(inner.Max.X, inner.Min.Y, outer.Max.X, inner.Max.Y), c)
}

func fillCircle(dst draw.Image, center image.Point, radius int, c color.Color) {
	bounds := dst.Bounds()
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		y := center.Y + dy
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		dx := 0
		for (dx+1)*(dx+1)+dy*dy <= r2 {
			dx++
		}
		fillRect(dst, image.Rect(center.X-dx, y, center.X+dx+1, y+1), c)
	}
}

// blendRect composites c over r at the given opacity, leaving the
// underlying pixels faintly visible.
func blendRect(dst draw.Image, r image.Rectangle, c color.RGBA, opacity float64) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	mask := image.NewUniform(color.Alpha{A: uint8(roundInt(clamp(opacity, 0, 1) * 255))})
	draw.DrawMask(dst, r, image.NewUniform(c), image.Point{}, mask, image.Point{}, draw.Over)
}
