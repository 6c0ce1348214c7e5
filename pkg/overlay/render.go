// Package overlay draws selected landmarks onto a copy of the source image.
package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"LandmarkGolang/internal/entity"
	"LandmarkGolang/pkg/landmark"

	"github.com/disintegration/imaging"
)

// Render draws every selection onto a copy of src and returns the copy.
//
// Per selection the box is drawn first, then each region in
// entity.RegionOrder, so later regions paint over earlier ones where markers
// overlap. Marker centers and box corners outside the image are clamped to
// the nearest edge pixel (see ClampPoint) instead of being dropped.
func Render(src image.Image, selections []landmark.Selection, colors *ColorTable, cfg landmark.RenderConfig) *image.NRGBA {
	dst := imaging.Clone(src)
	width, height := dst.Bounds().Dx(), dst.Bounds().Dy()
	if width == 0 || height == 0 {
		return dst
	}

	for _, sel := range selections {
		if sel.Box != nil {
			drawBox(dst, *sel.Box, colors.Box(), cfg.LineWidth())
		}

		radius := sel.Radius
		if radius <= 0 {
			radius = landmark.DefaultMarkerRadius
		}
		for _, name := range entity.RegionOrder {
			region, ok := sel.Regions[name]
			if !ok {
				continue
			}
			c, ok := colors.Region(name)
			if !ok {
				continue
			}
			for _, p := range region.Points {
				x, y := ClampPoint(p, width, height)
				fillCircle(dst, x, y, radius, c)
			}
		}
	}
	return dst
}

// ClampPoint converts p to a pixel index and clamps it into
// [0,width-1]×[0,height-1]. Non-finite coordinates land on 0.
func ClampPoint(p entity.Point2D, width, height int) (int, int) {
	return clampAxis(p.X, width), clampAxis(p.Y, height)
}

func clampAxis(v float64, size int) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v >= float64(size-1) {
		return size - 1
	}
	return int(math.Floor(v))
}

func fillCircle(dst *image.NRGBA, cx, cy, r int, c color.RGBA) {
	nc := color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
	bounds := dst.Bounds()
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > r*r {
				continue
			}
			pt := image.Pt(cx+dx, cy+dy)
			if pt.In(bounds) {
				dst.SetNRGBA(pt.X, pt.Y, nc)
			}
		}
	}
}

// drawBox strokes the rectangle with lines growing inward from the corners.
func drawBox(dst *image.NRGBA, box entity.BoundingBox, c color.RGBA, lineWidth int) {
	bounds := dst.Bounds()
	x1, y1 := ClampPoint(entity.Point2D{X: box.X1, Y: box.Y1}, bounds.Dx(), bounds.Dy())
	x2, y2 := ClampPoint(entity.Point2D{X: box.X2, Y: box.Y2}, bounds.Dx(), bounds.Dy())

	fill := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(x1, y1, x2+1, y1+lineWidth),
		image.Rect(x1, y2-lineWidth+1, x2+1, y2+1),
		image.Rect(x1, y1, x1+lineWidth, y2+1),
		image.Rect(x2-lineWidth+1, y1, x2+1, y2+1),
	}
	for _, edge := range edges {
		draw.Draw(dst, edge.Intersect(bounds), fill, image.Point{}, draw.Src)
	}
}
