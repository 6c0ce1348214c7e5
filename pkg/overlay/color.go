package overlay

import (
	"fmt"
	"image/color"
	"strings"

	"LandmarkGolang/internal/entity"

	"golang.org/x/image/colornames"
)

// ColorTable maps each region to its marker color. It is immutable once
// built and safe to share between requests.
type ColorTable struct {
	regions map[entity.RegionName]color.RGBA
	box     color.RGBA
}

var defaultTable = NewColorTable(map[entity.RegionName]color.RGBA{
	entity.RegionNose:        colornames.Green,
	entity.RegionLeftEye:     colornames.Blue,
	entity.RegionRightEye:    colornames.Red,
	entity.RegionMouth:       colornames.Cyan,
	entity.RegionEyebrows:    colornames.Yellow,
	entity.RegionFaceOutline: colornames.Purple,
}, colornames.Yellow)

func DefaultColorTable() *ColorTable {
	return defaultTable
}

func NewColorTable(regions map[entity.RegionName]color.RGBA, box color.RGBA) *ColorTable {
	t := &ColorTable{
		regions: make(map[entity.RegionName]color.RGBA, len(regions)),
		box:     box,
	}
	for name, c := range regions {
		t.regions[name] = c
	}
	return t
}

func (t *ColorTable) Region(name entity.RegionName) (color.RGBA, bool) {
	c, ok := t.regions[name]
	return c, ok
}

func (t *ColorTable) Box() color.RGBA {
	return t.box
}

// WithBox returns a copy of the table with a different box color.
func (t *ColorTable) WithBox(box color.RGBA) *ColorTable {
	return NewColorTable(t.regions, box)
}

// ParseColor resolves an SVG/CSS color name such as "yellow" or "purple".
func ParseColor(name string) (color.RGBA, error) {
	c, ok := colornames.Map[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return color.RGBA{}, fmt.Errorf("unknown color %q", name)
	}
	return c, nil
}
