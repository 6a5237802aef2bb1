package layout

import (
	"fmt"
	"strings"
)

// Category is the kind of a visual entity.
type Category int

const (
	Particle Category = iota
	Sphere
	Box
	Gem
	Topper
	Photo
)

// Categories lists every category in ID order.
var Categories = []Category{Particle, Sphere, Box, Gem, Topper, Photo}

var categoryNames = [...]string{
	Particle: "particle",
	Sphere:   "sphere",
	Box:      "box",
	Gem:      "gem",
	Topper:   "topper",
	Photo:    "photo",
}

// String returns the lowercase category name.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// MarshalText encodes the category by name.
func (c Category) MarshalText() ([]byte, error) {
	if c < 0 || int(c) >= len(categoryNames) {
		return nil, fmt.Errorf("layout: unknown category %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a category name.
func (c *Category) UnmarshalText(b []byte) error {
	v, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseCategory converts a name such as "sphere" to its Category.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range categoryNames {
		if name == s {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("layout: unknown category %q", s)
}

// Ornament reports whether c is one of the three ornament shapes.
func (c Category) Ornament() bool {
	return c == Sphere || c == Box || c == Gem
}

// Size is the nominal rendered extent of one entity of this category in
// world units, before per-frame scaling.
func (c Category) Size() float64 {
	switch c {
	case Particle:
		return 0.06
	case Sphere:
		return 0.22
	case Box:
		return 0.28
	case Gem:
		return 0.25
	case Topper:
		return 0.8
	case Photo:
		return 1.5
	}
	return 0
}

// streamKey separates the PCG streams of different categories.
func (c Category) streamKey() uint64 {
	return (uint64(c) + 1) * 0x9e3779b97f4a7c15
}
