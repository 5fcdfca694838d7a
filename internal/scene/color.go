package scene

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	BackgroundColor = "#0b0f19"
	LabelColor      = "#f8fafc"
	ShadowColor     = "#000000"
	SelectColor     = "#e2e8f0"
	SourceRingColor = "#22d3ee"
	BadgeColor      = "#1e293b"
	MinimapColor    = "#111827"
	fallbackColor   = "#64748b"
)

// Hex parses a "#rrggbb" colour, falling back to slate grey on bad input.
func Hex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		c, _ = colorful.Hex(fallbackColor)
	}
	return c
}

// Lighten blends hex toward white by amount in [0, 1].
func Lighten(hex string, amount float64) string {
	white := colorful.Color{R: 1, G: 1, B: 1}
	return Hex(hex).BlendRgb(white, amount).Hex()
}

// Darken blends hex toward black by amount in [0, 1].
func Darken(hex string, amount float64) string {
	return Hex(hex).BlendRgb(colorful.Color{}, amount).Hex()
}

// RGBA converts hex and an opacity in [0, 1] to a colour for image drawing.
func RGBA(hex string, opacity float64) color.NRGBA {
	r, g, b := Hex(hex).RGB255()
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	return color.NRGBA{R: r, G: g, B: b, A: uint8(opacity*255 + 0.5)}
}
