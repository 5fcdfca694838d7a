package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaletteColorDeterministic(t *testing.T) {
	for _, id := range []string{"a", "node-1", "0f8e2c1a-8d44-4e4c-9c55-c8f3d4d1c2b7", ""} {
		first := PaletteColor(id)
		assert.Equal(t, first, PaletteColor(id))
		assert.Contains(t, Palette, first)
	}
}

func TestAccentColorPrefersExplicitColor(t *testing.T) {
	n := Node{ID: "x", Color: "#123456"}
	assert.Equal(t, "#123456", n.AccentColor())

	n.Color = ""
	assert.Equal(t, PaletteColor("x"), n.AccentColor())
}

func TestDisplayLabel(t *testing.T) {
	assert.Equal(t, "short", DisplayLabel("short"))
	assert.Equal(t, "exactly16chars!!", DisplayLabel("exactly16chars!!"))

	long := "a label that is far too long"
	got := DisplayLabel(long)
	assert.Equal(t, MaxLabelRunes, len([]rune(got)))
	assert.Equal(t, "a label that is…", got)
}

func TestHasLink(t *testing.T) {
	var n Node
	assert.False(t, n.HasLink())
	n.LinkedEventID = "evt"
	assert.True(t, n.HasLink())
}

func TestSizeSpecFallback(t *testing.T) {
	assert.Equal(t, SizeMedium.Spec(), Size("huge").Spec())
	assert.Greater(t, SizeXL.Spec().Radius, SizeSmall.Spec().Radius)
}

func TestShapeValid(t *testing.T) {
	assert.True(t, ShapeHexagon.Valid())
	assert.False(t, Shape("star").Valid())
}
