package model

// Palette is the fallback accent palette for nodes without a colour.
var Palette = []string{
	"#6366f1", // indigo
	"#8b5cf6", // violet
	"#ec4899", // pink
	"#f59e0b", // amber
	"#10b981", // emerald
	"#06b6d4", // cyan
	"#ef4444", // red
	"#84cc16", // lime
}

// PaletteColor picks a palette entry from a hash of id. The same id always
// maps to the same colour.
func PaletteColor(id string) string {
	var hash int32
	for _, r := range id {
		hash = int32(r) + ((hash << 5) - hash)
	}
	idx := int(hash) % len(Palette)
	if idx < 0 {
		idx = -idx
	}
	return Palette[idx]
}

// MaxLabelRunes is the number of runes a label is displayed with before it
// gets an ellipsis.
const MaxLabelRunes = 16

// DisplayLabel truncates label for display. The stored label is untouched.
func DisplayLabel(label string) string {
	runes := []rune(label)
	if len(runes) <= MaxLabelRunes {
		return label
	}
	return string(runes[:MaxLabelRunes-1]) + "…"
}
