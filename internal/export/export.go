// Package export writes brain maps to image, text and document files.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"brainmap/internal/canvas"
	"brainmap/internal/codec"
	"brainmap/internal/render/raster"
	"brainmap/internal/render/svg"
	"brainmap/internal/render/term"
	"brainmap/internal/scene"
)

// Options controls image exports.
type Options struct {
	// Width and Height are the image size in pixels. Text exports use as
	// many cells as cover the same area.
	Width, Height int
	ShowMinimap   bool
	Canvas        canvas.Options
}

// Formats lists the supported file extensions.
var Formats = []string{".png", ".svg", ".txt", ".json", ".yaml", ".yml"}

// Scene lays out doc on a canvas of the given size with every node in view.
func Scene(doc *codec.Document, opts Options) *scene.Scene {
	c := canvas.New(opts.Canvas, canvas.Callbacks{})
	c.SetSize(0, 0, float64(opts.Width), float64(opts.Height))
	c.SetProps(canvas.Props{
		Nodes:        doc.Nodes,
		Connections:  doc.Connections,
		CenterNodeID: doc.Map.CenterNodeID,
		ShowMinimap:  opts.ShowMinimap,
	})
	c.Fit()
	return c.Scene()
}

// Write renders doc into w in the format named by ext.
func Write(w io.Writer, ext string, doc *codec.Document, opts Options) error {
	ext = strings.ToLower(ext)
	switch ext {
	case ".png":
		r, err := raster.New()
		if err != nil {
			return err
		}
		return r.Render(Scene(doc, opts), w)
	case ".svg":
		return svg.Renderer{}.Render(Scene(doc, opts), w)
	case ".txt":
		cols := max(opts.Width/int(term.CellWidth), 1)
		rows := max(opts.Height/int(term.CellHeight), 1)
		width, height := term.Size(cols, rows)
		textOpts := opts
		textOpts.Width, textOpts.Height = int(width), int(height)
		return term.Renderer{Plain: true}.Render(Scene(doc, textOpts), w)
	case ".json", ".yaml", ".yml":
		c, err := codec.ForPath("doc" + ext)
		if err != nil {
			return err
		}
		return c.Export(doc, w)
	default:
		return fmt.Errorf("unsupported export format %q (want one of %s)", ext, strings.Join(Formats, ", "))
	}
}

// File writes doc to path, picking the format from its extension.
func File(path string, doc *codec.Document, opts Options) (err error) {
	ext := filepath.Ext(path)
	if !supported(ext) {
		return fmt.Errorf("unsupported export format %q (want one of %s)", ext, strings.Join(Formats, ", "))
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	return Write(f, ext, doc, opts)
}

func supported(ext string) bool {
	ext = strings.ToLower(ext)
	for _, f := range Formats {
		if f == ext {
			return true
		}
	}
	return false
}

// FileName turns a map title into a file name with the given extension.
func FileName(title, ext string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	name := strings.TrimSuffix(b.String(), "-")
	if name == "" {
		name = "brainmap"
	}
	return name + ext
}
