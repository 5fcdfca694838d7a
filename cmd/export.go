package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"brainmap/internal/codec"
	"brainmap/internal/export"
	"brainmap/internal/store"
	"brainmap/internal/tui"
)

func exportCmd(a *app) *cobra.Command {
	var output string
	var width, height int
	var minimap bool
	cmd := &cobra.Command{
		Use:   "export <map>",
		Short: "Export a brain map as " + strings.Join(export.Formats, ", "),
		Long: "Export a brain map. The format follows the output file extension; without\n" +
			"--output a PNG named after the map is written to the export save directory.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withStore(ctx, func(st *store.Store) error {
				m, err := findMap(ctx, st, args[0])
				if err != nil {
					return err
				}
				bm, nodes, conns, err := st.Load(ctx, m.ID)
				if err != nil {
					return err
				}

				name := output
				if name == "" {
					name = export.FileName(bm.Title, ".png")
				}
				path, err := a.cfg.GetSavePath(name)
				if err != nil {
					return err
				}

				opts := export.Options{
					Width:       a.cfg.Export.Width,
					Height:      a.cfg.Export.Height,
					ShowMinimap: minimap,
					Canvas:      tui.CanvasOptions(a.cfg.Canvas),
				}
				// Exports of the same map come out identical.
				opts.Canvas.Seed = 1
				if width > 0 {
					opts.Width = width
				}
				if height > 0 {
					opts.Height = height
				}

				if err := export.File(path, codec.NewDocument(*bm, nodes, conns), opts); err != nil {
					return err
				}
				a.log.Info("brain map exported", "map", bm.ID, "path", path)
				Good.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", bm.Title, path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (.png, .svg, .txt, .json, .yaml)")
	cmd.Flags().IntVar(&width, "width", 0, "Image width in pixels (default from [export] width)")
	cmd.Flags().IntVar(&height, "height", 0, "Image height in pixels (default from [export] height)")
	cmd.Flags().BoolVar(&minimap, "minimap", false, "Draw the minimap into image exports")
	return cmd
}

func importCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a brain map from a JSON or YAML document",
		Long: "Import a brain map document. A map with the same id is replaced; connections\n" +
			"to nodes missing from the document are kept as they are.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]
			c, err := codec.ForPath(path)
			if err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}
			defer f.Close()

			doc, err := c.Parse(f)
			if err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(path), err)
			}
			return a.withStore(ctx, func(st *store.Store) error {
				m, err := st.Import(ctx, doc.Map, doc.Nodes, doc.Connections)
				if err != nil {
					return err
				}
				a.log.Info("brain map imported", "map", m.ID, "path", path)
				Good.Fprintf(cmd.OutOrStdout(), "Imported %s %s\n", m.Title,
					Subtle.Sprintf("(%d nodes, %d connections)", len(doc.Nodes), len(doc.Connections)))
				return nil
			})
		},
	}
}
