package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"brainmap/internal/layout"
	"brainmap/internal/model"
	"brainmap/internal/store"
)

func nodesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "nodes <map>",
		Short: "List the nodes of a brain map with their depth and children",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withStore(ctx, func(st *store.Store) error {
				m, err := findMap(ctx, st, args[0])
				if err != nil {
					return err
				}
				_, nodes, conns, err := st.Load(ctx, m.ID)
				if err != nil {
					return err
				}
				g := layout.Build(nodes, conns, layout.Options{})

				rows := make([]table.Row, 0, len(nodes))
				for _, n := range nodes {
					aux := g.Aux[n.ID]
					label := strings.Repeat("  ", aux.Depth) + n.Label
					if n.ID == m.CenterNodeID {
						label += " ◎"
					}
					link := ""
					if aux.HasLink {
						link = "∞"
					}
					rows = append(rows, table.Row{shortID(n.ID), label, aux.Depth, n.Layer, aux.ChildCount, link, string(n.Shape)})
				}
				w := cmd.OutOrStdout()
				renderTable(w, table.Row{"ID", "Label", "Depth", "Layer", "Children", "Link", "Shape"}, rows)
				Subtle.Fprintf(w, "%d nodes, %d connections\n", len(nodes), len(conns))
				return nil
			})
		},
	}
}

func addCmd(a *app) *cobra.Command {
	var parent string
	var x, y float64
	var shape, size string
	cmd := &cobra.Command{
		Use:   "add <map> <label>",
		Short: "Add a node to a brain map",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withStore(ctx, func(st *store.Store) error {
				m, err := findMap(ctx, st, args[0])
				if err != nil {
					return err
				}
				n := model.Node{
					BrainMapID: m.ID,
					X:          x,
					Y:          y,
					Shape:      model.Shape(shape),
					Size:       model.Size(size),
					Label:      strings.Join(args[1:], " "),
				}
				if parent != "" {
					p, err := resolveNode(ctx, st, m.ID, parent)
					if err != nil {
						return err
					}
					n.ParentNodeID = p.ID
					if !cmd.Flags().Changed("x") && !cmd.Flags().Changed("y") {
						siblings, err := st.Nodes(ctx, m.ID)
						if err != nil {
							return err
						}
						n.X, n.Y = layout.ChildPosition(*p, siblings)
					}
				}
				if n.Shape != "" && !n.Shape.Valid() {
					return fmt.Errorf("unknown shape %q", shape)
				}

				added, err := st.AddNode(ctx, n)
				if err != nil {
					return err
				}
				Good.Fprintf(cmd.OutOrStdout(), "Added %s %s\n", added.Label, Subtle.Sprint("("+shortID(added.ID)+")"))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&parent, "parent", "p", "", "Parent node id, id prefix or label")
	cmd.Flags().Float64Var(&x, "x", 0, "Canvas x position")
	cmd.Flags().Float64Var(&y, "y", 0, "Canvas y position")
	cmd.Flags().StringVar(&shape, "shape", "", "circle, rectangle, diamond, hexagon or pill")
	cmd.Flags().StringVar(&size, "size", "", "small, medium, large or xl")
	return cmd
}

// resolveNode finds a node of mapID by id, unique id prefix or label.
func resolveNode(ctx context.Context, st *store.Store, mapID, ref string) (*model.Node, error) {
	nodes, err := st.Nodes(ctx, mapID)
	if err != nil {
		return nil, err
	}
	var matches []*model.Node
	for i := range nodes {
		if nodes[i].ID == ref {
			return &nodes[i], nil
		}
		if strings.HasPrefix(nodes[i].ID, ref) || strings.EqualFold(nodes[i].Label, ref) {
			matches = append(matches, &nodes[i])
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("node %q: %w", ref, store.ErrNodeNotFound)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("node %q is ambiguous: %d nodes match", ref, len(matches))
	}
}
