package cmd

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"brainmap/internal/store"
	"brainmap/internal/tui"
)

func openCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "open <map>",
		Short: "Open a brain map on the canvas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withStore(ctx, func(st *store.Store) error {
				m, err := findMap(ctx, st, args[0])
				if err != nil {
					return err
				}
				return tui.Run(ctx, st, m.ID, a.cfg, a.log)
			})
		},
	}
}

func newCmd(a *app) *cobra.Command {
	var description string
	var open bool
	cmd := &cobra.Command{
		Use:   "new <title>",
		Short: "Create a brain map with its centre node",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			title := strings.Join(args, " ")
			return a.withStore(ctx, func(st *store.Store) error {
				m, err := st.CreateMap(ctx, title, description)
				if err != nil {
					return err
				}
				Good.Fprintf(cmd.OutOrStdout(), "Created %s %s\n", m.Title, Subtle.Sprint("("+shortID(m.ID)+")"))
				if open {
					return tui.Run(ctx, st, m.ID, a.cfg, a.log)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Map description")
	cmd.Flags().BoolVar(&open, "open", false, "Open the new map on the canvas")
	return cmd
}

func listCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List brain maps, most recently changed first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return a.withStore(ctx, func(st *store.Store) error {
				maps, err := st.ListMaps(ctx)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if len(maps) == 0 {
					Subtle.Fprintln(w, "No brain maps yet. Create one with `brainmap new <title>`.")
					return nil
				}
				rows := make([]table.Row, 0, len(maps))
				for _, m := range maps {
					nodes, err := st.Nodes(ctx, m.ID)
					if err != nil {
						return err
					}
					rows = append(rows, table.Row{shortID(m.ID), m.Title, len(nodes), m.UpdatedAt.Local().Format("2006-01-02 15:04")})
				}
				renderTable(w, table.Row{"ID", "Title", "Nodes", "Updated"}, rows)
				return nil
			})
		},
	}
}

func deleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <map>",
		Aliases: []string{"rm"},
		Short:   "Delete a brain map with all its nodes and connections",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withStore(ctx, func(st *store.Store) error {
				m, err := findMap(ctx, st, args[0])
				if err != nil {
					return err
				}
				if err := st.DeleteMap(ctx, m.ID); err != nil {
					return fmt.Errorf("delete brain map: %w", err)
				}
				Good.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", m.Title)
				return nil
			})
		},
	}
}
