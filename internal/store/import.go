package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"brainmap/internal/model"
)

// Import writes a whole brain map in one transaction, replacing any map with
// the same id. Missing ids and timestamps are filled in. Parent and endpoint
// references are stored as given, dangling or not.
func (s *Store) Import(ctx context.Context, m model.BrainMap, nodes []model.Node, conns []model.Connection) (*model.BrainMap, error) {
	if strings.TrimSpace(m.Title) == "" {
		return nil, fmt.Errorf("import brain map: title is required")
	}
	now := s.now().UTC()
	if m.ID == "" {
		m.ID = model.NewID()
	}
	if m.ViewportZoom <= 0 {
		m.ViewportZoom = 1
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM brain_maps WHERE id = ?`, m.ID); err != nil {
			return fmt.Errorf("failed to replace brain map: %w", err)
		}
		if err := insertMap(ctx, tx, &m); err != nil {
			return err
		}
		for i := range nodes {
			n := nodes[i]
			n.BrainMapID = m.ID
			if n.ID == "" {
				n.ID = model.NewID()
			}
			if !n.Shape.Valid() {
				n.Shape = model.ShapeCircle
			}
			if _, ok := knownSizes[n.Size]; !ok {
				n.Size = model.SizeMedium
			}
			if n.CreatedAt.IsZero() {
				n.CreatedAt = now
			}
			if n.UpdatedAt.IsZero() {
				n.UpdatedAt = n.CreatedAt
			}
			if err := insertNode(ctx, tx, &n); err != nil {
				return fmt.Errorf("node %s: %w", n.ID, err)
			}
		}
		for i := range conns {
			c := conns[i]
			c.BrainMapID = m.ID
			if c.ID == "" {
				c.ID = model.NewID()
			}
			if c.Style == "" {
				c.Style = model.StyleSolid
			}
			if c.CreatedAt.IsZero() {
				c.CreatedAt = now
			}
			if err := insertConnection(ctx, tx, &c); err != nil {
				return fmt.Errorf("connection %s: %w", c.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("brain map imported", "map", m.ID, "nodes", len(nodes), "connections", len(conns))
	return &m, nil
}
