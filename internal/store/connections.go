package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"brainmap/internal/model"
)

// ErrSelfConnection is returned when both endpoints of a new connection are
// the same node.
var ErrSelfConnection = errors.New("connection source and target are the same node")

const connColumns = `id, brain_map_id, source_node_id, target_node_id, label, color, style, animated, created_at`

func insertConnection(ctx context.Context, db execer, c *model.Connection) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO brain_connections (`+connColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.BrainMapID, c.SourceNodeID, c.TargetNodeID, nullString(c.Label), nullString(c.Color),
		string(c.Style), boolInt(c.Animated), formatTime(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert connection: %w", err)
	}
	return nil
}

func scanConnection(row interface{ Scan(...any) error }) (*model.Connection, error) {
	var (
		c            model.Connection
		label, color sql.NullString
		style        string
		animated     int
		created      string
	)
	err := row.Scan(&c.ID, &c.BrainMapID, &c.SourceNodeID, &c.TargetNodeID, &label, &color, &style, &animated, &created)
	if err != nil {
		return nil, err
	}
	c.Label = label.String
	c.Color = color.String
	c.Style = model.ConnectionStyle(style)
	c.Animated = animated != 0
	c.CreatedAt = parseTime(created)
	return &c, nil
}

// Connections returns the explicit connections of a brain map.
func (s *Store) Connections(ctx context.Context, mapID string) ([]model.Connection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+connColumns+` FROM brain_connections WHERE brain_map_id = ? ORDER BY created_at, rowid`, mapID)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var conns []model.Connection
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		conns = append(conns, *c)
	}
	return conns, rows.Err()
}

// AddConnection connects two nodes of the same brain map. Connecting a pair
// that is already connected, in either direction, returns the existing
// connection.
func (s *Store) AddConnection(ctx context.Context, c model.Connection) (*model.Connection, error) {
	if c.SourceNodeID == c.TargetNodeID {
		return nil, ErrSelfConnection
	}
	if c.ID == "" {
		c.ID = model.NewID()
	}
	if c.Style == "" {
		c.Style = model.StyleSolid
	}
	c.CreatedAt = s.now().UTC()

	var existing *model.Connection
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		src, err := getNode(ctx, tx, c.SourceNodeID)
		if err != nil {
			return err
		}
		dst, err := getNode(ctx, tx, c.TargetNodeID)
		if err != nil {
			return err
		}
		if src.BrainMapID != dst.BrainMapID {
			return fmt.Errorf("%w: %s is not in brain map %s", ErrNodeNotFound, dst.ID, src.BrainMapID)
		}
		c.BrainMapID = src.BrainMapID

		existing, err = scanConnection(tx.QueryRowContext(ctx,
			`SELECT `+connColumns+` FROM brain_connections
			 WHERE (source_node_id = ? AND target_node_id = ?) OR (source_node_id = ? AND target_node_id = ?)
			 LIMIT 1`,
			c.SourceNodeID, c.TargetNodeID, c.TargetNodeID, c.SourceNodeID))
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check connection: %w", err)
		}
		existing = nil

		if err := insertConnection(ctx, tx, &c); err != nil {
			return err
		}
		return s.touchMap(ctx, tx, c.BrainMapID)
	})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	s.log.Debug("connection added", "connection", c.ID, "source", c.SourceNodeID, "target", c.TargetNodeID)
	return &c, nil
}

// DeleteConnection removes an explicit connection. Unknown ids are ignored.
func (s *Store) DeleteConnection(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM brain_connections WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete connection: %w", err)
	}
	s.log.Debug("connection deleted", "connection", id)
	return nil
}
