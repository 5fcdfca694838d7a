package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"brainmap/internal/model"
)

const nodeColumns = `id, brain_map_id, x, y, parent_node_id, layer, shape, size, color, label, description, icon,
	linked_note_id, linked_folder_id, linked_event_id, is_collapsed, created_at, updated_at`

func insertNode(ctx context.Context, db execer, n *model.Node) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO brain_nodes (`+nodeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.BrainMapID, n.X, n.Y, nullString(n.ParentNodeID), n.Layer,
		string(n.Shape), string(n.Size), nullString(n.Color), n.Label,
		nullString(n.Description), nullString(n.Icon),
		nullString(n.LinkedNoteID), nullString(n.LinkedFolderID), nullString(n.LinkedEventID),
		boolInt(n.IsCollapsed), formatTime(n.CreatedAt), formatTime(n.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert node: %w", err)
	}
	return nil
}

func scanNode(row interface{ Scan(...any) error }) (*model.Node, error) {
	var (
		n                         model.Node
		shape, size               string
		parent, color, desc, icon sql.NullString
		noteID, folderID, eventID sql.NullString
		collapsed                 int
		created, updated          string
	)
	err := row.Scan(&n.ID, &n.BrainMapID, &n.X, &n.Y, &parent, &n.Layer, &shape, &size, &color, &n.Label,
		&desc, &icon, &noteID, &folderID, &eventID, &collapsed, &created, &updated)
	if err != nil {
		return nil, err
	}
	n.ParentNodeID = parent.String
	n.Shape = model.Shape(shape)
	n.Size = model.Size(size)
	n.Color = color.String
	n.Description = desc.String
	n.Icon = icon.String
	n.LinkedNoteID = noteID.String
	n.LinkedFolderID = folderID.String
	n.LinkedEventID = eventID.String
	n.IsCollapsed = collapsed != 0
	n.CreatedAt = parseTime(created)
	n.UpdatedAt = parseTime(updated)
	return &n, nil
}

// Nodes returns the nodes of a brain map in creation order.
func (s *Store) Nodes(ctx context.Context, mapID string) ([]model.Node, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+nodeColumns+` FROM brain_nodes WHERE brain_map_id = ? ORDER BY created_at, rowid`, mapID)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var nodes []model.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		nodes = append(nodes, *n)
	}
	return nodes, rows.Err()
}

// Node returns a single node.
func (s *Store) Node(ctx context.Context, id string) (*model.Node, error) {
	return getNode(ctx, s.db, id)
}

func getNode(ctx context.Context, db execer, id string) (*model.Node, error) {
	n, err := scanNode(db.QueryRowContext(ctx, `SELECT `+nodeColumns+` FROM brain_nodes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get node: %w", err)
	}
	return n, nil
}

// AddNode inserts n into its brain map. A missing id is generated, unknown
// shapes and sizes fall back to circle and medium, and a child is placed one
// layer below its parent.
func (s *Store) AddNode(ctx context.Context, n model.Node) (*model.Node, error) {
	if n.ID == "" {
		n.ID = model.NewID()
	}
	if !n.Shape.Valid() {
		n.Shape = model.ShapeCircle
	}
	if _, ok := knownSizes[n.Size]; !ok {
		n.Size = model.SizeMedium
	}
	now := s.now().UTC()
	n.CreatedAt, n.UpdatedAt = now, now

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM brain_maps WHERE id = ?`, n.BrainMapID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check brain map: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("%w: %s", ErrMapNotFound, n.BrainMapID)
		}

		if n.ParentNodeID != "" {
			parent, err := getNode(ctx, tx, n.ParentNodeID)
			if err != nil {
				return err
			}
			n.Layer = parent.Layer + 1
		}
		if err := insertNode(ctx, tx, &n); err != nil {
			return err
		}
		return s.touchMap(ctx, tx, n.BrainMapID)
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("node added", "map", n.BrainMapID, "node", n.ID, "parent", n.ParentNodeID)
	return &n, nil
}

var knownSizes = map[model.Size]struct{}{
	model.SizeSmall:  {},
	model.SizeMedium: {},
	model.SizeLarge:  {},
	model.SizeXL:     {},
}

// MoveNode stores a new position. Unknown ids are ignored: a drag may end on
// a node another writer already removed.
func (s *Store) MoveNode(ctx context.Context, id string, x, y float64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE brain_nodes SET x = ?, y = ?, updated_at = ? WHERE id = ?`, x, y, s.timestamp(), id)
	if err != nil {
		return fmt.Errorf("failed to move node: %w", err)
	}
	s.log.Debug("node moved", "node", id, "x", x, "y", y)
	return nil
}

// UpdateLabel replaces the label of a node. Empty labels are stored as given.
func (s *Store) UpdateLabel(ctx context.Context, id, label string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE brain_nodes SET label = ?, updated_at = ? WHERE id = ?`, label, s.timestamp(), id)
	if err != nil {
		return fmt.Errorf("failed to update label: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return nil
}

// SetCollapsed toggles the collapsed flag of a node.
func (s *Store) SetCollapsed(ctx context.Context, id string, collapsed bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE brain_nodes SET is_collapsed = ?, updated_at = ? WHERE id = ?`, boolInt(collapsed), s.timestamp(), id)
	if err != nil {
		return fmt.Errorf("failed to update node: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return nil
}

// DeleteNode removes a node and the explicit connections touching it. Its
// children become roots of their own.
func (s *Store) DeleteNode(ctx context.Context, id string) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		n, err := getNode(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM brain_connections WHERE source_node_id = ? OR target_node_id = ?`, id, id); err != nil {
			return fmt.Errorf("failed to delete connections: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE brain_nodes SET parent_node_id = NULL WHERE parent_node_id = ?`, id); err != nil {
			return fmt.Errorf("failed to detach children: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE brain_maps SET center_node_id = NULL WHERE center_node_id = ?`, id); err != nil {
			return fmt.Errorf("failed to clear centre node: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM brain_nodes WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete node: %w", err)
		}
		return s.touchMap(ctx, tx, n.BrainMapID)
	})
	if err != nil {
		return err
	}
	s.log.Debug("node deleted", "node", id)
	return nil
}
