package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"brainmap/internal/model"
)

const mapColumns = `id, title, description, center_node_id, viewport_x, viewport_y, viewport_zoom, created_at, updated_at`

// CreateMap creates a brain map together with its centre node, labelled with
// the map title.
func (s *Store) CreateMap(ctx context.Context, title, description string) (*model.BrainMap, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("create brain map: title is required")
	}

	now := s.now().UTC()
	m := &model.BrainMap{
		ID:           model.NewID(),
		Title:        title,
		Description:  description,
		CenterNodeID: model.NewID(),
		ViewportZoom: 1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	centre := model.Node{
		ID:         m.CenterNodeID,
		BrainMapID: m.ID,
		Shape:      model.ShapeCircle,
		Size:       model.SizeXL,
		Label:      title,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := insertMap(ctx, tx, m); err != nil {
			return err
		}
		return insertNode(ctx, tx, &centre)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("brain map created", "map", m.ID, "title", title)
	return m, nil
}

func insertMap(ctx context.Context, db execer, m *model.BrainMap) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO brain_maps (`+mapColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Title, nullString(m.Description), nullString(m.CenterNodeID),
		m.ViewportX, m.ViewportY, m.ViewportZoom,
		formatTime(m.CreatedAt), formatTime(m.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert brain map: %w", err)
	}
	return nil
}

func scanMap(row interface{ Scan(...any) error }) (*model.BrainMap, error) {
	var (
		m                model.BrainMap
		desc, centre     sql.NullString
		created, updated string
	)
	if err := row.Scan(&m.ID, &m.Title, &desc, &centre, &m.ViewportX, &m.ViewportY, &m.ViewportZoom, &created, &updated); err != nil {
		return nil, err
	}
	m.Description = desc.String
	m.CenterNodeID = centre.String
	m.CreatedAt = parseTime(created)
	m.UpdatedAt = parseTime(updated)
	return &m, nil
}

// GetMap returns the brain map with the given id.
func (s *Store) GetMap(ctx context.Context, id string) (*model.BrainMap, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+mapColumns+` FROM brain_maps WHERE id = ?`, id)
	m, err := scanMap(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrMapNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get brain map: %w", err)
	}
	return m, nil
}

// FindMap resolves ref as a map id, then as a title, then as a unique id
// prefix.
func (s *Store) FindMap(ctx context.Context, ref string) (*model.BrainMap, error) {
	if m, err := s.GetMap(ctx, ref); err == nil {
		return m, nil
	} else if !errors.Is(err, ErrMapNotFound) {
		return nil, err
	}

	maps, err := s.ListMaps(ctx)
	if err != nil {
		return nil, err
	}
	var prefixed []model.BrainMap
	for _, m := range maps {
		if strings.EqualFold(m.Title, ref) {
			return &m, nil
		}
		if ref != "" && strings.HasPrefix(m.ID, ref) {
			prefixed = append(prefixed, m)
		}
	}
	if len(prefixed) == 1 {
		return &prefixed[0], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrMapNotFound, ref)
}

// ListMaps returns every brain map, most recently updated first.
func (s *Store) ListMaps(ctx context.Context) ([]model.BrainMap, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+mapColumns+` FROM brain_maps ORDER BY updated_at DESC, title`)
	if err != nil {
		return nil, fmt.Errorf("failed to list brain maps: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var maps []model.BrainMap
	for rows.Next() {
		m, err := scanMap(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan brain map: %w", err)
		}
		maps = append(maps, *m)
	}
	return maps, rows.Err()
}

// DeleteMap removes a brain map with all its nodes and connections.
func (s *Store) DeleteMap(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM brain_maps WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete brain map: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrMapNotFound, id)
	}
	s.log.Info("brain map deleted", "map", id)
	return nil
}

// SaveViewport records the camera of a brain map.
func (s *Store) SaveViewport(ctx context.Context, id string, x, y, zoom float64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE brain_maps SET viewport_x = ?, viewport_y = ?, viewport_zoom = ?, updated_at = ? WHERE id = ?`,
		x, y, zoom, s.timestamp(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to save viewport: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrMapNotFound, id)
	}
	return nil
}

// SetCenter changes the centre node of a brain map.
func (s *Store) SetCenter(ctx context.Context, mapID, nodeID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE brain_maps SET center_node_id = ?, updated_at = ? WHERE id = ?`,
		nullString(nodeID), s.timestamp(), mapID,
	)
	if err != nil {
		return fmt.Errorf("failed to set centre node: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrMapNotFound, mapID)
	}
	return nil
}

func (s *Store) touchMap(ctx context.Context, db execer, mapID string) error {
	if _, err := db.ExecContext(ctx, `UPDATE brain_maps SET updated_at = ? WHERE id = ?`, s.timestamp(), mapID); err != nil {
		return fmt.Errorf("failed to touch brain map: %w", err)
	}
	return nil
}

// Load returns a brain map with its nodes and connections.
func (s *Store) Load(ctx context.Context, mapID string) (*model.BrainMap, []model.Node, []model.Connection, error) {
	m, err := s.GetMap(ctx, mapID)
	if err != nil {
		return nil, nil, nil, err
	}
	nodes, err := s.Nodes(ctx, mapID)
	if err != nil {
		return nil, nil, nil, err
	}
	conns, err := s.Connections(ctx, mapID)
	if err != nil {
		return nil, nil, nil, err
	}
	return m, nodes, conns, nil
}
