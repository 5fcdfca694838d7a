package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"brainmap/internal/config"
	"brainmap/internal/store"
	"brainmap/internal/watch"
)

// Run opens mapID full screen and blocks until the user quits. Writes other
// processes make to the database are picked up while it runs.
func Run(ctx context.Context, st *store.Store, mapID string, cfg *config.Config, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	host, err := NewHost(ctx, st, mapID, cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(New(host, cfg),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)

	if path := st.Path(); path != "" && path != ":memory:" {
		w := watch.New(path, func() { p.Send(externalChangeMsg{}) }, logger)
		go func() {
			if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("database watcher stopped", "error", err)
			}
		}()
	}

	logger.Info("canvas opened", "map", mapID)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run canvas: %w", err)
	}
	logger.Info("canvas closed", "map", mapID)
	return nil
}
