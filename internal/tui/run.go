package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/pointbook/internal/snapshot"
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the dashboard and blocks until the user quits or ctx is canceled.
func Run(ctx context.Context, reloader *snapshot.Reloader, opts ...Option) error {
	if reloader == nil {
		return fmt.Errorf("reloader is required")
	}

	program := tea.NewProgram(New(reloader, opts...),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	final, err := program.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("dashboard error: %w", err)
	}

	if m, ok := final.(Model); ok && m.Err() != nil && !m.loaded {
		return fmt.Errorf("failed to load ledger: %w", m.Err())
	}
	return nil
}
