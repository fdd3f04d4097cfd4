package tui

import (
	"context"
	"time"

	"github.com/Veraticus/pointbook/internal/notify"
	"github.com/Veraticus/pointbook/internal/snapshot"
	tea "github.com/charmbracelet/bubbletea"
)

// loadSnapshot reloads the ledger in the background. The message carries the
// store's latest snapshot, which may come from a reload that finished after
// this one.
func loadSnapshot(reloader *snapshot.Reloader, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if _, err := reloader.Reload(ctx); err != nil {
			return loadFailedMsg{err: err}
		}
		snap, version := reloader.Store().Current()
		return snapshotLoadedMsg{snapshot: snap, version: version}
	}
}

// waitForChange blocks until a change message arrives. A closed channel
// ends the subscription.
func waitForChange(ch <-chan *notify.ChangeMessage) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		change, ok := <-ch
		if !ok {
			return nil
		}
		return ledgerChangedMsg{change: change}
	}
}
