package tui

import (
	"github.com/Veraticus/pointbook/internal/model"
	"github.com/Veraticus/pointbook/internal/notify"
)

// snapshotLoadedMsg carries a freshly loaded snapshot and its store version.
type snapshotLoadedMsg struct {
	snapshot model.Snapshot
	version  uint64
}

// loadFailedMsg reports a failed reload. The previous snapshot stays on screen.
type loadFailedMsg struct {
	err error
}

// ledgerChangedMsg is sent when another process changed the ledger.
type ledgerChangedMsg struct {
	change *notify.ChangeMessage
}
