// Package tui is the interactive ledger dashboard.
package tui

import (
	"github.com/Veraticus/pointbook/internal/ledger"
	"github.com/Veraticus/pointbook/internal/model"
	"github.com/Veraticus/pointbook/internal/snapshot"
	"github.com/Veraticus/pointbook/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

// chromeHeight is the number of lines used by everything except the transaction list.
const chromeHeight = 16

// Model holds the dashboard state.
type Model struct {
	lastErr    error
	reloader   *snapshot.Reloader
	categories model.CategoryIndex
	theme      themes.Theme
	help       help.Model
	progress   progress.Model
	config     Config
	keymap     KeyMap
	summary    ledger.Summary
	snapshot   model.Snapshot
	filter     ledger.Filter
	version    uint64
	offset     int
	width      int
	height     int
	loading    bool
	loaded     bool
	quitting   bool
}

// New creates a dashboard backed by reloader.
func New(reloader *snapshot.Reloader, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return Model{
		reloader: reloader,
		config:   cfg,
		theme:    cfg.Theme,
		keymap:   DefaultKeyMap(),
		help:     help.New(),
		progress: progress.New(progress.WithSolidFill(string(cfg.Theme.Primary)), progress.WithoutPercentage()),
		filter:   cfg.Filter,
		width:    cfg.Width,
		height:   cfg.Height,
		loading:  true,
	}
}

// Init loads the first snapshot and subscribes to change notifications.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadSnapshot(m.reloader, m.config.Timeout),
		waitForChange(m.config.Changes),
	)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.clampOffset()

	case snapshotLoadedMsg:
		m.loading = false
		// Results of overlapping reloads can arrive out of order.
		if m.loaded && msg.version < m.version {
			return m, nil
		}
		m.version = msg.version
		m.loaded = true
		m.lastErr = nil
		m.snapshot = msg.snapshot
		m.categories = model.IndexCategories(msg.snapshot.Categories)
		m.recompute()

	case loadFailedMsg:
		m.loading = false
		m.lastErr = msg.err

	case ledgerChangedMsg:
		m.loading = true
		return m, tea.Batch(
			loadSnapshot(m.reloader, m.config.Timeout),
			waitForChange(m.config.Changes),
		)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Reload):
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, loadSnapshot(m.reloader, m.config.Timeout)

	case key.Matches(msg, m.keymap.NextFilter):
		m.setFilter(ledger.Cycle(m.filter, m.snapshot.Categories, 1))

	case key.Matches(msg, m.keymap.PrevFilter):
		m.setFilter(ledger.Cycle(m.filter, m.snapshot.Categories, -1))

	case key.Matches(msg, m.keymap.AllFilter):
		m.setFilter(ledger.FilterAll)

	case key.Matches(msg, m.keymap.Down):
		m.offset++
		m.clampOffset()

	case key.Matches(msg, m.keymap.Up):
		m.offset--
		m.clampOffset()

	case key.Matches(msg, m.keymap.ToggleHelp):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

func (m *Model) setFilter(filter ledger.Filter) {
	m.filter = filter
	m.offset = 0
	m.recompute()
}

// recompute derives the summary from the held snapshot. It never reloads.
func (m *Model) recompute() {
	m.summary = ledger.SummarizeSnapshot(m.snapshot, m.filter, m.config.Now())
	m.clampOffset()
}

func (m Model) visibleRows() int {
	return max(1, m.height-chromeHeight)
}

func (m *Model) clampOffset() {
	maxOffset := max(0, len(m.summary.OrderedTransactions)-m.visibleRows())
	m.offset = min(max(m.offset, 0), maxOffset)
}

// Filter returns the active filter.
func (m Model) Filter() ledger.Filter {
	return m.filter
}

// Summary returns the summary currently on screen.
func (m Model) Summary() ledger.Summary {
	return m.summary
}

// Err returns the last load error, if any.
func (m Model) Err() error {
	return m.lastErr
}
