package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/pointbook/internal/ledger"
	"github.com/Veraticus/pointbook/internal/model"
	"github.com/Veraticus/pointbook/internal/notify"
	"github.com/Veraticus/pointbook/internal/snapshot"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	err          error
	categories   []model.Category
	transactions []model.Transaction
	budget       model.BudgetTarget
	mu           sync.Mutex
}

func (f *fakeSource) ListCategories(context.Context) ([]model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.categories, f.err
}

func (f *fakeSource) ListTransactions(context.Context) ([]model.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transactions, nil
}

func (f *fakeSource) GetBudget(context.Context) (model.BudgetTarget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.budget, nil
}

var testNow = time.Date(2024, time.January, 20, 12, 0, 0, 0, time.UTC)

func newTestSource() *fakeSource {
	jan := func(day int) time.Time { return model.DateOnly(2024, time.January, day) }
	return &fakeSource{
		categories: []model.Category{
			{ID: "1", Name: "General", Color: "#9E9E9E"},
			{ID: "2", Name: "Chores", Color: "#00B894"},
		},
		transactions: []model.Transaction{
			{ID: "txn-1", Date: jan(2), Type: model.TransactionTypeIncome, CategoryID: "2", Amount: decimal.NewFromInt(100), Note: "dishes"},
			{ID: "txn-2", Date: jan(3), Type: model.TransactionTypeExpense, CategoryID: "1", Amount: decimal.NewFromInt(40), Note: "movie"},
		},
		budget: model.BudgetTarget{ID: "1", Amount: decimal.NewFromInt(50)},
	}
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// loadedModel returns a dashboard that has processed its first load.
func loadedModel(t *testing.T, src *fakeSource) (Model, *snapshot.Reloader) {
	t.Helper()
	reloader := snapshot.NewReloader(src, snapshot.NewStore())
	m := New(reloader, WithClock(func() time.Time { return testNow }), WithSize(100, 40))

	msg := loadSnapshot(reloader, time.Second)()
	require.IsType(t, snapshotLoadedMsg{}, msg)

	updated, _ := m.Update(msg)
	return updated.(Model), reloader
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func TestModel_InitialLoad(t *testing.T) {
	m, _ := loadedModel(t, newTestSource())

	assert.Equal(t, ledger.FilterAll, m.Filter())
	s := m.Summary()
	assert.True(t, s.Balance.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, ledger.StatusOnTarget, s.Status)
	require.Len(t, s.OrderedTransactions, 2)
	assert.Equal(t, "txn-2", s.OrderedTransactions[0].ID)

	view := m.View()
	assert.Contains(t, view, "All records")
	assert.Contains(t, view, "On target")
	assert.Contains(t, view, "movie")
}

func TestModel_CycleFilter(t *testing.T) {
	m, _ := loadedModel(t, newTestSource())

	m, _ = update(m, keyPress("right"))
	assert.Equal(t, ledger.Filter("1"), m.Filter())
	assert.True(t, m.Summary().Balance.Equal(decimal.NewFromInt(-40)))
	// Budget figures ignore the filter.
	assert.Equal(t, ledger.StatusOnTarget, m.Summary().Status)
	assert.Contains(t, m.View(), "General records")

	m, _ = update(m, keyPress("right"))
	assert.Equal(t, ledger.Filter("2"), m.Filter())

	m, _ = update(m, keyPress("right"))
	assert.Equal(t, ledger.FilterAll, m.Filter())

	m, _ = update(m, keyPress("left"))
	assert.Equal(t, ledger.Filter("2"), m.Filter())

	m, _ = update(m, keyPress("a"))
	assert.Equal(t, ledger.FilterAll, m.Filter())
}

func TestModel_Reload(t *testing.T) {
	src := newTestSource()
	m, reloader := loadedModel(t, src)

	src.mu.Lock()
	src.transactions = append(src.transactions, model.Transaction{
		ID: "txn-3", Date: model.DateOnly(2024, time.January, 4), Type: model.TransactionTypeIncome,
		CategoryID: "1", Amount: decimal.NewFromInt(10),
	})
	src.mu.Unlock()

	m, cmd := update(m, keyPress("r"))
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "reloading")

	// A second press while loading is ignored.
	_, again := update(m, keyPress("r"))
	assert.Nil(t, again)

	m, _ = update(m, cmd())
	assert.Len(t, m.Summary().OrderedTransactions, 3)
	assert.Equal(t, "txn-3", m.Summary().OrderedTransactions[0].ID)

	_, version := reloader.Store().Current()
	assert.Equal(t, uint64(2), version)
}

func TestModel_ReloadFailureKeepsSnapshot(t *testing.T) {
	src := newTestSource()
	m, _ := loadedModel(t, src)

	src.mu.Lock()
	src.err = errors.New("connection refused")
	src.mu.Unlock()

	m, cmd := update(m, keyPress("r"))
	m, _ = update(m, cmd())

	require.Error(t, m.Err())
	assert.Len(t, m.Summary().OrderedTransactions, 2)
	assert.Contains(t, m.View(), "connection refused")
}

func TestModel_InitialLoadFailure(t *testing.T) {
	src := newTestSource()
	src.err = errors.New("boom")
	reloader := snapshot.NewReloader(src, snapshot.NewStore())
	m := New(reloader)

	assert.Contains(t, m.View(), "Loading ledger")

	m, _ = update(m, loadSnapshot(reloader, time.Second)())
	assert.Contains(t, m.View(), "Load failed")
}

func TestModel_EmptyLedger(t *testing.T) {
	src := newTestSource()
	src.transactions = nil
	m, _ := loadedModel(t, src)

	assert.Contains(t, m.View(), "No records yet")
}

func TestModel_UnknownFilter(t *testing.T) {
	reloader := snapshot.NewReloader(newTestSource(), snapshot.NewStore())
	m := New(reloader, WithFilter(ledger.Filter("99")), WithClock(func() time.Time { return testNow }))
	m, _ = update(m, loadSnapshot(reloader, time.Second)())

	assert.Empty(t, m.Summary().OrderedTransactions)
	assert.Contains(t, m.View(), model.FallbackCategoryName+" records")

	// Cycling from a filter that is not in the list restarts at the front.
	m, _ = update(m, keyPress("right"))
	assert.Equal(t, ledger.Filter("1"), m.Filter())
}

func TestModel_Scroll(t *testing.T) {
	src := newTestSource()
	for i := 3; i < 40; i++ {
		src.transactions = append(src.transactions, model.Transaction{
			ID: model.NewTransactionID(testNow.Add(time.Duration(i) * time.Millisecond)), Date: model.DateOnly(2024, time.January, 1),
			Type: model.TransactionTypeIncome, CategoryID: "1", Amount: decimal.NewFromInt(1),
		})
	}
	m, _ := loadedModel(t, src)

	m, _ = update(m, keyPress("up"))
	assert.Equal(t, 0, m.offset)

	for range 100 {
		m, _ = update(m, keyPress("down"))
	}
	assert.Equal(t, len(src.transactions)-m.visibleRows(), m.offset)

	m, _ = update(m, keyPress("right"))
	assert.Equal(t, 0, m.offset)
}

func TestModel_LedgerChanged(t *testing.T) {
	changes := make(chan *notify.ChangeMessage, 1)
	reloader := snapshot.NewReloader(newTestSource(), snapshot.NewStore())
	m := New(reloader, WithChanges(changes))

	changes <- notify.NewChangeMessage(notify.EntityBudget, notify.ActionUpdated, "1")
	msg := waitForChange(changes)()
	require.IsType(t, ledgerChangedMsg{}, msg)

	m, cmd := update(m, msg)
	assert.NotNil(t, cmd)
	assert.True(t, m.loading)

	close(changes)
	assert.Nil(t, waitForChange(changes)())
	assert.Nil(t, waitForChange(nil))
}

func TestModel_OutOfOrderLoadsKeepNewestSnapshot(t *testing.T) {
	src := newTestSource()
	reloader := snapshot.NewReloader(src, snapshot.NewStore())
	m := New(reloader, WithClock(func() time.Time { return testNow }), WithSize(100, 40))

	older := loadSnapshot(reloader, time.Second)()
	require.IsType(t, snapshotLoadedMsg{}, older)

	src.mu.Lock()
	src.transactions = append(src.transactions, model.Transaction{
		ID: "txn-3", Date: model.DateOnly(2024, time.January, 4), Type: model.TransactionTypeIncome,
		CategoryID: "1", Amount: decimal.NewFromInt(10),
	})
	src.mu.Unlock()

	newer := loadSnapshot(reloader, time.Second)()
	require.IsType(t, snapshotLoadedMsg{}, newer)
	assert.Greater(t, newer.(snapshotLoadedMsg).version, older.(snapshotLoadedMsg).version)

	m, _ = update(m, newer)
	m, _ = update(m, older)

	assert.Len(t, m.Summary().OrderedTransactions, 3)
	assert.True(t, m.Summary().Balance.Equal(decimal.NewFromInt(70)))
	assert.False(t, m.loading)
}

func TestModel_Quit(t *testing.T) {
	m, _ := loadedModel(t, newTestSource())

	m, cmd := update(m, keyPress("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestModel_ToggleHelp(t *testing.T) {
	m, _ := loadedModel(t, newTestSource())
	assert.False(t, m.help.ShowAll)

	m, _ = update(m, keyPress("?"))
	assert.True(t, m.help.ShowAll)
	assert.Contains(t, m.View(), "scroll down")
}
