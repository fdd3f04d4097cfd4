package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/pointbook/internal/cli"
	"github.com/Veraticus/pointbook/internal/ledger"
	"github.com/Veraticus/pointbook/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

var decimal100 = decimal.NewFromInt(100)

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.loaded {
		if m.lastErr != nil {
			return m.renderError() + "\n\n" + m.help.View(m.keymap)
		}
		return m.theme.Subtitle.Render("Loading ledger...")
	}

	sections := []string{
		m.renderHeader(),
		m.renderFilters(),
		m.renderSummary(),
		m.renderTransactions(),
	}
	if m.lastErr != nil {
		sections = append(sections, m.renderError())
	}
	sections = append(sections, m.help.View(m.keymap))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render(cli.LedgerIcon + " Pointbook")
	status := ""
	if m.loading {
		status = m.theme.Subtitle.Render(" reloading...")
	}
	return title + status
}

func (m Model) renderFilters() string {
	tabs := make([]string, 0, len(m.snapshot.Categories)+1)
	tabs = append(tabs, m.tab("All", m.filter.IsAll()))
	for _, c := range m.snapshot.Categories {
		tabs = append(tabs, m.tab(c.Name, string(m.filter) == c.ID))
	}
	if !m.filter.IsAll() {
		if _, ok := m.categories[string(m.filter)]; !ok {
			tabs = append(tabs, m.tab(m.filter.Label(m.categories), true))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) tab(label string, active bool) string {
	if active {
		return m.theme.Selected.Render(label)
	}
	return m.theme.Tab.Render(label)
}

func (m Model) renderSummary() string {
	s := m.summary
	balance := lipgloss.NewStyle().Bold(true).Foreground(cli.BalanceColor(s.Balance))
	status := lipgloss.NewStyle().Bold(true).Foreground(m.statusColor(s.Status))

	pct, _ := s.ProgressWidth.Div(decimal100).Float64()
	pct = min(pct, 1)

	lines := []string{
		m.theme.Subtitle.Render(s.Filter.Label(m.categories)),
		fmt.Sprintf("Balance  %s", balance.Render(cli.FormatPoints(s.Balance))),
		fmt.Sprintf("Month    %s  %s",
			lipgloss.NewStyle().Foreground(m.theme.Success).Render("+"+cli.FormatPoints(s.CurrentMonthIncome)),
			lipgloss.NewStyle().Foreground(m.theme.Error).Render("-"+cli.FormatPoints(s.CurrentMonthExpense))),
		"",
		fmt.Sprintf("Target %s  Net %s  Needed %s",
			cli.FormatPoints(s.BudgetTarget), cli.FormatPoints(s.NetFlow), cli.FormatPoints(s.BudgetDifference)),
		fmt.Sprintf("%s %s%%", m.progress.ViewAs(pct), s.BudgetPercent.String()),
		status.Render(s.Status.String()),
	}

	return m.theme.BorderedBox.Render(strings.Join(lines, "\n"))
}

func (m Model) renderTransactions() string {
	txns := m.summary.OrderedTransactions
	if len(txns) == 0 {
		return m.theme.Subtitle.Render(cli.EmptyTransactionsMessage)
	}

	end := min(m.offset+m.visibleRows(), len(txns))
	lines := make([]string, 0, end-m.offset+1)
	for _, txn := range txns[m.offset:end] {
		lines = append(lines, m.renderTransaction(txn))
	}
	if len(txns) > m.visibleRows() {
		lines = append(lines, m.theme.Subtitle.Render(
			fmt.Sprintf("%d-%d of %d", m.offset+1, end, len(txns))))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderTransaction(txn model.Transaction) string {
	category, _ := m.categories.Resolve(txn.CategoryID)
	if _, ok := m.categories[txn.CategoryID]; !ok && txn.CategoryName != "" {
		category.Name = txn.CategoryName
	}

	amountColor := m.theme.Success
	if txn.Type == model.TransactionTypeExpense {
		amountColor = m.theme.Error
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.theme.Subtitle.Width(12).Render(txn.Date.Format(model.DateLayout)),
		lipgloss.NewStyle().Foreground(lipgloss.Color(category.Color)).Width(16).Render(category.Name),
		lipgloss.NewStyle().Foreground(amountColor).Width(10).Align(lipgloss.Right).Render(cli.FormatAmount(txn)),
		m.theme.Normal.PaddingLeft(2).Render(txn.Note),
	)
}

func (m Model) renderError() string {
	return lipgloss.NewStyle().Foreground(m.theme.Error).Render("Load failed: " + m.lastErr.Error())
}

func (m Model) statusColor(status ledger.Status) lipgloss.Color {
	switch status {
	case ledger.StatusOverBudget:
		return m.theme.Error
	case ledger.StatusBelowTarget:
		return m.theme.Warning
	default:
		return m.theme.Success
	}
}
