package cli

import (
	"fmt"
	"strings"

	"github.com/Veraticus/pointbook/internal/ledger"
	"github.com/Veraticus/pointbook/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// EmptyTransactionsMessage is shown when the filtered list has no entries.
const EmptyTransactionsMessage = "No records yet. Add one with: pointbook tx add"

const progressCells = 20

// BalanceColor picks the display color for a balance.
func BalanceColor(balance decimal.Decimal) lipgloss.Color {
	if balance.IsNegative() {
		return NegativeBalanceColor
	}
	return PositiveBalanceColor
}

// StatusColor picks the display color for a budget status.
func StatusColor(status ledger.Status) lipgloss.Color {
	switch status {
	case ledger.StatusOverBudget:
		return ErrorColor
	case ledger.StatusBelowTarget:
		return WarningColor
	default:
		return SuccessColor
	}
}

// FormatPoints formats a quantity for display.
func FormatPoints(d decimal.Decimal) string {
	return d.String()
}

// FormatAmount prefixes the amount with + for income and - for expense.
func FormatAmount(txn model.Transaction) string {
	if txn.Type == model.TransactionTypeExpense {
		return "-" + FormatPoints(txn.Amount)
	}
	return "+" + FormatPoints(txn.Amount)
}

// ProgressBar draws width as a bar of fixed size. Widths past 100 fill the bar.
func ProgressBar(width decimal.Decimal) string {
	pct := decimal.Min(width, decimal.NewFromInt(100))
	filled := int(pct.Mul(decimal.NewFromInt(progressCells)).Div(decimal.NewFromInt(100)).IntPart())
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", progressCells-filled) + "]"
}

// RenderSummary renders the aggregate figures for a summary.
func RenderSummary(s ledger.Summary, categories model.CategoryIndex) string {
	balance := lipgloss.NewStyle().Bold(true).Foreground(BalanceColor(s.Balance))
	status := lipgloss.NewStyle().Foreground(StatusColor(s.Status))

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", SubtitleStyle.Render(s.Filter.Label(categories)))
	fmt.Fprintf(&b, "Balance:        %s\n", balance.Render(FormatPoints(s.Balance)))
	fmt.Fprintf(&b, "This month:     %s income, %s expense\n",
		SuccessStyle.Render("+"+FormatPoints(s.CurrentMonthIncome)),
		ErrorStyle.Render("-"+FormatPoints(s.CurrentMonthExpense)))
	fmt.Fprintf(&b, "\nMonthly target: %s\n", FormatPoints(s.BudgetTarget))
	fmt.Fprintf(&b, "Net flow:       %s\n", FormatPoints(s.NetFlow))
	fmt.Fprintf(&b, "Still needed:   %s\n", FormatPoints(s.BudgetDifference))
	fmt.Fprintf(&b, "Progress:       %s %s%%\n",
		status.Render(ProgressBar(s.ProgressWidth)), s.BudgetPercent.String())
	fmt.Fprintf(&b, "Status:         %s", status.Bold(true).Render(s.Status.String()))
	return b.String()
}

// RenderTransactions renders the ordered transactions as a table.
func RenderTransactions(transactions []model.Transaction, categories model.CategoryIndex) string {
	if len(transactions) == 0 {
		return SubtleStyle.Render(EmptyTransactionsMessage)
	}

	rows := make([][]string, 0, len(transactions))
	for _, txn := range transactions {
		rows = append(rows, []string{
			txn.Date.Format(model.DateLayout),
			txn.ID,
			categoryLabel(categories, txn),
			FormatAmount(txn),
			txn.Note,
		})
	}

	widths := columnWidths([]string{"DATE", "ID", "CATEGORY", "AMOUNT", "NOTE"}, rows)

	var b strings.Builder
	b.WriteString(renderRow([]string{"DATE", "ID", "CATEGORY", "AMOUNT", "NOTE"}, widths, TableHeaderStyle))
	for i, row := range rows {
		b.WriteString("\n")
		b.WriteString(renderTransactionRow(row, widths, transactions[i], categories))
	}
	return b.String()
}

func renderTransactionRow(row []string, widths []int, txn model.Transaction, categories model.CategoryIndex) string {
	cells := make([]string, len(row))
	for i, cell := range row {
		style := TableCellStyle.Width(widths[i] + 2)
		switch i {
		case 2:
			style = style.Foreground(lipgloss.Color(categoryColor(categories, txn)))
		case 3:
			if txn.Type == model.TransactionTypeExpense {
				style = style.Foreground(ErrorColor)
			} else {
				style = style.Foreground(SuccessColor)
			}
		}
		cells[i] = style.Render(cell)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

// RenderCategories renders categories with a color swatch.
func RenderCategories(categories []model.Category) string {
	if len(categories) == 0 {
		return SubtleStyle.Render("No categories.")
	}

	lines := make([]string, 0, len(categories))
	for _, c := range categories {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render("●")
		line := fmt.Sprintf("%s %-4s %s %s", swatch, c.ID, c.Name, SubtleStyle.Render(c.Color))
		if c.IsProtected() {
			line += SubtleStyle.Render(" (default)")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func renderRow(cells []string, widths []int, style lipgloss.Style) string {
	rendered := make([]string, len(cells))
	for i, cell := range cells {
		rendered[i] = style.Width(widths[i] + 2).Render(cell)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func columnWidths(header []string, rows [][]string) []int {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	return widths
}

func categoryLabel(categories model.CategoryIndex, txn model.Transaction) string {
	if c, ok := categories[txn.CategoryID]; ok {
		return c.Name
	}
	if txn.CategoryName != "" {
		return txn.CategoryName
	}
	return model.FallbackCategoryName
}

func categoryColor(categories model.CategoryIndex, txn model.Transaction) string {
	if c, ok := categories[txn.CategoryID]; ok {
		return c.Color
	}
	if txn.CategoryColor != "" {
		return txn.CategoryColor
	}
	return model.FallbackCategoryColor
}
