// Package ofx converts OFX/QFX bank and credit card statements into ledger
// transactions.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Veraticus/pointbook/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

var (
	severityPattern = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	openTagPattern  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	idUnsafePattern = regexp.MustCompile(`[^A-Za-z0-9]+`)
)

// Parser turns statement lines into transactions filed under one category.
type Parser struct {
	categoryID string
}

// NewParser creates a parser that assigns every imported transaction to categoryID.
func NewParser(categoryID string) *Parser {
	if categoryID == "" {
		categoryID = model.DefaultCategoryID
	}
	return &Parser{categoryID: categoryID}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case.
	content = severityPattern.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML-style files sometimes drop the closing bracket of a bare tag.
	return openTagPattern.ReplaceAllString(content, "$1>")
}

// ParseFile parses an OFX/QFX document. Credits become income and debits
// become expenses; amounts are stored as magnitudes. Ids are derived from the
// account and the bank's FITID, so importing the same file twice yields the
// same ids.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.Transaction, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var transactions []model.Transaction
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		bankStmts++
		txns, err := p.convertAll(stmt.BankTranList.Transactions, string(stmt.BankAcctFrom.AcctID))
		if err != nil {
			slog.Warn("Failed to process bank statement",
				"account", lastFour(string(stmt.BankAcctFrom.AcctID)),
				"error", err)
			continue
		}
		transactions = append(transactions, txns...)
	}

	for _, msg := range resp.CreditCard {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		ccStmts++
		txns, err := p.convertAll(stmt.BankTranList.Transactions, string(stmt.CCAcctFrom.AcctID))
		if err != nil {
			slog.Warn("Failed to process credit card statement",
				"account", lastFour(string(stmt.CCAcctFrom.AcctID)),
				"error", err)
			continue
		}
		transactions = append(transactions, txns...)
	}

	slog.Info("Parsed OFX file",
		"total_transactions", len(transactions),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return transactions, nil
}

func (p *Parser) convertAll(lines []ofxgo.Transaction, accountID string) ([]model.Transaction, error) {
	transactions := make([]model.Transaction, 0, len(lines))
	for _, line := range lines {
		txn, skip, err := p.convertTransaction(line, accountID)
		if err != nil {
			return nil, err
		}
		if skip {
			continue
		}
		transactions = append(transactions, txn)
	}
	return transactions, nil
}

// convertTransaction maps one statement line. Zero-amount lines are skipped.
func (p *Parser) convertTransaction(line ofxgo.Transaction, accountID string) (model.Transaction, bool, error) {
	amount, err := decimal.NewFromString(line.TrnAmt.Rat.FloatString(8))
	if err != nil {
		return model.Transaction{}, false, fmt.Errorf("invalid amount for %s: %w", line.FiTID, err)
	}
	if amount.IsZero() {
		return model.Transaction{}, true, nil
	}

	txnType := model.TransactionTypeIncome
	if amount.IsNegative() {
		txnType = model.TransactionTypeExpense
	}

	posted := line.DtPosted.Time
	date := model.DateOnly(posted.Year(), posted.Month(), posted.Day())

	return model.Transaction{
		ID:         TransactionID(accountID, string(line.FiTID)),
		Date:       date,
		Type:       txnType,
		CategoryID: p.categoryID,
		Amount:     amount.Abs(),
		Note:       describe(line),
	}, false, nil
}

// TransactionID builds the stable ledger id for a statement line.
func TransactionID(accountID, fitID string) string {
	fit := strings.Trim(idUnsafePattern.ReplaceAllString(fitID, ""), "-")
	return fmt.Sprintf("ofx-%s-%s", lastFour(accountID), fit)
}

// describe picks the most readable description for a statement line.
func describe(line ofxgo.Transaction) string {
	if line.Payee != nil && line.Payee.Name != "" {
		return strings.TrimSpace(string(line.Payee.Name))
	}

	name := strings.TrimSpace(string(line.Name))
	if line.Memo != "" && isGenericDescription(name) {
		name = strings.TrimSpace(string(line.Memo))
	}

	for _, prefix := range []string{"POS PURCHASE ", "DEBIT CARD PURCHASE ", "ACH DEBIT ", "CHECK CARD "} {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			return name[len(prefix):]
		}
	}
	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "", "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	default:
		return false
	}
}

func lastFour(accountID string) string {
	if len(accountID) <= 4 {
		return accountID
	}
	return accountID[len(accountID)-4:]
}
