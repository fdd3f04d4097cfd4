package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/pointbook/internal/model"
	"github.com/shopspring/decimal"
)

// envelope wraps every successful response body.
type envelope[T any] struct {
	Data *T `json:"data"`
}

type errorBody struct {
	Message string `json:"message"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// flexID accepts ids encoded as JSON strings or numbers.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

type categoryDTO struct {
	ID       flexID `json:"id,omitempty"`
	Name     string `json:"name"`
	ColorHex string `json:"color_hex"`
}

func (c categoryDTO) toModel() model.Category {
	return model.Category{ID: string(c.ID), Name: c.Name, Color: c.ColorHex}
}

// transactionDTO is the wire shape of a transaction. Amount accepts either a
// JSON number or a numeric string.
type transactionDTO struct {
	ID               flexID          `json:"id"`
	Date             string          `json:"date"`
	Type             string          `json:"type"`
	CategoryID       flexID          `json:"category_id"`
	Amount           decimal.Decimal `json:"amount"`
	Note             string          `json:"note"`
	CategoryName     string          `json:"category_name,omitempty"`
	CategoryColorHex string          `json:"category_color_hex,omitempty"`
}

func (t transactionDTO) toModel() (model.Transaction, error) {
	date, err := parseWireDate(t.Date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %s: %w", t.ID, err)
	}
	return model.Transaction{
		ID:            string(t.ID),
		Date:          date,
		Type:          model.TransactionType(t.Type),
		CategoryID:    string(t.CategoryID),
		Amount:        t.Amount,
		Note:          t.Note,
		CategoryName:  t.CategoryName,
		CategoryColor: t.CategoryColorHex,
	}, nil
}

// transactionPayload is what the client sends. Amounts go out as JSON numbers.
type transactionPayload struct {
	ID         string      `json:"id,omitempty"`
	Date       string      `json:"date"`
	Type       string      `json:"type"`
	CategoryID string      `json:"category_id"`
	Amount     json.Number `json:"amount"`
	Note       string      `json:"note"`
}

func newTransactionPayload(txn *model.Transaction, includeID bool) transactionPayload {
	p := transactionPayload{
		Date:       txn.Date.Format(model.DateLayout),
		Type:       string(txn.Type),
		CategoryID: txn.CategoryID,
		Amount:     json.Number(txn.Amount.String()),
		Note:       txn.Note,
	}
	if includeID {
		p.ID = txn.ID
	}
	return p
}

type budgetDTO struct {
	ID     flexID          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
}

// budgetPayload sends the amount as a string, matching what the server stores.
type budgetPayload struct {
	Amount decimal.Decimal `json:"amount"`
}

// parseWireDate accepts a plain calendar date or a timestamp and keeps only
// its calendar date.
func parseWireDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(model.DateLayout) {
		s = s[:len(model.DateLayout)]
	}
	return model.ParseDate(s)
}
