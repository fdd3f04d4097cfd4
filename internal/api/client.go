// Package api is a client for the remote ledger HTTP API. Requests carry a
// bearer token, successful responses wrap their payload in {"data": ...} and
// failures carry {"message": ...}.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/pointbook/internal/common"
	"github.com/Veraticus/pointbook/internal/model"
	"github.com/Veraticus/pointbook/internal/service"
	"github.com/shopspring/decimal"
)

// Compile-time check that Client is a full ledger backend.
var _ service.Ledger = (*Client)(nil)

// Config holds the settings for a Client.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Retry   service.RetryOptions
}

// Client talks to the remote ledger API.
type Client struct {
	httpClient *http.Client
	now        func() time.Time
	baseURL    string
	token      string
	retry      service.RetryOptions
	mu         sync.RWMutex
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps well-known failures onto the shared sentinel errors.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return common.ErrUnauthorized
	case strings.Contains(strings.ToLower(e.Message), "token"):
		return common.ErrUnauthorized
	case e.StatusCode == http.StatusNotFound:
		return common.ErrNotFound
	case e.StatusCode == http.StatusTooManyRequests:
		return common.ErrRateLimit
	default:
		return nil
	}
}

// NewClient creates a client for the API at cfg.BaseURL.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("%w: api base url is required", common.ErrMissingConfig)
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("%w: api base url: %w", common.ErrInvalidConfig, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    base,
		token:      cfg.Token,
		retry:      cfg.Retry,
		now:        time.Now,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Token returns the bearer token currently in use.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Login exchanges credentials for a token, which the client then uses for
// every later request.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", common.NewUserError("username and password are required", nil)
	}

	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Username: username, Password: password}, &resp); err != nil {
		return "", fmt.Errorf("failed to log in: %w", err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("failed to log in: server returned no token")
	}

	c.mu.Lock()
	c.token = resp.Token
	c.mu.Unlock()

	slog.Info("Logged in to ledger API", "user", username)
	return resp.Token, nil
}

// Validate checks that the current token is accepted by the server.
func (c *Client) Validate(ctx context.Context) error {
	_, err := c.ListCategories(ctx)
	return err
}

// ListCategories fetches every category.
func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	var env envelope[[]categoryDTO]
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, &env); err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	categories := []model.Category{}
	if env.Data != nil {
		for _, dto := range *env.Data {
			categories = append(categories, dto.toModel())
		}
	}

	slog.Debug("fetched categories", "count", len(categories))
	return categories, nil
}

// ListTransactions fetches every transaction.
func (c *Client) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	var env envelope[[]transactionDTO]
	if err := c.do(ctx, http.MethodGet, "/api/transactions", nil, &env); err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	transactions := []model.Transaction{}
	if env.Data != nil {
		for _, dto := range *env.Data {
			txn, err := dto.toModel()
			if err != nil {
				return nil, err
			}
			transactions = append(transactions, txn)
		}
	}

	slog.Debug("fetched transactions", "count", len(transactions))
	return transactions, nil
}

// GetTransaction finds a transaction by id. The API has no single-item
// endpoint, so this lists and searches.
func (c *Client) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	transactions, err := c.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	for i := range transactions {
		if transactions[i].ID == id {
			return &transactions[i], nil
		}
	}
	return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
}

// GetBudget fetches the budget target. A missing budget is the default zero target.
func (c *Client) GetBudget(ctx context.Context) (model.BudgetTarget, error) {
	var env envelope[budgetDTO]
	if err := c.do(ctx, http.MethodGet, "/api/budget", nil, &env); err != nil {
		return model.BudgetTarget{}, fmt.Errorf("failed to fetch budget: %w", err)
	}
	if env.Data == nil {
		return model.DefaultBudget(), nil
	}

	budget := model.BudgetTarget{ID: string(env.Data.ID), Amount: env.Data.Amount}
	if budget.ID == "" {
		budget.ID = model.DefaultBudgetID
	}
	return budget, nil
}

// CreateCategory creates a category and returns it with the id the server
// assigned, when the server reports one.
func (c *Client) CreateCategory(ctx context.Context, name, color string) (*model.Category, error) {
	category := &model.Category{Name: name, Color: color}
	if err := category.Validate(); err != nil {
		return nil, common.NewUserError("invalid category", err)
	}

	var env envelope[categoryDTO]
	body := categoryDTO{Name: name, ColorHex: color}
	if err := c.do(ctx, http.MethodPost, "/api/categories", body, &env); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	if env.Data != nil && env.Data.ID != "" {
		category.ID = string(env.Data.ID)
	}

	slog.Info("created category", "name", name, "id", category.ID)
	return category, nil
}

// UpdateCategory renames or recolors a category.
func (c *Client) UpdateCategory(ctx context.Context, category *model.Category) error {
	if err := category.Validate(); err != nil {
		return common.NewUserError("invalid category", err)
	}

	body := categoryDTO{Name: category.Name, ColorHex: category.Color}
	if err := c.do(ctx, http.MethodPut, "/api/categories/"+url.PathEscape(category.ID), body, nil); err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}

// DeleteCategory deletes a category. The default category is refused locally.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	if id == model.DefaultCategoryID {
		return common.ErrProtectedCategory
	}
	if err := c.do(ctx, http.MethodDelete, "/api/categories/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

// CreateTransaction creates a transaction, generating a "txn-<millis>" id
// when txn.ID is empty.
func (c *Client) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	if txn.ID == "" {
		txn.ID = model.NewTransactionID(c.now())
	}
	if err := txn.Validate(); err != nil {
		return common.NewUserError("invalid transaction", err)
	}

	if err := c.do(ctx, http.MethodPost, "/api/transactions", newTransactionPayload(txn, true), nil); err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	slog.Info("created transaction", "id", txn.ID)
	return nil
}

// UpdateTransaction replaces the editable fields of a transaction.
func (c *Client) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := txn.Validate(); err != nil {
		return common.NewUserError("invalid transaction", err)
	}

	path := "/api/transactions/" + url.PathEscape(txn.ID)
	if err := c.do(ctx, http.MethodPut, path, newTransactionPayload(txn, false), nil); err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return nil
}

// DeleteTransaction deletes a transaction by id.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/transactions/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

// SetBudget stores the monthly net flow target. Negative targets are refused.
func (c *Client) SetBudget(ctx context.Context, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: budget must be zero or greater, got %s", common.ErrInvalidAmount, amount)
	}
	if err := c.do(ctx, http.MethodPut, "/api/budget", budgetPayload{Amount: amount}, nil); err != nil {
		return fmt.Errorf("failed to set budget: %w", err)
	}
	return nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// do sends a JSON request and decodes the JSON response into out. Requests
// other than POST are retried on server errors and rate limits.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	attempt := func() error {
		return c.send(ctx, method, path, payload, out)
	}

	if method == http.MethodPost {
		return unwrapPermanent(attempt())
	}
	return common.WithRetry(ctx, attempt, c.retry)
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return common.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	slog.Debug("Ledger API request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return common.Permanent(ctx.Err())
		}
		return &common.RetryableError{Err: fmt.Errorf("request failed: %w", err), Retryable: true}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &common.RetryableError{Err: fmt.Errorf("failed to read response: %w", err), Retryable: true}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data, resp.Status)}
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return &common.RetryableError{Err: apiErr, Retryable: retryable}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return common.Permanent(fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

func errorMessage(data []byte, status string) string {
	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		return body.Message
	}
	return "request failed (" + status + ")"
}

// unwrapPermanent strips the retry wrapper from errors returned without
// going through WithRetry.
func unwrapPermanent(err error) error {
	var retryErr *common.RetryableError
	if errors.As(err, &retryErr) {
		return retryErr.Err
	}
	return err
}
