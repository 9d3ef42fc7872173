package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/datum-redsoft/expense-reports/internal"
	"github.com/datum-redsoft/expense-reports/internal/core/datamodel/card"
	"github.com/datum-redsoft/expense-reports/internal/core/datamodel/catalog"
	"github.com/datum-redsoft/expense-reports/internal/core/datamodel/expense"
	"github.com/datum-redsoft/expense-reports/internal/core/datamodel/user"
)

// Client is the typed gateway to the expense REST backend. It is stateless
// between calls; every method takes the caller's context so abandoned work is
// cancelled with it.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *Client) ListUsers(ctx context.Context) ([]user.User, error) {
	var users []user.User
	if err := c.get(ctx, "/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) GetUser(ctx context.Context, userID int64) (*user.User, error) {
	if err := requirePositive("user id", userID); err != nil {
		return nil, err
	}
	var u user.User
	if err := c.get(ctx, fmt.Sprintf("/users/%d", userID), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ListUserCards(ctx context.Context, userID int64) ([]card.Card, error) {
	if err := requirePositive("user id", userID); err != nil {
		return nil, err
	}
	var cards []card.Card
	if err := c.get(ctx, fmt.Sprintf("/cards/user/%d", userID), &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

func (c *Client) ListCountries(ctx context.Context) ([]user.Country, error) {
	var countries []user.Country
	if err := c.get(ctx, "/countries", &countries); err != nil {
		return nil, err
	}
	return countries, nil
}

// ListCategories returns active categories only; inactive records are dropped
// after parsing, the backend sends everything.
func (c *Client) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	var categories []catalog.Category
	if err := c.get(ctx, "/categories", &categories); err != nil {
		return nil, err
	}
	active := make([]catalog.Category, 0, len(categories))
	for _, cat := range categories {
		if cat.IsActive {
			active = append(active, cat)
		}
	}
	return active, nil
}

// ListCostCenters returns active cost centers only.
func (c *Client) ListCostCenters(ctx context.Context) ([]catalog.CostCenter, error) {
	var centers []catalog.CostCenter
	if err := c.get(ctx, "/cost-centers", &centers); err != nil {
		return nil, err
	}
	active := make([]catalog.CostCenter, 0, len(centers))
	for _, cc := range centers {
		if cc.IsActive {
			active = append(active, cc)
		}
	}
	return active, nil
}

func (c *Client) CreateInvoice(ctx context.Context, req InvoiceRequest) (*InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidID)
	}
	var resp InvoiceResponse
	if err := c.send(ctx, http.MethodPost, "/invoices", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CreateInvoiceField(ctx context.Context, req InvoiceFieldRequest) error {
	if err := req.Validate(); err != nil {
		return internal.NewValidationError(err.Error(), internal.ErrCodeInvalidID)
	}
	return c.send(ctx, http.MethodPost, "/invoice-fields", req, nil)
}

func (c *Client) CreateCompleteInvoice(ctx context.Context, req CompleteInvoiceRequest) (*InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidID)
	}
	var resp InvoiceResponse
	if err := c.send(ctx, http.MethodPost, "/invoices/complete", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UpdateCompleteInvoice(ctx context.Context, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidID)
	}
	var resp InvoiceResponse
	if err := c.send(ctx, http.MethodPut, "/invoices/complete", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListCardExpenses(ctx context.Context, cardID int64) ([]expense.Group, error) {
	if err := requirePositive("card id", cardID); err != nil {
		return nil, err
	}
	var groups []expense.Group
	if err := c.get(ctx, fmt.Sprintf("/cards/%d/expenses", cardID), &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// ApproveExpenseGroup approves the group keyed by the exact month label the
// list endpoint returned. The label is an opaque string key, never re-parsed
// into a date.
func (c *Client) ApproveExpenseGroup(ctx context.Context, cardID int64, monthYear string) error {
	if err := requirePositive("card id", cardID); err != nil {
		return err
	}
	if monthYear == "" {
		return internal.NewValidationError("month label is required", internal.ErrCodeValidationFailed)
	}
	path := fmt.Sprintf("/cards/%d/expenses/approve?monthYear=%s", cardID, url.QueryEscape(monthYear))
	return c.send(ctx, http.MethodPatch, path, nil, nil)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.send(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) send(ctx context.Context, method, path string, body, out interface{}) error {
	if err := c.checkToken(); err != nil {
		return err
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return internal.NewInternalError("failed to marshal request body", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return internal.NewInternalError("failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("backend request failed", "method", method, "path", path, "error", err)
		return internal.NewNetworkError(fmt.Sprintf("backend request failed: %s %s", method, path), err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"elapsed_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return internal.NewTransportError(
			fmt.Sprintf("backend returned %d %s for %s %s", resp.StatusCode, http.StatusText(resp.StatusCode), method, path),
			resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return internal.NewInternalError("failed to decode backend response", err)
	}
	return nil
}

// checkToken fails fast on an expired bearer token instead of burning a round
// trip on a guaranteed 401. The signature is not verified here; the backend
// does that.
func (c *Client) checkToken() error {
	if c.token == "" {
		return nil
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(c.token, claims); err != nil {
		// not a JWT, let the backend decide
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	if time.Now().After(exp.Time) {
		c.logger.Warn("configured API token is expired", "expired_at", exp.Time)
		return internal.ErrTokenExpired
	}
	return nil
}

func requirePositive(name string, id int64) error {
	if id <= 0 {
		return internal.NewValidationError(fmt.Sprintf("%s must be a positive integer", name), internal.ErrCodeInvalidID)
	}
	return nil
}
