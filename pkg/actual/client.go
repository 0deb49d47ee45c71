package actual

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// APIError represents an error response from the Actual API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("actual API error (status %d): %s", e.StatusCode, e.Message)
}

// IsAuthError reports whether err is an authentication or authorization
// failure from the Actual API. Such failures are not retried.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
	}
	return false
}

// ClientConfig represents the configuration for the Actual API client.
type ClientConfig struct {
	BaseURL  string
	Password string
	Budget   string        // budget sync ID
	Timeout  time.Duration // Default: 30 seconds
}

// Client is an Actual Budget REST API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	password   string
	budget     string
}

// NewClient creates a new Actual API client.
func NewClient(config ClientConfig) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:  config.BaseURL,
		password: config.Password,
		budget:   config.Budget,
	}
}

// GetTransactionsSince lists all budget transactions on or after sinceDate
// (YYYY-MM-DD).
func (c *Client) GetTransactionsSince(ctx context.Context, sinceDate string) ([]Transaction, error) {
	endpoint := fmt.Sprintf("%s/v1/budgets/%s/transactions", c.baseURL, url.PathEscape(c.budget))

	var resp TransactionsResponse
	if err := c.get(ctx, endpoint, url.Values{"since_date": {sinceDate}}, &resp); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return resp.Data, nil
}

// GetAccountTransactions lists transactions in a single account on or after
// sinceDate. Used for the mirror existence search.
func (c *Client) GetAccountTransactions(ctx context.Context, accountID, sinceDate string) ([]Transaction, error) {
	endpoint := fmt.Sprintf("%s/v1/budgets/%s/accounts/%s/transactions",
		c.baseURL, url.PathEscape(c.budget), url.PathEscape(accountID))

	var resp TransactionsResponse
	if err := c.get(ctx, endpoint, url.Values{"since_date": {sinceDate}}, &resp); err != nil {
		return nil, fmt.Errorf("failed to list account transactions: %w", err)
	}

	return resp.Data, nil
}

// CreateTransaction creates a transaction in an account.
func (c *Client) CreateTransaction(ctx context.Context, accountID string, txn NewTransaction) error {
	endpoint := fmt.Sprintf("%s/v1/budgets/%s/accounts/%s/transactions",
		c.baseURL, url.PathEscape(c.budget), url.PathEscape(accountID))

	payload := struct {
		Transaction NewTransaction `json:"transaction"`
	}{Transaction: txn}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return c.parseError(resp)
	}

	return nil
}

// GetCategories lists all budget categories.
func (c *Client) GetCategories(ctx context.Context) ([]Category, error) {
	endpoint := fmt.Sprintf("%s/v1/budgets/%s/categories", c.baseURL, url.PathEscape(c.budget))

	var resp CategoriesResponse
	if err := c.get(ctx, endpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return resp.Data, nil
}

// GetPayees lists all payees.
func (c *Client) GetPayees(ctx context.Context) ([]Payee, error) {
	endpoint := fmt.Sprintf("%s/v1/budgets/%s/payees", c.baseURL, url.PathEscape(c.budget))

	var resp PayeesResponse
	if err := c.get(ctx, endpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list payees: %w", err)
	}

	return resp.Data, nil
}

// get performs a GET request and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	if len(params) > 0 {
		endpoint = fmt.Sprintf("%s?%s", endpoint, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.parseError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("X-Api-Key", c.password)
	req.Header.Set("Content-Type", "application/json")
}

// parseError parses an error response from the Actual API.
func (c *Client) parseError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "failed to read error response"}
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
		return &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	msg := errResp.Error
	if errResp.Message != "" {
		msg = fmt.Sprintf("%s - %s", errResp.Error, errResp.Message)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
