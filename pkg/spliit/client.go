package spliit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// ClientConfig represents the configuration for the Spliit API client.
type ClientConfig struct {
	BaseURL string
	GroupID string
	PayerID string        // local participant ID in the group
	Timeout time.Duration // Default: 30 seconds
}

// Client is a Spliit tRPC API client. Group participants and categories are
// fetched once and cached for the lifetime of the client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	groupID    string
	payerID    string

	mu           sync.Mutex
	participants []Participant
	categories   []Category
}

// NewClient creates a new Spliit API client.
func NewClient(config ClientConfig) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		groupID: config.GroupID,
		payerID: config.PayerID,
	}
}

// PayerID returns the configured local participant ID.
func (c *Client) PayerID() string {
	return c.payerID
}

// trpcEnvelope is the common wrapper around tRPC procedure results.
type trpcEnvelope[T any] struct {
	Result struct {
		Data struct {
			JSON T `json:"json"`
		} `json:"data"`
	} `json:"result"`
}

// GetGroup fetches group details including participants.
func (c *Client) GetGroup(ctx context.Context) (*Group, error) {
	input := map[string]any{"groupId": c.groupID}

	var result struct {
		Group Group `json:"group"`
	}
	if err := c.query(ctx, "groups.get", input, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch group: %w", err)
	}

	return &result.Group, nil
}

// GetParticipants returns all participants in the group (cached).
func (c *Client) GetParticipants(ctx context.Context) ([]Participant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.participants != nil {
		return c.participants, nil
	}

	group, err := c.GetGroup(ctx)
	if err != nil {
		return nil, err
	}

	c.participants = group.Participants
	return c.participants, nil
}

// ParticipantName returns a participant's name by ID, "Unknown" if absent.
func (c *Client) ParticipantName(ctx context.Context, participantID string) string {
	participants, err := c.GetParticipants(ctx)
	if err != nil {
		return "Unknown"
	}
	for _, p := range participants {
		if p.ID == participantID {
			return p.Name
		}
	}
	return "Unknown"
}

// GetCategories fetches all available expense categories (cached).
func (c *Client) GetCategories(ctx context.Context) ([]Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.categories != nil {
		return c.categories, nil
	}

	var result struct {
		Categories []Category `json:"categories"`
	}
	if err := c.query(ctx, "categories.list", nil, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	c.categories = result.Categories
	return c.categories, nil
}

// CategoryNameByID returns the "Grouping/Name" path for a category ID.
func (c *Client) CategoryNameByID(ctx context.Context, categoryID int64) (string, bool) {
	categories, err := c.GetCategories(ctx)
	if err != nil {
		return "", false
	}
	for _, cat := range categories {
		if cat.ID == categoryID {
			return cat.Path(), true
		}
	}
	return "", false
}

// CategoryIDByName returns the category ID for a "Grouping/Name" path or a
// bare category name. Returns 0 (General) when not found.
func (c *Client) CategoryIDByName(ctx context.Context, name string) int64 {
	categories, err := c.GetCategories(ctx)
	if err != nil {
		return 0
	}
	for _, cat := range categories {
		if name == cat.Path() || name == cat.Name {
			return cat.ID
		}
	}
	return 0
}

// ListExpenses lists recent expenses in the group, newest first.
func (c *Client) ListExpenses(ctx context.Context, limit int) ([]Expense, error) {
	input := map[string]any{
		"groupId": c.groupID,
		"limit":   limit,
	}

	var result struct {
		Expenses []Expense `json:"expenses"`
	}
	if err := c.query(ctx, "groups.expenses.list", input, &result); err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	return result.Expenses, nil
}

// CreateExpense creates an expense in the group paid by the local participant
// and split evenly across all group participants.
// Returns the created expense ID.
func (c *Client) CreateExpense(ctx context.Context, title string, amount decimal.Decimal, expenseDate string, category int64, notes string) (string, error) {
	participants, err := c.GetParticipants(ctx)
	if err != nil {
		return "", err
	}

	paidFor := make([]ShareInput, 0, len(participants))
	for _, p := range participants {
		paidFor = append(paidFor, ShareInput{Participant: p.ID, Shares: 100})
	}

	payload := map[string]any{
		"groupId": c.groupID,
		"expenseFormValues": ExpenseFormValues{
			Title:           title,
			Amount:          amount,
			ExpenseDate:     expenseDate,
			Category:        category,
			PaidBy:          c.payerID,
			PaidFor:         paidFor,
			SplitMode:       SplitModeEvenly,
			IsReimbursement: false,
			Documents:       []string{},
			RecurrenceRule:  "NONE",
			Notes:           notes,
		},
		"participantId": c.payerID,
	}

	var result struct {
		ExpenseID string `json:"expenseId"`
	}
	if err := c.mutate(ctx, "groups.expenses.create", payload, &result); err != nil {
		return "", fmt.Errorf("failed to create expense: %w", err)
	}

	return result.ExpenseID, nil
}

// query performs a tRPC GET procedure call.
func (c *Client) query(ctx context.Context, procedure string, input map[string]any, out any) error {
	endpoint := c.trpcURL(procedure)

	if input != nil {
		wrapped, err := json.Marshal(map[string]any{"json": input})
		if err != nil {
			return fmt.Errorf("failed to marshal input: %w", err)
		}
		params := url.Values{"input": {string(wrapped)}}
		endpoint = fmt.Sprintf("%s?%s", endpoint, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.do(req, out)
}

// mutate performs a tRPC POST procedure call.
func (c *Client) mutate(ctx context.Context, procedure string, payload map[string]any, out any) error {
	body, err := json.Marshal(map[string]any{"json": payload})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.trpcURL(procedure), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("spliit API error (status %d): %s", resp.StatusCode, string(body))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var envelope trpcEnvelope[json.RawMessage]
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if out != nil && envelope.Result.Data.JSON != nil {
		if err := json.Unmarshal(envelope.Result.Data.JSON, out); err != nil {
			return fmt.Errorf("failed to decode procedure result: %w", err)
		}
	}

	return nil
}

func (c *Client) trpcURL(procedure string) string {
	return fmt.Sprintf("%s/api/trpc/%s", c.baseURL, procedure)
}
