// Package actual provides an Actual Budget REST API client and types.
package actual

// Transaction represents a transaction in the Actual Budget API.
// Amounts are signed integers in minor currency units (cents).
type Transaction struct {
	ID           string `json:"id"`
	Account      string `json:"account"`
	Payee        string `json:"payee,omitempty"`
	PayeeName    string `json:"payee_name,omitempty"`
	Category     string `json:"category,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
	Amount       int64  `json:"amount"`
	Date         string `json:"date"` // YYYY-MM-DD
	Notes        string `json:"notes,omitempty"`
	Cleared      bool   `json:"cleared"`
	Tombstone    bool   `json:"tombstone,omitempty"`
}

// NewTransaction represents a transaction to be created.
type NewTransaction struct {
	Account  string `json:"account"`
	Date     string `json:"date"` // YYYY-MM-DD
	Amount   int64  `json:"amount"`
	Payee    string `json:"payee,omitempty"`
	Category string `json:"category,omitempty"`
	Notes    string `json:"notes,omitempty"`
	Cleared  bool   `json:"cleared,omitempty"`
}

// Category represents a budget category.
type Category struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	GroupID string `json:"group_id,omitempty"`
}

// Payee represents a payee.
type Payee struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TransactionsResponse represents the response from the transactions endpoints.
type TransactionsResponse struct {
	Data []Transaction `json:"data"`
}

// CategoriesResponse represents the response from the categories endpoint.
type CategoriesResponse struct {
	Data []Category `json:"data"`
}

// PayeesResponse represents the response from the payees endpoint.
type PayeesResponse struct {
	Data []Payee `json:"data"`
}

// ErrorResponse represents an error response from the Actual API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
