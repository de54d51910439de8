package domain

import "time"

// ScopeStatus is the lifecycle of a generation attempt. Transitions only move
// forward: PROCESSING -> COMPLETED or PROCESSING -> FAILED, never back.
type ScopeStatus string

const (
	StatusPending    ScopeStatus = "PENDING"
	StatusProcessing ScopeStatus = "PROCESSING"
	StatusCompleted  ScopeStatus = "COMPLETED"
	StatusFailed     ScopeStatus = "FAILED"
)

// Scope is one submitted damage description and its derived estimate.
type Scope struct {
	ID        string      `json:"id"`
	OwnerID   string      `json:"owner_id"`
	RawInput  string      `json:"raw_input"`
	Address   string      `json:"address,omitempty"`
	Status    ScopeStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	LineItems []LineItem  `json:"line_items,omitempty"`
}

// LineItem is one estimating entry belonging to a scope. Line items are written
// only by a successful generation and removed only by cascading scope deletion.
type LineItem struct {
	ID          string  `json:"id"`
	ScopeID     string  `json:"scope_id"`
	Category    string  `json:"category,omitempty"`
	XactCode    string  `json:"xactCode,omitempty"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit,omitempty"`
	Position    int     `json:"-"`
}

// LineItemDraft is a normalized model-output entry before persistence.
type LineItemDraft struct {
	Category    string  `json:"category,omitempty"`
	XactCode    string  `json:"xactCode,omitempty"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit,omitempty"`
}

// DemoHit is a write-only usage counter row for the unauthenticated demo path.
type DemoHit struct {
	ID          string
	InputLength int
	UserAgent   string
	CreatedAt   time.Time
}
