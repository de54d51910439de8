package ports

import (
	"context"
	"time"

	"github.com/estimatorlab/scopegen/internal/core/domain"
)

// ScopeEstimator is the inbound contract for the authenticated scope workflow.
// Generate reports how many line items were written; callers observe the
// outcome itself by re-reading scope state.
type ScopeEstimator interface {
	Generate(ctx context.Context, ownerID, rawInput, address string) (int, error)
	Delete(ctx context.Context, ownerID, scopeID string) error
}

// ScopeBrowser is the inbound read model for a user's past scopes.
type ScopeBrowser interface {
	List(ctx context.Context, ownerID string, limit int, since time.Time) ([]domain.Scope, error)
	Get(ctx context.Context, ownerID, scopeID string) (*domain.Scope, error)
}

// DemoParser is the inbound contract for the unauthenticated demo path.
type DemoParser interface {
	Parse(ctx context.Context, text, userAgent string) ([]domain.LineItemDraft, error)
}
