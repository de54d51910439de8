package ports

import (
	"context"
	"time"

	"github.com/estimatorlab/scopegen/internal/core/domain"
)

// ScopeRepository persists scopes and their line items.
type ScopeRepository interface {
	CreateScope(ctx context.Context, scope *domain.Scope) error
	UpdateStatus(ctx context.Context, id string, status domain.ScopeStatus) error
	// CompleteScope inserts the drafts in order and sets status=COMPLETED in
	// one transaction.
	CompleteScope(ctx context.Context, scopeID string, drafts []domain.LineItemDraft) error
	ListByOwner(ctx context.Context, ownerID string, limit int, since time.Time) ([]domain.Scope, error)
	// GetByID returns the scope with its line items only when ownerID matches;
	// a non-owned or absent scope is domain.ErrScopeNotFound.
	GetByID(ctx context.Context, ownerID, id string) (*domain.Scope, error)
	// DeleteScope removes the scope and all its line items atomically.
	DeleteScope(ctx context.Context, ownerID, id string) error
}

// DemoHitRepository records unauthenticated demo usage. Write-only.
type DemoHitRepository interface {
	CreateHit(ctx context.Context, hit *domain.DemoHit) error
}

// LineItemGenerator turns damage notes into normalized line-item drafts via the
// external model. Failures are generic: domain.ErrGenerationFailed or
// domain.ErrNormalizationFailed.
type LineItemGenerator interface {
	GenerateLineItems(ctx context.Context, notes string) ([]domain.LineItemDraft, error)
}
