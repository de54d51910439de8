package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/estimatorlab/scopegen/internal/core/domain"
	"github.com/estimatorlab/scopegen/internal/core/ports"
)

// BrowseScopesUseCase is the owner-scoped read model over stored scopes.
type BrowseScopesUseCase struct {
	repo         ports.ScopeRepository
	defaultLimit int
}

func NewBrowseScopesUseCase(repo ports.ScopeRepository, defaultLimit int) *BrowseScopesUseCase {
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	return &BrowseScopesUseCase{repo: repo, defaultLimit: defaultLimit}
}

func (uc *BrowseScopesUseCase) List(ctx context.Context, ownerID string, limit int, since time.Time) ([]domain.Scope, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "list scopes", errors.New("missing owner identity"))
	}
	if limit <= 0 {
		limit = uc.defaultLimit
	}
	scopes, err := uc.repo.ListByOwner(ctx, ownerID, limit, since)
	if err != nil {
		return nil, fmt.Errorf("list scopes: %w", err)
	}
	return scopes, nil
}

func (uc *BrowseScopesUseCase) Get(ctx context.Context, ownerID, scopeID string) (*domain.Scope, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "get scope", errors.New("missing owner identity"))
	}
	if strings.TrimSpace(scopeID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "get scope", errors.New("scope id is required"))
	}
	scope, err := uc.repo.GetByID(ctx, ownerID, scopeID)
	if err != nil {
		return nil, fmt.Errorf("get scope: %w", err)
	}
	return scope, nil
}
