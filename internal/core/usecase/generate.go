package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/estimatorlab/scopegen/internal/core/domain"
	"github.com/estimatorlab/scopegen/internal/core/ports"
)

// GenerateScopeUseCase runs the full workflow: create a PROCESSING row, call
// the model, and move the row to COMPLETED with its line items or to FAILED.
//
// A crash between the initial insert and the terminal status update leaves a
// permanent PROCESSING row. There is no sweeper for those rows.
type GenerateScopeUseCase struct {
	repo      ports.ScopeRepository
	generator ports.LineItemGenerator
	logger    *slog.Logger
}

func NewGenerateScopeUseCase(
	repo ports.ScopeRepository,
	generator ports.LineItemGenerator,
	logger *slog.Logger,
) *GenerateScopeUseCase {
	return &GenerateScopeUseCase{
		repo:      repo,
		generator: generator,
		logger:    logger,
	}
}

func (uc *GenerateScopeUseCase) Generate(ctx context.Context, ownerID, rawInput, address string) (int, error) {
	if strings.TrimSpace(ownerID) == "" {
		return 0, domain.WrapError(domain.ErrUnauthorized, "generate scope", errors.New("missing owner identity"))
	}
	if strings.TrimSpace(rawInput) == "" {
		return 0, domain.WrapError(domain.ErrInvalidInput, "generate scope", errors.New("raw input is empty"))
	}

	scope := &domain.Scope{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		RawInput:  rawInput,
		Address:   strings.TrimSpace(address),
		Status:    domain.StatusProcessing,
		CreatedAt: time.Now().UTC(),
	}

	// The PROCESSING row must be durable before the model call so that a
	// crash mid-generation still leaves a trace of the attempt.
	if err := uc.repo.CreateScope(ctx, scope); err != nil {
		return 0, fmt.Errorf("create scope: %w", err)
	}

	drafts, err := uc.generator.GenerateLineItems(ctx, rawInput)
	if err != nil {
		return 0, uc.markFailed(ctx, scope.ID, err)
	}

	if err := uc.repo.CompleteScope(ctx, scope.ID, drafts); err != nil {
		return 0, uc.markFailed(ctx, scope.ID, fmt.Errorf("persist line items: %w", err))
	}

	uc.logger.Info("scope_completed",
		"scope_id", scope.ID,
		"line_items", len(drafts),
	)
	return len(drafts), nil
}

func (uc *GenerateScopeUseCase) markFailed(ctx context.Context, scopeID string, cause error) error {
	uc.logger.Error("scope_generation_failed",
		"scope_id", scopeID,
		"error", cause,
	)
	if err := uc.repo.UpdateStatus(ctx, scopeID, domain.StatusFailed); err != nil {
		return fmt.Errorf("%w; mark failed status: %v", cause, err)
	}
	return cause
}

func (uc *GenerateScopeUseCase) Delete(ctx context.Context, ownerID, scopeID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return domain.WrapError(domain.ErrUnauthorized, "delete scope", errors.New("missing owner identity"))
	}
	if strings.TrimSpace(scopeID) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "delete scope", errors.New("scope id is required"))
	}
	if err := uc.repo.DeleteScope(ctx, ownerID, scopeID); err != nil {
		return fmt.Errorf("delete scope: %w", err)
	}
	return nil
}
