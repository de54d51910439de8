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

// DemoParseUseCase is the unauthenticated path: record a usage hit, run the
// model, and hand the drafts straight back without persisting them.
type DemoParseUseCase struct {
	hits      ports.DemoHitRepository
	generator ports.LineItemGenerator
	logger    *slog.Logger
}

func NewDemoParseUseCase(
	hits ports.DemoHitRepository,
	generator ports.LineItemGenerator,
	logger *slog.Logger,
) *DemoParseUseCase {
	return &DemoParseUseCase{
		hits:      hits,
		generator: generator,
		logger:    logger,
	}
}

func (uc *DemoParseUseCase) Parse(ctx context.Context, text, userAgent string) ([]domain.LineItemDraft, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "demo parse", errors.New("text is required"))
	}

	hit := &domain.DemoHit{
		ID:          uuid.NewString(),
		InputLength: len(text),
		UserAgent:   userAgent,
		CreatedAt:   time.Now().UTC(),
	}
	if err := uc.hits.CreateHit(ctx, hit); err != nil {
		return nil, fmt.Errorf("record demo hit: %w", err)
	}

	drafts, err := uc.generator.GenerateLineItems(ctx, text)
	if err != nil {
		uc.logger.Error("demo_generation_failed", "error", err)
		return nil, err
	}
	return drafts, nil
}
