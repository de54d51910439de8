package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/estimatorlab/scopegen/internal/core/domain"
)

// DemoHitRepository is write-only; nothing in the service reads hits back.
type DemoHitRepository struct {
	db *sql.DB
}

func NewDemoHitRepository(db *sql.DB) *DemoHitRepository {
	return &DemoHitRepository{db: db}
}

func (r *DemoHitRepository) CreateHit(ctx context.Context, hit *domain.DemoHit) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO demo_hits (id, input_length, user_agent, created_at)
VALUES ($1,$2,$3,$4)
`, hit.ID, hit.InputLength, hit.UserAgent, hit.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert demo hit: %w", err)
	}
	return nil
}
