package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/google/uuid"

	"github.com/estimatorlab/scopegen/internal/core/domain"
)

type ScopeRepository struct {
	db *sql.DB
}

func NewScopeRepository(db *sql.DB) *ScopeRepository {
	return &ScopeRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *ScopeRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS scopes (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	raw_input TEXT NOT NULL,
	address TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS line_items (
	id TEXT PRIMARY KEY,
	scope_id TEXT NOT NULL REFERENCES scopes(id),
	category TEXT NOT NULL DEFAULT '',
	xact_code TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL,
	quantity DOUBLE PRECISION NOT NULL,
	unit TEXT NOT NULL DEFAULT '',
	position INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS demo_hits (
	id TEXT PRIMARY KEY,
	input_length INTEGER NOT NULL,
	user_agent TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scopes_owner_created ON scopes(owner_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_line_items_scope ON line_items(scope_id, position);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ScopeRepository) CreateScope(ctx context.Context, scope *domain.Scope) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO scopes (id, owner_id, raw_input, address, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, scope.ID, scope.OwnerID, scope.RawInput, scope.Address, string(scope.Status), scope.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert scope: %w", err)
	}
	return nil
}

func (r *ScopeRepository) UpdateStatus(ctx context.Context, id string, status domain.ScopeStatus) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE scopes SET status = $2 WHERE id = $1
`, id, string(status))
	if err != nil {
		return fmt.Errorf("update scope status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update scope status rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrScopeNotFound, "update scope status", fmt.Errorf("id=%s", id))
	}
	return nil
}

// CompleteScope writes the drafts in normalized order and moves the scope to
// COMPLETED as one transaction, so a scope is never observable half-written.
func (r *ScopeRepository) CompleteScope(ctx context.Context, scopeID string, drafts []domain.LineItemDraft) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin complete tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for position, draft := range drafts {
		_, err := tx.ExecContext(ctx, `
INSERT INTO line_items (id, scope_id, category, xact_code, description, quantity, unit, position)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`, uuid.NewString(), scopeID, draft.Category, draft.XactCode, draft.Description, draft.Quantity, draft.Unit, position)
		if err != nil {
			return fmt.Errorf("insert line item %d: %w", position, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
UPDATE scopes SET status = $2 WHERE id = $1
`, scopeID, string(domain.StatusCompleted)); err != nil {
		return fmt.Errorf("mark scope completed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit complete tx: %w", err)
	}
	return nil
}

func (r *ScopeRepository) ListByOwner(ctx context.Context, ownerID string, limit int, since time.Time) ([]domain.Scope, error) {
	query := `
SELECT id, owner_id, raw_input, address, status, created_at
FROM scopes
WHERE owner_id = $1
`
	args := []any{ownerID}
	if !since.IsZero() {
		query += "AND created_at >= $2\n"
		args = append(args, since)
	}
	args = append(args, limit)
	query += fmt.Sprintf("ORDER BY created_at DESC\nLIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list scopes: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Scope, 0)
	for rows.Next() {
		scope, err := scanScope(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scope: %w", err)
		}
		out = append(out, scope)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scopes: %w", err)
	}
	return out, nil
}

// GetByID keeps the owner in the WHERE clause: a scope owned by someone else
// is indistinguishable from a missing one.
func (r *ScopeRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Scope, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, owner_id, raw_input, address, status, created_at
FROM scopes
WHERE owner_id = $1 AND id = $2
`, ownerID, id)

	scope, err := scanScope(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrScopeNotFound, "get scope", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan scope: %w", err)
	}

	items, err := r.listLineItems(ctx, id)
	if err != nil {
		return nil, err
	}
	scope.LineItems = items
	return &scope, nil
}

func (r *ScopeRepository) listLineItems(ctx context.Context, scopeID string) ([]domain.LineItem, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, scope_id, category, xact_code, description, quantity, unit, position
FROM line_items
WHERE scope_id = $1
ORDER BY position
`, scopeID)
	if err != nil {
		return nil, fmt.Errorf("list line items: %w", err)
	}
	defer rows.Close()

	out := make([]domain.LineItem, 0)
	for rows.Next() {
		var item domain.LineItem
		if err := rows.Scan(
			&item.ID, &item.ScopeID, &item.Category, &item.XactCode,
			&item.Description, &item.Quantity, &item.Unit, &item.Position,
		); err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate line items: %w", err)
	}
	return out, nil
}

// DeleteScope removes the line items and the scope row in one transaction.
// Ownership is checked inside the transaction; a mismatch deletes nothing.
func (r *ScopeRepository) DeleteScope(ctx context.Context, ownerID, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var storedOwner string
	err = tx.QueryRowContext(ctx, `
SELECT owner_id FROM scopes WHERE id = $1 FOR UPDATE
`, id).Scan(&storedOwner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.WrapError(domain.ErrScopeNotFound, "delete scope", fmt.Errorf("id=%s", id))
		}
		return fmt.Errorf("lock scope for delete: %w", err)
	}
	if storedOwner != ownerID {
		return domain.WrapError(domain.ErrNotOwner, "delete scope", fmt.Errorf("id=%s", id))
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM line_items WHERE scope_id = $1`, id); err != nil {
		return fmt.Errorf("delete line items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM scopes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete scope row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete tx: %w", err)
	}
	return nil
}

type scopeScanner interface {
	Scan(dest ...any) error
}

func scanScope(row scopeScanner) (domain.Scope, error) {
	var scope domain.Scope
	var status string
	err := row.Scan(
		&scope.ID,
		&scope.OwnerID,
		&scope.RawInput,
		&scope.Address,
		&status,
		&scope.CreatedAt,
	)
	if err != nil {
		return domain.Scope{}, err
	}
	scope.Status = domain.ScopeStatus(status)
	return scope, nil
}
