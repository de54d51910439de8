package usecase

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/estimatorlab/scopegen/internal/core/domain"
)

type scopeRepoFake struct {
	created       []*domain.Scope
	completedID   string
	completed     []domain.LineItemDraft
	statusUpdates []domain.ScopeStatus
	deletedIDs    []string

	createErr   error
	completeErr error
	statusErr   error
	deleteErr   error
}

func (f *scopeRepoFake) CreateScope(_ context.Context, scope *domain.Scope) error {
	if f.createErr != nil {
		return f.createErr
	}
	copied := *scope
	f.created = append(f.created, &copied)
	return nil
}

func (f *scopeRepoFake) UpdateStatus(_ context.Context, _ string, status domain.ScopeStatus) error {
	f.statusUpdates = append(f.statusUpdates, status)
	return f.statusErr
}

func (f *scopeRepoFake) CompleteScope(_ context.Context, scopeID string, drafts []domain.LineItemDraft) error {
	if f.completeErr != nil {
		return f.completeErr
	}
	f.completedID = scopeID
	f.completed = drafts
	return nil
}

func (f *scopeRepoFake) ListByOwner(context.Context, string, int, time.Time) ([]domain.Scope, error) {
	return nil, nil
}

func (f *scopeRepoFake) GetByID(context.Context, string, string) (*domain.Scope, error) {
	return nil, nil
}

func (f *scopeRepoFake) DeleteScope(_ context.Context, _, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

type generatorFake struct {
	drafts []domain.LineItemDraft
	err    error
	calls  int
}

func (f *generatorFake) GenerateLineItems(context.Context, string) ([]domain.LineItemDraft, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.drafts, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestGenerateSuccessPersistsItemsAndCompletes(t *testing.T) {
	repo := &scopeRepoFake{}
	gen := &generatorFake{drafts: []domain.LineItemDraft{
		{Category: "Painting", XactCode: "PNT P", Description: "Repaint walls", Quantity: 384, Unit: "SF"},
		{Category: "Drywall", XactCode: "DRY 1/2", Description: "Patch ceiling", Quantity: 32, Unit: "SF"},
	}}
	uc := NewGenerateScopeUseCase(repo, gen, testLogger())

	count, err := uc.Generate(context.Background(), "u1", "Living room 12x12, repaint walls", "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 items, got %d", count)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected exactly one scope row, got %d", len(repo.created))
	}
	created := repo.created[0]
	if created.Status != domain.StatusProcessing {
		t.Fatalf("expected PROCESSING at creation, got %s", created.Status)
	}
	if created.RawInput != "Living room 12x12, repaint walls" {
		t.Fatalf("raw input not stored verbatim: %q", created.RawInput)
	}
	if repo.completedID != created.ID {
		t.Fatalf("line items written for %q, scope is %q", repo.completedID, created.ID)
	}
	if len(repo.completed) != 2 {
		t.Fatalf("expected 2 drafts persisted, got %d", len(repo.completed))
	}
	if len(repo.statusUpdates) != 0 {
		t.Fatalf("success path must not issue a separate status update, got %v", repo.statusUpdates)
	}
}

func TestGenerateCreatesRowBeforeModelCall(t *testing.T) {
	repo := &scopeRepoFake{createErr: errors.New("db down")}
	gen := &generatorFake{}
	uc := NewGenerateScopeUseCase(repo, gen, testLogger())

	_, err := uc.Generate(context.Background(), "u1", "notes", "")
	if err == nil {
		t.Fatalf("expected error")
	}
	if gen.calls != 0 {
		t.Fatalf("model must not be called when the scope row was not created")
	}
}

func TestGenerateMarksFailedOnGenerationError(t *testing.T) {
	repo := &scopeRepoFake{}
	gen := &generatorFake{err: domain.WrapError(domain.ErrGenerationFailed, "generate text", errors.New("service down"))}
	uc := NewGenerateScopeUseCase(repo, gen, testLogger())

	_, err := uc.Generate(context.Background(), "u1", "notes", "")
	if !domain.IsKind(err, domain.ErrGenerationFailed) {
		t.Fatalf("expected generation error, got %v", err)
	}
	if len(repo.statusUpdates) != 1 || repo.statusUpdates[0] != domain.StatusFailed {
		t.Fatalf("expected single FAILED update, got %v", repo.statusUpdates)
	}
	if repo.completedID != "" {
		t.Fatalf("no line items may be written on failure")
	}
}

func TestGenerateMarksFailedOnNormalizationError(t *testing.T) {
	repo := &scopeRepoFake{}
	gen := &generatorFake{err: domain.WrapError(domain.ErrNormalizationFailed, "parse line items", errors.New("not json"))}
	uc := NewGenerateScopeUseCase(repo, gen, testLogger())

	_, err := uc.Generate(context.Background(), "u1", "notes", "")
	if !domain.IsKind(err, domain.ErrNormalizationFailed) {
		t.Fatalf("expected normalization error, got %v", err)
	}
	if len(repo.statusUpdates) != 1 || repo.statusUpdates[0] != domain.StatusFailed {
		t.Fatalf("expected single FAILED update, got %v", repo.statusUpdates)
	}
}

func TestGenerateMarksFailedOnPersistError(t *testing.T) {
	repo := &scopeRepoFake{completeErr: errors.New("constraint violation")}
	gen := &generatorFake{drafts: []domain.LineItemDraft{{Description: "Replace shingles", Quantity: 15}}}
	uc := NewGenerateScopeUseCase(repo, gen, testLogger())

	_, err := uc.Generate(context.Background(), "u1", "notes", "")
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(repo.statusUpdates) != 1 || repo.statusUpdates[0] != domain.StatusFailed {
		t.Fatalf("expected FAILED update, got %v", repo.statusUpdates)
	}
}

func TestGenerateRejectsMissingOwnerWithoutWrites(t *testing.T) {
	repo := &scopeRepoFake{}
	gen := &generatorFake{}
	uc := NewGenerateScopeUseCase(repo, gen, testLogger())

	_, err := uc.Generate(context.Background(), "", "notes", "")
	if !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if len(repo.created) != 0 || gen.calls != 0 {
		t.Fatalf("validation failures must not touch the repo or the model")
	}
}

func TestGenerateRejectsEmptyInputWithoutWrites(t *testing.T) {
	repo := &scopeRepoFake{}
	gen := &generatorFake{}
	uc := NewGenerateScopeUseCase(repo, gen, testLogger())

	_, err := uc.Generate(context.Background(), "u1", "   ", "")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatalf("validation failures must not create a scope row")
	}
}

func TestDeleteRequiresOwner(t *testing.T) {
	repo := &scopeRepoFake{}
	uc := NewGenerateScopeUseCase(repo, &generatorFake{}, testLogger())

	err := uc.Delete(context.Background(), "", "scope-1")
	if !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if len(repo.deletedIDs) != 0 {
		t.Fatalf("nothing may be deleted without an owner")
	}
}

func TestDeletePropagatesOwnershipError(t *testing.T) {
	repo := &scopeRepoFake{deleteErr: domain.WrapError(domain.ErrNotOwner, "delete scope", errors.New("id=s1"))}
	uc := NewGenerateScopeUseCase(repo, &generatorFake{}, testLogger())

	err := uc.Delete(context.Background(), "u1", "s1")
	if !domain.IsKind(err, domain.ErrNotOwner) {
		t.Fatalf("expected ownership error, got %v", err)
	}
}
