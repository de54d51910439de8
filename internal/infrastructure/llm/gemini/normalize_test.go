package gemini

import (
	"testing"

	"github.com/estimatorlab/scopegen/internal/core/domain"
)

func TestParseLineItemsStripsFences(t *testing.T) {
	raw := "```json\n[{\"category\":\"Roofing\",\"xactCode\":\"RFG 300\",\"description\":\"Replace shingles\",\"quantity\":15,\"unit\":\"SQ\"}]\n```"

	drafts, err := ParseLineItems(raw)
	if err != nil {
		t.Fatalf("ParseLineItems() error = %v", err)
	}
	if len(drafts) != 1 {
		t.Fatalf("expected 1 draft, got %d", len(drafts))
	}
	draft := drafts[0]
	if draft.Category != "Roofing" || draft.XactCode != "RFG 300" || draft.Unit != "SQ" {
		t.Fatalf("unexpected draft: %+v", draft)
	}
	if draft.Quantity != 15 {
		t.Fatalf("expected quantity 15, got %v", draft.Quantity)
	}
}

func TestParseLineItemsRejectsProse(t *testing.T) {
	_, err := ParseLineItems("Sorry, I cannot help with that.")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrNormalizationFailed) {
		t.Fatalf("expected normalization error, got %v", err)
	}
}

func TestParseLineItemsAcceptsItemsWrapper(t *testing.T) {
	raw := `{"items":[{"category":"Siding","xactCode":"SDG SIDE","description":"Replace vinyl siding","quantity":22,"unit":"SQ"}]}`

	drafts, err := ParseLineItems(raw)
	if err != nil {
		t.Fatalf("ParseLineItems() error = %v", err)
	}
	if len(drafts) != 1 || drafts[0].XactCode != "SDG SIDE" {
		t.Fatalf("unexpected drafts: %+v", drafts)
	}
}

func TestParseLineItemsRejectsObjectWithoutItems(t *testing.T) {
	_, err := ParseLineItems(`{"lineItems":[]}`)
	if err == nil || !domain.IsKind(err, domain.ErrNormalizationFailed) {
		t.Fatalf("expected normalization error, got %v", err)
	}
}

func TestParseLineItemsRejectsNullLiteral(t *testing.T) {
	drafts, err := ParseLineItems("null")
	if err == nil || !domain.IsKind(err, domain.ErrNormalizationFailed) {
		t.Fatalf("expected normalization error for null response, got %d drafts, err = %v", len(drafts), err)
	}
}

func TestParseLineItemsCoercesStringQuantity(t *testing.T) {
	raw := `[{"description":"Paint walls","quantity":"320.5","unit":"SF"}]`

	drafts, err := ParseLineItems(raw)
	if err != nil {
		t.Fatalf("ParseLineItems() error = %v", err)
	}
	if drafts[0].Quantity != 320.5 {
		t.Fatalf("expected quantity 320.5, got %v", drafts[0].Quantity)
	}
	if drafts[0].Category != "" || drafts[0].XactCode != "" {
		t.Fatalf("expected optional fields empty, got %+v", drafts[0])
	}
}

func TestParseLineItemsRequiresDescription(t *testing.T) {
	_, err := ParseLineItems(`[{"category":"Roofing","quantity":1,"unit":"SQ"}]`)
	if err == nil || !domain.IsKind(err, domain.ErrNormalizationFailed) {
		t.Fatalf("expected normalization error, got %v", err)
	}
}

func TestParseLineItemsRequiresNumericQuantity(t *testing.T) {
	_, err := ParseLineItems(`[{"description":"Replace shingles","quantity":"about ten","unit":"SQ"}]`)
	if err == nil || !domain.IsKind(err, domain.ErrNormalizationFailed) {
		t.Fatalf("expected normalization error, got %v", err)
	}
}

func TestParseLineItemsRejectsMissingQuantity(t *testing.T) {
	_, err := ParseLineItems(`[{"description":"Replace shingles","unit":"SQ"}]`)
	if err == nil || !domain.IsKind(err, domain.ErrNormalizationFailed) {
		t.Fatalf("expected normalization error, got %v", err)
	}
}

func TestParseLineItemsEmptyAfterFences(t *testing.T) {
	_, err := ParseLineItems("```json\n```")
	if err == nil || !domain.IsKind(err, domain.ErrNormalizationFailed) {
		t.Fatalf("expected normalization error, got %v", err)
	}
}

func TestParseLineItemsEmptyArray(t *testing.T) {
	drafts, err := ParseLineItems("[]")
	if err != nil {
		t.Fatalf("ParseLineItems() error = %v", err)
	}
	if len(drafts) != 0 {
		t.Fatalf("expected no drafts, got %d", len(drafts))
	}
}
