package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/estimatorlab/scopegen/internal/core/domain"
)

// ParseLineItems normalizes raw model output into line-item drafts. Model
// output is untrusted external input: fences are stripped, the remainder must
// parse as a JSON array of objects (or an {"items": [...]} wrapper, which the
// model produces for some prompts), each with a non-empty description and a
// numeric quantity. Anything else is domain.ErrNormalizationFailed.
func ParseLineItems(raw string) ([]domain.LineItemDraft, error) {
	cleaned := stripFences(raw)
	if cleaned == "" {
		return nil, domain.WrapError(domain.ErrNormalizationFailed, "parse line items", errors.New("empty response text"))
	}

	payload := []byte(cleaned)
	var entries []rawLineItem

	if strings.HasPrefix(cleaned, "{") {
		var wrapper struct {
			Items []rawLineItem `json:"items"`
		}
		if err := json.Unmarshal(payload, &wrapper); err != nil {
			return nil, domain.WrapError(domain.ErrNormalizationFailed, "parse line items", err)
		}
		if wrapper.Items == nil {
			return nil, domain.WrapError(domain.ErrNormalizationFailed, "parse line items", errors.New("object response has no items array"))
		}
		entries = wrapper.Items
	} else {
		if err := json.Unmarshal(payload, &entries); err != nil {
			return nil, domain.WrapError(domain.ErrNormalizationFailed, "parse line items", err)
		}
		if entries == nil {
			return nil, domain.WrapError(domain.ErrNormalizationFailed, "parse line items", errors.New("response is not an array"))
		}
	}

	drafts := make([]domain.LineItemDraft, 0, len(entries))
	for idx, entry := range entries {
		draft, err := entry.toDraft()
		if err != nil {
			return nil, domain.WrapError(domain.ErrNormalizationFailed, "parse line items", fmt.Errorf("item %d: %w", idx, err))
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

func stripFences(raw string) string {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

type rawLineItem struct {
	Category    string   `json:"category"`
	XactCode    string   `json:"xactCode"`
	Description string   `json:"description"`
	Quantity    quantity `json:"quantity"`
	Unit        string   `json:"unit"`
}

func (r rawLineItem) toDraft() (domain.LineItemDraft, error) {
	if strings.TrimSpace(r.Description) == "" {
		return domain.LineItemDraft{}, errors.New("description is required")
	}
	if !r.Quantity.set {
		return domain.LineItemDraft{}, errors.New("quantity is required")
	}
	return domain.LineItemDraft{
		Category:    strings.TrimSpace(r.Category),
		XactCode:    strings.TrimSpace(r.XactCode),
		Description: strings.TrimSpace(r.Description),
		Quantity:    r.Quantity.value,
		Unit:        strings.TrimSpace(r.Unit),
	}, nil
}

// quantity accepts a JSON number or a numeric string.
type quantity struct {
	value float64
	set   bool
}

func (q *quantity) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" {
		return nil
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("quantity %q is not numeric", s)
		}
		q.value = parsed
		q.set = true
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("quantity must be a number: %w", err)
	}
	q.value = n
	q.set = true
	return nil
}
