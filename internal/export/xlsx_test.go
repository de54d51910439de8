package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/estimatorlab/scopegen/internal/core/domain"
)

func TestLineItemsXLSXRoundTrip(t *testing.T) {
	items := []domain.LineItem{
		{Category: "Roofing", XactCode: "RFG 300", Description: "Replace shingles", Quantity: 15, Unit: "SQ"},
		{Category: "Siding", XactCode: "SDG SIDE", Description: "Replace vinyl siding", Quantity: 22, Unit: "SQ"},
	}

	raw, err := LineItemsXLSX(items)
	if err != nil {
		t.Fatalf("LineItemsXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Category" || rows[0][4] != "Unit" {
		t.Fatalf("unexpected header row: %+v", rows[0])
	}
	if rows[1][1] != "RFG 300" || rows[2][1] != "SDG SIDE" {
		t.Fatalf("unexpected data rows: %+v", rows[1:])
	}
}
