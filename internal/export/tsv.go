// Package export renders a scope's line items for external estimating tools:
// tab-separated text for clipboard paste and an xlsx workbook for download.
package export

import (
	"strconv"
	"strings"

	"github.com/estimatorlab/scopegen/internal/core/domain"
)

// Column order matches the spreadsheet the estimators paste into.
var tsvHeader = []string{"Category", "Selector", "Description", "Qty", "Unit"}

// LineItemsTSV renders the clipboard export: a header row followed by one row
// per item. Embedded tabs or newlines inside a description are not escaped and
// will corrupt the paste; that limitation is inherited from the export format.
func LineItemsTSV(items []domain.LineItem) string {
	var b strings.Builder
	b.WriteString(strings.Join(tsvHeader, "\t"))
	b.WriteString("\n")
	for _, item := range items {
		b.WriteString(strings.Join([]string{
			item.Category,
			item.XactCode,
			item.Description,
			formatQuantity(item.Quantity),
			item.Unit,
		}, "\t"))
		b.WriteString("\n")
	}
	return b.String()
}

func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
