package analytics

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/sellerdesk/backend/internal/domain/marketplace"
)

// ExportHeader is the first row of the pick-list export
var ExportHeader = []string{"offer_id", "sku", "name", "unit_price", "currency", "quantity", "unpacked", "packed"}

const (
	exportDelimiter = ","
	exportLineEnd   = "\r\n"
)

// WriteDelimited writes the pick-list export for groups to w: a UTF-8 byte
// order mark, the header row, then one row per group. The name column is
// always quoted with embedded quotes doubled; other columns are quoted only
// when they contain the delimiter, a quote or a line break.
func WriteDelimited(w io.Writer, groups []marketplace.OrderGroup, packed marketplace.PackedSet) error {
	tw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())

	if _, err := io.WriteString(tw, formatRow(ExportHeader, -1)); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	for _, g := range groups {
		unpacked, packedOrders := g.Split(packed)
		row := []string{
			g.Representative.OfferID,
			g.Representative.SkuID,
			g.Representative.Name,
			g.Representative.UnitPrice,
			g.Currency,
			strconv.Itoa(g.TotalQuantity()),
			strconv.Itoa(len(unpacked)),
			strconv.Itoa(len(packedOrders)),
		}
		if _, err := io.WriteString(tw, formatRow(row, 2)); err != nil {
			return fmt.Errorf("export: write group %s: %w", g.ProductKey, err)
		}
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("export: flush: %w", err)
	}
	return nil
}

// ToDelimitedText returns the export as a byte slice
func ToDelimitedText(groups []marketplace.OrderGroup, packed marketplace.PackedSet) []byte {
	var buf bytes.Buffer
	// Writes to a bytes.Buffer cannot fail
	_ = WriteDelimited(&buf, groups, packed)
	return buf.Bytes()
}

// formatRow joins fields; the field at alwaysQuote is quoted unconditionally
func formatRow(fields []string, alwaysQuote int) string {
	var sb strings.Builder
	for i, f := range fields {
		if i > 0 {
			sb.WriteString(exportDelimiter)
		}
		if i == alwaysQuote || needsQuotes(f) {
			sb.WriteString(quote(f))
		} else {
			sb.WriteString(f)
		}
	}
	sb.WriteString(exportLineEnd)
	return sb.String()
}

func needsQuotes(s string) bool {
	return strings.ContainsAny(s, exportDelimiter+"\"\r\n")
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
