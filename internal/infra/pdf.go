package infra

// pdf.go — lot ledger reports rendered with go-pdf/fpdf: lot header, balance
// summary, and one table row per adjustment entry.

import (
	"bytes"
	"fmt"

	"blendcatalog/internal/dto"

	"github.com/go-pdf/fpdf"
)

// LotPDFRenderer renders lot reports in memory; callers stream the bytes.
type LotPDFRenderer struct {
	businessName string
}

func NewLotPDFRenderer(businessName string) *LotPDFRenderer {
	if businessName == "" {
		businessName = "Blend Catalog"
	}
	return &LotPDFRenderer{businessName: businessName}
}

// LotReport renders an A4 portrait summary of a lot and its ledger.
func (r *LotPDFRenderer) LotReport(lot dto.LotResponse, supplierName string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(contentW, 8, r.businessName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, "Inventory Lot Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 6, fmt.Sprintf("Lot %s", lot.LotNumber), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Type: "+lot.Type, "", 1, "L", false, 0, "")
	if supplierName != "" {
		pdf.CellFormat(contentW, 5, "Supplier: "+supplierName, "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(contentW, 5, "Status: "+lot.Status, "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, "Unit cost: $"+lot.BasePrice.StringFixed(2), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW/2, 6, fmt.Sprintf("Received: %d", lot.Quantity), "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 6, fmt.Sprintf("Remaining: %d", lot.RemainingQuantity), "", 1, "R", false, 0, "")
	pdf.Ln(3)

	col1 := contentW * 0.22 // date
	col2 := contentW * 0.16 // type
	col3 := contentW * 0.12 // qty
	col4 := contentW * 0.50 // reason

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 6, "Date", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Type", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 6, "Reason", "B", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	if len(lot.Adjustments) == 0 {
		pdf.CellFormat(contentW, 6, "No adjustments recorded.", "", 1, "L", false, 0, "")
	}
	for _, adj := range lot.Adjustments {
		reason := adj.Reason
		if len(reason) > 60 {
			reason = reason[:59] + "…"
		}
		pdf.CellFormat(col1, 6, adj.Date.Format("02/01/2006"), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, adj.Type, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 6, fmt.Sprintf("-%d", adj.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, reason, "", 1, "L", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6,
		fmt.Sprintf("Balance: %d - %d adjusted = %d",
			lot.Quantity, lot.Quantity-lot.RemainingQuantity, lot.RemainingQuantity),
		"", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render lot report: %w", err)
	}
	return buf.Bytes(), nil
}
