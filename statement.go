package feeledger

import (
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

// writeStatementPDF renders an account statement: header with account
// details and current balance, then one row per charge in ledger order.
func writeStatementPDF(w io.Writer, acct *Account, charges []Charge, now time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Account Statement", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Account Statement")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, "Account: "+acct.AcctID.String()+" ("+string(acct.Type)+")")
	pdf.Ln(6)
	pdf.Cell(0, 6, "Holder: "+acct.Email)
	pdf.Ln(6)
	pdf.Cell(0, 6, "Balance: "+acct.Balance.String())
	pdf.Ln(6)
	pdf.Cell(0, 6, "Generated: "+now.Format(time.RFC3339))
	pdf.Ln(10)

	widths := []float64{50, 28, 35, 35, 42}
	headers := []string{"Date", "Type", "Amount", "Fee", "Transaction ID"}
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, c := range charges {
		pdf.CellFormat(widths[0], 6, c.At.Format(time.RFC3339), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, string(c.Type), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, c.Amount.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, c.Fee.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, c.ChargeID.String(), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}
