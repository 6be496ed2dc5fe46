// Package receipt renders payment receipts as PDF documents.
package receipt

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Receipt is everything printed on one payment receipt
type Receipt struct {
	PaymentID     string
	OrderID       string
	IssuedAt      time.Time
	CustomerName  string
	CustomerEmail string
	Description   string
	Period        string
	Method        string
	Status        string
	TransactionID string
	Subtotal      float64
	Discount      float64
	GST           float64
	Total         float64
}

type Generator struct {
	appName  string
	currency string
}

func NewGenerator(appName, currency string) *Generator {
	return &Generator{appName: appName, currency: currency}
}

// Render writes the receipt as a single A4 page
func (g *Generator) Render(w io.Writer, r Receipt) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Receipt "+r.PaymentID, false)
	pdf.SetCreator(g.appName, false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(190, 10, g.appName)
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(190, 8, "Payment receipt")
	pdf.Ln(12)

	lines := [][2]string{
		{"Receipt No", r.PaymentID},
		{"Date", r.IssuedAt.Format("2006-01-02 15:04")},
		{"Customer", r.CustomerName},
		{"Email", r.CustomerEmail},
	}
	if r.OrderID != "" {
		lines = append(lines, [2]string{"Order", r.OrderID})
	}
	lines = append(lines,
		[2]string{"Description", r.Description},
	)
	if r.Period != "" {
		lines = append(lines, [2]string{"Period", r.Period})
	}
	lines = append(lines,
		[2]string{"Method", r.Method},
		[2]string{"Status", r.Status},
	)
	if r.TransactionID != "" {
		lines = append(lines, [2]string{"Transaction ID", r.TransactionID})
	}

	for _, line := range lines {
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(45, 8, line[0])
		pdf.SetFont("Arial", "", 11)
		pdf.Cell(145, 8, line[1])
		pdf.Ln(8)
	}

	pdf.Ln(6)
	amounts := [][2]string{
		{"Subtotal", g.money(r.Subtotal)},
		{"Discount", "- " + g.money(r.Discount)},
		{"GST", g.money(r.GST)},
	}
	for _, line := range amounts {
		pdf.Cell(140, 8, line[0])
		pdf.CellFormat(50, 8, line[1], "", 0, "R", false, 0, "")
		pdf.Ln(8)
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(140, 10, "Total", "T", 0, "", false, 0, "")
	pdf.CellFormat(50, 10, g.money(r.Total), "T", 0, "R", false, 0, "")
	pdf.Ln(16)

	pdf.SetFont("Arial", "I", 9)
	pdf.Cell(190, 6, "This is a computer generated receipt and needs no signature.")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render receipt %s: %w", r.PaymentID, err)
	}
	return nil
}

func (g *Generator) money(v float64) string {
	return fmt.Sprintf("%.2f %s", v, g.currency)
}
