// Package pdf renders saved bills into fixed-layout A4 tax invoice
// documents. The document is built once from an InvoiceData value and the
// resulting bytes back both export targets (download and print), so the
// two paths can never disagree on formatting.
package pdf

import (
	"fmt"
	"regexp"

	"github.com/senthilk/gst-billing/internal/models"
	"github.com/senthilk/gst-billing/internal/services"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

const dateLayout = "02/01/2006"

// notProvided marks missing bank fields explicitly instead of substituting
// placeholder business data.
const notProvided = "Not provided"

var legalNotes = []string{
	"* This is a computer-generated invoice.",
	"* Goods once sold will not be taken back.",
	"* All disputes are subject to the jurisdiction of the place of supply.",
}

type BusinessBlock struct {
	Name          string
	Address       string
	GSTIN         string
	FSSAI         string
	Phone         string
	Email         string
	BankName      string
	AccountNumber string
	IFSCCode      string
	BranchName    string
	PAN           string
}

type ClientBlock struct {
	Name    string
	Address string
	GSTIN   string
	Email   string
	Phone   string
}

type Line struct {
	SerialNo    int
	Description string
	HSNCode     string
	Quantity    int
	Rate        string
	Amount      string
}

type TaxLine struct {
	Label  string
	Amount string
}

// InvoiceData is the fully resolved, presentation-ready document model.
// All numbers are preformatted strings so building it is the single place
// where rounding policy is applied: two decimals in the table and tax
// breakdown, whole rupees for the headline total and the words line.
type InvoiceData struct {
	Number    string
	Place     string
	IssueDate string
	DueDate   string

	Business BusinessBlock
	Client   ClientBlock
	Lines    []Line

	SubTotal      string
	TaxLines      []TaxLine
	GrandTotal    string
	AmountInWords string

	Watermark bool
}

// FromBill binds a persisted bill, its client, and the business profile
// into the document model. Deterministic: the same inputs always produce
// the same InvoiceData.
func FromBill(bill models.Bill, client models.Client, profile models.BusinessProfile) InvoiceData {
	data := InvoiceData{
		Number:    bill.BillNumber,
		Place:     bill.Place,
		IssueDate: bill.IssueDate.Format(dateLayout),
		Watermark: bill.Watermark,
		Business: BusinessBlock{
			Name:          profile.BusinessName,
			Address:       profile.Address,
			GSTIN:         profile.GSTIN,
			FSSAI:         profile.FSSAI,
			Phone:         profile.Phone,
			Email:         profile.Email,
			BankName:      fallback(profile.BankName),
			AccountNumber: fallback(profile.AccountNumber),
			IFSCCode:      fallback(profile.IFSCCode),
			BranchName:    fallback(profile.BranchName),
			PAN:           profile.PANNo,
		},
		Client: ClientBlock{
			Name:    bill.ClientName,
			Address: client.Address,
			GSTIN:   client.GSTIN,
			Email:   client.Email,
			Phone:   client.Phone,
		},
	}
	if !bill.DueDate.IsZero() {
		data.DueDate = bill.DueDate.Format(dateLayout)
	}
	for i, it := range bill.Items {
		hsn := it.HSNCode
		if hsn == "" {
			hsn = "-"
		}
		data.Lines = append(data.Lines, Line{
			SerialNo:    i + 1,
			Description: it.Name,
			HSNCode:     hsn,
			Quantity:    it.Quantity,
			Rate:        it.UnitPrice.StringFixed(2),
			Amount:      it.Amount.StringFixed(2),
		})
	}
	data.SubTotal = bill.SubTotal.StringFixed(2)
	// Zero-rate tax lines are never rendered.
	if bill.CGSTAmount.IsPositive() {
		data.TaxLines = append(data.TaxLines, TaxLine{
			Label:  fmt.Sprintf("CGST (%s%%)", bill.CGSTRate.String()),
			Amount: bill.CGSTAmount.StringFixed(2),
		})
	}
	if bill.SGSTAmount.IsPositive() {
		data.TaxLines = append(data.TaxLines, TaxLine{
			Label:  fmt.Sprintf("SGST (%s%%)", bill.SGSTRate.String()),
			Amount: bill.SGSTAmount.StringFixed(2),
		})
	}
	if bill.IGSTAmount.IsPositive() {
		data.TaxLines = append(data.TaxLines, TaxLine{
			Label:  fmt.Sprintf("IGST (%s%%)", bill.IGSTRate.String()),
			Amount: bill.IGSTAmount.StringFixed(2),
		})
	}
	rounded := bill.GrandTotal.Round(0)
	data.GrandTotal = rounded.StringFixed(0)
	data.AmountInWords = services.AmountInWords(rounded.IntPart())
	return data
}

func fallback(v string) string {
	if v == "" {
		return notProvided
	}
	return v
}

// Render produces the final PDF bytes for data.
func Render(data InvoiceData) ([]byte, error) {
	doc, err := build(data)
	if err != nil {
		return nil, fmt.Errorf("generate invoice pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func build(data InvoiceData) (core.Document, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithRightMargin(15).
		WithTopMargin(15).
		Build()
	m := maroto.New(cfg)

	// Watermark: the business name in a faint strip across the top, same
	// toggle as the HTML print view.
	if data.Watermark {
		m.AddRow(5, text.NewCol(12, data.Business.Name, props.Text{
			Size:  9,
			Style: fontstyle.Italic,
			Align: align.Center,
			Color: &props.Color{Red: 210, Green: 210, Blue: 210},
		}))
	}

	// Header: document title and invoice metadata.
	m.AddRow(10,
		text.NewCol(7, "TAX INVOICE", props.Text{Size: 16, Style: fontstyle.Bold}),
		text.NewCol(5, data.Number, props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Right}),
	)
	meta := "Date: " + data.IssueDate
	if data.DueDate != "" {
		meta += "   Due: " + data.DueDate
	}
	if data.Place != "" {
		meta += "   Place of Supply: " + data.Place
	}
	m.AddRow(5, text.NewCol(12, meta, props.Text{Size: 8, Align: align.Right}))
	m.AddRows(line.NewRow(3))

	// Business and client blocks side by side.
	m.AddRow(5,
		text.NewCol(6, "BILLED BY", props.Text{Size: 8, Style: fontstyle.Bold}),
		text.NewCol(6, "BILLED TO", props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(6,
		text.NewCol(6, data.Business.Name, props.Text{Size: 11, Style: fontstyle.Bold}),
		text.NewCol(6, data.Client.Name, props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right}),
	)
	left := blockLines(
		data.Business.Address,
		labelled("GSTIN: ", data.Business.GSTIN),
		labelled("FSSAI: ", data.Business.FSSAI),
		labelled("Phone: ", data.Business.Phone),
		labelled("Email: ", data.Business.Email),
	)
	right := blockLines(
		data.Client.Address,
		labelled("GSTIN: ", data.Client.GSTIN),
		labelled("Phone: ", data.Client.Phone),
		labelled("Email: ", data.Client.Email),
	)
	for i := 0; i < len(left) || i < len(right); i++ {
		var l, r string
		if i < len(left) {
			l = left[i]
		}
		if i < len(right) {
			r = right[i]
		}
		m.AddRow(4,
			text.NewCol(6, l, props.Text{Size: 8}),
			text.NewCol(6, r, props.Text{Size: 8, Align: align.Right}),
		)
	}
	m.AddRows(line.NewRow(4))

	// Line-item table.
	m.AddRow(6,
		text.NewCol(1, "S.No", props.Text{Size: 8, Style: fontstyle.Bold}),
		text.NewCol(4, "Description", props.Text{Size: 8, Style: fontstyle.Bold}),
		text.NewCol(2, "HSN/SAC", props.Text{Size: 8, Style: fontstyle.Bold}),
		text.NewCol(1, "Qty", props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Center}),
		text.NewCol(2, "Rate", props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRows(line.NewRow(1))
	for _, l := range data.Lines {
		m.AddRow(5,
			text.NewCol(1, fmt.Sprintf("%d", l.SerialNo), props.Text{Size: 8}),
			text.NewCol(4, l.Description, props.Text{Size: 8}),
			text.NewCol(2, l.HSNCode, props.Text{Size: 8}),
			text.NewCol(1, fmt.Sprintf("%d", l.Quantity), props.Text{Size: 8, Align: align.Center}),
			text.NewCol(2, l.Rate, props.Text{Size: 8, Align: align.Right}),
			text.NewCol(2, l.Amount, props.Text{Size: 8, Align: align.Right}),
		)
	}
	m.AddRows(line.NewRow(2))

	// Totals and tax breakdown; only non-zero taxes appear.
	m.AddRow(5,
		text.NewCol(8, "", props.Text{}),
		text.NewCol(2, "Subtotal", props.Text{Size: 9, Align: align.Right}),
		text.NewCol(2, data.SubTotal, props.Text{Size: 9, Align: align.Right}),
	)
	for _, tl := range data.TaxLines {
		m.AddRow(5,
			text.NewCol(8, "", props.Text{}),
			text.NewCol(2, tl.Label, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, tl.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(7,
		text.NewCol(7, "", props.Text{}),
		text.NewCol(3, "GRAND TOTAL", props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Rs. "+data.GrandTotal, props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(6, text.NewCol(12, "Amount in Words: "+data.AmountInWords, props.Text{Size: 9, Style: fontstyle.Italic}))
	m.AddRows(line.NewRow(4))

	// Bank details from the business profile.
	m.AddRow(5, text.NewCol(12, "BANK DETAILS", props.Text{Size: 8, Style: fontstyle.Bold}))
	m.AddRow(4, text.NewCol(12, "Bank: "+data.Business.BankName+"   Branch: "+data.Business.BranchName, props.Text{Size: 8}))
	m.AddRow(4, text.NewCol(12, "A/C: "+data.Business.AccountNumber+"   IFSC: "+data.Business.IFSCCode, props.Text{Size: 8}))
	if data.Business.PAN != "" {
		m.AddRow(4, text.NewCol(12, "PAN: "+data.Business.PAN, props.Text{Size: 8}))
	}
	m.AddRows(line.NewRow(4))

	// Legal notes and signature block.
	for _, note := range legalNotes {
		m.AddRow(4, text.NewCol(8, note, props.Text{Size: 7, Style: fontstyle.Italic}))
	}
	m.AddRow(10, text.NewCol(12, "", props.Text{}))
	m.AddRow(5, text.NewCol(12, "For "+data.Business.Name, props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}))
	m.AddRow(10, text.NewCol(12, "Authorized Signatory", props.Text{Size: 8, Align: align.Right}))

	return m.Generate()
}

// blockLines drops empty entries so absent optional fields are omitted
// from the document rather than rendered as blanks or placeholders.
func blockLines(candidates ...string) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

func labelled(label, v string) string {
	if v == "" {
		return ""
	}
	return label + v
}

var filenameSanitizer = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Filename derives the deterministic download name from the invoice number.
func Filename(billNumber string) string {
	safe := filenameSanitizer.ReplaceAllString(billNumber, "-")
	return "Invoice_" + safe + ".pdf"
}
