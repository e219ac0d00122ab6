package services

import (
	"github.com/senthilk/gst-billing/internal/models"

	"github.com/shopspring/decimal"
)

// TaxMode distinguishes the two GST families. Indian GST applies either
// intrastate tax (a CGST+SGST split) or interstate tax (IGST), never both.
type TaxMode int

const (
	ModeUntaxed TaxMode = iota
	ModeIntrastate
	ModeInterstate
)

// TaxConfig holds the configured percentage rates as a tagged variant.
// The setters enforce mutual exclusivity at the point of input: setting an
// IGST rate clears both CGST and SGST, and setting either CGST or SGST
// clears IGST. Rates are percentages (2.5 means 2.5%).
type TaxConfig struct {
	mode TaxMode
	cgst decimal.Decimal
	sgst decimal.Decimal
	igst decimal.Decimal
}

// TaxConfigFromRates rebuilds the variant from stored bill rates.
// A non-zero IGST wins; otherwise any non-zero CGST/SGST means intrastate.
func TaxConfigFromRates(cgst, sgst, igst decimal.Decimal) TaxConfig {
	switch {
	case igst.IsPositive():
		return TaxConfig{mode: ModeInterstate, igst: igst}
	case cgst.IsPositive() || sgst.IsPositive():
		return TaxConfig{mode: ModeIntrastate, cgst: cgst, sgst: sgst}
	default:
		return TaxConfig{}
	}
}

func (c *TaxConfig) Mode() TaxMode { return c.mode }

func (c *TaxConfig) Rates() (cgst, sgst, igst decimal.Decimal) {
	return c.cgst, c.sgst, c.igst
}

// SetCGST switches to intrastate mode, clearing any IGST rate.
func (c *TaxConfig) SetCGST(rate decimal.Decimal) {
	c.igst = decimal.Zero
	c.cgst = rate
	c.mode = ModeIntrastate
}

// SetSGST switches to intrastate mode, clearing any IGST rate.
func (c *TaxConfig) SetSGST(rate decimal.Decimal) {
	c.igst = decimal.Zero
	c.sgst = rate
	c.mode = ModeIntrastate
}

// SetIGST switches to interstate mode, clearing both CGST and SGST rates.
func (c *TaxConfig) SetIGST(rate decimal.Decimal) {
	c.cgst = decimal.Zero
	c.sgst = decimal.Zero
	c.igst = rate
	c.mode = ModeInterstate
}

// Clear returns the config to the untaxed state.
func (c *TaxConfig) Clear() { *c = TaxConfig{} }

// Totals is the financial breakdown of a bill. Amounts carry full decimal
// precision; rounding happens only at presentation.
type Totals struct {
	SubTotal   decimal.Decimal
	CGSTAmount decimal.Decimal
	SGSTAmount decimal.Decimal
	IGSTAmount decimal.Decimal
	GrandTotal decimal.Decimal
}

// RoundedGrandTotal rounds half-up to the nearest whole rupee, for the
// headline total and the amount-in-words line.
func (t Totals) RoundedGrandTotal() int64 {
	return t.GrandTotal.Round(0).IntPart()
}

var oneHundred = decimal.NewFromInt(100)

// InvoiceService encapsulates the invoice computation rules.
type InvoiceService struct{}

func NewInvoiceService() *InvoiceService { return &InvoiceService{} }

// ComputeTotals derives the financial summary from line items and the tax
// configuration. Pure and order-independent: subtotal is the sum of
// quantity * unit price with no per-line rounding, each tax amount is
// subtotal * rate / 100, and the grand total is their exact sum.
func (s *InvoiceService) ComputeTotals(items []models.BillItem, cfg TaxConfig) Totals {
	sub := decimal.Zero
	for _, it := range items {
		sub = sub.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	t := Totals{
		SubTotal:   sub,
		CGSTAmount: decimal.Zero,
		SGSTAmount: decimal.Zero,
		IGSTAmount: decimal.Zero,
	}
	switch cfg.mode {
	case ModeIntrastate:
		t.CGSTAmount = sub.Mul(cfg.cgst).Div(oneHundred)
		t.SGSTAmount = sub.Mul(cfg.sgst).Div(oneHundred)
	case ModeInterstate:
		t.IGSTAmount = sub.Mul(cfg.igst).Div(oneHundred)
	}
	t.GrandTotal = sub.Add(t.CGSTAmount).Add(t.SGSTAmount).Add(t.IGSTAmount)
	return t
}
