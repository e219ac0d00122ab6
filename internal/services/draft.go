package services

import (
	"github.com/senthilk/gst-billing/internal/models"

	"github.com/shopspring/decimal"
)

// Draft is an in-memory, unsaved bill being edited. Items copy product
// fields by value so the draft stays stable if the catalog changes while
// it is open.
type Draft struct {
	Items []models.BillItem
}

// AddProduct adds one unit of the product. Adding a product already on the
// draft increments that line's quantity instead of creating a duplicate.
func (d *Draft) AddProduct(p models.Product) {
	d.AddProductQty(p, 1)
}

// AddProductQty merges qty units of the product into the draft. Quantities
// below 1 are clamped to 1.
func (d *Draft) AddProductQty(p models.Product, qty int) {
	if qty < 1 {
		qty = 1
	}
	for i := range d.Items {
		if d.Items[i].ProductID == p.ID {
			d.setLine(i, d.Items[i].Quantity+qty)
			return
		}
	}
	d.Items = append(d.Items, models.BillItem{
		ProductID: p.ID,
		Name:      p.Name,
		HSNCode:   p.HSNCode,
		UnitPrice: p.UnitPrice,
		Quantity:  qty,
		Amount:    p.UnitPrice.Mul(decimal.NewFromInt(int64(qty))),
	})
}

// SetQuantity updates a line's quantity, clamping below 1 to 1. The line
// amount is recomputed in the same step so no inconsistent state is ever
// observable. Unknown product ids are ignored.
func (d *Draft) SetQuantity(productID string, qty int) {
	if qty < 1 {
		qty = 1
	}
	for i := range d.Items {
		if d.Items[i].ProductID == productID {
			d.setLine(i, qty)
			return
		}
	}
}

// Remove drops the line for the given product, if present.
func (d *Draft) Remove(productID string) {
	for i := range d.Items {
		if d.Items[i].ProductID == productID {
			d.Items = append(d.Items[:i], d.Items[i+1:]...)
			return
		}
	}
}

func (d *Draft) setLine(i, qty int) {
	d.Items[i].Quantity = qty
	d.Items[i].Amount = d.Items[i].UnitPrice.Mul(decimal.NewFromInt(int64(qty)))
}
