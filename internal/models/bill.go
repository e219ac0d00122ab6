package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bill is a saved tax invoice. Items and the client name are value
// snapshots frozen at save time; the stored totals are recomputed from the
// items and rates on every save and never edited independently.
//
// Exactly one tax family is active at a time: either the CGST+SGST pair
// (intrastate) or IGST (interstate). services.TaxConfig enforces this at
// the point of input so the stored rates can never disagree with it.
type Bill struct {
	ID         string     `gorm:"primaryKey;size:64" json:"id"`
	BillNumber string     `gorm:"not null;index" json:"bill_number"`
	Place      string     `json:"place"`
	IssueDate  time.Time  `gorm:"not null" json:"issue_date"`
	DueDate    time.Time  `json:"due_date"`
	ClientID   string     `gorm:"not null;index;size:64" json:"client_id"`
	ClientName string     `gorm:"not null" json:"client_name"`
	Items      []BillItem `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE" json:"items"`

	SubTotal   decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"sub_total"`
	CGSTRate   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"cgst_rate"`
	SGSTRate   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"sgst_rate"`
	IGSTRate   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"igst_rate"`
	CGSTAmount decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"cgst_amount"`
	SGSTAmount decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"sgst_amount"`
	IGSTAmount decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"igst_amount"`
	GrandTotal decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"grand_total"`

	Watermark bool      `gorm:"not null;default:true" json:"watermark"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BillItem is one invoice line. Name, unit price and HSN are copied from
// the product at save time; Amount is always quantity * unit price.
type BillItem struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	BillID    string          `gorm:"index;size:64" json:"-"`
	ProductID string          `gorm:"not null;size:64" json:"product_id"`
	Name      string          `gorm:"not null" json:"name"`
	HSNCode   string          `gorm:"size:16" json:"hsn_code"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"unit_price"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
}
