package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Bills copy name/price/HSN by value at save
// time, so later edits here never alter historical invoices.
type Product struct {
	ID        string          `gorm:"primaryKey;size:64" json:"id"`
	Name      string          `gorm:"not null;index" json:"name"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"unit_price"`
	HSNCode   string          `gorm:"size:16" json:"hsn_code"`
	DateAdded time.Time       `gorm:"not null" json:"date_added"`
	UpdatedAt time.Time       `json:"updated_at"`
}
