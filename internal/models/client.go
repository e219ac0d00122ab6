package models

import "time"

// Client directory entry. IDs follow the "CL-NNN" scheme with a strictly
// increasing numeric suffix; see services.Identity for generation rules.
// Optional fields (email, GSTIN, FSSAI, bank account) stay empty when the
// operator leaves them blank and are omitted from invoice rendering.
type Client struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	Name        string    `gorm:"not null;index" json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	GSTIN       string    `gorm:"size:20" json:"gstin"`
	FSSAI       string    `gorm:"size:20" json:"fssai"`
	BankAccount string    `json:"bank_account"`
	DateAdded   time.Time `gorm:"not null" json:"date_added"`
	UpdatedAt   time.Time `json:"updated_at"`
}
