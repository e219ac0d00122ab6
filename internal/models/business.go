package models

import "time"

// BusinessProfile is the singleton row describing the issuing company and
// its bank details. Saves go through an upsert (update the existing row if
// any, else insert) so at most one row ever exists.
type BusinessProfile struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	BusinessName  string    `gorm:"not null" json:"business_name"`
	Address       string    `json:"address"`
	FSSAI         string    `gorm:"size:20" json:"fssai"`
	GSTIN         string    `gorm:"size:20" json:"gstin"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	BankName      string    `json:"bank_name"`
	AccountNumber string    `json:"account_number"`
	IFSCCode      string    `gorm:"size:16" json:"ifsc_code"`
	BranchName    string    `json:"branch_name"`
	PANNo         string    `gorm:"size:16" json:"pan_no"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
