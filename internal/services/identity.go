package services

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/senthilk/gst-billing/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const clientIDPrefix = "CL-"

// IdentityService assigns client ids and suggests invoice numbers.
//
// Client ids follow the strict "CL-NNN" contract: numeric suffixes are
// strictly increasing, generation is max+1 (never count+1, never reuse of
// gaps), and insert races are recovered by one recompute-and-retry before
// falling back to a guaranteed-unique uuid-derived id. Invoice numbers are
// the opposite: operator-editable free text with only soft collision
// handling.
type IdentityService struct {
	db *gorm.DB
}

func NewIdentityService(db *gorm.DB) *IdentityService { return &IdentityService{db: db} }

// NextClientID computes max numeric suffix + 1 over existing "CL-" ids,
// ignoring malformed suffixes, zero-padded to at least 3 digits. Padding
// expands past CL-999 rather than wrapping.
func (s *IdentityService) NextClientID() (string, error) {
	var ids []string
	if err := s.db.Model(&models.Client{}).Where("id LIKE ?", clientIDPrefix+"%").Pluck("id", &ids).Error; err != nil {
		return "", fmt.Errorf("list client ids: %w", err)
	}
	maxSuffix := 0
	for _, id := range ids {
		n, err := strconv.Atoi(strings.TrimPrefix(id, clientIDPrefix))
		if err == nil && n > maxSuffix {
			maxSuffix = n
		}
	}
	return fmt.Sprintf("%s%03d", clientIDPrefix, maxSuffix+1), nil
}

// CreateClient inserts the client, generating its id when empty. A
// uniqueness violation (a concurrent create won the race) triggers one
// recompute-and-retry; a second violation falls back to a uuid-derived id
// and returns a warning instead of failing the operation.
func (s *IdentityService) CreateClient(c *models.Client) (warning string, err error) {
	generated := c.ID == ""
	if generated {
		if c.ID, err = s.NextClientID(); err != nil {
			return "", err
		}
	}
	if err = s.db.Create(c).Error; err == nil || !IsDuplicateErr(err) || !generated {
		return "", err
	}
	// Lost the race: recompute once against the now-current table.
	if c.ID, err = s.NextClientID(); err != nil {
		return "", err
	}
	if err = s.db.Create(c).Error; err == nil {
		return "", nil
	}
	if !IsDuplicateErr(err) {
		return "", err
	}
	c.ID = fallbackClientID()
	if err = s.db.Create(c).Error; err != nil {
		return "", err
	}
	return "client_id_fallback", nil
}

// fallbackClientID derives a unique id from the clock plus a uuid fragment.
func fallbackClientID() string {
	return fmt.Sprintf("%s%d-%s", clientIDPrefix, time.Now().Unix(), uuid.NewString()[:8])
}

// SuggestBillNumber produces the default operator-editable invoice number.
func SuggestBillNumber(now time.Time) string {
	return fmt.Sprintf("INV-%d-%04d", now.Year(), 1000+rand.Intn(9000))
}

// ResolveBillNumber applies the soft collision policy on save. Numbers the
// operator typed are kept even when duplicated, with a warning; numbers
// still carrying the untouched auto-suggestion are regenerated until free.
// excludeBillID skips the bill being re-saved in edit mode.
func (s *IdentityService) ResolveBillNumber(number string, autoGenerated bool, excludeBillID string) (resolved, warning string, err error) {
	taken, err := s.billNumberTaken(number, excludeBillID)
	if err != nil || !taken {
		return number, "", err
	}
	if !autoGenerated {
		return number, "duplicate_bill_number", nil
	}
	for i := 0; i < 10; i++ {
		candidate := SuggestBillNumber(time.Now())
		taken, err = s.billNumberTaken(candidate, excludeBillID)
		if err != nil {
			return "", "", err
		}
		if !taken {
			return candidate, "bill_number_regenerated", nil
		}
	}
	// Numbering never blocks a save; worst case keep the collision visible.
	return number, "duplicate_bill_number", nil
}

func (s *IdentityService) billNumberTaken(number, excludeBillID string) (bool, error) {
	var count int64
	q := s.db.Model(&models.Bill{}).Where("bill_number = ?", number)
	if excludeBillID != "" {
		q = q.Where("id <> ?", excludeBillID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check bill number: %w", err)
	}
	return count > 0, nil
}

// IsDuplicateErr reports whether err is a uniqueness violation, covering
// both gorm's translated error and the raw sqlite/postgres messages.
func IsDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key")
}
