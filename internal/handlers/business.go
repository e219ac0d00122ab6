package handlers

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/senthilk/gst-billing/internal/config"
	"github.com/senthilk/gst-billing/internal/httpx"
	"github.com/senthilk/gst-billing/internal/models"
	"github.com/senthilk/gst-billing/internal/validation"
	"github.com/senthilk/gst-billing/internal/view"
)

// BusinessHandler manages the singleton issuer profile.
type BusinessHandler struct {
	DB *gorm.DB
}

func NewBusinessHandler(db *gorm.DB) *BusinessHandler { return &BusinessHandler{DB: db} }

type businessRequest struct {
	BusinessName  string `json:"business_name"`
	Address       string `json:"address"`
	GSTIN         string `json:"gstin"`
	FSSAI         string `json:"fssai"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	IFSCCode      string `json:"ifsc_code"`
	BranchName    string `json:"branch_name"`
	PANNo         string `json:"pan_no"`
}

// Profile dispatches GET (show) and POST (upsert) on /business.
func (h *BusinessHandler) Profile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.show(w, r)
	case http.MethodPost:
		h.save(w, r)
	default:
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

// LoadProfile fetches the profile row, or a zero profile when none has been
// saved yet. Used by the invoice renderers as well.
func LoadProfile(db *gorm.DB) (models.BusinessProfile, error) {
	var p models.BusinessProfile
	err := db.Order("id").First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.BusinessProfile{}, nil
	}
	return p, err
}

func (h *BusinessHandler) show(w http.ResponseWriter, r *http.Request) {
	p, err := LoadProfile(h.DB)
	if err != nil {
		config.Logger().WithError(err).Error("load business profile")
		httpx.JSONError(w, http.StatusInternalServerError, "store_read_failed", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, p)
		return
	}
	data := map[string]any{"Title": "Bank & Business", "Profile": p}
	if err := view.Render(w, r, "business.html", data); err != nil {
		config.Logger().WithError(err).Error("render business")
	}
}

// save upserts the single profile row: the existing row is updated in
// place when present, otherwise one is inserted. At most one row exists.
func (h *BusinessHandler) save(w http.ResponseWriter, r *http.Request) {
	var req businessRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("business_name", req.BusinessName, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	existing, err := LoadProfile(h.DB)
	if err != nil {
		config.Logger().WithError(err).Error("load business profile")
		httpx.JSONError(w, http.StatusInternalServerError, "store_read_failed", nil)
		return
	}
	p := models.BusinessProfile{
		ID:            existing.ID,
		CreatedAt:     existing.CreatedAt,
		BusinessName:  strings.TrimSpace(req.BusinessName),
		Address:       strings.TrimSpace(req.Address),
		GSTIN:         strings.TrimSpace(req.GSTIN),
		FSSAI:         strings.TrimSpace(req.FSSAI),
		Phone:         strings.TrimSpace(req.Phone),
		Email:         strings.TrimSpace(req.Email),
		BankName:      strings.TrimSpace(req.BankName),
		AccountNumber: strings.TrimSpace(req.AccountNumber),
		IFSCCode:      strings.TrimSpace(req.IFSCCode),
		BranchName:    strings.TrimSpace(req.BranchName),
		PANNo:         strings.TrimSpace(req.PANNo),
	}
	if err := h.DB.Save(&p).Error; err != nil {
		failWrite(w, "business_profile", p, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}
