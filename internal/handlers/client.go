package handlers

import (
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/senthilk/gst-billing/internal/config"
	"github.com/senthilk/gst-billing/internal/httpx"
	"github.com/senthilk/gst-billing/internal/models"
	"github.com/senthilk/gst-billing/internal/services"
	"github.com/senthilk/gst-billing/internal/validation"
	"github.com/senthilk/gst-billing/internal/view"
)

// ClientHandler owns the client directory surface. ID assignment lives in
// services.IdentityService so the numbering rules stay out of transport code.
type ClientHandler struct {
	DB       *gorm.DB
	Identity *services.IdentityService
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{DB: db, Identity: services.NewIdentityService(db)}
}

type clientRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	GSTIN       string `json:"gstin"`
	FSSAI       string `json:"fssai"`
	BankAccount string `json:"bank_account"`
}

func (req clientRequest) toModel() models.Client {
	return models.Client{
		ID:          strings.TrimSpace(req.ID),
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		Address:     strings.TrimSpace(req.Address),
		GSTIN:       strings.TrimSpace(req.GSTIN),
		FSSAI:       strings.TrimSpace(req.FSSAI),
		BankAccount: strings.TrimSpace(req.BankAccount),
	}
}

// Collection dispatches GET (list) and POST (create) on /clients.
func (h *ClientHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

func (h *ClientHandler) list(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	var clients []models.Client
	tx := h.DB.Order("date_added DESC, id")
	if q != "" {
		like := "%" + q + "%"
		tx = tx.Where("id LIKE ? OR name LIKE ? OR phone LIKE ? OR gstin LIKE ?", like, like, like, like)
	}
	if err := tx.Find(&clients).Error; err != nil {
		config.Logger().WithError(err).Error("list clients")
		httpx.JSONError(w, http.StatusInternalServerError, "store_read_failed", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, clients)
		return
	}
	data := map[string]any{"Title": "Clients", "Clients": clients, "Query": q}
	if err := view.Render(w, r, "clients.html", data); err != nil {
		config.Logger().WithError(err).Error("render clients")
	}
}

func (h *ClientHandler) create(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", req.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	c := req.toModel()
	c.DateAdded = time.Now()
	warning, err := h.Identity.CreateClient(&c)
	if err != nil {
		if services.IsDuplicateErr(err) {
			httpx.JSONError(w, http.StatusConflict, "duplicate_client_id", nil)
			return
		}
		failWrite(w, "client", c, err)
		return
	}
	resp := map[string]any{"client": c}
	if warning != "" {
		resp["warning"] = warning
	}
	httpx.JSON(w, http.StatusCreated, resp)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	id := r.URL.Query().Get("id")
	var existing models.Client
	if err := h.DB.First(&existing, "id = ?", id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "client_not_found", nil)
		return
	}
	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", req.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	c := req.toModel()
	c.ID = existing.ID
	c.DateAdded = existing.DateAdded
	if err := h.DB.Save(&c).Error; err != nil {
		failWrite(w, "client", c, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// Delete removes a client. Saved bills keep their client name snapshot so
// they still render after the directory entry is gone.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	id := r.URL.Query().Get("id")
	if err := h.DB.Delete(&models.Client{}, "id = ?", id).Error; err != nil {
		config.Logger().WithError(err).Error("delete client")
		httpx.JSONError(w, http.StatusInternalServerError, "store_write_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"deleted": id})
}
