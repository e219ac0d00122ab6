package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/senthilk/gst-billing/internal/config"
	"github.com/senthilk/gst-billing/internal/httpx"
	"github.com/senthilk/gst-billing/internal/models"
	"github.com/senthilk/gst-billing/internal/validation"
	"github.com/senthilk/gst-billing/internal/view"
)

// ProductHandler owns the catalog CRUD surface.
type ProductHandler struct {
	DB *gorm.DB
}

func NewProductHandler(db *gorm.DB) *ProductHandler { return &ProductHandler{DB: db} }

type productRequest struct {
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	HSNCode   string `json:"hsn_code"`
}

// Collection dispatches GET (list) and POST (create) on /products.
func (h *ProductHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

const productPageSize = 50

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	page := 1
	if n, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && n > 1 {
		page = n
	}
	var products []models.Product
	tx := h.DB.Order("date_added DESC, id").
		Limit(productPageSize).Offset((page - 1) * productPageSize)
	if q != "" {
		like := "%" + q + "%"
		tx = tx.Where("name LIKE ? OR hsn_code LIKE ?", like, like)
	}
	if err := tx.Find(&products).Error; err != nil {
		config.Logger().WithError(err).Error("list products")
		httpx.JSONError(w, http.StatusInternalServerError, "store_read_failed", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, products)
		return
	}
	data := map[string]any{"Title": "Products", "Products": products, "Query": q}
	if err := view.Render(w, r, "products.html", data); err != nil {
		config.Logger().WithError(err).Error("render products")
	}
}

func (h *ProductHandler) create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", req.Name, v)
	validation.Required("unit_price", req.UnitPrice, v)
	price := validation.Rate("unit_price", req.UnitPrice, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	p := models.Product{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		UnitPrice: *price,
		HSNCode:   strings.TrimSpace(req.HSNCode),
		DateAdded: time.Now(),
	}
	if err := h.DB.Create(&p).Error; err != nil {
		failWrite(w, "product", p, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

// Update replaces the editable fields of one product. Historical bills are
// untouched: they carry their own copies of name, price and HSN.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	id := r.URL.Query().Get("id")
	var p models.Product
	if err := h.DB.First(&p, "id = ?", id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "product_not_found", nil)
		return
	}
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", req.Name, v)
	validation.Required("unit_price", req.UnitPrice, v)
	price := validation.Rate("unit_price", req.UnitPrice, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	p.Name = strings.TrimSpace(req.Name)
	p.UnitPrice = *price
	p.HSNCode = strings.TrimSpace(req.HSNCode)
	if err := h.DB.Save(&p).Error; err != nil {
		failWrite(w, "product", p, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	id := r.URL.Query().Get("id")
	if err := h.DB.Delete(&models.Product{}, "id = ?", id).Error; err != nil {
		config.Logger().WithError(err).Error("delete product")
		httpx.JSONError(w, http.StatusInternalServerError, "store_write_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"deleted": id})
}
