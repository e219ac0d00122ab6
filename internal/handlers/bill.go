package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/senthilk/gst-billing/internal/config"
	"github.com/senthilk/gst-billing/internal/httpx"
	"github.com/senthilk/gst-billing/internal/models"
	"github.com/senthilk/gst-billing/internal/pdf"
	"github.com/senthilk/gst-billing/internal/services"
	"github.com/senthilk/gst-billing/internal/validation"
	"github.com/senthilk/gst-billing/internal/view"
)

const dateLayout = "2006-01-02"

// BillHandler is the invoice surface: list, editor pages, save, print view
// and PDF export. Saving snapshots client and product data into the bill so
// later catalog edits never alter it.
type BillHandler struct {
	DB       *gorm.DB
	Identity *services.IdentityService
	Invoices *services.InvoiceService
}

func NewBillHandler(db *gorm.DB) *BillHandler {
	return &BillHandler{
		DB:       db,
		Identity: services.NewIdentityService(db),
		Invoices: services.NewInvoiceService(),
	}
}

type billItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type billRequest struct {
	BillNumber string            `json:"bill_number"`
	NumberAuto bool              `json:"number_auto"`
	Place      string            `json:"place"`
	IssueDate  string            `json:"issue_date"`
	DueDate    string            `json:"due_date"`
	ClientID   string            `json:"client_id"`
	Watermark  *bool             `json:"watermark"`
	CGSTRate   string            `json:"cgst_rate"`
	SGSTRate   string            `json:"sgst_rate"`
	IGSTRate   string            `json:"igst_rate"`
	Items      []billItemRequest `json:"items"`
}

// Collection dispatches GET (list) and POST (create) on /bills.
func (h *BillHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

func (h *BillHandler) list(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	var bills []models.Bill
	tx := h.DB.Order("issue_date DESC, created_at DESC")
	if q != "" {
		like := "%" + q + "%"
		tx = tx.Where("bill_number LIKE ? OR client_name LIKE ?", like, like)
	}
	if err := tx.Find(&bills).Error; err != nil {
		config.Logger().WithError(err).Error("list bills")
		httpx.JSONError(w, http.StatusInternalServerError, "store_read_failed", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, bills)
		return
	}
	data := map[string]any{"Title": "Bills", "Bills": bills, "Query": q}
	if err := view.Render(w, r, "bills.html", data); err != nil {
		config.Logger().WithError(err).Error("render bills")
	}
}

// buildBill validates the request and assembles an unsaved bill with all
// derived amounts computed. Item lines are snapshots taken from the catalog
// at this moment; nothing references products by anything but id afterwards.
func (h *BillHandler) buildBill(req billRequest) (models.Bill, validation.Violations, error) {
	v := validation.Violations{}
	validation.Required("bill_number", req.BillNumber, v)
	validation.Required("client_id", req.ClientID, v)
	validation.Required("issue_date", req.IssueDate, v)

	var issue, due time.Time
	if req.IssueDate != "" {
		var err error
		if issue, err = time.Parse(dateLayout, req.IssueDate); err != nil {
			v["issue_date"] = "invalid_date"
		}
	}
	if req.DueDate != "" {
		var err error
		if due, err = time.Parse(dateLayout, req.DueDate); err != nil {
			v["due_date"] = "invalid_date"
		}
	}

	cgst := ratePtrOrZero(validation.Rate("cgst_rate", req.CGSTRate, v))
	sgst := ratePtrOrZero(validation.Rate("sgst_rate", req.SGSTRate, v))
	igst := ratePtrOrZero(validation.Rate("igst_rate", req.IGSTRate, v))

	if len(req.Items) == 0 {
		v["items"] = "required"
	}

	var client models.Client
	if req.ClientID != "" {
		if err := h.DB.First(&client, "id = ?", req.ClientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				v["client_id"] = "unknown_client"
			} else {
				return models.Bill{}, nil, err
			}
		}
	}

	draft := services.Draft{}
	for _, it := range req.Items {
		var p models.Product
		if err := h.DB.First(&p, "id = ?", it.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				v["items"] = "unknown_product"
				continue
			}
			return models.Bill{}, nil, err
		}
		draft.AddProductQty(p, it.Quantity)
	}

	if !v.Empty() {
		return models.Bill{}, v, nil
	}

	cfg := services.TaxConfigFromRates(cgst, sgst, igst)
	totals := h.Invoices.ComputeTotals(draft.Items, cfg)
	cgst, sgst, igst = cfg.Rates()

	watermark := true
	if req.Watermark != nil {
		watermark = *req.Watermark
	}
	return models.Bill{
		BillNumber: strings.TrimSpace(req.BillNumber),
		Place:      strings.TrimSpace(req.Place),
		IssueDate:  issue,
		DueDate:    due,
		ClientID:   client.ID,
		ClientName: client.Name,
		Items:      draft.Items,
		SubTotal:   totals.SubTotal,
		CGSTRate:   cgst,
		SGSTRate:   sgst,
		IGSTRate:   igst,
		CGSTAmount: totals.CGSTAmount,
		SGSTAmount: totals.SGSTAmount,
		IGSTAmount: totals.IGSTAmount,
		GrandTotal: totals.GrandTotal,
		Watermark:  watermark,
	}, nil, nil
}

func ratePtrOrZero(p *decimal.Decimal) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	return *p
}

func (h *BillHandler) create(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	bill, v, err := h.buildBill(req)
	if err != nil {
		config.Logger().WithError(err).Error("build bill")
		httpx.JSONError(w, http.StatusInternalServerError, "store_read_failed", nil)
		return
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	number, warning, err := h.Identity.ResolveBillNumber(bill.BillNumber, req.NumberAuto, "")
	if err != nil {
		config.Logger().WithError(err).Error("resolve bill number")
		httpx.JSONError(w, http.StatusInternalServerError, "store_read_failed", nil)
		return
	}
	bill.BillNumber = number
	bill.ID = uuid.NewString()
	for i := range bill.Items {
		bill.Items[i].BillID = bill.ID
	}
	if err := h.DB.Create(&bill).Error; err != nil {
		failWrite(w, "bill", bill, err)
		return
	}
	resp := map[string]any{"bill": bill}
	if warning != "" {
		resp["warning"] = warning
	}
	httpx.JSON(w, http.StatusCreated, resp)
}

// Update rebuilds the bill from scratch: old item rows are dropped and the
// new snapshot written in one transaction, totals recomputed on the way.
func (h *BillHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	id := r.URL.Query().Get("id")
	var existing models.Bill
	if err := h.DB.First(&existing, "id = ?", id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "bill_not_found", nil)
		return
	}
	var req billRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	bill, v, err := h.buildBill(req)
	if err != nil {
		config.Logger().WithError(err).Error("build bill")
		httpx.JSONError(w, http.StatusInternalServerError, "store_read_failed", nil)
		return
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	number, warning, err := h.Identity.ResolveBillNumber(bill.BillNumber, req.NumberAuto, existing.ID)
	if err != nil {
		config.Logger().WithError(err).Error("resolve bill number")
		httpx.JSONError(w, http.StatusInternalServerError, "store_read_failed", nil)
		return
	}
	bill.BillNumber = number
	bill.ID = existing.ID
	bill.CreatedAt = existing.CreatedAt
	for i := range bill.Items {
		bill.Items[i].BillID = bill.ID
	}
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bill_id = ?", bill.ID).Delete(&models.BillItem{}).Error; err != nil {
			return err
		}
		return tx.Save(&bill).Error
	})
	if err != nil {
		failWrite(w, "bill", bill, err)
		return
	}
	resp := map[string]any{"bill": bill}
	if warning != "" {
		resp["warning"] = warning
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *BillHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	id := r.URL.Query().Get("id")
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bill_id = ?", id).Delete(&models.BillItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Bill{}, "id = ?", id).Error
	})
	if err != nil {
		config.Logger().WithError(err).Error("delete bill")
		httpx.JSONError(w, http.StatusInternalServerError, "store_write_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// loadDocument fetches everything one rendered invoice needs. A deleted
// client degrades to the name snapshot stored on the bill.
func (h *BillHandler) loadDocument(id string) (models.Bill, pdf.InvoiceData, error) {
	var bill models.Bill
	if err := h.DB.Preload("Items").First(&bill, "id = ?", id).Error; err != nil {
		return bill, pdf.InvoiceData{}, err
	}
	var client models.Client
	if err := h.DB.First(&client, "id = ?", bill.ClientID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return bill, pdf.InvoiceData{}, err
		}
		client = models.Client{Name: bill.ClientName}
	}
	profile, err := LoadProfile(h.DB)
	if err != nil {
		return bill, pdf.InvoiceData{}, err
	}
	return bill, pdf.FromBill(bill, client, profile), nil
}

// PDF streams the rendered invoice. ?disposition=inline opens it in the
// browser for printing; the default is a download with a stable filename.
func (h *BillHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	bill, doc, err := h.loadDocument(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "bill_not_found", nil)
			return
		}
		config.Logger().WithError(err).Error("load bill for pdf")
		httpx.JSONError(w, http.StatusInternalServerError, "store_read_failed", nil)
		return
	}
	payload, err := pdf.Render(doc)
	if err != nil {
		config.Logger().WithError(err).WithField("bill", bill.ID).Error("render pdf")
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_generation_failed", nil)
		return
	}
	disposition := "attachment"
	if r.URL.Query().Get("disposition") == "inline" {
		disposition = "inline"
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, pdf.Filename(bill.BillNumber)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload); err != nil {
		config.Logger().WithError(err).Warn("pdf write aborted")
	}
}

// View renders the printable HTML invoice. ?print=1 triggers the browser
// print dialog once the page has settled.
func (h *BillHandler) View(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	bill, doc, err := h.loadDocument(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "bill_not_found", nil)
			return
		}
		config.Logger().WithError(err).Error("load bill for view")
		httpx.JSONError(w, http.StatusInternalServerError, "store_read_failed", nil)
		return
	}
	data := map[string]any{
		"Doc":       doc,
		"BillID":    bill.ID,
		"AutoPrint": r.URL.Query().Get("print") == "1",
		// Only the editor's preview link offers a way back; views opened
		// from the bill list are read-only.
		"Editable": r.URL.Query().Get("mode") == "preview",
	}
	if err := view.Render(w, r, "bill_print.html", data); err != nil {
		config.Logger().WithError(err).Error("render bill view")
	}
}

// editorItem is the JSON shape the editor script works with.
type editorItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

// NewForm serves the blank editor with a suggested invoice number.
func (h *BillHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	clients, products, err := h.editorLists()
	if err != nil {
		config.Logger().WithError(err).Error("load editor lists")
		httpx.JSONError(w, http.StatusInternalServerError, "store_read_failed", nil)
		return
	}
	data := map[string]any{
		"Title":      "Generate Bill",
		"Mode":       "new",
		"BillNumber": services.SuggestBillNumber(time.Now()),
		"Place":      "",
		"IssueDate":  time.Now().Format(dateLayout),
		"DueDate":    "",
		"ClientID":   "",
		"Watermark":  true,
		"CGSTRate":   "",
		"SGSTRate":   "",
		"IGSTRate":   "",
		"Clients":    clients,
		"Products":   products,
		"ItemsJSON":  template.JS("[]"),
	}
	if err := view.Render(w, r, "bill_form.html", data); err != nil {
		config.Logger().WithError(err).Error("render bill form")
	}
}

// EditForm serves the editor pre-filled from a saved bill.
func (h *BillHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	var bill models.Bill
	if err := h.DB.Preload("Items").First(&bill, "id = ?", id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "bill_not_found", nil)
		return
	}
	clients, products, err := h.editorLists()
	if err != nil {
		config.Logger().WithError(err).Error("load editor lists")
		httpx.JSONError(w, http.StatusInternalServerError, "store_read_failed", nil)
		return
	}
	items := make([]editorItem, 0, len(bill.Items))
	for _, it := range bill.Items {
		items = append(items, editorItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice.InexactFloat64(),
			Quantity:  it.Quantity,
		})
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		config.Logger().WithError(err).Error("marshal editor items")
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	dueDate := ""
	if !bill.DueDate.IsZero() {
		dueDate = bill.DueDate.Format(dateLayout)
	}
	data := map[string]any{
		"Title":      "Update Invoice",
		"Mode":       "edit",
		"BillID":     bill.ID,
		"BillNumber": bill.BillNumber,
		"Place":      bill.Place,
		"IssueDate":  bill.IssueDate.Format(dateLayout),
		"DueDate":    dueDate,
		"ClientID":   bill.ClientID,
		"Watermark":  bill.Watermark,
		"CGSTRate":   rateField(bill.CGSTRate),
		"SGSTRate":   rateField(bill.SGSTRate),
		"IGSTRate":   rateField(bill.IGSTRate),
		"Clients":    clients,
		"Products":   products,
		"ItemsJSON":  template.JS(itemsJSON),
	}
	if err := view.Render(w, r, "bill_form.html", data); err != nil {
		config.Logger().WithError(err).Error("render bill form")
	}
}

func (h *BillHandler) editorLists() ([]models.Client, []models.Product, error) {
	var clients []models.Client
	if err := h.DB.Order("name").Find(&clients).Error; err != nil {
		return nil, nil, err
	}
	var products []models.Product
	if err := h.DB.Order("name").Find(&products).Error; err != nil {
		return nil, nil, err
	}
	return clients, products, nil
}

// rateField renders a stored rate for the editor: zero shows as empty so an
// untaxed bill comes back with blank tax inputs.
func rateField(rate decimal.Decimal) string {
	if !rate.IsPositive() {
		return ""
	}
	return rate.String()
}
