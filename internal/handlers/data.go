package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/senthilk/gst-billing/internal/config"
	"github.com/senthilk/gst-billing/internal/httpx"
	"github.com/senthilk/gst-billing/internal/models"
	"github.com/senthilk/gst-billing/internal/services"
	"github.com/senthilk/gst-billing/internal/validation"
	"github.com/senthilk/gst-billing/internal/view"
)

const exportDateLayout = "2006-01-02"

var productColumns = []string{"id", "name", "unit_price", "hsn_code", "date_added"}
var clientColumns = []string{"id", "name", "email", "phone", "address", "gstin", "fssai", "bank_account", "date_added"}

// DataHandler is the backup surface: CSV/XLSX export and CSV import for
// products and clients. Import upserts by id, so a round trip through
// export and import is a no-op.
type DataHandler struct {
	DB       *gorm.DB
	Identity *services.IdentityService
}

func NewDataHandler(db *gorm.DB) *DataHandler {
	return &DataHandler{DB: db, Identity: services.NewIdentityService(db)}
}

// Page renders the data-management screen with any outcome message carried
// over from a redirect.
func (h *DataHandler) Page(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Title":   "Data Management",
		"Message": r.URL.Query().Get("message"),
		"Error":   r.URL.Query().Get("error"),
	}
	if err := view.Render(w, r, "data.html", data); err != nil {
		config.Logger().WithError(err).Error("render data page")
	}
}

// Export streams /data/export?type=products|clients&format=csv|xlsx.
func (h *DataHandler) Export(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("type")
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	var header []string
	var rows [][]string
	var err error
	switch kind {
	case "products":
		header = productColumns
		rows, err = h.productRows()
	case "clients":
		header = clientColumns
		rows, err = h.clientRows()
	default:
		httpx.JSONError(w, http.StatusBadRequest, "unknown_export_type", nil)
		return
	}
	if err != nil {
		config.Logger().WithError(err).Error("export read")
		httpx.JSONError(w, http.StatusInternalServerError, "store_read_failed", nil)
		return
	}

	stamp := time.Now().Format("2006-01-02")
	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", kind+"_export_"+stamp+".csv"))
		cw := csv.NewWriter(w)
		if err := cw.Write(header); err != nil {
			config.Logger().WithError(err).Warn("csv export aborted")
			return
		}
		if err := cw.WriteAll(rows); err != nil {
			config.Logger().WithError(err).Warn("csv export aborted")
			return
		}
		cw.Flush()
	case "xlsx":
		f := excelize.NewFile()
		defer f.Close()
		sheet := f.GetSheetName(0)
		cells := make([]any, len(header))
		for i, hcol := range header {
			cells[i] = hcol
		}
		if err := f.SetSheetRow(sheet, "A1", &cells); err != nil {
			config.Logger().WithError(err).Error("xlsx export")
			httpx.JSONError(w, http.StatusInternalServerError, "export_failed", nil)
			return
		}
		for i, row := range rows {
			cells := make([]any, len(row))
			for j, c := range row {
				cells[j] = c
			}
			if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &cells); err != nil {
				config.Logger().WithError(err).Error("xlsx export")
				httpx.JSONError(w, http.StatusInternalServerError, "export_failed", nil)
				return
			}
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", kind+"_export_"+stamp+".xlsx"))
		if err := f.Write(w); err != nil {
			config.Logger().WithError(err).Warn("xlsx export aborted")
		}
	default:
		httpx.JSONError(w, http.StatusBadRequest, "unknown_export_format", nil)
	}
}

func (h *DataHandler) productRows() ([][]string, error) {
	var products []models.Product
	if err := h.DB.Order("date_added, id").Find(&products).Error; err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{
			p.ID, p.Name, p.UnitPrice.StringFixed(2), p.HSNCode,
			p.DateAdded.Format(exportDateLayout),
		})
	}
	return rows, nil
}

func (h *DataHandler) clientRows() ([][]string, error) {
	var clients []models.Client
	if err := h.DB.Order("date_added, id").Find(&clients).Error; err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, []string{
			c.ID, c.Name, c.Email, c.Phone, c.Address, c.GSTIN, c.FSSAI,
			c.BankAccount, c.DateAdded.Format(exportDateLayout),
		})
	}
	return rows, nil
}

// Import handles /data/import?type=products|clients. Rows with a known id
// update that record; rows without one (or with an unknown id) create a new
// record, synthesizing ids the same way the normal create paths do.
func (h *DataHandler) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	kind := r.URL.Query().Get("type")
	if kind != "products" && kind != "clients" {
		httpx.JSONError(w, http.StatusBadRequest, "unknown_import_type", nil)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		h.importOutcome(w, r, "", "no file uploaded")
		return
	}
	defer file.Close()

	var created, updated int
	if kind == "products" {
		created, updated, err = h.importProducts(file)
	} else {
		created, updated, err = h.importClients(file)
	}
	if err != nil {
		config.Logger().WithError(err).WithField("type", kind).Error("import failed")
		h.importOutcome(w, r, "", err.Error())
		return
	}
	msg := fmt.Sprintf("Imported %s: %d created, %d updated.", kind, created, updated)
	h.importOutcome(w, r, msg, "")
}

func (h *DataHandler) importOutcome(w http.ResponseWriter, r *http.Request, msg, errMsg string) {
	if httpx.WantsJSON(r) {
		if errMsg != "" {
			httpx.JSONError(w, http.StatusBadRequest, "import_failed", errMsg)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"message": msg})
		return
	}
	q := url.Values{}
	if errMsg != "" {
		q.Set("error", errMsg)
	} else {
		q.Set("message", msg)
	}
	http.Redirect(w, r, "/data?"+q.Encode(), http.StatusSeeOther)
}

// columnIndex maps a header row to column positions, case-insensitively.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return idx
}

func cell(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (h *DataHandler) importProducts(src io.Reader) (created, updated int, err error) {
	cr := csv.NewReader(src)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("read header: %w", err)
	}
	idx := columnIndex(header)
	for _, required := range []string{"name", "unit_price"} {
		if _, ok := idx[required]; !ok {
			return 0, 0, fmt.Errorf("missing column %q", required)
		}
	}
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return created, updated, fmt.Errorf("line %d: %w", line+1, err)
		}
		line++
		v := validation.Violations{}
		name := cell(row, idx, "name")
		validation.Required("name", name, v)
		validation.Required("unit_price", cell(row, idx, "unit_price"), v)
		price := validation.Rate("unit_price", cell(row, idx, "unit_price"), v)
		if !v.Empty() {
			return created, updated, fmt.Errorf("line %d: invalid row", line)
		}

		id := cell(row, idx, "id")
		var existing models.Product
		if id != "" && h.DB.First(&existing, "id = ?", id).Error == nil {
			existing.Name = name
			existing.UnitPrice = *price
			existing.HSNCode = cell(row, idx, "hsn_code")
			if err := h.DB.Save(&existing).Error; err != nil {
				return created, updated, err
			}
			updated++
			continue
		}
		p := models.Product{
			ID:        id,
			Name:      name,
			UnitPrice: *price,
			HSNCode:   cell(row, idx, "hsn_code"),
			DateAdded: parseDateOrNow(cell(row, idx, "date_added")),
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if err := h.DB.Create(&p).Error; err != nil {
			return created, updated, err
		}
		created++
	}
	return created, updated, nil
}

func (h *DataHandler) importClients(src io.Reader) (created, updated int, err error) {
	cr := csv.NewReader(src)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("read header: %w", err)
	}
	idx := columnIndex(header)
	if _, ok := idx["name"]; !ok {
		return 0, 0, fmt.Errorf("missing column %q", "name")
	}
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return created, updated, fmt.Errorf("line %d: %w", line+1, err)
		}
		line++
		name := cell(row, idx, "name")
		if name == "" {
			return created, updated, fmt.Errorf("line %d: invalid row", line)
		}

		id := cell(row, idx, "id")
		var existing models.Client
		if id != "" && h.DB.First(&existing, "id = ?", id).Error == nil {
			existing.Name = name
			existing.Email = cell(row, idx, "email")
			existing.Phone = cell(row, idx, "phone")
			existing.Address = cell(row, idx, "address")
			existing.GSTIN = cell(row, idx, "gstin")
			existing.FSSAI = cell(row, idx, "fssai")
			existing.BankAccount = cell(row, idx, "bank_account")
			if err := h.DB.Save(&existing).Error; err != nil {
				return created, updated, err
			}
			updated++
			continue
		}
		c := models.Client{
			ID:          id,
			Name:        name,
			Email:       cell(row, idx, "email"),
			Phone:       cell(row, idx, "phone"),
			Address:     cell(row, idx, "address"),
			GSTIN:       cell(row, idx, "gstin"),
			FSSAI:       cell(row, idx, "fssai"),
			BankAccount: cell(row, idx, "bank_account"),
			DateAdded:   parseDateOrNow(cell(row, idx, "date_added")),
		}
		if _, err := h.Identity.CreateClient(&c); err != nil {
			return created, updated, err
		}
		created++
	}
	return created, updated, nil
}

func parseDateOrNow(s string) time.Time {
	if t, err := time.Parse(exportDateLayout, s); err == nil {
		return t
	}
	return time.Now()
}
