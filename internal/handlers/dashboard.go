package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/senthilk/gst-billing/internal/config"
	"github.com/senthilk/gst-billing/internal/httpx"
	"github.com/senthilk/gst-billing/internal/models"
	"github.com/senthilk/gst-billing/internal/view"
)

type DashboardHandler struct {
	DB *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler { return &DashboardHandler{DB: db} }

type dashboardStats struct {
	TotalProducts int64  `json:"total_products"`
	TotalClients  int64  `json:"total_clients"`
	TotalBills    int64  `json:"total_bills"`
	TotalRevenue  string `json:"total_revenue"`
}

// Show renders the landing page counters.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	stats, err := h.collect()
	if err != nil {
		config.Logger().WithError(err).Error("dashboard stats")
		httpx.JSONError(w, http.StatusInternalServerError, "store_read_failed", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, stats)
		return
	}
	data := map[string]any{"Title": "Dashboard", "Stats": stats}
	if err := view.Render(w, r, "dashboard.html", data); err != nil {
		config.Logger().WithError(err).Error("render dashboard")
	}
}

func (h *DashboardHandler) collect() (dashboardStats, error) {
	var s dashboardStats
	if err := h.DB.Model(&models.Product{}).Count(&s.TotalProducts).Error; err != nil {
		return s, err
	}
	if err := h.DB.Model(&models.Client{}).Count(&s.TotalClients).Error; err != nil {
		return s, err
	}
	if err := h.DB.Model(&models.Bill{}).Count(&s.TotalBills).Error; err != nil {
		return s, err
	}
	// Revenue is summed in Go: decimal columns round-trip as strings and
	// SUM() would reintroduce float arithmetic on sqlite.
	var totals []decimal.Decimal
	if err := h.DB.Model(&models.Bill{}).Pluck("grand_total", &totals).Error; err != nil {
		return s, err
	}
	revenue := decimal.Zero
	for _, t := range totals {
		revenue = revenue.Add(t)
	}
	s.TotalRevenue = revenue.StringFixed(2)
	return s, nil
}
