package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/senthilk/gst-billing/internal/models"
)

func TestDashboardStats(t *testing.T) {
	db := setupTestDB(t)
	h := NewDashboardHandler(db)

	seedProduct(t, db, "p1", "Green Tea", "400")
	seedClientRecord(t, db, "CL-001", "Acme Traders")
	for i, total := range []string{"840", "159.50"} {
		b := models.Bill{
			ID: string(rune('a' + i)), BillNumber: "INV-" + total, ClientID: "CL-001",
			ClientName: "Acme Traders", SubTotal: mustDecimal(t, total),
			GrandTotal: mustDecimal(t, total),
		}
		require.NoError(t, db.Create(&b).Error)
	}

	rec := httptest.NewRecorder()
	h.Show(rec, jsonRequest(t, http.MethodGet, "/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats dashboardStats
	decodeBody(t, rec, &stats)
	assert.Equal(t, int64(1), stats.TotalProducts)
	assert.Equal(t, int64(1), stats.TotalClients)
	assert.Equal(t, int64(2), stats.TotalBills)
	assert.Equal(t, "999.50", stats.TotalRevenue)
}

func TestDashboardStatsEmpty(t *testing.T) {
	db := setupTestDB(t)
	h := NewDashboardHandler(db)

	rec := httptest.NewRecorder()
	h.Show(rec, jsonRequest(t, http.MethodGet, "/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats dashboardStats
	decodeBody(t, rec, &stats)
	assert.Zero(t, stats.TotalBills)
	assert.Equal(t, "0.00", stats.TotalRevenue)
}
