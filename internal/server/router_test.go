package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/senthilk/gst-billing/internal/config"
	"github.com/senthilk/gst-billing/internal/models"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.Product{}, &models.Client{}, &models.BusinessProfile{},
		&models.Bill{}, &models.BillItem{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	cfg := config.Config{AdminEmail: "admin@billing.local", AdminPassword: "secret"}
	return New(db, cfg)
}

func jsonReq(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req
}

// login returns the session cookie for the default test operator.
func login(t *testing.T, h http.Handler) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, jsonReq(t, http.MethodPost, "/login", map[string]string{
		"email": "admin@billing.local", "password": "secret",
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func TestHealthUnprotected(t *testing.T) {
	h := setupRouter(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	h := setupRouter(t)
	for _, path := range []string{"/dashboard", "/products", "/clients", "/business", "/bills", "/data"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, jsonReq(t, http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestBrowserRedirectsToLogin(t *testing.T) {
	h := setupRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestFullInvoiceFlow(t *testing.T) {
	h := setupRouter(t)
	cookie := login(t, h)
	do := func(req *http.Request) *httptest.ResponseRecorder {
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := do(jsonReq(t, http.MethodPost, "/products", map[string]string{
		"name": "Green Tea", "unit_price": "400", "hsn_code": "0902",
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var product models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &product))

	rec = do(jsonReq(t, http.MethodPost, "/clients", map[string]string{"name": "Acme Traders"}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var clientResp struct {
		Client models.Client `json:"client"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &clientResp))
	assert.Equal(t, "CL-001", clientResp.Client.ID)

	rec = do(jsonReq(t, http.MethodPost, "/bills", map[string]any{
		"bill_number": "INV-2026-0001",
		"issue_date":  "2026-08-01",
		"client_id":   clientResp.Client.ID,
		"cgst_rate":   "2.5",
		"sgst_rate":   "2.5",
		"items":       []map[string]any{{"product_id": product.ID, "quantity": 2}},
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var billResp struct {
		Bill models.Bill `json:"bill"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &billResp))
	assert.Equal(t, "840", billResp.Bill.GrandTotal.String())

	rec = do(httptest.NewRequest(http.MethodGet, "/bills/pdf?id="+billResp.Bill.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))

	rec = do(jsonReq(t, http.MethodGet, "/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_bills":1`)
}

func TestRootRedirectsToDashboard(t *testing.T) {
	h := setupRouter(t)
	cookie := login(t, h)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}
