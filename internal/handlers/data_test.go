package handlers

import (
	"bytes"
	"encoding/csv"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/senthilk/gst-billing/internal/models"
)

func importRequest(t *testing.T, target, contents string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "import.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(contents))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	return req
}

func TestProductExportCSV(t *testing.T) {
	db := setupTestDB(t)
	h := NewDataHandler(db)
	seedProduct(t, db, "p1", "Green Tea", "400")

	rec := httptest.NewRecorder()
	h.Export(rec, httptest.NewRequest(http.MethodGet, "/data/export?type=products&format=csv", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")

	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, productColumns, rows[0])
	assert.Equal(t, "p1", rows[1][0])
	assert.Equal(t, "Green Tea", rows[1][1])
	assert.Equal(t, "400.00", rows[1][2])
}

func TestClientExportXLSX(t *testing.T) {
	db := setupTestDB(t)
	h := NewDataHandler(db)
	seedClientRecord(t, db, "CL-001", "Acme Traders")

	rec := httptest.NewRecorder()
	h.Export(rec, httptest.NewRequest(http.MethodGet, "/data/export?type=clients&format=xlsx", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	// XLSX is a zip archive.
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func TestExportUnknownType(t *testing.T) {
	db := setupTestDB(t)
	h := NewDataHandler(db)

	rec := httptest.NewRecorder()
	h.Export(rec, httptest.NewRequest(http.MethodGet, "/data/export?type=bills&format=csv", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductImportRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	h := NewDataHandler(db)
	seedProduct(t, db, "p1", "Green Tea", "400")

	rec := httptest.NewRecorder()
	h.Export(rec, httptest.NewRequest(http.MethodGet, "/data/export?type=products&format=csv", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec2 := httptest.NewRecorder()
	h.Import(rec2, importRequest(t, "/data/import?type=products", rec.Body.String()))
	require.Equal(t, http.StatusOK, rec2.Code, rec2.Body.String())

	// Same id: the row was updated, not duplicated.
	var count int64
	db.Model(&models.Product{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestProductImportCreatesWithoutID(t *testing.T) {
	db := setupTestDB(t)
	h := NewDataHandler(db)

	csvBody := "name,unit_price,hsn_code\nMasala Chai,120,0902\n"
	rec := httptest.NewRecorder()
	h.Import(rec, importRequest(t, "/data/import?type=products", csvBody))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var p models.Product
	require.NoError(t, db.First(&p, "name = ?", "Masala Chai").Error)
	assert.NotEmpty(t, p.ID)
	assert.True(t, p.UnitPrice.Equal(mustDecimal(t, "120")))
}

func TestClientImportGeneratesSequentialIDs(t *testing.T) {
	db := setupTestDB(t)
	h := NewDataHandler(db)

	csvBody := "name,phone\nFirst Shop,111\nSecond Shop,222\n"
	rec := httptest.NewRecorder()
	h.Import(rec, importRequest(t, "/data/import?type=clients", csvBody))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var clients []models.Client
	require.NoError(t, db.Order("id").Find(&clients).Error)
	require.Len(t, clients, 2)
	assert.Equal(t, "CL-001", clients[0].ID)
	assert.Equal(t, "CL-002", clients[1].ID)
}

func TestImportMissingRequiredColumn(t *testing.T) {
	db := setupTestDB(t)
	h := NewDataHandler(db)

	rec := httptest.NewRecorder()
	h.Import(rec, importRequest(t, "/data/import?type=products", "name,hsn_code\nTea,0902\n"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var count int64
	db.Model(&models.Product{}).Count(&count)
	assert.Zero(t, count)
}

func TestImportRedirectsBrowserForms(t *testing.T) {
	db := setupTestDB(t)
	h := NewDataHandler(db)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "import.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte("name,unit_price\nTea,10\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/data/import?type=products", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "text/html")

	rec := httptest.NewRecorder()
	h.Import(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/data?"))
}
