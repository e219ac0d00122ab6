package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/senthilk/gst-billing/internal/models"
)

func TestProductCreateAndList(t *testing.T) {
	db := setupTestDB(t)
	h := NewProductHandler(db)

	rec := httptest.NewRecorder()
	h.Collection(rec, jsonRequest(t, http.MethodPost, "/products", map[string]string{
		"name": "Green Tea", "unit_price": "400", "hsn_code": "0902",
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.Product
	decodeBody(t, rec, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Green Tea", created.Name)
	assert.True(t, created.UnitPrice.Equal(mustDecimal(t, "400")))

	rec = httptest.NewRecorder()
	h.Collection(rec, jsonRequest(t, http.MethodGet, "/products", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []models.Product
	decodeBody(t, rec, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
}

func TestProductCreateValidation(t *testing.T) {
	db := setupTestDB(t)
	h := NewProductHandler(db)

	cases := []map[string]string{
		{"name": "", "unit_price": "10"},
		{"name": "Tea", "unit_price": ""},
		{"name": "Tea", "unit_price": "abc"},
		{"name": "Tea", "unit_price": "-5"},
	}
	for _, body := range cases {
		rec := httptest.NewRecorder()
		h.Collection(rec, jsonRequest(t, http.MethodPost, "/products", body))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %v", body)
	}

	var count int64
	db.Model(&models.Product{}).Count(&count)
	assert.Zero(t, count, "rejected writes must leave no rows")
}

func TestProductListSearch(t *testing.T) {
	db := setupTestDB(t)
	h := NewProductHandler(db)
	seedProduct(t, db, "p1", "Green Tea", "400")
	seedProduct(t, db, "p2", "Black Coffee", "250")

	rec := httptest.NewRecorder()
	h.Collection(rec, jsonRequest(t, http.MethodGet, "/products?q=tea", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []models.Product
	decodeBody(t, rec, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, "Green Tea", listed[0].Name)
}

func TestProductUpdateAndDelete(t *testing.T) {
	db := setupTestDB(t)
	h := NewProductHandler(db)
	p := seedProduct(t, db, "p1", "Green Tea", "400")

	rec := httptest.NewRecorder()
	h.Update(rec, jsonRequest(t, http.MethodPost, "/products/update?id="+p.ID, map[string]string{
		"name": "Green Tea Premium", "unit_price": "450", "hsn_code": "0902",
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var stored models.Product
	require.NoError(t, db.First(&stored, "id = ?", p.ID).Error)
	assert.Equal(t, "Green Tea Premium", stored.Name)
	assert.True(t, stored.UnitPrice.Equal(mustDecimal(t, "450")))

	rec = httptest.NewRecorder()
	h.Delete(rec, jsonRequest(t, http.MethodPost, "/products/delete?id="+p.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	db.Model(&models.Product{}).Count(&count)
	assert.Zero(t, count)
}

func TestProductCreateSchemaMismatchSpoolsWrite(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	db := setupTestDB(t)
	h := NewProductHandler(db)

	// The store's schema now lags the app by one column.
	require.NoError(t, db.Exec("ALTER TABLE products DROP COLUMN hsn_code").Error)

	rec := httptest.NewRecorder()
	h.Collection(rec, jsonRequest(t, http.MethodPost, "/products", map[string]string{
		"name": "Green Tea", "unit_price": "400", "hsn_code": "0902",
	}))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var resp map[string]string
	decodeBody(t, rec, &resp)
	assert.Equal(t, "schema_out_of_date", resp["warning"])

	// The rejected payload is cached locally instead of being lost.
	spooled, err := os.ReadFile(filepath.Join("data", "pending_writes.json"))
	require.NoError(t, err)
	assert.Contains(t, string(spooled), `"entity": "product"`)
	assert.Contains(t, string(spooled), "Green Tea")
}

func TestProductUpdateUnknownID(t *testing.T) {
	db := setupTestDB(t)
	h := NewProductHandler(db)

	rec := httptest.NewRecorder()
	h.Update(rec, jsonRequest(t, http.MethodPost, "/products/update?id=nope", map[string]string{
		"name": "X", "unit_price": "1",
	}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
