package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/senthilk/gst-billing/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
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
	return db
}

// jsonRequest builds a request the way the in-app scripts do: a JSON body
// with an Accept header asking for JSON back.
func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func seedProduct(t *testing.T, db *gorm.DB, id, name, price string) models.Product {
	t.Helper()
	p := models.Product{
		ID:        id,
		Name:      name,
		UnitPrice: mustDecimal(t, price),
		DateAdded: time.Now(),
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func seedClientRecord(t *testing.T, db *gorm.DB, id, name string) models.Client {
	t.Helper()
	c := models.Client{ID: id, Name: name, DateAdded: time.Now()}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return c
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal %q: %v", s, err)
	}
	return d
}
