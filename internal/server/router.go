// Package server wires handlers, session middleware and request logging
// into the http.Handler the binary serves.
package server

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/senthilk/gst-billing/internal/auth"
	"github.com/senthilk/gst-billing/internal/config"
	"github.com/senthilk/gst-billing/internal/handlers"
	"github.com/senthilk/gst-billing/internal/httpx"
)

// New builds the application handler. Everything except the login form and
// the health endpoints sits behind the session gate.
func New(db *gorm.DB, cfg config.Config) http.Handler {
	mux := http.NewServeMux()

	authH := handlers.NewAuthHandler(cfg)
	dashboard := handlers.NewDashboardHandler(db)
	products := handlers.NewProductHandler(db)
	clients := handlers.NewClientHandler(db)
	business := handlers.NewBusinessHandler(db)
	bills := handlers.NewBillHandler(db)
	data := handlers.NewDataHandler(db)

	mux.HandleFunc("/login", authH.Login)
	mux.HandleFunc("/logout", authH.Logout)
	mux.Handle("/health", health(db))
	mux.Handle("/healthz", health(db))

	protect := func(h http.HandlerFunc) http.Handler { return auth.RequireAuth(h) }

	mux.Handle("/", protect(root))
	mux.Handle("/dashboard", protect(dashboard.Show))

	mux.Handle("/products", protect(products.Collection))
	mux.Handle("/products/update", protect(products.Update))
	mux.Handle("/products/delete", protect(products.Delete))

	mux.Handle("/clients", protect(clients.Collection))
	mux.Handle("/clients/update", protect(clients.Update))
	mux.Handle("/clients/delete", protect(clients.Delete))

	mux.Handle("/business", protect(business.Profile))

	mux.Handle("/bills", protect(bills.Collection))
	mux.Handle("/bills/new", protect(bills.NewForm))
	mux.Handle("/bills/edit", protect(bills.EditForm))
	mux.Handle("/bills/update", protect(bills.Update))
	mux.Handle("/bills/delete", protect(bills.Delete))
	mux.Handle("/bills/view", protect(bills.View))
	mux.Handle("/bills/pdf", protect(bills.PDF))

	mux.Handle("/data", protect(data.Page))
	mux.Handle("/data/export", protect(data.Export))
	mux.Handle("/data/import", protect(data.Import))

	return recoverer(requestLogger(auth.Middleware(mux)))
}

// root redirects to the dashboard; any other unrouted path is a 404.
func root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func health(db *gorm.DB) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(r.Context())
		}
		if err != nil {
			httpx.JSONError(w, http.StatusServiceUnavailable, "database_unreachable", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		config.Logger().WithFields(map[string]any{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}

func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				config.Logger().WithField("panic", rec).Error("handler panicked")
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
