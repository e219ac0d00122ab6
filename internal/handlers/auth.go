package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/senthilk/gst-billing/internal/auth"
	"github.com/senthilk/gst-billing/internal/config"
	"github.com/senthilk/gst-billing/internal/httpx"
	"github.com/senthilk/gst-billing/internal/view"
)

// AuthHandler serves the single-operator login gate.
type AuthHandler struct {
	Cfg config.Config
}

func NewAuthHandler(cfg config.Config) *AuthHandler { return &AuthHandler{Cfg: cfg} }

// Login serves the sign-in form on GET and checks credentials on POST.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if auth.IsAuthenticated(r.Context()) {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		data := map[string]any{"Error": r.URL.Query().Get("error") != ""}
		if err := view.Render(w, r, "login.html", data); err != nil {
			config.Logger().WithError(err).Error("render login")
		}
	case http.MethodPost:
		email, password := h.credentials(r)
		if !h.valid(email, password) {
			if httpx.WantsJSON(r) {
				httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
				return
			}
			http.Redirect(w, r, "/login?error=1", http.StatusSeeOther)
			return
		}
		auth.CreateSession(w)
		if httpx.WantsJSON(r) {
			httpx.JSON(w, http.StatusOK, map[string]bool{"ok": true})
			return
		}
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	default:
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

// Logout clears the session cookie and sends the operator back to the form.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) credentials(r *http.Request) (email, password string) {
	ct := r.Header.Get("Content-Type")
	if strings.Contains(ct, "application/json") {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := decodeJSON(r, &body); err == nil {
			return body.Email, body.Password
		}
		return "", ""
	}
	if err := r.ParseForm(); err != nil {
		return "", ""
	}
	return r.PostFormValue("email"), r.PostFormValue("password")
}

// valid checks the configured operator credentials. The configured
// password may be a bcrypt hash or, in development, plaintext.
func (h *AuthHandler) valid(email, password string) bool {
	if subtle.ConstantTimeCompare([]byte(email), []byte(h.Cfg.AdminEmail)) != 1 {
		return false
	}
	if strings.HasPrefix(h.Cfg.AdminPassword, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(h.Cfg.AdminPassword), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(h.Cfg.AdminPassword)) == 1
}
