package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/senthilk/gst-billing/internal/config"
	"github.com/senthilk/gst-billing/internal/db"
	"github.com/senthilk/gst-billing/internal/httpx"
)

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

// failWrite maps a failed store write to a response. Schema mismatches
// (store rejects a column the app knows about) degrade gracefully: the
// payload is spooled locally and the operator is told the store needs a
// schema update, instead of losing the data.
func failWrite(w http.ResponseWriter, entity string, payload any, err error) {
	if db.IsSchemaMismatch(err) {
		if spoolErr := db.SpoolWrite(entity, payload, err); spoolErr != nil {
			config.Logger().WithError(spoolErr).Error("spool write failed")
			httpx.JSONError(w, http.StatusInternalServerError, "store_write_failed", nil)
			return
		}
		httpx.JSON(w, http.StatusAccepted, map[string]string{
			"warning": "schema_out_of_date",
			"detail":  "the backing store needs a schema update; the record was cached locally",
		})
		return
	}
	config.Logger().WithError(err).WithField("entity", entity).Error("store write failed")
	httpx.JSONError(w, http.StatusInternalServerError, "store_write_failed", nil)
}
