package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/poliutech/cotizador-backend/internal/audit"
)

// auditBodyLimit caps how much of a request body is inspected for key names.
const auditBodyLimit = 64 << 10

// Recorder is the audit sink the capture middleware writes to.
type Recorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

// Audit captures one audit entry per request. Only the key names of
// submitted payloads are recorded, never any values.
func Audit(recorder Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if recorder == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			keys := payloadKeys(r)

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			if rec.status == 0 {
				rec.status = http.StatusOK
			}

			actor := ActorFromContext(r.Context())
			var userID *uuid.UUID
			if actor.UserID != uuid.Nil {
				id := actor.UserID
				userID = &id
			}

			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}

			recorder.Record(r.Context(), audit.Entry{
				OccurredAt:  time.Now().UTC(),
				UserID:      userID,
				UserName:    actor.Name,
				Role:        string(actor.Role),
				Method:      r.Method,
				Path:        r.URL.Path,
				Route:       route,
				StatusCode:  rec.status,
				IP:          clientIP(r),
				UserAgent:   r.UserAgent(),
				QueryString: r.URL.RawQuery,
				FormKeys:    keys,
				Action:      r.Method + " " + r.URL.Path,
			})
		})
	}
}

// payloadKeys extracts top-level key names from JSON and urlencoded bodies.
// Multipart uploads are left untouched so handlers can still stream them.
func payloadKeys(r *http.Request) []string {
	contentType := strings.ToLower(r.Header.Get("Content-Type"))
	isJSON := strings.Contains(contentType, "application/json")
	isForm := strings.Contains(contentType, "application/x-www-form-urlencoded")
	if !isJSON && !isForm {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, auditBodyLimit))
	if err != nil {
		return nil
	}
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), r.Body))

	if isJSON {
		var payload map[string]json.RawMessage
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil
		}
		keys := make([]string, 0, len(payload))
		for key := range payload {
			keys = append(keys, key)
		}
		return keys
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil
	}
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	return keys
}
