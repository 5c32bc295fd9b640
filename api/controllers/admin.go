package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/poliutech/cotizador-backend/api/responses"
	"github.com/poliutech/cotizador-backend/api/validators"
	"github.com/poliutech/cotizador-backend/internal/audit"
	pkgerrors "github.com/poliutech/cotizador-backend/pkg/errors"
	"github.com/poliutech/cotizador-backend/pkg/logger"
)

// testSender is the debug surface of the notifier.
type testSender interface {
	SendTest(ctx context.Context) error
}

// reminderRunner lets the debug endpoint force one reminder sweep.
type reminderRunner interface {
	Run(ctx context.Context) error
}

func AdminAuditList(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := listPage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, err := validators.ParseQueryDate(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryDate(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), audit.ListFilter{
			UserName: strings.TrimSpace(r.URL.Query().Get("user")),
			Method:   strings.TrimSpace(r.URL.Query().Get("method")),
			Route:    strings.TrimSpace(r.URL.Query().Get("route")),
			From:     from,
			To:       to,
			Page:     page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows := make([]AuditEntryDTO, 0, len(result.Entries))
		for i := range result.Entries {
			rows = append(rows, auditEntryToDTO(&result.Entries[i]))
		}
		responses.WriteSuccess(w, map[string]any{
			"entries": rows,
			"total":   result.Total,
			"pages":   result.Pages,
		})
	}
}

// AdminTestMessage sends one test WhatsApp message to the primary recipient.
func AdminTestMessage(sender testSender, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sender == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "notifier unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := sender.SendTest(r.Context()); err != nil {
			wrapped := pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send test message")
			responses.WriteError(r.Context(), logg, w, wrapped)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "sent"})
	}
}

// AdminRunReminders forces the pending-quote reminder sweep.
func AdminRunReminders(job reminderRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if job == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "reminder job unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := job.Run(r.Context()); err != nil {
			wrapped := pkgerrors.Wrap(pkgerrors.CodeDependency, err, "run reminder sweep")
			responses.WriteError(r.Context(), logg, w, wrapped)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "completed"})
	}
}
