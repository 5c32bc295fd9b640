package controllers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/poliutech/cotizador-backend/api/middleware"
	"github.com/poliutech/cotizador-backend/api/responses"
	"github.com/poliutech/cotizador-backend/internal/exports"
	"github.com/poliutech/cotizador-backend/internal/quotes"
	"github.com/poliutech/cotizador-backend/pkg/config"
	pkgerrors "github.com/poliutech/cotizador-backend/pkg/errors"
	"github.com/poliutech/cotizador-backend/pkg/logger"
)

type exportFormat struct {
	extension   string
	contentType string
	render      func(w io.Writer, doc *exports.Document) error
}

var exportFormats = map[string]exportFormat{
	"csv": {
		extension:   "csv",
		contentType: "text/csv; charset=utf-8",
		render:      exports.WriteCSV,
	},
	"xlsx": {
		extension:   "xlsx",
		contentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		render:      exports.WriteXLSX,
	},
	"pdf": {
		extension:   "pdf",
		contentType: "application/pdf",
		render:      exports.WritePDF,
	},
}

// QuoteExport streams one quote rendered in the requested format. The
// document snapshot is built once so every format reports the same totals.
func QuoteExport(svc quotes.Service, company config.CompanyConfig, format string, logg *logger.Logger) http.HandlerFunc {
	spec, ok := exportFormats[format]
	return func(w http.ResponseWriter, r *http.Request) {
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unsupported export format"))
			return
		}

		id, err := quoteID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		quote, err := svc.Get(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		doc := exports.NewDocument(quote, company)

		var buf bytes.Buffer
		if err := spec.render(&buf, doc); err != nil {
			wrapped := pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render export")
			responses.WriteError(r.Context(), logg, w, wrapped)
			return
		}

		w.Header().Set("Content-Type", spec.contentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", quote.Folio+"."+spec.extension))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(buf.Bytes()); err != nil {
			logg.Error(r.Context(), "streaming export", err)
		}
	}
}
