package controllers

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/poliutech/cotizador-backend/api/responses"
	"github.com/poliutech/cotizador-backend/api/validators"
	"github.com/poliutech/cotizador-backend/internal/catalog"
	"github.com/poliutech/cotizador-backend/internal/exports"
	pkgerrors "github.com/poliutech/cotizador-backend/pkg/errors"
	"github.com/poliutech/cotizador-backend/pkg/logger"
)

// importFileLimit bounds one uploaded catalog file.
const importFileLimit = 20 << 20

type catalogItemRequest struct {
	Name        string          `json:"name" validate:"required"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	System      string          `json:"system"`
	Description string          `json:"description"`
}

func (req catalogItemRequest) toInput() catalog.ItemInput {
	return catalog.ItemInput{
		Name:        req.Name,
		Unit:        req.Unit,
		UnitPrice:   req.UnitPrice,
		System:      req.System,
		Description: req.Description,
	}
}

func CatalogList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := listPage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := strings.TrimSpace(r.URL.Query().Get("q"))
		result, err := svc.List(r.Context(), query, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows := make([]CatalogItemDTO, 0, len(result.Items))
		for i := range result.Items {
			rows = append(rows, catalogItemToDTO(&result.Items[i]))
		}
		responses.WriteSuccess(w, map[string]any{
			"items": rows,
			"total": result.Total,
			"pages": result.Pages,
		})
	}
}

func CatalogDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := catalogItemID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, catalogItemToDTO(item))
	}
}

func CatalogCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body catalogItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Create(r.Context(), body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, catalogItemToDTO(item))
	}
}

func CatalogUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := catalogItemID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body catalogItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Update(r.Context(), id, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, catalogItemToDTO(item))
	}
}

func CatalogDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := catalogItemID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func CatalogSuggest(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))

		suggestions, err := svc.Suggest(r.Context(), q)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, suggestions)
	}
}

func CatalogExportCSV(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ExportRows(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var buf bytes.Buffer
		if err := exports.WriteCatalogCSV(&buf, rows); err != nil {
			wrapped := pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render catalog csv")
			responses.WriteError(r.Context(), logg, w, wrapped)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="catalogo.csv"`)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(buf.Bytes()); err != nil {
			logg.Error(r.Context(), "streaming catalog csv", err)
		}
	}
}

// CatalogImport accepts a multipart CSV or XLSX upload and bulk-loads it.
func CatalogImport(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(importFileLimit); err != nil {
			wrapped := pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart upload")
			responses.WriteError(r.Context(), logg, w, wrapped)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			wrapped := pkgerrors.Wrap(pkgerrors.CodeValidation, err, "missing file field")
			responses.WriteError(r.Context(), logg, w, wrapped)
			return
		}
		defer file.Close()

		report, err := svc.Import(r.Context(), catalog.ImportRequest{
			Filename: header.Filename,
			Reader:   file,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}

func catalogItemID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "itemId")
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid catalog item id")
	}
	return id, nil
}
