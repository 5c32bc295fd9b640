package controllers

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/poliutech/cotizador-backend/api/middleware"
	"github.com/poliutech/cotizador-backend/api/responses"
	"github.com/poliutech/cotizador-backend/api/validators"
	"github.com/poliutech/cotizador-backend/internal/clients"
	"github.com/poliutech/cotizador-backend/internal/exports"
	pkgerrors "github.com/poliutech/cotizador-backend/pkg/errors"
	"github.com/poliutech/cotizador-backend/pkg/logger"
	"github.com/poliutech/cotizador-backend/pkg/pagination"
)

type clientRequest struct {
	Name    string `json:"name" validate:"required"`
	Company string `json:"company"`
	Owner   string `json:"owner"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	TaxID   string `json:"tax_id"`
}

func (req clientRequest) toInput() clients.ClientInput {
	return clients.ClientInput{
		Name:    req.Name,
		Company: req.Company,
		Owner:   req.Owner,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		TaxID:   req.TaxID,
	}
}

func ClientList(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := listPage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		result, err := svc.List(r.Context(), actor, query, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows := make([]ClientDTO, 0, len(result.Clients))
		for i := range result.Clients {
			rows = append(rows, clientToDTO(&result.Clients[i]))
		}
		responses.WriteSuccess(w, map[string]any{
			"clients": rows,
			"total":   result.Total,
			"pages":   result.Pages,
		})
	}
}

func ClientDetail(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := clientID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		client, err := svc.Get(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, clientToDTO(client))
	}
}

func ClientCreate(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body clientRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		client, err := svc.Create(r.Context(), actor, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, clientToDTO(client))
	}
}

func ClientUpdate(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := clientID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body clientRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		client, err := svc.Update(r.Context(), actor, id, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, clientToDTO(client))
	}
}

func ClientDelete(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := clientID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		if err := svc.Delete(r.Context(), actor, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func ClientSuggest(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())
		q := strings.TrimSpace(r.URL.Query().Get("q"))

		suggestions, err := svc.Suggest(r.Context(), actor, q)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, suggestions)
	}
}

func ClientExportCSV(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())
		rows, err := svc.ExportRows(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var buf bytes.Buffer
		if err := exports.WriteClientsCSV(&buf, rows); err != nil {
			wrapped := pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render clients csv")
			responses.WriteError(r.Context(), logg, w, wrapped)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="clientes.csv"`)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(buf.Bytes()); err != nil {
			logg.Error(r.Context(), "streaming clients csv", err)
		}
	}
}

func ClientImport(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
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

		report, err := svc.Import(r.Context(), clients.ImportRequest{
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

func clientID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "clientId")
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid client id")
	}
	return id, nil
}

func listPage(r *http.Request) (pagination.Params, error) {
	page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<20)
	if err != nil {
		return pagination.Params{}, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Page: page, Limit: limit}, nil
}
