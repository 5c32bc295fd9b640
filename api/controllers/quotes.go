package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/poliutech/cotizador-backend/api/middleware"
	"github.com/poliutech/cotizador-backend/api/responses"
	"github.com/poliutech/cotizador-backend/api/validators"
	"github.com/poliutech/cotizador-backend/internal/quotes"
	pkgerrors "github.com/poliutech/cotizador-backend/pkg/errors"
	"github.com/poliutech/cotizador-backend/pkg/logger"
	"github.com/poliutech/cotizador-backend/pkg/pagination"
)

type quoteLineRequest struct {
	Name        string          `json:"name" validate:"required"`
	Unit        string          `json:"unit"`
	System      string          `json:"system"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity" validate:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type quoteRequest struct {
	ClientName    string             `json:"client_name" validate:"required"`
	ClientCompany string             `json:"client_company"`
	ClientEmail   string             `json:"client_email"`
	ClientPhone   string             `json:"client_phone"`
	ClientAddress string             `json:"client_address"`
	ClientTaxID   string             `json:"client_tax_id"`
	ZoneName      string             `json:"zone_name"`
	TaxPercent    *decimal.Decimal   `json:"tax_percent"`
	Currency      string             `json:"currency"`
	Notes         string             `json:"notes"`
	Owner         string             `json:"owner"`
	ValidUntil    *time.Time         `json:"valid_until"`
	Lines         []quoteLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type bulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1"`
}

func (req quoteRequest) toInput() quotes.QuoteInput {
	input := quotes.QuoteInput{
		ClientName:    req.ClientName,
		ClientCompany: req.ClientCompany,
		ClientEmail:   req.ClientEmail,
		ClientPhone:   req.ClientPhone,
		ClientAddress: req.ClientAddress,
		ClientTaxID:   req.ClientTaxID,
		ZoneName:      req.ZoneName,
		TaxPercent:    req.TaxPercent,
		Currency:      req.Currency,
		Notes:         req.Notes,
		Owner:         req.Owner,
		ValidUntil:    req.ValidUntil,
	}
	for _, line := range req.Lines {
		input.Lines = append(input.Lines, quotes.LineInput{
			Name:        line.Name,
			Unit:        line.Unit,
			System:      line.System,
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		})
	}
	return input
}

func QuoteCreate(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body quoteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		quote, err := svc.Create(r.Context(), actor, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, quoteToDTO(quote, true))
	}
}

func QuoteUpdate(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := quoteID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body quoteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		quote, err := svc.Update(r.Context(), actor, id, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quoteToDTO(quote, true))
	}
}

func QuoteDetail(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		responses.WriteSuccess(w, quoteToDTO(quote, true))
	}
}

func QuoteList(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := quoteListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		result, err := svc.List(r.Context(), actor, *query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"quotes": quotesToDTOs(result.Quotes),
			"total":  result.Total,
			"pages":  result.Pages,
		})
	}
}

func QuoteChangeStatus(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := quoteID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body statusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		quote, err := svc.ChangeStatus(r.Context(), actor, id, body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quoteToDTO(quote, false))
	}
}

func QuoteDelete(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := quoteID(r)
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

func QuoteBulkDelete(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body bulkDeleteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		deleted, err := svc.BulkDelete(r.Context(), actor, body.IDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]int64{"deleted": deleted})
	}
}

func quoteID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "quoteId")
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid quote id")
	}
	return id, nil
}

func quoteListQuery(r *http.Request) (*quotes.ListQuery, error) {
	page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<20)
	if err != nil {
		return nil, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return nil, err
	}
	from, err := validators.ParseQueryDate(r, "from")
	if err != nil {
		return nil, err
	}
	to, err := validators.ParseQueryDate(r, "to")
	if err != nil {
		return nil, err
	}
	minTotal, err := validators.ParseQueryDecimal(r, "min_total")
	if err != nil {
		return nil, err
	}
	maxTotal, err := validators.ParseQueryDecimal(r, "max_total")
	if err != nil {
		return nil, err
	}

	return &quotes.ListQuery{
		Status:      strings.TrimSpace(r.URL.Query().Get("status")),
		ClientQuery: strings.TrimSpace(r.URL.Query().Get("client")),
		From:        from,
		To:          to,
		MinTotal:    minTotal,
		MaxTotal:    maxTotal,
		Page:        pagination.Params{Page: page, Limit: limit},
	}, nil
}
