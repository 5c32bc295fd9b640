package controllers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/poliutech/cotizador-backend/pkg/db/models"
)

// QuoteLineDTO is one concept row in API responses.
type QuoteLineDTO struct {
	ID            uuid.UUID       `json:"id"`
	CatalogItemID *uuid.UUID      `json:"catalog_item_id,omitempty"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	System        string          `json:"system,omitempty"`
	Description   string          `json:"description,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

// QuoteDTO is the API shape of a quote with its totals breakdown.
type QuoteDTO struct {
	ID             uuid.UUID       `json:"id"`
	Folio          string          `json:"folio"`
	Status         string          `json:"status"`
	ClientID       *uuid.UUID      `json:"client_id,omitempty"`
	ClientName     string          `json:"client_name"`
	ClientCompany  string          `json:"client_company,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountTotal  decimal.Decimal `json:"discount_total"`
	TaxPercent     decimal.Decimal `json:"tax_percent"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Total          decimal.Decimal `json:"total"`
	Currency       string          `json:"currency"`
	ZoneName       string          `json:"zone_name,omitempty"`
	ZonePercent    decimal.Decimal `json:"zone_percent"`
	Notes          string          `json:"notes,omitempty"`
	Owner          string          `json:"owner"`
	ValidUntil     *time.Time      `json:"valid_until,omitempty"`
	LastNotifiedAt *time.Time      `json:"last_notified_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Lines          []QuoteLineDTO  `json:"lines,omitempty"`
}

// ClientDTO is the API shape of a client record.
type ClientDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Company   string    `json:"company,omitempty"`
	Owner     string    `json:"owner"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	TaxID     string    `json:"tax_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CatalogItemDTO is the API shape of a catalog item.
type CatalogItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	System      string          `json:"system,omitempty"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// AuditEntryDTO is one audit trail row.
type AuditEntryDTO struct {
	ID          uuid.UUID  `json:"id"`
	OccurredAt  time.Time  `json:"occurred_at"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	UserName    string     `json:"user_name"`
	Role        string     `json:"role"`
	Method      string     `json:"method"`
	Path        string     `json:"path"`
	Route       string     `json:"route,omitempty"`
	StatusCode  int        `json:"status_code"`
	IP          string     `json:"ip,omitempty"`
	UserAgent   string     `json:"user_agent,omitempty"`
	QueryString string     `json:"query_string,omitempty"`
	FormKeys    []string   `json:"form_keys,omitempty"`
	Action      string     `json:"action,omitempty"`
}

func quoteToDTO(q *models.Quote, includeLines bool) QuoteDTO {
	dto := QuoteDTO{
		ID:             q.ID,
		Folio:          q.Folio,
		Status:         string(q.Status),
		ClientID:       q.ClientID,
		ClientName:     q.ClientName,
		Subtotal:       q.Subtotal,
		DiscountTotal:  q.DiscountTotal,
		TaxPercent:     q.TaxPercent,
		TaxAmount:      q.TaxAmount,
		Total:          q.Total,
		Currency:       q.Currency,
		ZoneName:       q.ZoneName,
		ZonePercent:    q.ZonePercent,
		Notes:          strDeref(q.Notes),
		Owner:          q.Owner,
		ValidUntil:     q.ValidUntil,
		LastNotifiedAt: q.LastNotifiedAt,
		CreatedAt:      q.CreatedAt,
		UpdatedAt:      q.UpdatedAt,
	}
	if q.Client != nil {
		dto.ClientCompany = strDeref(q.Client.Company)
	}
	if includeLines {
		dto.Lines = make([]QuoteLineDTO, 0, len(q.Lines))
		for _, line := range q.Lines {
			dto.Lines = append(dto.Lines, QuoteLineDTO{
				ID:            line.ID,
				CatalogItemID: line.CatalogItemID,
				Name:          line.Name,
				Unit:          line.Unit,
				System:        strDeref(line.System),
				Description:   strDeref(line.Description),
				Quantity:      line.Quantity,
				UnitPrice:     line.UnitPrice,
				Subtotal:      line.Subtotal,
			})
		}
	}
	return dto
}

func quotesToDTOs(rows []models.Quote) []QuoteDTO {
	out := make([]QuoteDTO, 0, len(rows))
	for i := range rows {
		out = append(out, quoteToDTO(&rows[i], false))
	}
	return out
}

func clientToDTO(c *models.Client) ClientDTO {
	return ClientDTO{
		ID:        c.ID,
		Name:      c.Name,
		Company:   strDeref(c.Company),
		Owner:     c.Owner,
		Email:     strDeref(c.Email),
		Phone:     strDeref(c.Phone),
		Address:   strDeref(c.Address),
		TaxID:     strDeref(c.TaxID),
		CreatedAt: c.CreatedAt,
	}
}

func catalogItemToDTO(item *models.CatalogItem) CatalogItemDTO {
	return CatalogItemDTO{
		ID:          item.ID,
		Name:        item.Name,
		Unit:        item.Unit,
		UnitPrice:   item.UnitPrice,
		System:      strDeref(item.System),
		Description: strDeref(item.Description),
		CreatedAt:   item.CreatedAt,
	}
}

func auditEntryToDTO(e *models.AuditLogEntry) AuditEntryDTO {
	return AuditEntryDTO{
		ID:          e.ID,
		OccurredAt:  e.OccurredAt,
		UserID:      e.UserID,
		UserName:    e.UserName,
		Role:        e.Role,
		Method:      e.Method,
		Path:        e.Path,
		Route:       e.Route,
		StatusCode:  e.StatusCode,
		IP:          e.IP,
		UserAgent:   e.UserAgent,
		QueryString: e.QueryString,
		FormKeys:    e.FormKeys,
		Action:      e.Action,
	}
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
