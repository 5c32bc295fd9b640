// Package audit keeps the request trail. Writes are best effort, the
// request that produced an entry never fails because the trail did.
package audit

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/poliutech/cotizador-backend/pkg/db/models"
	pkgerrors "github.com/poliutech/cotizador-backend/pkg/errors"
	"github.com/poliutech/cotizador-backend/pkg/logger"
	"github.com/poliutech/cotizador-backend/pkg/pagination"
)

// maskedValue replaces sensitive key names in the stored form-key list.
const maskedValue = "[redacted]"

// sensitiveKeys are never written verbatim.
var sensitiveKeys = map[string]bool{
	"password":      true,
	"contrasena":    true,
	"contraseña":    true,
	"token":         true,
	"secret":        true,
	"authorization": true,
}

// Entry is the capture payload handed in by the HTTP layer.
type Entry struct {
	OccurredAt  time.Time
	UserID      *uuid.UUID
	UserName    string
	Role        string
	Method      string
	Path        string
	Route       string
	StatusCode  int
	IP          string
	UserAgent   string
	QueryString string
	FormKeys    []string
	Action      string
}

// ListResult is one page of the audit trail.
type ListResult struct {
	Entries []models.AuditLogEntry
	Total   int64
	Pages   int
}

// Service records and serves the audit trail.
type Service interface {
	Record(ctx context.Context, entry Entry)
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	Purge(ctx context.Context, retention time.Duration) (int64, error)
}

type service struct {
	repo   *Repository
	logger *logger.Logger
}

// NewService constructs an audit service instance.
func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logger: logg}, nil
}

// Record writes the entry, swallowing any storage error.
func (s *service) Record(ctx context.Context, entry Entry) {
	occurredAt := entry.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	row := &models.AuditLogEntry{
		ID:          uuid.New(),
		OccurredAt:  occurredAt,
		UserID:      entry.UserID,
		UserName:    entry.UserName,
		Role:        entry.Role,
		Method:      entry.Method,
		Path:        entry.Path,
		Route:       entry.Route,
		StatusCode:  entry.StatusCode,
		IP:          entry.IP,
		UserAgent:   entry.UserAgent,
		QueryString: entry.QueryString,
		FormKeys:    MaskKeys(entry.FormKeys),
		Action:      entry.Action,
	}
	if err := s.repo.Insert(ctx, row); err != nil {
		s.logger.Error(ctx, "audit write failed", err)
	}
}

func (s *service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing audit entries")
	}
	return &ListResult{
		Entries: rows,
		Total:   total,
		Pages:   pagination.Pages(total, filter.Page.Limit),
	}, nil
}

func (s *service) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-retention)
	deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "purging audit entries")
	}
	return deleted, nil
}

// MaskKeys sorts the captured key names and replaces sensitive ones.
func MaskKeys(keys []string) []string {
	if len(keys) == 0 {
		return nil
	}
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if sensitiveKeys[strings.ToLower(strings.TrimSpace(key))] {
			out = append(out, maskedValue)
			continue
		}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
