package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// AuditLogEntry is one captured API request. Only key names of submitted
// payloads are stored, never values; sensitive key names are masked before
// the write.
type AuditLogEntry struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	OccurredAt  time.Time      `gorm:"column:occurred_at;not null;index:idx_audit_occurred_at"`
	UserID      *uuid.UUID     `gorm:"column:user_id;type:uuid"`
	UserName    string         `gorm:"column:user_name;not null;default:''"`
	Role        string         `gorm:"column:role;not null;default:''"`
	Method      string         `gorm:"column:method;not null"`
	Path        string         `gorm:"column:path;not null"`
	Route       string         `gorm:"column:route;not null;default:''"`
	StatusCode  int            `gorm:"column:status_code;not null;default:0"`
	IP          string         `gorm:"column:ip;not null;default:''"`
	UserAgent   string         `gorm:"column:user_agent;not null;default:''"`
	QueryString string         `gorm:"column:query_string;not null;default:''"`
	FormKeys    pq.StringArray `gorm:"column:form_keys;type:text[]"`
	Action      string         `gorm:"column:action;not null;default:''"`
}
