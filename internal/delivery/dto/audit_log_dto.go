package dto

import (
	"time"

	"clinic-front-desk/internal/domain/entity"
)

// Request DTOs

// AuditLogFilterRequest is read from the query string. A zero Limit means the default page size.
type AuditLogFilterRequest struct {
	UserID string `validate:"omitempty,uuid"`
	Action string `validate:"omitempty,max=100"`
	Entity string `validate:"omitempty,oneof=user doctor patient appointment queue"`
	Limit  int    `validate:"min=0,max=200"`
	Offset int    `validate:"min=0"`
}

// Response DTOs

type AuditLogResponse struct {
	ID        int64         `json:"id"`
	User      *UserResponse `json:"user,omitempty"`
	Action    string        `json:"action"`
	Metadata  entity.JSON   `json:"metadata"`
	CreatedAt time.Time     `json:"created_at"`
}

// AuditLogListResponse is one page; Total counts every matching log
type AuditLogListResponse struct {
	Logs   []AuditLogResponse `json:"logs"`
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}
