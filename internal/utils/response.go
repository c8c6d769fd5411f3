package utils

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/GTDGit/gtd_giftcards/internal/models"
)

// Response defines the standard API response envelope.
type Response struct {
	Success bool       `json:"success"`
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    Meta       `json:"meta"`
}

// ErrorInfo provides details for error responses.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta contains request-scoped metadata. Snapshot is set on responses served
// from the catalog so clients can tell which refresh cycle they are reading.
type Meta struct {
	RequestID  string        `json:"requestId"`
	Timestamp  string        `json:"timestamp"`
	Snapshot   *SnapshotMeta `json:"snapshot,omitempty"`
	Pagination *Pagination   `json:"pagination,omitempty"`
}

// SnapshotMeta identifies the catalog snapshot behind a response.
type SnapshotMeta struct {
	Generation uint64            `json:"generation"`
	Phase      models.CyclePhase `json:"phase"`
	UpdatedAt  string            `json:"updatedAt"`
}

// Pagination holds pagination metadata for list responses.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// NewPagination builds pagination metadata for an already-clamped page and
// limit. A non-positive limit yields zero pages.
func NewPagination(page, limit, totalItems int) Pagination {
	p := Pagination{Page: page, Limit: limit, TotalItems: totalItems}
	if limit > 0 {
		p.TotalPages = (totalItems + limit - 1) / limit
	}
	return p
}

// MetaOption decorates the Meta of a success response.
type MetaOption func(*Meta)

// WithSnapshot tags the response with the snapshot's generation and phase.
func WithSnapshot(snap *models.Snapshot) MetaOption {
	return func(m *Meta) {
		m.Snapshot = &SnapshotMeta{
			Generation: snap.Generation,
			Phase:      snap.Phase,
			UpdatedAt:  snap.UpdatedAt.UTC().Format(time.RFC3339),
		}
	}
}

// WithPagination attaches list pagination.
func WithPagination(p Pagination) MetaOption {
	return func(m *Meta) {
		m.Pagination = &p
	}
}

// Success writes a success response with the standard envelope.
func Success(c *gin.Context, code int, message string, data any, opts ...MetaOption) {
	meta := newMeta(c)
	for _, opt := range opts {
		opt(&meta)
	}
	c.JSON(code, Response{
		Success: true,
		Code:    code,
		Message: message,
		Data:    data,
		Meta:    meta,
	})
}

// Error writes an error response with provided API error code and message.
func Error(c *gin.Context, code int, errCode, message string) {
	c.JSON(code, Response{
		Success: false,
		Code:    code,
		Message: message,
		Error: &ErrorInfo{
			Code:    errCode,
			Message: message,
		},
		Meta: newMeta(c),
	})
}

func newMeta(c *gin.Context) Meta {
	return Meta{
		RequestID: requestID(c),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// requestID prefers the id set by the logging middleware.
func requestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return uuid.New().String()[:8]
}
