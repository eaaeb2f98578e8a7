// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import "contalink/internal/records"

// --- Pagination ---

// PaginationRequest contains pagination parameters.
type PaginationRequest struct {
	Page     int `form:"page" json:"page" binding:"omitempty,min=1"`
	PageSize int `form:"pageSize" json:"pageSize" binding:"omitempty,min=1"`
}

// Defaults sets default pagination values. Oversized pages are capped.
func (p *PaginationRequest) Defaults() {
	if p.Page <= 0 {
		p.Page = records.DefaultPage
	}
	if p.PageSize <= 0 {
		p.PageSize = records.DefaultPageSize
	}
	if p.PageSize > records.MaxPageSize {
		p.PageSize = records.MaxPageSize
	}
}

// --- List Response ---

// ListResponse wraps a list that is returned whole.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}

// NewListResponse wraps items.
func NewListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Data: items, Count: len(items)}
}

// --- Success Response ---

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// --- Error Response ---

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
