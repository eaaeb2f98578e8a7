package dto

import (
	"github.com/shopspring/decimal"

	"contalink/internal/domain/filter"
	"contalink/internal/records"
)

// RecordsQuery are the query parameters of GET /views/:view/records.
// Search and Field are mutually exclusive; Search wins when both are set.
type RecordsQuery struct {
	PaginationRequest
	Search  string `form:"search"`
	Field   string `form:"field"`
	Value   string `form:"value"`
	OrderBy string `form:"orderBy"` // "-FECHA,NUMERO" or "FECHA:desc"
}

// RecordsQueryRequest is the body of POST /views/:view/records/query.
type RecordsQueryRequest struct {
	PaginationRequest
	Filter  []filter.Item     `json:"filter"`
	Search  string            `json:"search"`
	OrderBy []records.OrderBy `json:"orderBy"`
}

// RecordsResponse is one page of a view.
type RecordsResponse struct {
	View       string                     `json:"view"`
	Data       []records.Record           `json:"data"`
	Pagination records.Pagination         `json:"pagination"`
	Totals     map[string]decimal.Decimal `json:"totals,omitempty"`
}

// NewRecordsResponse wraps a records page. totals may be nil.
func NewRecordsResponse(view string, resp records.Response, totals map[string]decimal.Decimal) RecordsResponse {
	rows := resp.Rows
	if rows == nil {
		rows = []records.Record{}
	}
	return RecordsResponse{
		View:       view,
		Data:       rows,
		Pagination: resp.Pagination,
		Totals:     totals,
	}
}
