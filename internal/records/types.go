// Package records builds paginated record queries from table descriptors and
// runs them against a company's backend.
package records

import (
	"bytes"
	"encoding/json"
	"strings"

	"contalink/internal/domain/filter"
	"contalink/internal/metadata"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// OrderBy is one sort key.
type OrderBy struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// Options are the caller-controlled parts of a request.
type Options struct {
	Filter   filter.Predicate
	OrderBy  []OrderBy
	Page     int
	PageSize int
}

// Request is one records query. It serializes to the records API body.
type Request struct {
	BackendID   int64
	TableName   string
	Fields      []string
	ForeignKeys []metadata.JoinSpec // nil when the view has no joins
	Filter      filter.Predicate
	OrderBy     []OrderBy
	Page        int
	PageSize    int
}

type wireRequest struct {
	BackendID   int64               `json:"empresa_servidor_id"`
	TableName   string              `json:"table_name"`
	Fields      []string            `json:"fields"`
	ForeignKeys []metadata.JoinSpec `json:"foreign_keys,omitempty"`
	Filters     map[string]any      `json:"filters,omitempty"`
	OrderBy     []OrderBy           `json:"order_by,omitempty"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"page_size"`
}

// Filters returns the wire encoding of the request filter.
func (r Request) Filters() (map[string]any, error) {
	return filter.Encode(r.Filter)
}

func (r Request) MarshalJSON() ([]byte, error) {
	filters, err := r.Filters()
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireRequest{
		BackendID:   r.BackendID,
		TableName:   r.TableName,
		Fields:      r.Fields,
		ForeignKeys: r.ForeignKeys,
		Filters:     filters,
		OrderBy:     r.OrderBy,
		Page:        r.Page,
		PageSize:    r.PageSize,
	})
}

// Offset is the number of rows skipped before the requested page.
func (r Request) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// Record is one returned row keyed by column name.
type Record map[string]any

// Pagination describes where a page sits in the full result.
type Pagination struct {
	Total       int64    `json:"total"`
	Page        int      `json:"page"`
	PageSize    int      `json:"page_size"`
	TotalPages  int      `json:"total_pages"`
	HasNext     flexBool `json:"next"`
	HasPrevious flexBool `json:"previous"`
}

// NewPagination computes the page block for total rows.
func NewPagination(total int64, page, pageSize int) Pagination {
	p := Pagination{Total: total, Page: page, PageSize: pageSize}
	if pageSize > 0 {
		p.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	p.HasNext = flexBool(page < p.TotalPages)
	p.HasPrevious = flexBool(page > 1)
	return p
}

// Response is one normalized page of records.
type Response struct {
	Rows       []Record   `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// flexBool accepts booleans as well as link-style values (a URL string or
// null) for the next/previous flags.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("true")):
		*b = true
	case bytes.Equal(data, []byte("false")), bytes.Equal(data, []byte("null")):
		*b = false
	default:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = flexBool(strings.TrimSpace(s) != "")
	}
	return nil
}
