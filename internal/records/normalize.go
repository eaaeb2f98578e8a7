package records

import (
	"bytes"
	"encoding/json"

	"contalink/internal/core/apperror"
)

type rawResponse struct {
	Data       []Record    `json:"data"`
	Pagination *Pagination `json:"pagination"`
}

// NormalizeResponse decodes a records API body for req. A missing data array
// becomes an empty page and a missing pagination block is replaced by a zeroed
// one anchored at the requested page. A partial block takes its page and size
// from req, and its page count and flags are derived from total when absent.
// A body that is not a JSON object is a query failure.
func NormalizeResponse(raw []byte, req Request) (Response, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var body rawResponse
	if err := dec.Decode(&body); err != nil {
		return Response{}, apperror.NewQueryFailure("records backend returned an unreadable response", err)
	}

	resp := Response{Rows: body.Data}
	if resp.Rows == nil {
		resp.Rows = []Record{}
	}
	if body.Pagination != nil {
		resp.Pagination = fillPagination(*body.Pagination, req)
	} else {
		resp.Pagination = Pagination{Page: req.Page, PageSize: req.PageSize}
	}
	return resp, nil
}

func fillPagination(p Pagination, req Request) Pagination {
	if p.Page <= 0 {
		p.Page = req.Page
	}
	if p.PageSize <= 0 {
		p.PageSize = req.PageSize
	}
	if p.TotalPages == 0 && p.Total > 0 {
		return NewPagination(p.Total, p.Page, p.PageSize)
	}
	return p
}
