package records

import (
	"strings"

	"contalink/internal/core/apperror"
	"contalink/internal/domain/filter"
	"contalink/internal/metadata"
)

// BuildRequest turns a descriptor into a records request for backendID.
//
// Fields are the descriptor's field names, deduplicated, followed by every
// join's local field not already listed (the backend needs it to join).
// Joins are passed through, or omitted when the view has none.
func BuildRequest(d *metadata.TableDescriptor, backendID int64, opts Options) (Request, error) {
	if d == nil {
		return Request{}, apperror.NewValidation("view descriptor is required")
	}
	if backendID <= 0 {
		return Request{}, apperror.NewTenantRequired("no company backend selected").WithCause(ErrNoBackend)
	}

	seen := make(map[string]bool, len(d.Fields)+len(d.ForeignKeys))
	fields := make([]string, 0, len(d.Fields)+len(d.ForeignKeys))
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		fields = append(fields, name)
	}
	for _, f := range d.Fields {
		add(f.Name)
	}
	for _, j := range d.ForeignKeys {
		add(j.LocalField)
	}

	var joins []metadata.JoinSpec
	if len(d.ForeignKeys) > 0 {
		joins = make([]metadata.JoinSpec, len(d.ForeignKeys))
		copy(joins, d.ForeignKeys)
	}

	order, err := normalizeOrder(opts.OrderBy)
	if err != nil {
		return Request{}, err
	}

	req := Request{
		BackendID:   backendID,
		TableName:   d.TableName,
		Fields:      fields,
		ForeignKeys: joins,
		Filter:      opts.Filter,
		OrderBy:     order,
		Page:        opts.Page,
		PageSize:    opts.PageSize,
	}
	if req.Page <= 0 {
		req.Page = DefaultPage
	}
	if req.PageSize <= 0 {
		req.PageSize = DefaultPageSize
	}
	if req.PageSize > MaxPageSize {
		req.PageSize = MaxPageSize
	}

	if _, err := req.Filters(); err != nil {
		return Request{}, apperror.NewValidation("invalid filter").WithCause(err)
	}
	return req, nil
}

// Search builds a request matching rows where any search field contains query.
// Search terms are ORed among themselves and ANDed with opts.Filter.
// A blank query adds no search predicate.
func Search(d *metadata.TableDescriptor, backendID int64, query string, opts Options) (Request, error) {
	if d != nil {
		opts.Filter = filter.AndOf(opts.Filter, SearchPredicate(d, query))
	}
	return BuildRequest(d, backendID, opts)
}

// SearchPredicate is the OR of Contains over the descriptor's search fields.
// It is nil for a blank query or a view without search fields.
func SearchPredicate(d *metadata.TableDescriptor, query string) filter.Predicate {
	query = strings.TrimSpace(query)
	if query == "" || len(d.SearchFields) == 0 {
		return nil
	}
	or := make(filter.Or, 0, len(d.SearchFields))
	for _, f := range d.SearchFields {
		or = append(or, filter.Contains{Field: f, Value: query})
	}
	return or
}

// EqualityFilter builds a request restricted to field = value.
func EqualityFilter(d *metadata.TableDescriptor, backendID int64, field string, value any, opts Options) (Request, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return Request{}, apperror.NewInvalidInput("field", "filter field is required")
	}
	opts.Filter = filter.AndOf(opts.Filter, filter.Equals{Field: field, Value: value})
	return BuildRequest(d, backendID, opts)
}

func normalizeOrder(in []OrderBy) ([]OrderBy, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]OrderBy, 0, len(in))
	for _, o := range in {
		field := strings.TrimSpace(o.Field)
		if field == "" {
			return nil, apperror.NewInvalidInput("order_by", "order field is required")
		}
		dir := Direction(strings.ToUpper(strings.TrimSpace(string(o.Direction))))
		switch dir {
		case "":
			dir = Asc
		case Asc, Desc:
		default:
			return nil, apperror.NewInvalidInput("order_by", "direction must be ASC or DESC").
				WithDetail("direction", string(o.Direction))
		}
		out = append(out, OrderBy{Field: field, Direction: dir})
	}
	return out, nil
}

// ParseOrderBy parses "FIELD" or "FIELD:desc" / "-FIELD" lists separated by commas.
func ParseOrderBy(s string) []OrderBy {
	var out []OrderBy
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		dir := Asc
		if strings.HasPrefix(part, "-") {
			dir = Desc
			part = strings.TrimPrefix(part, "-")
		}
		if field, d, ok := strings.Cut(part, ":"); ok {
			part = field
			dir = Direction(strings.ToUpper(d))
		}
		out = append(out, OrderBy{Field: part, Direction: dir})
	}
	return out
}
