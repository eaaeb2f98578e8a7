// Package sqlgen compiles a records request into one paginated SQL query plus
// a matching count query.
package sqlgen

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"contalink/internal/core/apperror"
	"contalink/internal/domain/filter"
	"contalink/internal/metadata"
	"contalink/internal/records"
)

// primaryAlias is the alias of the request's main table.
const primaryAlias = "a"

// Query is a compiled request.
type Query struct {
	SQL       string
	Args      []any
	CountSQL  string
	CountArgs []any
}

type join struct {
	spec   metadata.JoinSpec
	alias  string
	parent string
}

type compiler struct {
	req     records.Request
	dialect Dialect
	joins   []join
	columns map[string]string // output alias -> qualified column
}

// Compile turns req into SQL for the given dialect.
//
// Joined tables get aliases fk_<first 3 of table>_<first 5 of local field>;
// a repeated alias gets a _2, _3... suffix. A chained join (JoinFrom set)
// hangs off the most recent alias of its parent table.
func Compile(req records.Request, d Dialect) (Query, error) {
	if req.Page < 1 {
		return Query{}, apperror.NewInvalidInput("page", "page must be >= 1")
	}
	if req.PageSize < 1 || req.PageSize > records.MaxPageSize {
		return Query{}, apperror.NewInvalidInput("page_size", fmt.Sprintf("page size must be between 1 and %d", records.MaxPageSize))
	}

	table, err := identifier("table_name", req.TableName)
	if err != nil {
		return Query{}, err
	}

	c := &compiler{req: req, dialect: d, columns: make(map[string]string)}
	if err := c.planJoins(); err != nil {
		return Query{}, err
	}

	cols, err := c.selectColumns()
	if err != nil {
		return Query{}, err
	}

	base := squirrel.Select(cols...).From(table + " " + primaryAlias)
	for _, j := range c.joins {
		base = base.JoinClause(fmt.Sprintf("%s JOIN %s %s ON %s.%s = %s.%s",
			j.spec.EffectiveJoinType(), j.spec.Table, j.alias,
			j.parent, j.spec.LocalField, j.alias, j.spec.ForeignField))
	}

	if req.Filter != nil {
		where, err := c.predicate(req.Filter)
		if err != nil {
			return Query{}, err
		}
		if where != nil {
			base = base.Where(where)
		}
	}

	count := squirrel.Select("COUNT(*)").FromSelect(base, "q").PlaceholderFormat(d.Placeholder)

	for _, o := range req.OrderBy {
		col, err := c.column(o.Field)
		if err != nil {
			return Query{}, err
		}
		dir := o.Direction
		if dir != records.Desc {
			dir = records.Asc
		}
		base = base.OrderBy(col + " " + string(dir))
	}

	page := d.paginate(base, uint64(req.PageSize), uint64(req.Offset())).PlaceholderFormat(d.Placeholder)

	var q Query
	if q.SQL, q.Args, err = page.ToSql(); err != nil {
		return Query{}, apperror.NewInternal(err)
	}
	if q.CountSQL, q.CountArgs, err = count.ToSql(); err != nil {
		return Query{}, apperror.NewInternal(err)
	}
	return q, nil
}

func (c *compiler) planJoins() error {
	primary := metadata.CanonicalIdentifier(c.req.TableName)
	counter := make(map[string]int)
	byTable := map[string]string{primary: primaryAlias}

	for i, spec := range c.req.ForeignKeys {
		spec.Table = metadata.CanonicalIdentifier(spec.Table)
		spec.LocalField = metadata.CanonicalIdentifier(spec.LocalField)
		spec.ForeignField = metadata.CanonicalIdentifier(spec.ForeignField)
		spec.JoinFrom = metadata.CanonicalIdentifier(spec.JoinFrom)
		spec.JoinType = metadata.JoinType(metadata.CanonicalIdentifier(string(spec.JoinType)))

		for _, id := range []string{spec.Table, spec.LocalField, spec.ForeignField} {
			if !metadata.ValidIdentifier(id) {
				return apperror.NewInvalidInput("foreign_keys", "invalid identifier in join").
					WithDetail("join", i).WithDetail("identifier", id)
			}
		}
		if !spec.JoinType.Valid() {
			return apperror.NewInvalidInput("foreign_keys", "join type must be INNER, LEFT, RIGHT or FULL").
				WithDetail("join", i).WithDetail("join_type", string(spec.JoinType))
		}

		parent := primaryAlias
		if spec.JoinFrom != "" {
			p, ok := byTable[spec.JoinFrom]
			if !ok {
				return apperror.NewInvalidInput("foreign_keys", "chained join parent must be joined before it").
					WithDetail("join", i).WithDetail("join_from", spec.JoinFrom)
			}
			parent = p
		}

		alias := joinAlias(spec.Table, spec.LocalField)
		counter[alias]++
		if n := counter[alias]; n > 1 {
			alias = fmt.Sprintf("%s_%d", alias, n)
		}
		byTable[spec.Table] = alias

		cols := make([]metadata.JoinColumn, len(spec.Columns))
		for k, col := range spec.Columns {
			col.Name = metadata.CanonicalIdentifier(col.Name)
			col.As = metadata.CanonicalIdentifier(col.As)
			if !metadata.ValidIdentifier(col.Name) || !metadata.ValidIdentifier(col.Alias()) {
				return apperror.NewInvalidInput("foreign_keys", "invalid join column").
					WithDetail("join", i).WithDetail("column", col.Name)
			}
			cols[k] = col
			if _, taken := c.columns[col.Alias()]; !taken {
				c.columns[col.Alias()] = alias + "." + col.Name
			}
		}
		spec.Columns = cols
		c.joins = append(c.joins, join{spec: spec, alias: alias, parent: parent})
	}
	return nil
}

func joinAlias(table, local string) string {
	return "fk_" + prefix(table, 3) + "_" + prefix(local, 5)
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// selectColumns lists primary columns for plain fields and aliased columns
// for fields provided by joins. No fields selects a.*.
func (c *compiler) selectColumns() ([]string, error) {
	requested := make(map[string]bool, len(c.req.Fields))
	var cols []string
	for _, f := range c.req.Fields {
		name, err := identifier("fields", f)
		if err != nil {
			return nil, err
		}
		requested[name] = true
		if _, isJoined := c.columns[name]; !isJoined {
			cols = append(cols, primaryAlias+"."+name)
		}
	}

	for _, j := range c.joins {
		for _, col := range j.spec.Columns {
			if requested[col.Alias()] {
				cols = append(cols, j.alias+"."+col.Name+" AS "+col.Alias())
			}
		}
	}

	if len(cols) == 0 {
		return []string{primaryAlias + ".*"}, nil
	}
	return cols, nil
}

// column qualifies a field. Join column aliases resolve to their joined
// column, and TABLE_FIELD resolves to FIELD of the first join on TABLE.
// Anything else is a primary table column.
func (c *compiler) column(field string) (string, error) {
	name, err := identifier("field", field)
	if err != nil {
		return "", err
	}
	if col, ok := c.columns[name]; ok {
		return col, nil
	}
	for _, j := range c.joins {
		if rest, ok := strings.CutPrefix(name, j.spec.Table+"_"); ok && rest != "" {
			return j.alias + "." + rest, nil
		}
	}
	return primaryAlias + "." + name, nil
}

func (c *compiler) predicate(p filter.Predicate) (squirrel.Sqlizer, error) {
	switch v := p.(type) {
	case filter.And:
		out := make(squirrel.And, 0, len(v))
		for _, m := range v {
			s, err := c.predicate(m)
			if err != nil {
				return nil, err
			}
			if s != nil {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil, nil
		}
		return out, nil
	case filter.Or:
		out := make(squirrel.Or, 0, len(v))
		for _, m := range v {
			s, err := c.predicate(m)
			if err != nil {
				return nil, err
			}
			if s != nil {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil, nil
		}
		return out, nil
	case filter.FieldPredicate:
		return c.fieldPredicate(v)
	}
	return nil, apperror.NewValidation(fmt.Sprintf("unsupported predicate %T", p))
}

func (c *compiler) fieldPredicate(fp filter.FieldPredicate) (squirrel.Sqlizer, error) {
	col, err := c.column(fp.FieldName())
	if err != nil {
		return nil, err
	}

	switch v := fp.(type) {
	case filter.Equals:
		return squirrel.Expr(col+" = ?", v.Value), nil
	case filter.Compare:
		if !v.Op.Valid() {
			return nil, apperror.NewInvalidInput("filters", "operator not allowed").WithDetail("operator", string(v.Op))
		}
		return squirrel.Expr(col+" "+string(v.Op)+" ?", v.Value), nil
	case filter.Contains:
		return c.dialect.contains(col, v.Value), nil
	case filter.StartsWith:
		return c.dialect.startsWith(col, v.Value), nil
	case filter.Between:
		return squirrel.Expr(col+" BETWEEN ? AND ?", v.From, v.To), nil
	case filter.In:
		// An empty list places no restriction, matching the records API.
		if len(v.Values) == 0 {
			return nil, nil
		}
		return squirrel.Eq{col: v.Values}, nil
	case filter.Time:
		switch v.Op {
		case filter.TimeBetween:
			return squirrel.Expr(col+" BETWEEN ? AND ?", v.From, v.To), nil
		case filter.TimeEq:
			return squirrel.Expr(col+" = ?", v.From), nil
		case filter.TimeGt:
			return squirrel.Expr(col+" > ?", v.From), nil
		case filter.TimeLt:
			return squirrel.Expr(col+" < ?", v.From), nil
		}
		return nil, apperror.NewInvalidInput("filters", "time comparison not allowed").WithDetail("operator", string(v.Op))
	}
	return nil, apperror.NewValidation(fmt.Sprintf("unsupported predicate %T", fp))
}

func identifier(field, raw string) (string, error) {
	name := metadata.CanonicalIdentifier(raw)
	if !metadata.ValidIdentifier(name) {
		return "", apperror.NewInvalidInput(field, "invalid identifier").WithDetail("identifier", raw)
	}
	return name, nil
}
