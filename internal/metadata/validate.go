package metadata

import (
	"regexp"
	"strings"

	"contalink/internal/core/apperror"
)

var identifierRe = regexp.MustCompile(`^[A-Z_][A-Z0-9_]*$`)

// ValidIdentifier reports whether s is a safe backend identifier.
func ValidIdentifier(s string) bool {
	return identifierRe.MatchString(s)
}

// CanonicalIdentifier trims and upper-cases s.
func CanonicalIdentifier(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func normalize(d TableDescriptor) TableDescriptor {
	d.TableName = CanonicalIdentifier(d.TableName)
	d.PrimaryKey = CanonicalIdentifier(d.PrimaryKey)

	fields := make([]FieldSpec, len(d.Fields))
	for i, f := range d.Fields {
		f.Name = CanonicalIdentifier(f.Name)
		fields[i] = f
	}
	d.Fields = fields

	joins := make([]JoinSpec, len(d.ForeignKeys))
	for i, j := range d.ForeignKeys {
		j.Table = CanonicalIdentifier(j.Table)
		j.LocalField = CanonicalIdentifier(j.LocalField)
		j.ForeignField = CanonicalIdentifier(j.ForeignField)
		j.JoinFrom = CanonicalIdentifier(j.JoinFrom)
		j.JoinType = JoinType(strings.ToUpper(string(j.JoinType)))
		cols := make([]JoinColumn, len(j.Columns))
		for k, c := range j.Columns {
			c.Name = CanonicalIdentifier(c.Name)
			c.As = CanonicalIdentifier(c.As)
			cols[k] = c
		}
		j.Columns = cols
		joins[i] = j
	}
	d.ForeignKeys = joins

	search := make([]string, len(d.SearchFields))
	for i, s := range d.SearchFields {
		search[i] = CanonicalIdentifier(s)
	}
	d.SearchFields = search
	return d
}

// Validate checks a descriptor once, at load time:
//   - every identifier is well formed;
//   - join types are known;
//   - every JoinFrom names the primary table or a table joined earlier;
//   - a column alias is provided by at most one join;
//   - field and search field names are identifiers (names that are not join
//     aliases are primary table columns).
func Validate(d TableDescriptor) error {
	fail := func(msg string) *apperror.AppError {
		return apperror.NewConfiguration(msg).WithDetail("view", d.Name)
	}

	if d.Name == "" {
		return apperror.NewConfiguration("view without name")
	}
	if !ValidIdentifier(d.TableName) {
		return fail("invalid table name").WithDetail("table", d.TableName)
	}
	if d.PrimaryKey != "" && !ValidIdentifier(d.PrimaryKey) {
		return fail("invalid primary key").WithDetail("field", d.PrimaryKey)
	}

	introduced := map[string]bool{d.TableName: true}
	aliases := make(map[string]string)
	for i, j := range d.ForeignKeys {
		for _, id := range []string{j.Table, j.LocalField, j.ForeignField} {
			if !ValidIdentifier(id) {
				return fail("invalid join identifier").WithDetail("join", i).WithDetail("identifier", id)
			}
		}
		if !j.JoinType.Valid() {
			return fail("invalid join type").WithDetail("join", i).WithDetail("join_type", string(j.JoinType))
		}
		if j.JoinFrom != "" && !introduced[j.JoinFrom] {
			return fail("joinFrom references a table not joined before").
				WithDetail("join", i).
				WithDetail("join_from", j.JoinFrom)
		}
		for _, c := range j.Columns {
			if !ValidIdentifier(c.Name) || !ValidIdentifier(c.Alias()) {
				return fail("invalid join column").WithDetail("join", i).WithDetail("column", c.Name)
			}
			if owner, dup := aliases[c.Alias()]; dup {
				return fail("column alias provided by two joins").
					WithDetail("alias", c.Alias()).
					WithDetail("tables", []string{owner, j.Table})
			}
			aliases[c.Alias()] = j.Table
		}
		introduced[j.Table] = true
	}

	seen := make(map[string]bool, len(d.Fields))
	for _, f := range d.Fields {
		if !ValidIdentifier(f.Name) {
			return fail("invalid field name").WithDetail("field", f.Name)
		}
		if seen[f.Name] {
			return fail("duplicate field").WithDetail("field", f.Name)
		}
		seen[f.Name] = true
	}
	for _, s := range d.SearchFields {
		if !ValidIdentifier(s) {
			return fail("invalid search field").WithDetail("field", s)
		}
	}
	return nil
}
