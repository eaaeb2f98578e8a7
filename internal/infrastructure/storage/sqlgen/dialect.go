package sqlgen

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
)

// Dialect covers the SQL differences between supported backends.
type Dialect struct {
	Name        string
	Placeholder squirrel.PlaceholderFormat

	contains   func(col, v string) squirrel.Sqlizer
	startsWith func(col, v string) squirrel.Sqlizer
	paginate   func(base squirrel.SelectBuilder, limit, offset uint64) squirrel.SelectBuilder
}

// Firebird pages with FIRST/SKIP over a derived table and matches text with
// CONTAINING (case-insensitive) and STARTING WITH.
var Firebird = Dialect{
	Name:        "firebird",
	Placeholder: squirrel.Question,
	contains: func(col, v string) squirrel.Sqlizer {
		return squirrel.Expr(col+" CONTAINING ?", v)
	},
	startsWith: func(col, v string) squirrel.Sqlizer {
		return squirrel.Expr(col+" STARTING WITH ?", v)
	},
	paginate: func(base squirrel.SelectBuilder, limit, offset uint64) squirrel.SelectBuilder {
		return squirrel.Select("*").
			Options(fmt.Sprintf("FIRST %d SKIP %d", limit, offset)).
			FromSelect(base, "q")
	},
}

// Postgres pages with LIMIT/OFFSET and matches text with ILIKE.
var Postgres = Dialect{
	Name:        "postgres",
	Placeholder: squirrel.Dollar,
	contains: func(col, v string) squirrel.Sqlizer {
		return squirrel.ILike{col: "%" + escapeLike(v) + "%"}
	},
	startsWith: func(col, v string) squirrel.Sqlizer {
		return squirrel.ILike{col: escapeLike(v) + "%"}
	},
	paginate: func(base squirrel.SelectBuilder, limit, offset uint64) squirrel.SelectBuilder {
		return base.Limit(limit).Offset(offset)
	},
}

// DialectByName returns the dialect called name.
func DialectByName(name string) (Dialect, bool) {
	switch strings.ToLower(name) {
	case Firebird.Name:
		return Firebird, true
	case Postgres.Name, "pg":
		return Postgres, true
	}
	return Dialect{}, false
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
