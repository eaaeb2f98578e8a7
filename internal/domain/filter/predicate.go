// Package filter models record filters as a closed set of predicate types
// and encodes them into the records API wire format.
package filter

import "errors"

var (
	ErrDuplicateField = errors.New("filter: field constrained twice")
	ErrMultipleOr     = errors.New("filter: more than one OR group")
	ErrNestedGroup    = errors.New("filter: OR members must be field predicates")
	ErrInvalidItem    = errors.New("filter: invalid item")
)

// Operator is a scalar comparison understood by the records API.
type Operator string

const (
	OpEqual          Operator = "="
	OpNotEqual       Operator = "!="
	OpLess           Operator = "<"
	OpGreater        Operator = ">"
	OpLessOrEqual    Operator = "<="
	OpGreaterOrEqual Operator = ">="
)

// Valid reports whether op is one of the supported operators.
func (op Operator) Valid() bool {
	switch op {
	case OpEqual, OpNotEqual, OpLess, OpGreater, OpLessOrEqual, OpGreaterOrEqual:
		return true
	}
	return false
}

// TimeOp is the comparison of a Time predicate.
type TimeOp string

const (
	TimeEq      TimeOp = "eq"
	TimeGt      TimeOp = "gt"
	TimeLt      TimeOp = "lt"
	TimeBetween TimeOp = "between"
)

// Valid reports whether op is a supported time comparison.
func (op TimeOp) Valid() bool {
	switch op {
	case TimeEq, TimeGt, TimeLt, TimeBetween:
		return true
	}
	return false
}

// Predicate is one of Equals, Compare, Contains, StartsWith, Between, In,
// Time, Or, And.
type Predicate interface {
	predicate()
}

// FieldPredicate constrains exactly one field.
type FieldPredicate interface {
	Predicate
	FieldName() string
}

type Equals struct {
	Field string
	Value any
}

type Compare struct {
	Field string
	Op    Operator
	Value any
}

type Contains struct {
	Field string
	Value string
}

type StartsWith struct {
	Field string
	Value string
}

// Between is inclusive on both ends.
type Between struct {
	Field    string
	From, To any
}

type In struct {
	Field  string
	Values []any
}

// Time compares a time of day stored as text (HH:MM or HH:MM:SS), so values
// compare as strings. To is used only by TimeBetween.
type Time struct {
	Field    string
	Op       TimeOp
	From, To string
}

// Or matches when any member matches. Members must be field predicates.
type Or []Predicate

// And matches when every member matches.
type And []Predicate

func (Equals) predicate()     {}
func (Compare) predicate()    {}
func (Contains) predicate()   {}
func (StartsWith) predicate() {}
func (Between) predicate()    {}
func (In) predicate()         {}
func (Time) predicate()       {}
func (Or) predicate()         {}
func (And) predicate()        {}

func (p Equals) FieldName() string     { return p.Field }
func (p Compare) FieldName() string    { return p.Field }
func (p Contains) FieldName() string   { return p.Field }
func (p StartsWith) FieldName() string { return p.Field }
func (p Between) FieldName() string    { return p.Field }
func (p In) FieldName() string         { return p.Field }
func (p Time) FieldName() string       { return p.Field }

// AndOf joins predicates, skipping nils and flattening nested And values.
// It returns nil when nothing is left and the sole member when only one is.
func AndOf(preds ...Predicate) Predicate {
	var out And
	for _, p := range preds {
		switch v := p.(type) {
		case nil:
		case And:
			for _, m := range v {
				if m != nil {
					out = append(out, m)
				}
			}
		default:
			out = append(out, v)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	}
	return out
}

// Walk calls fn for every field predicate in p. inOr is true for members of an Or group.
func Walk(p Predicate, fn func(fp FieldPredicate, inOr bool)) {
	switch v := p.(type) {
	case And:
		for _, m := range v {
			Walk(m, fn)
		}
	case Or:
		for _, m := range v {
			if fp, ok := m.(FieldPredicate); ok {
				fn(fp, true)
			}
		}
	case FieldPredicate:
		fn(v, false)
	}
}
