package filter

import (
	"fmt"
	"strings"
)

// ComparisonType is the operator of a filter row sent by API clients.
type ComparisonType string

const (
	Equal          ComparisonType = "eq"          // =
	NotEqual       ComparisonType = "neq"         // !=
	Less           ComparisonType = "lt"          // <
	Greater        ComparisonType = "gt"          // >
	LessOrEqual    ComparisonType = "lte"         // <=
	GreaterOrEqual ComparisonType = "gte"         // >=
	InList         ComparisonType = "in"          // value is an array
	ContainsText   ComparisonType = "contains"    // substring match
	StartsWithText ComparisonType = "starts_with" // prefix match
	InRange        ComparisonType = "between"     // value is [from, to]

	// Time-of-day comparisons on text columns.
	TimeEqual   ComparisonType = "time_eq"
	TimeAfter   ComparisonType = "time_gt"
	TimeBefore  ComparisonType = "time_lt"
	TimeInRange ComparisonType = "time_between" // value is [from, to]
)

// Item is one filter row.
type Item struct {
	Field    string         `json:"field"`
	Operator ComparisonType `json:"operator"`
	Value    any            `json:"value"`
}

var timeOps = map[ComparisonType]TimeOp{
	TimeEqual:  TimeEq,
	TimeAfter:  TimeGt,
	TimeBefore: TimeLt,
}

var compareOps = map[ComparisonType]Operator{
	NotEqual:       OpNotEqual,
	Less:           OpLess,
	Greater:        OpGreater,
	LessOrEqual:    OpLessOrEqual,
	GreaterOrEqual: OpGreaterOrEqual,
}

// ToPredicate converts the row into a predicate.
func (it Item) ToPredicate() (Predicate, error) {
	field := strings.TrimSpace(it.Field)
	if field == "" {
		return nil, fmt.Errorf("%w: empty field", ErrInvalidItem)
	}

	switch it.Operator {
	case Equal, "":
		return Equals{Field: field, Value: it.Value}, nil
	case ContainsText:
		return Contains{Field: field, Value: fmt.Sprint(it.Value)}, nil
	case StartsWithText:
		return StartsWith{Field: field, Value: fmt.Sprint(it.Value)}, nil
	case InList:
		values, ok := it.Value.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s: 'in' expects an array", ErrInvalidItem, field)
		}
		return In{Field: field, Values: values}, nil
	case InRange:
		bounds, ok := it.Value.([]any)
		if !ok || len(bounds) != 2 {
			return nil, fmt.Errorf("%w: %s: 'between' expects [from, to]", ErrInvalidItem, field)
		}
		return Between{Field: field, From: bounds[0], To: bounds[1]}, nil
	case TimeInRange:
		bounds, ok := it.Value.([]any)
		if !ok || len(bounds) != 2 {
			return nil, fmt.Errorf("%w: %s: 'time_between' expects [from, to]", ErrInvalidItem, field)
		}
		return Time{Field: field, Op: TimeBetween, From: fmt.Sprint(bounds[0]), To: fmt.Sprint(bounds[1])}, nil
	}

	if op, ok := timeOps[it.Operator]; ok {
		return Time{Field: field, Op: op, From: fmt.Sprint(it.Value)}, nil
	}

	if op, ok := compareOps[it.Operator]; ok {
		return Compare{Field: field, Op: op, Value: it.Value}, nil
	}
	return nil, fmt.Errorf("%w: unsupported operator %q", ErrInvalidItem, it.Operator)
}

// ItemsToPredicate converts rows into a single conjunction.
// No rows yields a nil predicate.
func ItemsToPredicate(items []Item) (Predicate, error) {
	if len(items) == 0 {
		return nil, nil
	}
	and := make(And, 0, len(items))
	for _, it := range items {
		p, err := it.ToPredicate()
		if err != nil {
			return nil, err
		}
		and = append(and, p)
	}
	return and, nil
}
