package filter

import (
	"fmt"
)

// OrKey is the wire key of the disjunction group.
const OrKey = "OR"

// Encode renders p in the records API format:
//
//	{"FIELD": {"operator": "=", "value": v}}
//	{"FIELD": {"contains": v}}
//	{"FIELD": {"startsWith": v}}
//	{"FIELD": {"between": [a, b]}}
//	{"FIELD": {"in": [...]}}
//	{"FIELD": {"time": {"between": [a, b]}}}, or "eq" / "gt" / "lt" with one value
//	{"OR": [{"FIELD": cond}, ...]}
//
// Top-level keys are implicitly ANDed, so a field may appear only once and at
// most one OR group is allowed. A nil predicate encodes as nil.
func Encode(p Predicate) (map[string]any, error) {
	if p == nil {
		return nil, nil
	}
	out := make(map[string]any)
	if err := encodeInto(out, p); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func encodeInto(out map[string]any, p Predicate) error {
	switch v := p.(type) {
	case nil:
		return nil
	case And:
		for _, m := range v {
			if err := encodeInto(out, m); err != nil {
				return err
			}
		}
		return nil
	case Or:
		if len(v) == 0 {
			return nil
		}
		if _, exists := out[OrKey]; exists {
			return ErrMultipleOr
		}
		group := make([]map[string]any, 0, len(v))
		for _, m := range v {
			fp, ok := m.(FieldPredicate)
			if !ok {
				return ErrNestedGroup
			}
			cond, err := condition(fp)
			if err != nil {
				return err
			}
			group = append(group, map[string]any{fp.FieldName(): cond})
		}
		out[OrKey] = group
		return nil
	case FieldPredicate:
		field := v.FieldName()
		if _, exists := out[field]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateField, field)
		}
		cond, err := condition(v)
		if err != nil {
			return err
		}
		out[field] = cond
		return nil
	}
	return fmt.Errorf("filter: unknown predicate %T", p)
}

func condition(fp FieldPredicate) (map[string]any, error) {
	switch v := fp.(type) {
	case Equals:
		return map[string]any{"operator": string(OpEqual), "value": v.Value}, nil
	case Compare:
		if !v.Op.Valid() {
			return nil, fmt.Errorf("filter: %s: unsupported operator %q", v.Field, v.Op)
		}
		return map[string]any{"operator": string(v.Op), "value": v.Value}, nil
	case Contains:
		return map[string]any{"contains": v.Value}, nil
	case StartsWith:
		return map[string]any{"startsWith": v.Value}, nil
	case Between:
		return map[string]any{"between": []any{v.From, v.To}}, nil
	case In:
		values := v.Values
		if values == nil {
			values = []any{}
		}
		return map[string]any{"in": values}, nil
	case Time:
		if !v.Op.Valid() {
			return nil, fmt.Errorf("filter: %s: unsupported time comparison %q", v.Field, v.Op)
		}
		if v.Op == TimeBetween {
			return map[string]any{"time": map[string]any{"between": []string{v.From, v.To}}}, nil
		}
		return map[string]any{"time": map[string]any{string(v.Op): v.From}}, nil
	}
	return nil, fmt.Errorf("filter: unknown predicate %T", fp)
}
