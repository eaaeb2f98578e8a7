package filter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		in   Predicate
		want string
	}{
		{"nil", nil, `null`},
		{"equals", Equals{Field: "CODCOMP", Value: "FV"}, `{"CODCOMP":{"operator":"=","value":"FV"}}`},
		{"compare", Compare{Field: "TOTAL", Op: OpGreaterOrEqual, Value: 100}, `{"TOTAL":{"operator":">=","value":100}}`},
		{"contains", Contains{Field: "NOMBRE", Value: "x"}, `{"NOMBRE":{"contains":"x"}}`},
		{"starts with", StartsWith{Field: "CODIGO", Value: "01"}, `{"CODIGO":{"startsWith":"01"}}`},
		{"between", Between{Field: "FECHA", From: "2024-01-01", To: "2024-01-31"}, `{"FECHA":{"between":["2024-01-01","2024-01-31"]}}`},
		{"in", In{Field: "SUCID", Values: []any{1, 2}}, `{"SUCID":{"in":[1,2]}}`},
		{"empty in", In{Field: "SUCID"}, `{"SUCID":{"in":[]}}`},
		{"time between", Time{Field: "HORA", Op: TimeBetween, From: "08:00", To: "12:00"}, `{"HORA":{"time":{"between":["08:00","12:00"]}}}`},
		{"time eq", Time{Field: "HORA", Op: TimeEq, From: "09:15"}, `{"HORA":{"time":{"eq":"09:15"}}}`},
		{
			"or",
			Or{Contains{Field: "A", Value: "x"}, Contains{Field: "B", Value: "x"}},
			`{"OR":[{"A":{"contains":"x"}},{"B":{"contains":"x"}}]}`,
		},
		{
			"and with or",
			And{Equals{Field: "CODCOMP", Value: "FV"}, Or{Contains{Field: "A", Value: "x"}}},
			`{"CODCOMP":{"operator":"=","value":"FV"},"OR":[{"A":{"contains":"x"}}]}`,
		},
		{"empty or", Or{}, `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.in)
			require.NoError(t, err)
			raw, err := json.Marshal(got)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(raw))
		})
	}
}

func TestEncodeErrors(t *testing.T) {
	_, err := Encode(And{Equals{Field: "A", Value: 1}, Contains{Field: "A", Value: "x"}})
	assert.ErrorIs(t, err, ErrDuplicateField)

	_, err = Encode(And{Or{Equals{Field: "A", Value: 1}}, Or{Equals{Field: "B", Value: 1}}})
	assert.ErrorIs(t, err, ErrMultipleOr)

	_, err = Encode(Or{And{Equals{Field: "A", Value: 1}}})
	assert.ErrorIs(t, err, ErrNestedGroup)

	_, err = Encode(Compare{Field: "A", Op: "LIKE", Value: 1})
	assert.Error(t, err)
}

func TestAndOf(t *testing.T) {
	assert.Nil(t, AndOf())
	assert.Nil(t, AndOf(nil, And{}))

	eq := Equals{Field: "A", Value: 1}
	assert.Equal(t, eq, AndOf(nil, eq))

	got := AndOf(And{eq}, Contains{Field: "B", Value: "x"}, nil)
	assert.Equal(t, And{eq, Contains{Field: "B", Value: "x"}}, got)
}

func TestWalk(t *testing.T) {
	p := And{
		Equals{Field: "A", Value: 1},
		Or{Contains{Field: "B", Value: "x"}, Contains{Field: "C", Value: "x"}},
	}

	var plain, grouped []string
	Walk(p, func(fp FieldPredicate, inOr bool) {
		if inOr {
			grouped = append(grouped, fp.FieldName())
			return
		}
		plain = append(plain, fp.FieldName())
	})

	assert.Equal(t, []string{"A"}, plain)
	assert.Equal(t, []string{"B", "C"}, grouped)
}

func TestItemToPredicate(t *testing.T) {
	tests := []struct {
		name    string
		item    Item
		want    Predicate
		wantErr bool
	}{
		{"default is equality", Item{Field: "A", Value: "x"}, Equals{Field: "A", Value: "x"}, false},
		{"eq", Item{Field: "A", Operator: Equal, Value: 1.0}, Equals{Field: "A", Value: 1.0}, false},
		{"neq", Item{Field: "A", Operator: NotEqual, Value: 1.0}, Compare{Field: "A", Op: OpNotEqual, Value: 1.0}, false},
		{"gte", Item{Field: "A", Operator: GreaterOrEqual, Value: 1.0}, Compare{Field: "A", Op: OpGreaterOrEqual, Value: 1.0}, false},
		{"contains", Item{Field: "A", Operator: ContainsText, Value: "x"}, Contains{Field: "A", Value: "x"}, false},
		{"starts with", Item{Field: "A", Operator: StartsWithText, Value: "x"}, StartsWith{Field: "A", Value: "x"}, false},
		{"in", Item{Field: "A", Operator: InList, Value: []any{"a", "b"}}, In{Field: "A", Values: []any{"a", "b"}}, false},
		{"between", Item{Field: "A", Operator: InRange, Value: []any{1.0, 2.0}}, Between{Field: "A", From: 1.0, To: 2.0}, false},
		{"time after", Item{Field: "HORA", Operator: TimeAfter, Value: "18:00"}, Time{Field: "HORA", Op: TimeGt, From: "18:00"}, false},
		{"time range", Item{Field: "HORA", Operator: TimeInRange, Value: []any{"08:00", "12:00"}}, Time{Field: "HORA", Op: TimeBetween, From: "08:00", To: "12:00"}, false},
		{"time range needs two", Item{Field: "HORA", Operator: TimeInRange, Value: "08:00"}, nil, true},
		{"in needs array", Item{Field: "A", Operator: InList, Value: "a"}, nil, true},
		{"between needs two", Item{Field: "A", Operator: InRange, Value: []any{1.0}}, nil, true},
		{"empty field", Item{Field: " ", Value: 1}, nil, true},
		{"unknown operator", Item{Field: "A", Operator: "regex", Value: 1}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.item.ToPredicate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidItem)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestItemsToPredicate(t *testing.T) {
	p, err := ItemsToPredicate(nil)
	require.NoError(t, err)
	assert.Nil(t, p)

	var items []Item
	require.NoError(t, json.Unmarshal([]byte(`[{"field":"CODCOMP","operator":"eq","value":"FV"},{"field":"SUCID","operator":"in","value":[1,2]}]`), &items))
	p, err = ItemsToPredicate(items)
	require.NoError(t, err)
	assert.Equal(t, And{
		Equals{Field: "CODCOMP", Value: "FV"},
		In{Field: "SUCID", Values: []any{1.0, 2.0}},
	}, p)
}
