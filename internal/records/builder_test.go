package records

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contalink/internal/core/apperror"
	"contalink/internal/domain/filter"
	"contalink/internal/metadata"
)

func invoiceDescriptor() *metadata.TableDescriptor {
	return &metadata.TableDescriptor{
		Name:       "facturacion",
		TableName:  "KARDEX",
		PrimaryKey: "KARDEXID",
		Fields: []metadata.FieldSpec{
			{Name: "CODCOMP"},
			{Name: "NUMERO"},
			{Name: "CLIENTE_NOMBRE"},
			{Name: "NUMERO"},
			{Name: "TOTAL", Format: metadata.FormatCurrency},
		},
		ForeignKeys: []metadata.JoinSpec{
			{Table: "TERCEROS", LocalField: "CLIENTE", ForeignField: "TERID", Columns: []metadata.JoinColumn{{Name: "NOMBRE", As: "CLIENTE_NOMBRE"}}},
			{Table: "CENTROS", LocalField: "CENID", ForeignField: "CENID", JoinType: metadata.JoinInner, Columns: []metadata.JoinColumn{{Name: "DESCRIP", As: "CENTRO_DESCRIP"}}},
		},
		SearchFields: []string{"CLIENTE_NOMBRE", "NUMERO"},
	}
}

func TestBuildRequest(t *testing.T) {
	req, err := BuildRequest(invoiceDescriptor(), 7, Options{})
	require.NoError(t, err)

	assert.Equal(t, int64(7), req.BackendID)
	assert.Equal(t, "KARDEX", req.TableName)
	assert.Equal(t, []string{"CODCOMP", "NUMERO", "CLIENTE_NOMBRE", "TOTAL", "CLIENTE", "CENID"}, req.Fields)
	assert.Len(t, req.ForeignKeys, 2)
	assert.Equal(t, DefaultPage, req.Page)
	assert.Equal(t, DefaultPageSize, req.PageSize)
	assert.Nil(t, req.Filter)
}

func TestBuildRequestAlwaysIncludesLocalFields(t *testing.T) {
	d := invoiceDescriptor()
	req, err := BuildRequest(d, 1, Options{})
	require.NoError(t, err)
	for _, j := range d.ForeignKeys {
		assert.Contains(t, req.Fields, j.LocalField)
	}
}

func TestBuildRequestNoJoins(t *testing.T) {
	d := &metadata.TableDescriptor{Name: "area", TableName: "AREAD", Fields: []metadata.FieldSpec{{Name: "CODAREAD"}}}
	req, err := BuildRequest(d, 1, Options{Page: 3, PageSize: 10_000})
	require.NoError(t, err)

	assert.Nil(t, req.ForeignKeys)
	assert.Equal(t, 3, req.Page)
	assert.Equal(t, MaxPageSize, req.PageSize)
	assert.Equal(t, 1000, req.Offset())

	raw, err := json.Marshal(req)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "foreign_keys")
	assert.NotContains(t, string(raw), "filters")
}

func TestBuildRequestNoBackend(t *testing.T) {
	for _, id := range []int64{0, -1} {
		_, err := BuildRequest(invoiceDescriptor(), id, Options{})
		assert.ErrorIs(t, err, ErrNoBackend)
		assert.True(t, apperror.HasCode(err, apperror.CodeTenantRequired))
	}
}

func TestBuildRequestOrder(t *testing.T) {
	req, err := BuildRequest(invoiceDescriptor(), 1, Options{OrderBy: []OrderBy{{Field: "FECHA", Direction: "desc"}, {Field: "NUMERO"}}})
	require.NoError(t, err)
	assert.Equal(t, []OrderBy{{Field: "FECHA", Direction: Desc}, {Field: "NUMERO", Direction: Asc}}, req.OrderBy)

	_, err = BuildRequest(invoiceDescriptor(), 1, Options{OrderBy: []OrderBy{{Field: "FECHA", Direction: "sideways"}}})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))
}

func TestBuildRequestInvalidFilter(t *testing.T) {
	_, err := BuildRequest(invoiceDescriptor(), 1, Options{Filter: filter.And{
		filter.Equals{Field: "A", Value: 1},
		filter.Equals{Field: "A", Value: 2},
	}})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	assert.ErrorIs(t, err, filter.ErrDuplicateField)
}

func TestSearchIsDisjunction(t *testing.T) {
	d := invoiceDescriptor()
	d.SearchFields = []string{"A", "B"}

	req, err := Search(d, 1, " x ", Options{})
	require.NoError(t, err)
	assert.Equal(t, filter.Or{
		filter.Contains{Field: "A", Value: "x"},
		filter.Contains{Field: "B", Value: "x"},
	}, req.Filter)

	filters, err := req.Filters()
	require.NoError(t, err)
	raw, _ := json.Marshal(filters)
	assert.JSONEq(t, `{"OR":[{"A":{"contains":"x"}},{"B":{"contains":"x"}}]}`, string(raw))
}

func TestSearchCombinesWithFilters(t *testing.T) {
	req, err := Search(invoiceDescriptor(), 1, "ana", Options{Filter: filter.Equals{Field: "CODCOMP", Value: "FV"}})
	require.NoError(t, err)

	filters, err := req.Filters()
	require.NoError(t, err)
	assert.Contains(t, filters, "CODCOMP")
	assert.Contains(t, filters, filter.OrKey)
}

func TestSearchBlankQuery(t *testing.T) {
	req, err := Search(invoiceDescriptor(), 1, "   ", Options{})
	require.NoError(t, err)
	assert.Nil(t, req.Filter)
}

func TestEqualityFilter(t *testing.T) {
	req, err := EqualityFilter(invoiceDescriptor(), 1, "CODCOMP", "FV", Options{PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, filter.Equals{Field: "CODCOMP", Value: "FV"}, req.Filter)
	assert.Equal(t, 20, req.PageSize)

	_, err = EqualityFilter(invoiceDescriptor(), 1, " ", "FV", Options{})
	assert.Error(t, err)
}

func TestRequestWireFormat(t *testing.T) {
	req, err := EqualityFilter(invoiceDescriptor(), 12, "CODCOMP", "FV", Options{OrderBy: []OrderBy{{Field: "NUMERO", Direction: Desc}}})
	require.NoError(t, err)

	raw, err := json.Marshal(req)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, 12.0, got["empresa_servidor_id"])
	assert.Equal(t, "KARDEX", got["table_name"])
	assert.Equal(t, 1.0, got["page"])
	assert.Equal(t, 50.0, got["page_size"])
	assert.Equal(t, map[string]any{"CODCOMP": map[string]any{"operator": "=", "value": "FV"}}, got["filters"])
	assert.Equal(t, []any{map[string]any{"field": "NUMERO", "direction": "DESC"}}, got["order_by"])

	joins := got["foreign_keys"].([]any)
	require.Len(t, joins, 2)
	first := joins[0].(map[string]any)
	assert.Equal(t, "TERCEROS", first["table"])
	assert.Equal(t, "CLIENTE", first["localField"])
	assert.Equal(t, "TERID", first["foreignField"])
	assert.NotContains(t, first, "joinFrom")
	assert.NotContains(t, first, "joinType")
	assert.Equal(t, "INNER", joins[1].(map[string]any)["joinType"])
}

func TestParseOrderBy(t *testing.T) {
	assert.Nil(t, ParseOrderBy(""))
	assert.Equal(t, []OrderBy{
		{Field: "FECHA", Direction: Desc},
		{Field: "NUMERO", Direction: Asc},
		{Field: "TOTAL", Direction: "DESC"},
	}, ParseOrderBy("-FECHA, NUMERO,TOTAL:desc"))
}
