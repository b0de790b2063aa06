package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erp-migrator/internal/schema"
)

func testRegistry() *schema.Registry {
	reg := schema.NewRegistry()
	reg.RegisterSource(&schema.Source{
		DatabaseType: "mysql",
		Tables: []schema.SourceTable{
			{
				Name: "tb_clientes",
				Columns: []schema.SourceColumn{
					{Name: "nome", Type: "VARCHAR"},
					{Name: "cpf", Type: "VARCHAR"},
				},
			},
		},
	})
	reg.LoadTarget(&schema.Target{
		Endpoints: []schema.TargetEndpoint{
			{
				Path:   "/v1/customers",
				Entity: "Customer",
				Method: "POST",
				Fields: []schema.TargetField{
					{Name: "name", Type: "string", Required: true},
					{Name: "document", Type: "string", Required: true},
					{Name: "email", Type: "string"},
				},
			},
			{
				Path:   "/v1/products",
				Entity: "Product",
				Method: "POST",
				Fields: []schema.TargetField{
					{Name: "name", Type: "string", Required: true},
					{Name: "price", Type: "number"},
				},
			},
		},
	})

	return reg
}

func TestScoreNames(t *testing.T) {
	tests := []struct {
		name          string
		source        string
		target        string
		wantScore     float64
		wantRationale Rationale
	}{
		{"exact after normalization", "Customers", "customer", 1.0, RationaleExact},
		{"prefix stripped exact", "tb_pedidos", "pedido", 1.0, RationaleExact},
		{"containment", "customer_id", "id", 0.85, RationaleContains},
		{"qualifier stripped", "first_name", "full_name", 0.85, RationaleContains},
		{"synonym table", "tb_clientes", "Customer", 0.70, RationaleSynonym},
		{"synonym column", "cpf", "document", 0.70, RationaleSynonym},
		{"synonym pt column", "nome", "name", 0.70, RationaleSynonym},
		{"no relation", "xyz_random_table", "Customer", 0.0, RationaleSimilar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, rationale := ScoreNames(tt.source, tt.target)
			if tt.wantScore == 0 {
				assert.Less(t, score, DefaultThreshold)
			} else {
				assert.InDelta(t, tt.wantScore, score, 0.001)
				assert.Equal(t, tt.wantRationale, rationale)
			}
		})
	}
}

func TestScoreNames_SimilarStaysBelowContainment(t *testing.T) {
	// Token similarity never reaches the containment grade.
	score, _ := ScoreNames("customer_address", "customer_email")
	assert.Less(t, score, 0.85)
	assert.Greater(t, score, 0.0)
}

func TestMatchTables(t *testing.T) {
	reg := testRegistry()
	m := NewMatcher(reg)

	table := reg.Source().Table("tb_clientes")
	require.NotNil(t, table)

	cands, err := m.MatchTables(table)
	require.NoError(t, err)
	require.Len(t, cands, 2)

	best := cands.Best()
	assert.Equal(t, "/v1/customers", best.Target)
	assert.GreaterOrEqual(t, best.Confidence, DefaultThreshold)
	assert.Equal(t, RationaleSynonym, best.Rationale)
}

func TestMatchTables_RequiresSchemas(t *testing.T) {
	reg := schema.NewRegistry()
	m := NewMatcher(reg)

	_, err := m.MatchTables(&schema.SourceTable{Name: "tb_clientes"})
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrNotLoaded)
}

func TestMatchColumns(t *testing.T) {
	reg := testRegistry()
	m := NewMatcher(reg)

	col := &schema.SourceColumn{Name: "cpf", Type: "VARCHAR"}
	cands, err := m.MatchColumns(col, "/v1/customers")
	require.NoError(t, err)
	require.Len(t, cands, 3)

	assert.Equal(t, "document", cands.Best().Target)
	assert.GreaterOrEqual(t, cands.Best().Confidence, DefaultThreshold)
}

func TestMatchColumns_UnknownEndpoint(t *testing.T) {
	reg := testRegistry()
	m := NewMatcher(reg)

	_, err := m.MatchColumns(&schema.SourceColumn{Name: "cpf"}, "/v1/nope")
	require.Error(t, err)

	var nf *schema.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestMatchColumns_TypeTieBreak(t *testing.T) {
	// Two fields tie on name score; the one whose type matches exactly wins.
	reg := schema.NewRegistry()
	reg.RegisterSource(&schema.Source{Tables: []schema.SourceTable{{Name: "t"}}})
	reg.LoadTarget(&schema.Target{
		Endpoints: []schema.TargetEndpoint{{
			Path:   "/v1/things",
			Entity: "Thing",
			Fields: []schema.TargetField{
				// Declared first but integer-typed.
				{Name: "total_count", Type: "integer"},
				{Name: "total_label", Type: "string"},
			},
		}},
	})

	m := NewMatcher(reg)
	col := &schema.SourceColumn{Name: "total", Type: "VARCHAR"}

	cands, err := m.MatchColumns(col, "/v1/things")
	require.NoError(t, err)
	require.Len(t, cands, 2)

	// Both are containment matches at 0.85; VARCHAR lines up exactly with
	// the string field, so it outranks the earlier-declared integer field.
	assert.InDelta(t, cands[0].Confidence, cands[1].Confidence, 0.001)
	assert.Equal(t, "total_label", cands[0].Target)
}

func TestMatcherDeterminism(t *testing.T) {
	reg := testRegistry()
	m := NewMatcher(reg)

	table := reg.Source().Table("tb_clientes")
	first, err := m.MatchTables(table)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := m.MatchTables(table)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
