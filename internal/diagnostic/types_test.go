package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindingString(t *testing.T) {
	tests := []struct {
		name    string
		finding Finding
		want    string
	}{
		{
			"table and field",
			Finding{Code: CodeIncompleteMapping, Message: "no mapping", Table: "tb_clientes", Field: "document"},
			"tb_clientes.document: [incomplete_mapping] no mapping",
		},
		{
			"table and column",
			Finding{Code: CodeStaleMapping, Message: "gone", Table: "tb_clientes", Column: "cpf"},
			"tb_clientes.cpf: [stale_mapping] gone",
		},
		{
			"bare message",
			Finding{Message: "something"},
			"something",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.finding.String())
		})
	}
}

func TestFindingsCollect(t *testing.T) {
	var d Findings

	assert.False(t, d.HasErrors())
	assert.NoError(t, d.Err())

	d.AddWarning(CodeNeedsReview, "confirm split", "tb_clientes", "full_name", "")
	assert.False(t, d.HasErrors())

	d.AddError(CodeIncompleteMapping, "missing", "tb_clientes", "", "document")
	d.AddInfo(CodeUnmappedColumn, "excluded", "tb_clientes", "obs", "")

	assert.True(t, d.HasErrors())
	require.Error(t, d.Err())
	assert.Contains(t, d.Err().Error(), "incomplete_mapping")

	var other Findings
	other.AddError(CodeConflictingMapping, "duplicate", "tb_pedidos", "", "total")
	d.Merge(other)

	assert.Len(t, d.Errors, 2)
	assert.Len(t, d.Warnings, 1)
	assert.Len(t, d.Infos, 1)
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "info", Info.String())
	assert.Equal(t, "warning", Warning.String())
	assert.Equal(t, "error", Error.String())
}
