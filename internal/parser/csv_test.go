package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVParser_Discover(t *testing.T) {
	content := "nome;cpf;idade;ativo;dt_nascimento\n" +
		"Maria Silva;12345678901;34;true;1990-05-12\n" +
		"Jose Santos;98765432100;41;false;1983-11-02\n" +
		"Ana, de Souza;11122233344;28;true;1996-01-30\n"

	p := NewCSVParser("clientes", content)

	src, err := p.Discover()
	require.NoError(t, err)
	assert.Equal(t, "csv", src.DatabaseType)
	require.Len(t, src.Tables, 1)

	table := src.Tables[0]
	assert.Equal(t, "clientes", table.Name)
	assert.Equal(t, 3, table.EstimatedRows)
	require.Len(t, table.Columns, 5)

	assert.Equal(t, "VARCHAR", table.Columns[0].Type)
	assert.Equal(t, "INT", table.Columns[1].Type)
	assert.Equal(t, "INT", table.Columns[2].Type)
	assert.Equal(t, "BOOLEAN", table.Columns[3].Type)
	assert.Equal(t, "DATE", table.Columns[4].Type)

	rows, err := p.Rows("clientes")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	// Semicolon delimiter means commas are plain data.
	assert.Equal(t, "Ana, de Souza", rows[2]["nome"])
}

func TestCSVParser_WrongTableName(t *testing.T) {
	p := NewCSVParser("clientes", "a,b\n1,2\n")

	_, err := p.Rows("pedidos")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clientes")
}

func TestCSVParser_Empty(t *testing.T) {
	p := NewCSVParser("data", "")

	_, err := p.Discover()
	require.Error(t, err)
}

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    rune
	}{
		{"comma", "a,b,c\n1,2,3\n", ','},
		{"semicolon", "a;b;c\n1;2;3\n", ';'},
		{"pipe", "a|b|c\n1|2|3\n", '|'},
		{"tab", "a\tb\tc\n1\t2\t3\n", '\t'},
		{"no delimiter falls back to comma", "plain text\n", ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDelimiter(tt.content))
		})
	}
}

func TestInferColumnType_MixedStaysVarchar(t *testing.T) {
	assert.Equal(t, "VARCHAR", inferColumnType([]string{"1", "2", "abc", "def", "ghi"}))
	assert.Equal(t, "DECIMAL", inferColumnType([]string{"1", "2.5", "3.14", "4", "5.0"}))
	assert.Equal(t, "VARCHAR", inferColumnType(nil))
}
