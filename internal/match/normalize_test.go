package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "Customers", "customer"},
		{"table prefix", "tb_clientes", "cliente"},
		{"tbl prefix", "tbl_pedidos", "pedido"},
		{"src prefix", "src_produtos", "produto"},
		{"noise suffix", "customer_data", "customer"},
		{"underscores stripped", "created_at", "createdat"},
		{"camel case", "CustomerName", "customername"},
		{"accents folded", "descrição", "descricao"},
		{"plural s", "orders", "order"},
		{"double s kept", "address", "address"},
		{"short token kept", "cpf", "cpf"},
		{"empty", "", ""},
		{"spaces", "  Nome Completo ", "nomecompleto"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.in))
		})
	}
}

func TestNormalizeNameStripped(t *testing.T) {
	// Qualifier tokens reduce away so variants of the same noun agree.
	assert.Equal(t, "name", NormalizeNameStripped("first_name"))
	assert.Equal(t, "name", NormalizeNameStripped("last_name"))
	assert.Equal(t, "name", NormalizeNameStripped("full_name"))
	assert.Equal(t, "name", NormalizeNameStripped("name"))

	// All-qualifier names fall back to the unstripped form.
	assert.Equal(t, "first", NormalizeNameStripped("first"))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"first", "name"}, Tokenize("first_name"))
	assert.Equal(t, []string{"order", "id"}, Tokenize("OrderID"))
	assert.Equal(t, []string{"nfe", "number"}, Tokenize("NFENumber"))
	assert.Equal(t, []string{"cliente"}, Tokenize("tb_cliente"))
	assert.Empty(t, Tokenize(""))
}
