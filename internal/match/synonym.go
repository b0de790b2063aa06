package match

// synonymGroups is the static domain dictionary. Each group lists terms, in
// Portuguese and English, that refer to the same entity or attribute in
// legacy commercial schemas. Terms are compared after NormalizeName, so the
// dictionary stores canonical singular forms.
//
// A dictionary hit contributes a confidence floor of 0.70 regardless of
// string distance; it never lowers a better string-based score.
var synonymGroups = [][]string{
	// Entities
	{"customer", "client", "cliente", "pessoa", "contato", "consumidor"},
	{"product", "produto", "item", "mercadoria", "sku"},
	{"order", "pedido", "venda", "sale"},
	{"invoice", "nota", "notafiscal", "nfe", "fatura", "fiscal"},
	{"payment", "pagamento", "recebimento"},
	{"supplier", "vendor", "fornecedor"},
	{"inventory", "stock", "estoque", "saldo"},
	{"category", "categoria", "grupo", "group"},
	{"brand", "marca"},
	{"user", "usuario"},
	{"employee", "funcionario", "vendedor", "salesperson"},
	// Attributes
	{"name", "nome", "razaosocial", "fantasia"},
	{"document", "cpf", "cnpj", "documento", "cpfcnpj", "rg", "inscricao"},
	{"email", "mail", "correio"},
	{"phone", "telephone", "telefone", "fone", "celular", "mobile"},
	{"address", "endereco", "logradouro", "rua", "street"},
	{"city", "cidade", "municipio"},
	{"state", "estado", "uf"},
	{"zip", "zipcode", "cep", "postalcode"},
	{"country", "pai", "pais"},
	{"price", "preco", "valor", "amount", "total"},
	{"cost", "custo"},
	{"quantity", "quantidade", "qtd", "qtde", "qty"},
	{"description", "descricao", "observacao", "obs", "note"},
	{"date", "data", "dt"},
	{"birthdate", "nascimento", "datanascimento"},
	{"active", "ativo", "status", "situacao"},
	{"code", "codigo", "cod", "reference", "referencia"},
	{"weight", "peso"},
	{"height", "altura"},
	{"width", "largura"},
	{"depth", "profundidade", "comprimento"},
	{"barcode", "ean", "gtin", "codigobarra"},
	{"discount", "desconto"},
	{"balance", "saldo", "credito"},
	{"due", "vencimento"},
	{"neighborhood", "bairro"},
	{"number", "numero", "num"},
}

// synonymIndex maps a normalized term to its group ordinal. Built once;
// group order is the declaration order above, so lookups are deterministic.
var synonymIndex = buildSynonymIndex()

func buildSynonymIndex() map[string]int {
	idx := make(map[string]int, 128)
	for gi, group := range synonymGroups {
		for _, term := range group {
			key := NormalizeName(term)
			if _, taken := idx[key]; !taken {
				idx[key] = gi
			}
		}
	}

	return idx
}

// Synonyms reports whether two normalized names fall in the same dictionary
// group. Both arguments must already be normalized via NormalizeName.
func Synonyms(a, b string) bool {
	ga, ok := synonymIndex[a]
	if !ok {
		return false
	}
	gb, ok := synonymIndex[b]
	if !ok {
		return false
	}

	return ga == gb
}
