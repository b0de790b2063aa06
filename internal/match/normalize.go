package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Prefixes and suffixes commonly carried by legacy table/column names.
// Stripped before comparison so "tb_clientes" and "clientes" normalize alike.
var (
	noisePrefixes = []string{"tb_", "tbl_", "src_", "dst_", "tmp_", "vw_", "v_", "t_"}
	noiseSuffixes = []string{"_data", "_info", "_details", "_detail", "_list", "_log"}
)

// Qualifier tokens that modify a core noun without changing what it refers
// to ("first_name", "full_name" and "name" all describe a name). Used by the
// qualifier-stripped comparison that feeds the containment strategy.
var qualifierTokens = map[string]bool{
	"first":    true,
	"last":     true,
	"middle":   true,
	"full":     true,
	"initial":  true,
	"primeiro": true,
	"ultimo":   true,
	"completo": true,
}

// NormalizeName canonicalizes an identifier for comparison: accent folding,
// lowercase, noise prefix/suffix stripping, separator removal, and naive
// de-pluralization of the final token.
func NormalizeName(s string) string {
	tokens := Tokenize(s)
	if len(tokens) == 0 {
		return ""
	}

	tokens[len(tokens)-1] = singularize(tokens[len(tokens)-1])

	return strings.Join(tokens, "")
}

// NormalizeNameStripped is NormalizeName with qualifier tokens removed.
// "first_name" and "full_name" both reduce to "name"; comparison on the
// stripped form is capped at containment grade by the scorer because the
// reduction is lossy.
func NormalizeNameStripped(s string) string {
	tokens := Tokenize(s)

	kept := tokens[:0]
	for _, t := range tokens {
		if qualifierTokens[t] {
			continue
		}
		kept = append(kept, t)
	}
	if len(kept) == 0 {
		// All tokens were qualifiers; fall back to the unstripped form.
		return NormalizeName(s)
	}

	kept[len(kept)-1] = singularize(kept[len(kept)-1])

	return strings.Join(kept, "")
}

// Tokenize splits an identifier into lowercase, accent-folded tokens.
// Separators (_, -, space, dot) and camelCase boundaries both split.
// Noise prefixes/suffixes are removed before tokenizing.
func Tokenize(s string) []string {
	s = foldAccents(strings.TrimSpace(s))
	lower := strings.ToLower(s)

	for _, p := range noisePrefixes {
		if strings.HasPrefix(lower, p) && len(lower) > len(p) {
			s = s[len(p):]
			lower = lower[len(p):]
			break
		}
	}
	for _, suf := range noiseSuffixes {
		if strings.HasSuffix(lower, suf) && len(lower) > len(suf) {
			s = s[:len(s)-len(suf)]
			break
		}
	}

	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, strings.ToLower(current.String()))
			current.Reset()
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			flush()
			continue
		}
		if i > 0 && startsNewToken(runes, i) {
			flush()
		}
		current.WriteRune(r)
	}
	flush()

	return tokens
}

// singularize removes a trailing plural marker from a token. It handles the
// regular English/Portuguese "-s" and "-es" endings only; irregular plurals
// are covered by the synonym dictionary instead.
func singularize(tok string) string {
	switch {
	case len(tok) <= 3:
		return tok
	case strings.HasSuffix(tok, "ss"):
		return tok
	case strings.HasSuffix(tok, "oes"):
		// notas fiscais aside, "-ões" folds to "-oes" ("configuracoes").
		return tok[:len(tok)-3] + "ao"
	case strings.HasSuffix(tok, "es") && len(tok) > 4:
		return tok[:len(tok)-1] // "clientes" -> "cliente", keeps the e
	case strings.HasSuffix(tok, "s"):
		return tok[:len(tok)-1]
	default:
		return tok
	}
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' ' || r == '.'
}

// startsNewToken reports a camelCase boundary at position i.
func startsNewToken(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]
	if unicode.IsUpper(r) && !unicode.IsUpper(prev) && !isSeparator(prev) {
		return true
	}
	// End of an acronym run: "NFENumber" -> "NFE" + "Number".
	if unicode.IsUpper(r) && unicode.IsUpper(prev) &&
		i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
		return true
	}

	return false
}

// foldAccents strips combining marks so "descrição" compares as "descricao".
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}

	return out
}
