package transform

import (
	"fmt"
	"strings"
	"time"
)

// Builtin transformer names, as they appear in mapping exports.
const (
	None       = "NONE"
	Trim       = "TRIM"
	Uppercase  = "UPPERCASE"
	Lowercase  = "LOWERCASE"
	FormatCPF  = "FORMAT_CPF"
	FormatCNPJ = "FORMAT_CNPJ"
	FormatDate = "FORMAT_DATE"
)

var builtins = map[string]Func{
	None:       identity,
	Trim:       stringFunc(strings.TrimSpace),
	Uppercase:  stringFunc(strings.ToUpper),
	Lowercase:  stringFunc(strings.ToLower),
	FormatCPF:  formatCPF,
	FormatCNPJ: formatCNPJ,
	FormatDate: formatDate,
}

func identity(value any) (any, error) {
	return value, nil
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)

	return ok && s == ""
}

func stringFunc(fn func(string) string) Func {
	return func(value any) (any, error) {
		if isEmpty(value) {
			return value, nil
		}

		return fn(fmt.Sprint(value)), nil
	}
}

func digits(value any) string {
	var b strings.Builder
	for _, r := range fmt.Sprint(value) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// formatCPF renders a Brazilian CPF as 000.000.000-00. Legacy databases
// store them bare, zero-padded, or partially punctuated; anything that does
// not reduce to 11 digits is rejected so the ERP never sees a document it
// would bounce.
func formatCPF(value any) (any, error) {
	if isEmpty(value) {
		return value, nil
	}

	d := digits(value)
	if len(d) != 11 {
		return nil, &Error{
			Transformer: FormatCPF,
			Value:       value,
			Reason:      fmt.Sprintf("want 11 digits, got %d", len(d)),
		}
	}

	return fmt.Sprintf("%s.%s.%s-%s", d[:3], d[3:6], d[6:9], d[9:]), nil
}

// formatCNPJ renders a Brazilian CNPJ as 00.000.000/0000-00.
func formatCNPJ(value any) (any, error) {
	if isEmpty(value) {
		return value, nil
	}

	d := digits(value)
	if len(d) != 14 {
		return nil, &Error{
			Transformer: FormatCNPJ,
			Value:       value,
			Reason:      fmt.Sprintf("want 14 digits, got %d", len(d)),
		}
	}

	return fmt.Sprintf("%s.%s.%s/%s-%s", d[:2], d[2:5], d[5:8], d[8:12], d[12:]), nil
}

// dateLayouts are the formats seen in legacy dumps, tried in order. The
// unambiguous ISO forms come first; the slash forms are read as
// day/month/year, which is how every supported source system writes them.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"02/01/2006 15:04:05",
	"02-01-2006",
	"02.01.2006",
	"20060102",
}

// formatDate normalizes a legacy date value to ISO 8601 (YYYY-MM-DD).
func formatDate(value any) (any, error) {
	if isEmpty(value) {
		return value, nil
	}

	if t, ok := value.(time.Time); ok {
		return t.Format("2006-01-02"), nil
	}

	s := strings.TrimSpace(fmt.Sprint(value))
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}

	return nil, &Error{
		Transformer: FormatDate,
		Value:       value,
		Reason:      "unrecognized date format",
	}
}
