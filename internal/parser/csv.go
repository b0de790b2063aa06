package parser

import (
	"encoding/csv"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"erp-migrator/internal/schema"
)

// csvDelimiters are the candidate field separators, tried by frequency in
// a sample of the content.
var csvDelimiters = []rune{',', ';', '|', '\t'}

// typeInferenceSampleSize caps how many data rows feed type inference.
const typeInferenceSampleSize = 100

// typeInferenceThreshold is the fraction of sampled values that must parse
// as a type before the column gets that type instead of VARCHAR.
const typeInferenceThreshold = 0.8

// CSVParser reads one CSV file as a single-table source. The first row is
// the header; column types are inferred from a sample of the data.
type CSVParser struct {
	table   string
	content string
	source  *schema.Source
	rows    []map[string]any
}

func NewCSVParser(table, content string) *CSVParser {
	return &CSVParser{table: table, content: content}
}

// DetectDelimiter picks the candidate delimiter occurring most often in
// the first kilobyte. Falls back to comma.
func DetectDelimiter(content string) rune {
	sample := content
	if len(sample) > 1024 {
		sample = sample[:1024]
	}

	best, bestCount := ',', 0
	for _, d := range csvDelimiters {
		if n := strings.Count(sample, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}

	return best
}

func (p *CSVParser) Discover() (*schema.Source, error) {
	if p.source != nil {
		return p.source, nil
	}

	r := csv.NewReader(strings.NewReader(p.content))
	r.Comma = DetectDelimiter(p.content)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv file is empty")
	}

	headers := records[0]
	data := records[1:]

	table := schema.SourceTable{Name: p.table, EstimatedRows: len(data)}
	for i, h := range headers {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		table.Columns = append(table.Columns, schema.SourceColumn{
			Name:     name,
			Type:     inferColumnType(columnValues(data, i)),
			Nullable: true,
		})
	}

	p.rows = make([]map[string]any, 0, len(data))
	for _, rec := range data {
		row := make(map[string]any, len(headers))
		for i := range table.Columns {
			if i < len(rec) {
				row[table.Columns[i].Name] = rec[i]
			}
		}
		p.rows = append(p.rows, row)
	}

	collectSamples(&table, p.rows)

	p.source = &schema.Source{
		DatabaseType: "csv",
		Tables:       []schema.SourceTable{table},
	}

	return p.source, nil
}

func (p *CSVParser) Rows(tableName string) ([]map[string]any, error) {
	if p.source == nil {
		if _, err := p.Discover(); err != nil {
			return nil, err
		}
	}
	if !strings.EqualFold(tableName, p.table) {
		return nil, fmt.Errorf("csv source has only table %q", p.table)
	}

	return p.rows, nil
}

// columnValues collects the non-blank values of one column across the
// inference sample.
func columnValues(data [][]string, col int) []string {
	var out []string
	for _, rec := range data {
		if len(out) == typeInferenceSampleSize {
			break
		}
		if col < len(rec) {
			if v := strings.TrimSpace(rec[col]); v != "" {
				out = append(out, v)
			}
		}
	}

	return out
}

var csvDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`),
	regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4}$`),
	regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`),
}

// inferColumnType buckets a column by what most of its sampled values
// parse as. Ambiguous or empty columns stay VARCHAR.
func inferColumnType(values []string) string {
	if len(values) == 0 {
		return "VARCHAR"
	}

	var ints, floats, dates, bools int
	for _, v := range values {
		if _, err := strconv.ParseInt(v, 10, 64); err == nil {
			ints++
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			floats++
			continue
		}
		if matchesDate(v) {
			dates++
			continue
		}
		switch strings.ToLower(v) {
		case "true", "false", "yes", "no":
			bools++
		}
	}

	need := int(float64(len(values)) * typeInferenceThreshold)
	switch {
	case ints >= need && ints > 0:
		return "INT"
	case ints+floats >= need && floats > 0:
		return "DECIMAL"
	case dates >= need && dates > 0:
		return "DATE"
	case bools >= need && bools > 0:
		return "BOOLEAN"
	default:
		return "VARCHAR"
	}
}

func matchesDate(v string) bool {
	for _, re := range csvDatePatterns {
		if re.MatchString(v) {
			return true
		}
	}

	return false
}
