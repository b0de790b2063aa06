package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"erp-migrator/internal/schema"
)

// maxSampleValues bounds the raw values kept per column for review display.
const maxSampleValues = 5

// typeMapping normalizes dialect spellings to the common type tags the
// matcher's compatibility check understands. Longest keys first where one
// is a prefix of another.
var typeMapping = []struct{ prefix, tag string }{
	{"character varying", "VARCHAR"},
	{"timestamp with time zone", "TIMESTAMPTZ"},
	{"timestamp without time zone", "TIMESTAMP"},
	{"double precision", "DOUBLE"},
	{"bigserial", "BIGINT"},
	{"serial", "INT"},
	{"uuid", "UUID"},
	{"boolean", "BOOLEAN"},
	{"bool", "BOOLEAN"},
	{"integer", "INT"},
	{"bigint", "BIGINT"},
	{"smallint", "SMALLINT"},
	{"mediumint", "INT"},
	{"tinyint", "TINYINT"},
	{"int", "INT"},
	{"decimal", "DECIMAL"},
	{"numeric", "DECIMAL"},
	{"number", "DECIMAL"},
	{"real", "FLOAT"},
	{"float", "FLOAT"},
	{"double", "DOUBLE"},
	{"varchar2", "VARCHAR"},
	{"varchar", "VARCHAR"},
	{"char", "CHAR"},
	{"longtext", "TEXT"},
	{"mediumtext", "TEXT"},
	{"text", "TEXT"},
	{"clob", "TEXT"},
	{"longblob", "BLOB"},
	{"blob", "BLOB"},
	{"datetime", "TIMESTAMP"},
	{"date", "DATE"},
	{"timestamp", "TIMESTAMP"},
	{"time", "TIME"},
	{"jsonb", "JSONB"},
	{"json", "JSON"},
	{"enum", "VARCHAR"},
	{"set", "VARCHAR"},
}

// NormalizeType maps a dialect-specific column type to its common tag.
// Unrecognized types pass through upper-cased.
func NormalizeType(sqlType string) string {
	t := strings.ToLower(strings.TrimSpace(sqlType))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}

	for _, m := range typeMapping {
		if strings.HasPrefix(t, m.prefix) {
			return m.tag
		}
	}

	return strings.ToUpper(t)
}

var (
	createTableRe = regexp.MustCompile(`(?is)^\s*CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?["` + "`" + `]?(\w+)["` + "`" + `]?\s*\((.*)\)[^)]*$`)
	insertRe      = regexp.MustCompile(`(?is)^\s*INSERT\s+INTO\s+["` + "`" + `]?(\w+)["` + "`" + `]?\s*(?:\(([^)]*)\))?\s*VALUES\s*(.*)$`)
	columnDefRe   = regexp.MustCompile(`(?i)^["` + "`" + `]?(\w+)["` + "`" + `]?\s+(\w+(?:\s+varying)?(?:\([^)]*\))?)\s*(.*)$`)
	foreignKeyRe  = regexp.MustCompile(`(?i)FOREIGN\s+KEY\s*\(([^)]+)\)\s*REFERENCES\s+["` + "`" + `]?(\w+)["` + "`" + `]?\s*\(([^)]+)\)`)
	keyListRe     = regexp.MustCompile(`\(([^)]+)\)`)
)

// SQLDumpParser reads CREATE TABLE and INSERT INTO statements from a SQL
// dump. One instance covers one file; Discover parses everything up front
// and Rows serves from memory.
type SQLDumpParser struct {
	content string
	source  *schema.Source
	rows    map[string][]map[string]any
}

func NewSQLDumpParser(content string) *SQLDumpParser {
	return &SQLDumpParser{content: content}
}

// Discover parses the dump into a source schema. Row data from INSERT
// statements is retained for Rows and feeds the per-column samples.
func (p *SQLDumpParser) Discover() (*schema.Source, error) {
	if p.source != nil {
		return p.source, nil
	}

	src := &schema.Source{DatabaseType: DetectDialect(p.content)}
	rows := make(map[string][]map[string]any)

	for _, stmt := range splitStatements(p.content) {
		if m := createTableRe.FindStringSubmatch(stmt); m != nil {
			table := parseCreateTable(m[1], m[2])
			src.Tables = append(src.Tables, table)
			continue
		}
		if m := insertRe.FindStringSubmatch(stmt); m != nil {
			if err := parseInsert(src, rows, m[1], m[2], m[3]); err != nil {
				return nil, fmt.Errorf("parse insert into %s: %w", m[1], err)
			}
		}
	}

	if len(src.Tables) == 0 {
		return nil, fmt.Errorf("no CREATE TABLE statements found in dump")
	}

	for i := range src.Tables {
		t := &src.Tables[i]
		t.EstimatedRows = len(rows[strings.ToLower(t.Name)])
		collectSamples(t, rows[strings.ToLower(t.Name)])
	}

	p.source = src
	p.rows = rows

	return src, nil
}

// Rows returns the raw rows parsed from the table's INSERT statements.
func (p *SQLDumpParser) Rows(table string) ([]map[string]any, error) {
	if p.source == nil {
		if _, err := p.Discover(); err != nil {
			return nil, err
		}
	}
	if p.source.Table(table) == nil {
		return nil, fmt.Errorf("dump has no table %q", table)
	}

	return p.rows[strings.ToLower(table)], nil
}

// splitStatements divides the dump on semicolons outside string literals,
// dropping line comments.
func splitStatements(content string) []string {
	var (
		out      []string
		b        strings.Builder
		inString bool
	)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		if !inString && strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}

		for i := 0; i < len(line); i++ {
			c := line[i]
			switch {
			case c == '\'':
				// Doubled quotes inside a literal stay inside it.
				if inString && i+1 < len(line) && line[i+1] == '\'' {
					b.WriteString("''")
					i++
					continue
				}
				inString = !inString
				b.WriteByte(c)
			case c == ';' && !inString:
				if s := strings.TrimSpace(b.String()); s != "" {
					out = append(out, s)
				}
				b.Reset()
			default:
				b.WriteByte(c)
			}
		}
		b.WriteByte('\n')
	}

	if s := strings.TrimSpace(b.String()); s != "" {
		out = append(out, s)
	}

	return out
}

// splitTopLevel divides a definition body on commas outside parentheses
// and string literals.
func splitTopLevel(body string) []string {
	var (
		out      []string
		b        strings.Builder
		depth    int
		inString bool
	)

	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\'':
			if inString && i+1 < len(body) && body[i+1] == '\'' {
				b.WriteString("''")
				i++
				continue
			}
			inString = !inString
			b.WriteByte(c)
		case c == '(' && !inString:
			depth++
			b.WriteByte(c)
		case c == ')' && !inString:
			depth--
			b.WriteByte(c)
		case c == ',' && depth == 0 && !inString:
			out = append(out, strings.TrimSpace(b.String()))
			b.Reset()
		default:
			b.WriteByte(c)
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		out = append(out, s)
	}

	return out
}

func parseCreateTable(name, body string) schema.SourceTable {
	table := schema.SourceTable{Name: name}

	for _, line := range splitTopLevel(body) {
		upper := strings.ToUpper(line)

		switch {
		case strings.HasPrefix(upper, "PRIMARY KEY"):
			if m := keyListRe.FindStringSubmatch(line); m != nil {
				table.PrimaryKeys = splitIdentifierList(m[1])
			}
		case strings.HasPrefix(upper, "FOREIGN KEY") || strings.HasPrefix(upper, "CONSTRAINT"):
			if m := foreignKeyRe.FindStringSubmatch(line); m != nil {
				table.ForeignKeys = append(table.ForeignKeys, schema.ForeignKey{
					Column:           strings.Trim(strings.TrimSpace(m[1]), "`\""),
					ReferencedTable:  m[2],
					ReferencedColumn: strings.Trim(strings.TrimSpace(m[3]), "`\""),
				})
			}
		case strings.HasPrefix(upper, "UNIQUE") || strings.HasPrefix(upper, "KEY") ||
			strings.HasPrefix(upper, "INDEX") || strings.HasPrefix(upper, "CHECK"):
			// Not part of the mapping model.
		default:
			if col, ok := parseColumnDef(line); ok {
				if strings.Contains(strings.ToUpper(line), "PRIMARY KEY") {
					table.PrimaryKeys = append(table.PrimaryKeys, col.Name)
				}
				table.Columns = append(table.Columns, col)
			}
		}
	}

	return table
}

func parseColumnDef(line string) (schema.SourceColumn, bool) {
	m := columnDefRe.FindStringSubmatch(line)
	if m == nil {
		return schema.SourceColumn{}, false
	}

	flags := strings.ToUpper(m[3])

	return schema.SourceColumn{
		Name:     m[1],
		Type:     NormalizeType(m[2]),
		Nullable: !strings.Contains(flags, "NOT NULL"),
	}, true
}

func splitIdentifierList(list string) []string {
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.Trim(strings.TrimSpace(p), "`\""))
	}

	return out
}

// parseInsert decodes one INSERT statement into raw rows. When the column
// list is omitted the table's declared column order applies.
func parseInsert(src *schema.Source, rows map[string][]map[string]any, tableName, columnList, valuesPart string) error {
	table := src.Table(tableName)
	if table == nil {
		// Inserts for tables without a CREATE statement are ignored.
		return nil
	}

	var columns []string
	if strings.TrimSpace(columnList) != "" {
		columns = splitIdentifierList(columnList)
	} else {
		for _, c := range table.Columns {
			columns = append(columns, c.Name)
		}
	}

	key := strings.ToLower(table.Name)
	for _, tuple := range splitTopLevel(valuesPart) {
		tuple = strings.TrimSpace(tuple)
		if !strings.HasPrefix(tuple, "(") || !strings.HasSuffix(tuple, ")") {
			continue
		}

		values := splitTopLevel(tuple[1 : len(tuple)-1])
		if len(values) != len(columns) {
			return fmt.Errorf("row has %d values for %d columns", len(values), len(columns))
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = decodeSQLValue(values[i])
		}
		rows[key] = append(rows[key], row)
	}

	return nil
}

// decodeSQLValue converts a SQL literal to a Go value. Strings unescape
// doubled quotes; NULL becomes nil; numbers parse, everything else stays a
// raw string.
func decodeSQLValue(lit string) any {
	lit = strings.TrimSpace(lit)

	if strings.EqualFold(lit, "NULL") {
		return nil
	}
	if len(lit) >= 2 && lit[0] == '\'' && lit[len(lit)-1] == '\'' {
		return strings.ReplaceAll(lit[1:len(lit)-1], "''", "'")
	}
	if n, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(lit, 64); err == nil {
		return f
	}
	if strings.EqualFold(lit, "TRUE") {
		return true
	}
	if strings.EqualFold(lit, "FALSE") {
		return false
	}

	return lit
}

// collectSamples copies the first few raw values per column onto the
// schema, for review display.
func collectSamples(table *schema.SourceTable, rows []map[string]any) {
	for i := range table.Columns {
		col := &table.Columns[i]
		for _, row := range rows {
			if len(col.Samples) == maxSampleValues {
				break
			}
			if v, ok := row[col.Name]; ok && v != nil {
				col.Samples = append(col.Samples, fmt.Sprint(v))
			}
		}
	}
}
