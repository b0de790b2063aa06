// Package parser reads legacy database backup files and produces the
// source schema plus raw rows for migration. Formats are a closed set
// selected by extension with a content sniff as fallback.
package parser

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"erp-migrator/internal/schema"
)

// Format tags a recognized backup file format.
type Format string

const (
	FormatSQLDump Format = "sql"
	FormatCSV     Format = "csv"
	FormatExcel   Format = "excel"
	FormatAccess  Format = "access"
	FormatUnknown Format = "unknown"
)

// Parser extracts a source schema and raw rows from one backup file.
// Discover must be called before Rows; row iteration is repeatable.
type Parser interface {
	Discover() (*schema.Source, error)
	Rows(table string) ([]map[string]any, error)
}

// UnsupportedFormatError reports a backup format the engine cannot read.
// The hint tells the operator how to get their data into a supported shape.
type UnsupportedFormatError struct {
	Path   string
	Format Format
	Hint   string
}

func (e *UnsupportedFormatError) Error() string {
	msg := fmt.Sprintf("unsupported backup format %q for %s", e.Format, e.Path)
	if e.Hint != "" {
		msg += ": " + e.Hint
	}

	return msg
}

// DetectFormat classifies a backup file by extension, falling back to a
// content sniff for extensionless or unrecognized files.
func DetectFormat(path string, sample []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sql", ".dump", ".bak":
		return FormatSQLDump
	case ".csv", ".txt":
		return FormatCSV
	case ".xlsx", ".xls":
		return FormatExcel
	case ".mdb", ".accdb":
		return FormatAccess
	}

	return sniffFormat(sample)
}

func sniffFormat(sample []byte) Format {
	upper := bytes.ToUpper(sample)
	if bytes.Contains(upper, []byte("CREATE TABLE")) || bytes.Contains(upper, []byte("INSERT INTO")) {
		return FormatSQLDump
	}

	line := sample
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		line = sample[:i]
	}
	for _, delim := range csvDelimiters {
		if bytes.ContainsRune(line, delim) {
			return FormatCSV
		}
	}

	return FormatUnknown
}

// Open reads the backup file and returns the parser for its format.
// Excel and Access files are rejected with a conversion hint rather than
// misread as text.
func Open(path string) (Parser, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read backup file: %w", err)
	}

	sample := raw
	if len(sample) > 4096 {
		sample = sample[:4096]
	}

	switch format := DetectFormat(path, sample); format {
	case FormatSQLDump:
		return NewSQLDumpParser(decodeText(raw)), nil
	case FormatCSV:
		return NewCSVParser(tableNameFromPath(path), decodeText(raw)), nil
	case FormatExcel:
		return nil, &UnsupportedFormatError{
			Path: path, Format: format,
			Hint: "export each sheet as CSV and import those instead",
		}
	case FormatAccess:
		return nil, &UnsupportedFormatError{
			Path: path, Format: format,
			Hint: "export the database to a SQL dump or CSV files first",
		}
	default:
		return nil, &UnsupportedFormatError{Path: path, Format: format}
	}
}

// decodeText returns the file content as UTF-8. Legacy dumps are routinely
// Windows-1252 encoded; anything that is not already valid UTF-8 is decoded
// as such, which also covers plain Latin-1.
func decodeText(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}

	return string(decoded)
}

// tableNameFromPath derives the CSV table name from the file name.
func tableNameFromPath(path string) string {
	base := filepath.Base(path)

	return strings.TrimSuffix(base, filepath.Ext(base))
}
