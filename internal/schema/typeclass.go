package schema

import "strings"

// TypeClass buckets concrete column/field types into broad families so the
// matcher can compare a legacy SQL type against an OpenAPI field type.
type TypeClass int

const (
	ClassUnknown TypeClass = iota
	ClassText
	ClassInteger
	ClassNumber
	ClassBoolean
	ClassDate
	ClassTimestamp
	ClassUUID
	ClassComposite // object / array fields; never auto-mapped from a scalar
)

// String returns a human-readable class name.
func (c TypeClass) String() string {
	switch c {
	case ClassText:
		return "text"
	case ClassInteger:
		return "integer"
	case ClassNumber:
		return "number"
	case ClassBoolean:
		return "boolean"
	case ClassDate:
		return "date"
	case ClassTimestamp:
		return "timestamp"
	case ClassUUID:
		return "uuid"
	case ClassComposite:
		return "composite"
	default:
		return "unknown"
	}
}

// ClassOfColumnType buckets a normalized source column type. Unrecognized
// types fall through to ClassUnknown rather than erroring; the matcher
// treats unknown as loosely compatible with anything.
func ClassOfColumnType(t string) TypeClass {
	switch strings.ToUpper(strings.TrimSpace(t)) {
	case "VARCHAR", "CHAR", "TEXT", "CLOB", "ENUM", "SET":
		return ClassText
	case "INT", "BIGINT", "SMALLINT", "TINYINT", "MEDIUMINT", "SERIAL":
		return ClassInteger
	case "DECIMAL", "NUMERIC", "FLOAT", "DOUBLE", "REAL", "NUMBER":
		return ClassNumber
	case "BOOLEAN", "BOOL", "BIT":
		return ClassBoolean
	case "DATE":
		return ClassDate
	case "TIMESTAMP", "TIMESTAMPTZ", "DATETIME", "TIME":
		return ClassTimestamp
	case "UUID", "GUID":
		return ClassUUID
	default:
		return ClassUnknown
	}
}

// ClassOfField buckets an OpenAPI field type/format pair.
func ClassOfField(f TargetField) TypeClass {
	switch strings.ToLower(f.Type) {
	case "string":
		switch strings.ToLower(f.Format) {
		case "date":
			return ClassDate
		case "date-time":
			return ClassTimestamp
		case "uuid":
			return ClassUUID
		default:
			return ClassText
		}
	case "integer":
		return ClassInteger
	case "number":
		return ClassNumber
	case "boolean":
		return ClassBoolean
	case "object", "array":
		return ClassComposite
	default:
		return ClassUnknown
	}
}
