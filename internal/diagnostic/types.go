package diagnostic

import (
	"errors"
	"fmt"
	"strings"
)

// Severity ranks a finding.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Well-known finding codes emitted by the validation gate.
const (
	CodeIncompleteMapping  = "incomplete_mapping"
	CodeConflictingMapping = "conflicting_mapping"
	CodeStaleMapping       = "stale_mapping"
	CodeUnknownEndpoint    = "unknown_endpoint"
	CodeUnmappedColumn     = "unmapped_column"
	CodeNeedsReview        = "needs_review"
)

// Finding is one validation observation. Every blocking finding names the
// specific table/column/field it concerns plus a human-readable reason.
type Finding struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Table    string   `json:"table,omitempty"`
	Column   string   `json:"column,omitempty"`
	Field    string   `json:"field,omitempty"`
}

// String formats a finding as "[code] table(.column|.field): message".
func (f Finding) String() string {
	loc := f.Table
	switch {
	case f.Column != "":
		loc += "." + f.Column
	case f.Field != "":
		loc += "." + f.Field
	}

	msg := f.Message
	if f.Code != "" {
		msg = fmt.Sprintf("[%s] %s", f.Code, msg)
	}
	if loc != "" {
		return loc + ": " + msg
	}

	return msg
}

// Findings collects observations across an entire validation pass.
type Findings struct {
	Errors   []Finding
	Warnings []Finding
	Infos    []Finding
}

// AddError records a blocking finding.
func (d *Findings) AddError(code, message, table, column, field string) {
	d.Errors = append(d.Errors, Finding{
		Severity: Error, Code: code, Message: message,
		Table: table, Column: column, Field: field,
	})
}

// AddWarning records a non-blocking finding.
func (d *Findings) AddWarning(code, message, table, column, field string) {
	d.Warnings = append(d.Warnings, Finding{
		Severity: Warning, Code: code, Message: message,
		Table: table, Column: column, Field: field,
	})
}

// AddInfo records an informational finding.
func (d *Findings) AddInfo(code, message, table, column, field string) {
	d.Infos = append(d.Infos, Finding{
		Severity: Info, Code: code, Message: message,
		Table: table, Column: column, Field: field,
	})
}

// HasErrors reports whether any blocking finding was recorded.
func (d *Findings) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge appends all findings from another collection.
func (d *Findings) Merge(other Findings) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// Err combines all blocking findings into one error, or nil if clean.
func (d *Findings) Err() error {
	if !d.HasErrors() {
		return nil
	}

	parts := make([]string, 0, len(d.Errors))
	for _, f := range d.Errors {
		parts = append(parts, f.String())
	}

	return errors.New(strings.Join(parts, "; "))
}
