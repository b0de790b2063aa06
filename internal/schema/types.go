package schema

import "strings"

// Source is the schema discovered from a customer's legacy backup file.
// It is immutable once discovery completes; a new run rebuilds it.
type Source struct {
	// DatabaseType is the detected origin ("postgresql", "mysql", "csv", ...).
	DatabaseType string        `json:"database_type"`
	Tables       []SourceTable `json:"tables"`
}

// Table returns the table with the given name (case-insensitive), or nil.
func (s *Source) Table(name string) *SourceTable {
	for i := range s.Tables {
		if strings.EqualFold(s.Tables[i].Name, name) {
			return &s.Tables[i]
		}
	}

	return nil
}

// TotalEstimatedRows sums the per-table row estimates.
func (s *Source) TotalEstimatedRows() int {
	total := 0
	for i := range s.Tables {
		total += s.Tables[i].EstimatedRows
	}

	return total
}

// SourceTable is one table (or sheet, or CSV file) in the legacy source.
type SourceTable struct {
	Name          string         `json:"name"`
	Columns       []SourceColumn `json:"columns"`
	PrimaryKeys   []string       `json:"primary_keys,omitempty"`
	ForeignKeys   []ForeignKey   `json:"foreign_keys,omitempty"`
	EstimatedRows int            `json:"estimated_rows,omitempty"`
}

// Column returns the column with the given name (case-insensitive), or nil.
func (t *SourceTable) Column(name string) *SourceColumn {
	for i := range t.Columns {
		if strings.EqualFold(t.Columns[i].Name, name) {
			return &t.Columns[i]
		}
	}

	return nil
}

// SourceColumn is a single column with its normalized type and a bounded
// sample of raw values collected during discovery.
type SourceColumn struct {
	Name string `json:"name"`
	// Type is the normalized type tag ("VARCHAR", "INT", "DECIMAL", "DATE", ...).
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
	// Samples holds up to a handful of raw values, for review display only.
	Samples []string `json:"samples,omitempty"`
}

// ForeignKey records a column referencing another table.
type ForeignKey struct {
	Column           string `json:"column"`
	ReferencedTable  string `json:"referenced_table"`
	ReferencedColumn string `json:"referenced_column"`
}

// Target is the ERP API's endpoint/field structure, as introspected from its
// OpenAPI spec or loaded from the schema cache. Immutable for the run.
type Target struct {
	Title     string           `json:"title"`
	Version   string           `json:"version"`
	BaseURL   string           `json:"base_url"`
	Endpoints []TargetEndpoint `json:"endpoints"`
}

// Endpoint returns the endpoint with the given path, or nil.
func (t *Target) Endpoint(path string) *TargetEndpoint {
	for i := range t.Endpoints {
		if t.Endpoints[i].Path == path {
			return &t.Endpoints[i]
		}
	}

	return nil
}

// TargetEndpoint is one entity-creation endpoint of the ERP API.
type TargetEndpoint struct {
	// Path is the endpoint identity, e.g. "/v1/customers".
	Path string `json:"path"`
	// Entity is the display name of the entity type, e.g. "Customer".
	Entity string        `json:"entity"`
	Method string        `json:"method"`
	Fields []TargetField `json:"fields"`
}

// Field returns the field with the given name, or nil.
func (e *TargetEndpoint) Field(name string) *TargetField {
	for i := range e.Fields {
		if e.Fields[i].Name == name {
			return &e.Fields[i]
		}
	}

	return nil
}

// RequiredFields returns the names of required fields in declaration order.
func (e *TargetEndpoint) RequiredFields() []string {
	var out []string
	for i := range e.Fields {
		if e.Fields[i].Required {
			out = append(out, e.Fields[i].Name)
		}
	}

	return out
}

// TargetField is one request-body field of an endpoint.
type TargetField struct {
	Name string `json:"name"`
	// Type is the OpenAPI type ("string", "integer", "number", "boolean",
	// "object", "array").
	Type string `json:"type"`
	// Format refines the type ("date", "date-time", "uuid"), may be empty.
	Format   string `json:"format,omitempty"`
	Required bool   `json:"required"`
}

