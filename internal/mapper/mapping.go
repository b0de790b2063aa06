package mapper

import "fmt"

// Kind tags the shape of a column mapping.
type Kind string

const (
	OneToOne  Kind = "one_to_one"
	ManyToOne Kind = "many_to_one"
	OneToMany Kind = "one_to_many"
)

// CombineRule names how a many-to-one mapping joins its source values.
type CombineRule string

// CombineConcatSpace joins source values in declared order with a single
// space, skipping empty values. The default for auto-detected groupings.
const CombineConcatSpace CombineRule = "concat_space"

// SplitRule names how a one-to-many mapping divides its source value.
type SplitRule string

// SplitFirstRest splits on whitespace: first token to the first field, the
// remainder to the second. Lossy for middle names, which is why auto-created
// split mappings are flagged for mandatory review.
const SplitFirstRest SplitRule = "split_first_rest"

// Status is the review state of a table mapping.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusReviewed  Status = "reviewed"
	StatusValidated Status = "validated"
)

// ColumnMapping declares how one or more source columns feed one or more
// target fields. Exactly one of the three shapes holds:
//   - one_to_one:  1 source column, 1 target field
//   - many_to_one: N source columns (ordered), 1 target field, CombineRule
//   - one_to_many: 1 source column, N target fields (ordered), SplitRule
type ColumnMapping struct {
	Kind          Kind        `json:"kind"`
	SourceColumns []string    `json:"source_columns"`
	TargetFields  []string    `json:"target_fields"`
	CombineRule   CombineRule `json:"combine_rule,omitempty"`
	SplitRule     SplitRule   `json:"split_rule,omitempty"`
	// Transformer is the registry name of a value transformer applied per
	// piece ("FORMAT_CPF", "TRIM", ...). Empty means pass-through.
	Transformer string  `json:"transformer,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
	Rationale   string  `json:"rationale,omitempty"`
	// NeedsReview marks lossy auto-detected mappings (splits) that require
	// explicit human confirmation before they should be trusted.
	NeedsReview bool `json:"needs_review,omitempty"`
}

// TableMapping binds one source table to one target endpoint, or marks it
// skipped. Skip is exclusive with having column mappings.
type TableMapping struct {
	SourceTable string `json:"source_table"`
	Endpoint    string `json:"endpoint,omitempty"`
	Skip        bool   `json:"skip,omitempty"`
	SkipReason  string `json:"skip_reason,omitempty"`
	// Columns holds the chosen mappings in source column order.
	Columns []ColumnMapping `json:"columns,omitempty"`
	// Unmapped lists source columns with no qualifying field candidate.
	// Not an error: they are excluded from payloads but surfaced for review.
	Unmapped []string `json:"unmapped,omitempty"`
	Status   Status   `json:"status"`
}

// MappingFor returns the column mapping that supplies the given target
// field, or nil.
func (t *TableMapping) MappingFor(field string) *ColumnMapping {
	for i := range t.Columns {
		for _, f := range t.Columns[i].TargetFields {
			if f == field {
				return &t.Columns[i]
			}
		}
	}

	return nil
}

// Set is the complete collection of table mappings for one migration run.
// Table names are unique within a set.
type Set struct {
	SchemaVersion string         `json:"schema_version"`
	Tables        []TableMapping `json:"tables"`
}

// Table returns the mapping for the named source table, or nil.
func (s *Set) Table(name string) *TableMapping {
	for i := range s.Tables {
		if s.Tables[i].SourceTable == name {
			return &s.Tables[i]
		}
	}

	return nil
}

// Validated returns the table mappings that passed the validation gate.
func (s *Set) Validated() []*TableMapping {
	var out []*TableMapping
	for i := range s.Tables {
		if !s.Tables[i].Skip && s.Tables[i].Status == StatusValidated {
			out = append(out, &s.Tables[i])
		}
	}

	return out
}

// UnknownTableError reports an edit referencing a table absent from the set.
type UnknownTableError struct {
	Table string
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("unknown table %q in mapping set", e.Table)
}

// UnknownColumnError reports an edit referencing a source column absent from
// the discovered schema.
type UnknownColumnError struct {
	Table  string
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("table %q has no source column %q", e.Table, e.Column)
}

// UnknownFieldError reports an edit referencing a target field absent from
// the endpoint's schema.
type UnknownFieldError struct {
	Endpoint string
	Field    string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("endpoint %q has no field %q", e.Endpoint, e.Field)
}
