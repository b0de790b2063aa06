// Package resolve turns validated table mappings plus raw rows into
// endpoint-addressed payload batches. The resolver performs no I/O;
// batches are handed to the API client for submission and discarded.
package resolve

import (
	"fmt"
	"strings"

	"erp-migrator/internal/mapper"
	"erp-migrator/internal/schema"
	"erp-migrator/internal/transform"
)

// DefaultBatchSize bounds records per batch when no size is configured.
const DefaultBatchSize = 100

// Row is one raw source row, keyed by source column name.
type Row map[string]any

// Record is one shaped payload object, keyed by target field name.
type Record map[string]any

// RowError reports one row that could not be shaped. Index is the
// position of the row in the input sequence.
type RowError struct {
	Index  int    `json:"index"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

// Batch is the unit handed to the API client: one endpoint plus the shaped
// records ready for submission, with the rows that failed shaping alongside.
type Batch struct {
	Endpoint string
	Method   string
	Records  []Record
	Failures []RowError
}

// NotValidatedError reports an attempt to resolve a table mapping that has
// not passed the validation gate.
type NotValidatedError struct {
	Table  string
	Status mapper.Status
}

func (e *NotValidatedError) Error() string {
	return fmt.Sprintf("table %q has status %q, only validated mappings can produce payloads",
		e.Table, e.Status)
}

// Logger is the minimal logging interface used by the resolver.
type Logger interface {
	Printf(format string, v ...any)
}

// Resolver shapes rows through a validated mapping. Safe to reuse across
// tables; it holds no per-run state.
type Resolver struct {
	Registry     *schema.Registry
	Transformers *transform.Registry
	Logger       Logger

	// BatchSize caps records per batch. Zero means DefaultBatchSize.
	BatchSize int
}

func NewResolver(reg *schema.Registry, tr *transform.Registry, logger Logger) *Resolver {
	return &Resolver{Registry: reg, Transformers: tr, Logger: logger}
}

func (r *Resolver) batchSize() int {
	if r.BatchSize > 0 {
		return r.BatchSize
	}

	return DefaultBatchSize
}

func (r *Resolver) logf(format string, v ...any) {
	if r.Logger != nil {
		r.Logger.Printf(format, v...)
	}
}

// ResolveSet shapes rows for every validated table in the set. Skipped and
// unvalidated tables contribute nothing. rows maps source table name to
// that table's raw rows.
func (r *Resolver) ResolveSet(set *mapper.Set, rows map[string][]Row) ([]Batch, error) {
	var out []Batch

	for _, tm := range set.Validated() {
		batches, err := r.Resolve(tm, rows[tm.SourceTable])
		if err != nil {
			return nil, err
		}
		out = append(out, batches...)
	}

	return out, nil
}

// Resolve shapes one table's rows into fixed-size batches. A transformer
// failure or missing required value on one row lands in the batch's failure
// list; the remaining rows are unaffected.
func (r *Resolver) Resolve(tm *mapper.TableMapping, rows []Row) ([]Batch, error) {
	if tm.Skip || tm.Status != mapper.StatusValidated {
		return nil, &NotValidatedError{Table: tm.SourceTable, Status: tm.Status}
	}

	ep, err := r.Registry.TargetEndpoint(tm.Endpoint)
	if err != nil {
		return nil, err
	}
	required := ep.RequiredFields()

	size := r.batchSize()
	var (
		batches []Batch
		cur     = Batch{Endpoint: ep.Path, Method: ep.Method}
		failed  = 0
	)

	flush := func() {
		if len(cur.Records) > 0 || len(cur.Failures) > 0 {
			batches = append(batches, cur)
		}
		cur = Batch{Endpoint: ep.Path, Method: ep.Method}
	}

	for i, row := range rows {
		rec, rowErr := r.shapeRow(tm, row)
		if rowErr == nil {
			rowErr = checkRequired(rec, required)
		}
		if rowErr != nil {
			rowErr.Index = i
			cur.Failures = append(cur.Failures, *rowErr)
			failed++
			continue
		}

		cur.Records = append(cur.Records, rec)
		if len(cur.Records) == size {
			flush()
		}
	}
	flush()

	r.logf("stage=resolve table=%s endpoint=%s rows=%d failed=%d batches=%d",
		tm.SourceTable, tm.Endpoint, len(rows), failed, len(batches))

	return batches, nil
}

// shapeRow applies every column mapping of the table to one row.
func (r *Resolver) shapeRow(tm *mapper.TableMapping, row Row) (Record, *RowError) {
	rec := make(Record, len(tm.Columns))

	for ci := range tm.Columns {
		cm := &tm.Columns[ci]

		switch cm.Kind {
		case mapper.OneToOne:
			value, err := r.Transformers.Apply(cm.Transformer, row[cm.SourceColumns[0]])
			if err != nil {
				return nil, &RowError{Field: cm.TargetFields[0], Reason: err.Error()}
			}
			rec[cm.TargetFields[0]] = value

		case mapper.ManyToOne:
			value, err := r.combine(cm, row)
			if err != nil {
				return nil, &RowError{Field: cm.TargetFields[0], Reason: err.Error()}
			}
			rec[cm.TargetFields[0]] = value

		case mapper.OneToMany:
			if err := r.split(cm, row, rec); err != nil {
				return nil, err
			}

		default:
			return nil, &RowError{
				Field:  strings.Join(cm.TargetFields, ","),
				Reason: fmt.Sprintf("unknown mapping kind %q", cm.Kind),
			}
		}
	}

	return rec, nil
}

// combine joins the mapped source values in declared order, then runs the
// transformer over the joined result.
func (r *Resolver) combine(cm *mapper.ColumnMapping, row Row) (any, error) {
	var parts []string
	for _, col := range cm.SourceColumns {
		v := row[col]
		if v == nil {
			continue
		}
		if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
			parts = append(parts, s)
		}
	}

	switch cm.CombineRule {
	case mapper.CombineConcatSpace, "":
		return r.Transformers.Apply(cm.Transformer, strings.Join(parts, " "))
	default:
		return nil, fmt.Errorf("unknown combine rule %q", cm.CombineRule)
	}
}

// split divides the single source value across the target fields, running
// the transformer per piece. First whitespace token goes to the first
// field, the remainder to the second; fields past that stay empty.
func (r *Resolver) split(cm *mapper.ColumnMapping, row Row, rec Record) *RowError {
	raw := row[cm.SourceColumns[0]]

	var pieces []string
	switch cm.SplitRule {
	case mapper.SplitFirstRest, "":
		fields := strings.Fields(fmt.Sprint(raw))
		if raw == nil {
			fields = nil
		}
		switch {
		case len(fields) == 0:
			pieces = []string{"", ""}
		case len(fields) == 1:
			pieces = []string{fields[0], ""}
		default:
			pieces = []string{fields[0], strings.Join(fields[1:], " ")}
		}
	default:
		return &RowError{
			Field:  cm.TargetFields[0],
			Reason: fmt.Sprintf("unknown split rule %q", cm.SplitRule),
		}
	}

	for fi, field := range cm.TargetFields {
		piece := ""
		if fi < len(pieces) {
			piece = pieces[fi]
		}

		value, err := r.Transformers.Apply(cm.Transformer, piece)
		if err != nil {
			return &RowError{Field: field, Reason: err.Error()}
		}
		rec[field] = value
	}

	return nil
}

// checkRequired reports the first required field whose shaped value is
// absent or blank. Records failing this never enter the submittable list.
func checkRequired(rec Record, required []string) *RowError {
	for _, field := range required {
		v, ok := rec[field]
		if !ok || v == nil {
			return &RowError{Field: field, Reason: "missing required value"}
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			return &RowError{Field: field, Reason: "missing required value"}
		}
	}

	return nil
}
