package mapper

import (
	"fmt"
	"sync"

	"erp-migrator/internal/match"
	"erp-migrator/internal/schema"
)

// SchemaVersion is the current mapping export format version.
const SchemaVersion = "1"

// SkipReasonNoEndpoint is the rationale recorded when no endpoint candidate
// reaches the acceptance threshold. A normal terminal state, not an error.
const SkipReasonNoEndpoint = "no endpoint match"

// Logger is the minimal logging interface used by the builder.
// *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}

// Builder produces draft mapping sets from the registry plus the fuzzy
// matcher, and applies review edits afterwards.
type Builder struct {
	Registry *schema.Registry
	Matcher  *match.Matcher
	Logger   Logger

	// Threshold below which candidates are not offered as defaults.
	// Zero means match.DefaultThreshold.
	Threshold float64

	// Workers bounds concurrent per-table matching during AutoMap.
	// Matching is a pure function of the schemas, so only the aggregation
	// into the result slice needs guarding. Zero or one means sequential.
	Workers int
}

func NewBuilder(reg *schema.Registry, logger Logger) *Builder {
	return &Builder{
		Registry: reg,
		Matcher:  match.NewMatcher(reg),
		Logger:   logger,
	}
}

func (b *Builder) threshold() float64 {
	if b.Threshold > 0 {
		return b.Threshold
	}

	return match.DefaultThreshold
}

func (b *Builder) logf(format string, v ...any) {
	if b.Logger != nil {
		b.Logger.Printf(format, v...)
	}
}

// AutoMap builds a draft mapping set covering every source table, without
// human input. Tables with no qualifying endpoint are marked SKIP. Output is
// deterministic for fixed schemas: tables keep source declaration order and
// per-table matching is pure.
func (b *Builder) AutoMap() (*Set, error) {
	if err := b.Registry.Ready(); err != nil {
		return nil, err
	}

	src := b.Registry.Source()
	results := make([]TableMapping, len(src.Tables))

	workers := b.Workers
	if workers <= 1 || len(src.Tables) <= 1 {
		for i := range src.Tables {
			tm, err := b.mapTable(&src.Tables[i])
			if err != nil {
				return nil, err
			}
			results[i] = tm
		}
	} else {
		if err := b.mapTablesConcurrent(src.Tables, results, workers); err != nil {
			return nil, err
		}
	}

	mapped, skipped := 0, 0
	for i := range results {
		if results[i].Skip {
			skipped++
		} else {
			mapped++
		}
	}
	b.logf("stage=automap tables=%d mapped=%d skipped=%d", len(results), mapped, skipped)

	return &Set{SchemaVersion: SchemaVersion, Tables: results}, nil
}

// mapTablesConcurrent fans table matching out over a bounded worker pool.
// Results land in their table's slot of the pre-sized slice, so assembly
// order never depends on scheduling.
func (b *Builder) mapTablesConcurrent(tables []schema.SourceTable, results []TableMapping, workers int) error {
	if workers > len(tables) {
		workers = len(tables)
	}

	indexes := make(chan int)
	errOnce := sync.Once{}
	var firstErr error

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indexes {
				tm, err := b.mapTable(&tables[i])
				if err != nil {
					errOnce.Do(func() { firstErr = err })
					continue
				}
				results[i] = tm
			}
		}()
	}

	for i := range tables {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return firstErr
}

// mapTable maps one source table: endpoint selection, then column mapping
// with many-to-one and one-to-many detection.
func (b *Builder) mapTable(table *schema.SourceTable) (TableMapping, error) {
	threshold := b.threshold()

	endpoints, err := b.Matcher.MatchTables(table)
	if err != nil {
		return TableMapping{}, err
	}

	best := endpoints.Best()
	if best == nil || best.Confidence < threshold {
		b.logf("stage=automap table=%s skip reason=%q", table.Name, SkipReasonNoEndpoint)
		return TableMapping{
			SourceTable: table.Name,
			Skip:        true,
			SkipReason:  SkipReasonNoEndpoint,
			Status:      StatusDraft,
		}, nil
	}

	tm := TableMapping{
		SourceTable: table.Name,
		Endpoint:    best.Target,
		Status:      StatusDraft,
	}

	picks, err := b.pickFields(table, best.Target, threshold)
	if err != nil {
		return TableMapping{}, err
	}

	tm.Columns, tm.Unmapped = assembleColumnMappings(picks)

	return tm, nil
}

// fieldPick is the per-column selection used by the grouping heuristics.
type fieldPick struct {
	column string
	// top is the chosen candidate, nil when nothing qualified.
	top *match.Candidate
	// tied holds the target fields sharing the top confidence, in target
	// declaration order. len(tied) > 1 signals a potential split.
	tied []string
}

// pickFields selects the qualifying field candidates for every column.
// Candidates whose types can never hold a scalar copy are not offered as
// defaults even when the name score qualifies.
func (b *Builder) pickFields(table *schema.SourceTable, endpoint string, threshold float64) ([]fieldPick, error) {
	picks := make([]fieldPick, 0, len(table.Columns))

	for i := range table.Columns {
		col := &table.Columns[i]

		cands, err := b.Matcher.MatchColumns(col, endpoint)
		if err != nil {
			return nil, err
		}

		pick := fieldPick{column: col.Name}
		qualified := cands.AboveThreshold(threshold)
		for j := range qualified {
			if qualified[j].Compat == match.Incompatible {
				continue
			}
			if pick.top == nil {
				pick.top = &qualified[j]
			}
			if qualified[j].Confidence == pick.top.Confidence {
				pick.tied = append(pick.tied, qualified[j].Target)
			}
		}

		picks = append(picks, pick)
	}

	return picks, nil
}

// assembleColumnMappings turns per-column picks into mapping shapes:
//
//   - Two or more columns whose top pick is the same field become one
//     many-to-one mapping (ordered concatenation) rather than competing
//     one-to-one picks that would silently overwrite each other.
//   - A column whose top confidence ties across exactly two fields, neither
//     claimed by another column, becomes a one-to-many split flagged for
//     mandatory review.
//   - Everything else is a plain one-to-one pick.
func assembleColumnMappings(picks []fieldPick) ([]ColumnMapping, []string) {
	// Count how many columns chose each field as their top pick.
	claims := make(map[string][]int, len(picks))
	for i := range picks {
		if picks[i].top != nil {
			field := picks[i].top.Target
			claims[field] = append(claims[field], i)
		}
	}

	var (
		mappings []ColumnMapping
		unmapped []string
		consumed = make([]bool, len(picks))
	)

	for i := range picks {
		pick := &picks[i]

		if consumed[i] {
			continue
		}
		if pick.top == nil {
			unmapped = append(unmapped, pick.column)
			continue
		}

		field := pick.top.Target
		group := claims[field]

		// Many-to-one: every claimant of this field joins one combined
		// mapping, in source column declaration order.
		if len(group) >= 2 {
			cols := make([]string, 0, len(group))
			confidence := pick.top.Confidence
			for _, idx := range group {
				cols = append(cols, picks[idx].column)
				consumed[idx] = true
				if c := picks[idx].top.Confidence; c < confidence {
					confidence = c
				}
			}

			mappings = append(mappings, ColumnMapping{
				Kind:          ManyToOne,
				SourceColumns: cols,
				TargetFields:  []string{field},
				CombineRule:   CombineConcatSpace,
				Confidence:    confidence,
				Rationale:     string(pick.top.Rationale),
			})
			continue
		}

		// One-to-many: the top score ties across exactly two fields and no
		// other column claims either of them.
		if len(pick.tied) == 2 && len(claims[pick.tied[0]]) <= 1 && len(claims[pick.tied[1]]) <= 1 {
			mappings = append(mappings, ColumnMapping{
				Kind:          OneToMany,
				SourceColumns: []string{pick.column},
				TargetFields:  append([]string(nil), pick.tied...),
				SplitRule:     SplitFirstRest,
				Confidence:    pick.top.Confidence,
				Rationale:     string(pick.top.Rationale),
				NeedsReview:   true,
			})
			consumed[i] = true
			continue
		}

		mappings = append(mappings, ColumnMapping{
			Kind:          OneToOne,
			SourceColumns: []string{pick.column},
			TargetFields:  []string{field},
			Confidence:    pick.top.Confidence,
			Rationale:     string(pick.top.Rationale),
		})
		consumed[i] = true
	}

	return mappings, unmapped
}

// ApplyEdit replaces the column mapping supplying the edit's first target
// field, or appends a new one. References are checked against the current
// schemas; invalid references abort only this edit. The owning table reverts
// to draft.
func (b *Builder) ApplyEdit(set *Set, tableName string, cm ColumnMapping) error {
	tm := set.Table(tableName)
	if tm == nil {
		return &UnknownTableError{Table: tableName}
	}

	srcTable, err := b.Registry.SourceTable(tableName)
	if err != nil {
		return err
	}
	for _, col := range cm.SourceColumns {
		if srcTable.Column(col) == nil {
			return &UnknownColumnError{Table: tableName, Column: col}
		}
	}

	ep, err := b.Registry.TargetEndpoint(tm.Endpoint)
	if err != nil {
		return err
	}
	for _, field := range cm.TargetFields {
		if ep.Field(field) == nil {
			return &UnknownFieldError{Endpoint: tm.Endpoint, Field: field}
		}
	}

	if len(cm.TargetFields) == 0 || len(cm.SourceColumns) == 0 {
		return fmt.Errorf("edit for table %q needs at least one source column and target field", tableName)
	}

	replaced := false
	for i := range tm.Columns {
		if containsField(tm.Columns[i].TargetFields, cm.TargetFields[0]) {
			tm.Columns[i] = cm
			replaced = true
			break
		}
	}
	if !replaced {
		tm.Columns = append(tm.Columns, cm)
	}

	tm.Status = StatusDraft
	b.logf("stage=edit table=%s field=%s kind=%s", tableName, cm.TargetFields[0], cm.Kind)

	return nil
}

// RemoveMapping deletes the column mapping supplying the given target field
// and reverts the table to draft.
func (b *Builder) RemoveMapping(set *Set, tableName, field string) error {
	tm := set.Table(tableName)
	if tm == nil {
		return &UnknownTableError{Table: tableName}
	}

	for i := range tm.Columns {
		if containsField(tm.Columns[i].TargetFields, field) {
			tm.Columns = append(tm.Columns[:i], tm.Columns[i+1:]...)
			tm.Status = StatusDraft
			return nil
		}
	}

	return &UnknownFieldError{Endpoint: tm.Endpoint, Field: field}
}

// MarkSkip marks a table skipped, clearing any column mappings. Skip state
// is exclusive with having mappings.
func (b *Builder) MarkSkip(set *Set, tableName, reason string) error {
	tm := set.Table(tableName)
	if tm == nil {
		return &UnknownTableError{Table: tableName}
	}

	tm.Skip = true
	tm.SkipReason = reason
	tm.Endpoint = ""
	tm.Columns = nil
	tm.Unmapped = nil
	tm.Status = StatusDraft

	return nil
}

// UnmarkSkip clears a table's skip state, returning it to an empty draft
// awaiting endpoint assignment via edits.
func (b *Builder) UnmarkSkip(set *Set, tableName string) error {
	tm := set.Table(tableName)
	if tm == nil {
		return &UnknownTableError{Table: tableName}
	}

	tm.Skip = false
	tm.SkipReason = ""
	tm.Status = StatusDraft

	return nil
}

// SetEndpoint assigns or changes a table's target endpoint during review.
// Existing column mappings are kept only if the new endpoint has their
// fields; the rest are dropped into the unmapped list.
func (b *Builder) SetEndpoint(set *Set, tableName, endpointPath string) error {
	tm := set.Table(tableName)
	if tm == nil {
		return &UnknownTableError{Table: tableName}
	}

	ep, err := b.Registry.TargetEndpoint(endpointPath)
	if err != nil {
		return err
	}

	var kept []ColumnMapping
	for _, cm := range tm.Columns {
		valid := true
		for _, f := range cm.TargetFields {
			if ep.Field(f) == nil {
				valid = false
				break
			}
		}
		if valid {
			kept = append(kept, cm)
			continue
		}
		tm.Unmapped = append(tm.Unmapped, cm.SourceColumns...)
	}

	tm.Skip = false
	tm.SkipReason = ""
	tm.Endpoint = endpointPath
	tm.Columns = kept
	tm.Status = StatusDraft

	return nil
}

func containsField(fields []string, field string) bool {
	for _, f := range fields {
		if f == field {
			return true
		}
	}

	return false
}
