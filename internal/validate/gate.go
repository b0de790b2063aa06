package validate

import (
	"fmt"

	"erp-migrator/internal/diagnostic"
	"erp-migrator/internal/mapper"
	"erp-migrator/internal/schema"
)

// Logger is the minimal logging interface used by the gate.
type Logger interface {
	Printf(format string, v ...any)
}

// Gate checks a mapping set for completeness and consistency against the
// current schemas. Only tables that pass with zero blocking findings are
// promoted to validated and become eligible for payload generation.
type Gate struct {
	Registry *schema.Registry
	Logger   Logger
}

func NewGate(reg *schema.Registry, logger Logger) *Gate {
	return &Gate{Registry: reg, Logger: logger}
}

func (g *Gate) logf(format string, v ...any) {
	if g.Logger != nil {
		g.Logger.Printf(format, v...)
	}
}

// Validate runs every check over every non-skipped table and returns the
// full findings list. Tables with zero blocking findings transition to
// validated; tables with blocking findings drop back to draft, so a table
// whose schema drifted after an earlier pass loses its validated status
// and is excluded from payload generation until fixed. Repeated runs over
// an unchanged set produce identical findings.
func (g *Gate) Validate(set *mapper.Set) (*diagnostic.Findings, error) {
	if err := g.Registry.Ready(); err != nil {
		return nil, err
	}

	all := &diagnostic.Findings{}

	for i := range set.Tables {
		tm := &set.Tables[i]
		if tm.Skip {
			continue
		}

		found := g.checkTable(tm)
		all.Merge(found)

		if len(found.Errors) == 0 {
			tm.Status = mapper.StatusValidated
		} else if tm.Status == mapper.StatusValidated {
			tm.Status = mapper.StatusDraft
		}
	}

	g.logf("stage=validate tables=%d errors=%d warnings=%d",
		len(set.Tables), len(all.Errors), len(all.Warnings))

	return all, nil
}

// checkTable runs the per-table checks in a fixed order: endpoint
// existence, stale references, conflicting field suppliers, required field
// coverage, then advisory findings.
func (g *Gate) checkTable(tm *mapper.TableMapping) diagnostic.Findings {
	var found diagnostic.Findings

	if tm.Endpoint == "" {
		found.AddError(diagnostic.CodeUnknownEndpoint,
			"no target endpoint assigned", tm.SourceTable, "", "")
		return found
	}

	ep, err := g.Registry.TargetEndpoint(tm.Endpoint)
	if err != nil {
		found.AddError(diagnostic.CodeUnknownEndpoint,
			fmt.Sprintf("endpoint %q is not in the target schema", tm.Endpoint),
			tm.SourceTable, "", "")
		return found
	}

	srcTable, err := g.Registry.SourceTable(tm.SourceTable)
	if err != nil {
		found.AddError(diagnostic.CodeStaleMapping,
			"source table is no longer present in the discovered schema",
			tm.SourceTable, "", "")
		return found
	}

	suppliers := make(map[string]int, len(tm.Columns))

	for ci := range tm.Columns {
		cm := &tm.Columns[ci]

		for _, col := range cm.SourceColumns {
			if srcTable.Column(col) == nil {
				found.AddError(diagnostic.CodeStaleMapping,
					"mapped source column no longer exists, re-run discovery or edit the mapping",
					tm.SourceTable, col, "")
			}
		}

		for _, field := range cm.TargetFields {
			if ep.Field(field) == nil {
				found.AddError(diagnostic.CodeStaleMapping,
					"mapped target field no longer exists, re-sync the target schema or edit the mapping",
					tm.SourceTable, "", field)
				continue
			}

			suppliers[field]++
			if suppliers[field] == 2 {
				found.AddError(diagnostic.CodeConflictingMapping,
					"field is supplied by more than one mapping, values would overwrite each other",
					tm.SourceTable, "", field)
			}
		}

		if cm.NeedsReview {
			found.AddWarning(diagnostic.CodeNeedsReview,
				"auto-detected split mapping has not been confirmed by a reviewer",
				tm.SourceTable, cm.SourceColumns[0], "")
		}
	}

	for _, required := range ep.RequiredFields() {
		if suppliers[required] == 0 {
			found.AddError(diagnostic.CodeIncompleteMapping,
				fmt.Sprintf("required field %q has no mapping supplying it", required),
				tm.SourceTable, "", required)
		}
	}

	for _, col := range tm.Unmapped {
		found.AddInfo(diagnostic.CodeUnmappedColumn,
			"column has no qualifying field candidate and will be excluded from payloads",
			tm.SourceTable, col, "")
	}

	return found
}
