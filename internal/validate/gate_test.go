package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erp-migrator/internal/diagnostic"
	"erp-migrator/internal/mapper"
	"erp-migrator/internal/schema"
)

func customerRegistry() *schema.Registry {
	reg := schema.NewRegistry()
	reg.RegisterSource(&schema.Source{
		DatabaseType: "mysql",
		Tables: []schema.SourceTable{{
			Name: "tb_clientes",
			Columns: []schema.SourceColumn{
				{Name: "nome", Type: "VARCHAR"},
				{Name: "cpf", Type: "VARCHAR"},
			},
		}},
	})
	reg.LoadTarget(&schema.Target{
		Endpoints: []schema.TargetEndpoint{{
			Path:   "/v1/customers",
			Entity: "Customer",
			Method: "POST",
			Fields: []schema.TargetField{
				{Name: "name", Type: "string", Required: true},
				{Name: "document", Type: "string", Required: true},
			},
		}},
	})

	return reg
}

func TestValidate_CleanTableReachesValidated(t *testing.T) {
	reg := customerRegistry()

	set, err := mapper.NewBuilder(reg, nil).AutoMap()
	require.NoError(t, err)

	tm := set.Table("tb_clientes")
	require.NotNil(t, tm)
	require.False(t, tm.Skip)
	require.NotNil(t, tm.MappingFor("name"))
	require.NotNil(t, tm.MappingFor("document"))

	found, err := NewGate(reg, nil).Validate(set)
	require.NoError(t, err)

	assert.Empty(t, found.Errors)
	assert.Empty(t, found.Warnings)
	assert.Equal(t, mapper.StatusValidated, tm.Status)
	assert.NoError(t, found.Err())
}

func TestValidate_Idempotent(t *testing.T) {
	reg := customerRegistry()
	gate := NewGate(reg, nil)

	set, err := mapper.NewBuilder(reg, nil).AutoMap()
	require.NoError(t, err)

	first, err := gate.Validate(set)
	require.NoError(t, err)
	require.Empty(t, first.Errors)

	again, err := gate.Validate(set)
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, mapper.StatusValidated, set.Table("tb_clientes").Status)
}

func TestValidate_MissingRequiredFieldBlocks(t *testing.T) {
	reg := customerRegistry()

	set := &mapper.Set{
		SchemaVersion: mapper.SchemaVersion,
		Tables: []mapper.TableMapping{{
			SourceTable: "tb_clientes",
			Endpoint:    "/v1/customers",
			Status:      mapper.StatusDraft,
			Columns: []mapper.ColumnMapping{{
				Kind:          mapper.OneToOne,
				SourceColumns: []string{"nome"},
				TargetFields:  []string{"name"},
			}},
		}},
	}

	found, err := NewGate(reg, nil).Validate(set)
	require.NoError(t, err)
	require.Len(t, found.Errors, 1)

	f := found.Errors[0]
	assert.Equal(t, diagnostic.CodeIncompleteMapping, f.Code)
	assert.Equal(t, "tb_clientes", f.Table)
	assert.Equal(t, "document", f.Field)
	assert.Contains(t, f.Message, "document")

	// Blocked tables are not promoted.
	assert.Equal(t, mapper.StatusDraft, set.Tables[0].Status)
	assert.Error(t, found.Err())
}

func TestValidate_ConflictingSuppliers(t *testing.T) {
	reg := customerRegistry()

	set := &mapper.Set{
		SchemaVersion: mapper.SchemaVersion,
		Tables: []mapper.TableMapping{{
			SourceTable: "tb_clientes",
			Endpoint:    "/v1/customers",
			Status:      mapper.StatusDraft,
			Columns: []mapper.ColumnMapping{
				{
					Kind:          mapper.OneToOne,
					SourceColumns: []string{"nome"},
					TargetFields:  []string{"name"},
				},
				{
					Kind:          mapper.OneToOne,
					SourceColumns: []string{"cpf"},
					TargetFields:  []string{"name"},
				},
				{
					Kind:          mapper.OneToOne,
					SourceColumns: []string{"cpf"},
					TargetFields:  []string{"document"},
				},
			},
		}},
	}

	found, err := NewGate(reg, nil).Validate(set)
	require.NoError(t, err)
	require.Len(t, found.Errors, 1)
	assert.Equal(t, diagnostic.CodeConflictingMapping, found.Errors[0].Code)
	assert.Equal(t, "name", found.Errors[0].Field)
	assert.NotEqual(t, mapper.StatusValidated, set.Tables[0].Status)
}

func TestValidate_StaleReferences(t *testing.T) {
	reg := customerRegistry()

	set := &mapper.Set{
		SchemaVersion: mapper.SchemaVersion,
		Tables: []mapper.TableMapping{{
			SourceTable: "tb_clientes",
			Endpoint:    "/v1/customers",
			Status:      mapper.StatusDraft,
			Columns: []mapper.ColumnMapping{
				{
					Kind:          mapper.OneToOne,
					SourceColumns: []string{"dropped_col"},
					TargetFields:  []string{"name"},
				},
				{
					Kind:          mapper.OneToOne,
					SourceColumns: []string{"cpf"},
					TargetFields:  []string{"document"},
				},
			},
		}},
	}

	found, err := NewGate(reg, nil).Validate(set)
	require.NoError(t, err)

	var stale []diagnostic.Finding
	for _, f := range found.Errors {
		if f.Code == diagnostic.CodeStaleMapping {
			stale = append(stale, f)
		}
	}
	require.Len(t, stale, 1)
	assert.Equal(t, "dropped_col", stale[0].Column)
}

func TestValidate_DemotesValidatedTableOnDrift(t *testing.T) {
	reg := customerRegistry()
	gate := NewGate(reg, nil)

	set, err := mapper.NewBuilder(reg, nil).AutoMap()
	require.NoError(t, err)

	found, err := gate.Validate(set)
	require.NoError(t, err)
	require.Empty(t, found.Errors)

	tm := set.Table("tb_clientes")
	require.Equal(t, mapper.StatusValidated, tm.Status)
	require.Len(t, set.Validated(), 1)

	// The source schema changes under a previously validated mapping.
	nameMapping := tm.MappingFor("name")
	require.NotNil(t, nameMapping)
	nameMapping.SourceColumns = []string{"dropped_col"}

	found, err = gate.Validate(set)
	require.NoError(t, err)
	require.NotEmpty(t, found.Errors)
	assert.Equal(t, diagnostic.CodeStaleMapping, found.Errors[0].Code)

	// The stale table loses its validated status and is no longer
	// offered for payload generation.
	assert.Equal(t, mapper.StatusDraft, tm.Status)
	assert.Empty(t, set.Validated())
}

func TestValidate_UnknownEndpoint(t *testing.T) {
	reg := customerRegistry()

	set := &mapper.Set{
		SchemaVersion: mapper.SchemaVersion,
		Tables: []mapper.TableMapping{{
			SourceTable: "tb_clientes",
			Endpoint:    "/v1/removed",
			Status:      mapper.StatusDraft,
		}},
	}

	found, err := NewGate(reg, nil).Validate(set)
	require.NoError(t, err)
	require.Len(t, found.Errors, 1)
	assert.Equal(t, diagnostic.CodeUnknownEndpoint, found.Errors[0].Code)
	assert.Contains(t, found.Errors[0].Message, "/v1/removed")
}

func TestValidate_SkippedTablesIgnored(t *testing.T) {
	reg := customerRegistry()

	set := &mapper.Set{
		SchemaVersion: mapper.SchemaVersion,
		Tables: []mapper.TableMapping{{
			SourceTable: "tb_clientes",
			Skip:        true,
			SkipReason:  "handled manually",
			Status:      mapper.StatusDraft,
		}},
	}

	found, err := NewGate(reg, nil).Validate(set)
	require.NoError(t, err)
	assert.Empty(t, found.Errors)
	assert.Equal(t, mapper.StatusDraft, set.Tables[0].Status)
}

func TestValidate_SplitMappingWarns(t *testing.T) {
	reg := schema.NewRegistry()
	reg.RegisterSource(&schema.Source{
		Tables: []schema.SourceTable{{
			Name: "tb_clientes",
			Columns: []schema.SourceColumn{
				{Name: "full_name", Type: "VARCHAR"},
			},
		}},
	})
	reg.LoadTarget(&schema.Target{
		Endpoints: []schema.TargetEndpoint{{
			Path:   "/v1/customers",
			Entity: "Customer",
			Fields: []schema.TargetField{
				{Name: "first_name", Type: "string", Required: true},
				{Name: "last_name", Type: "string", Required: true},
			},
		}},
	})

	set, err := mapper.NewBuilder(reg, nil).AutoMap()
	require.NoError(t, err)
	require.Len(t, set.Table("tb_clientes").Columns, 1)
	require.True(t, set.Table("tb_clientes").Columns[0].NeedsReview)

	found, err := NewGate(reg, nil).Validate(set)
	require.NoError(t, err)

	assert.Empty(t, found.Errors)
	require.Len(t, found.Warnings, 1)
	assert.Equal(t, diagnostic.CodeNeedsReview, found.Warnings[0].Code)
	// Warnings advise but do not block promotion.
	assert.Equal(t, mapper.StatusValidated, set.Table("tb_clientes").Status)
}

func TestValidate_RequiresSchemas(t *testing.T) {
	gate := NewGate(schema.NewRegistry(), nil)

	_, err := gate.Validate(&mapper.Set{SchemaVersion: mapper.SchemaVersion})
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrNotLoaded)
}
