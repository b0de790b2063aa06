package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassOfColumnType(t *testing.T) {
	tests := []struct {
		in   string
		want TypeClass
	}{
		{"VARCHAR", ClassText},
		{"varchar", ClassText},
		{"INT", ClassInteger},
		{"DECIMAL", ClassNumber},
		{"BOOLEAN", ClassBoolean},
		{"DATE", ClassDate},
		{"DATETIME", ClassTimestamp},
		{"UUID", ClassUUID},
		{"GEOMETRY", ClassUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassOfColumnType(tt.in), tt.in)
	}
}

func TestClassOfField(t *testing.T) {
	tests := []struct {
		name string
		in   TargetField
		want TypeClass
	}{
		{"plain string", TargetField{Type: "string"}, ClassText},
		{"date format", TargetField{Type: "string", Format: "date"}, ClassDate},
		{"datetime format", TargetField{Type: "string", Format: "date-time"}, ClassTimestamp},
		{"uuid format", TargetField{Type: "string", Format: "uuid"}, ClassUUID},
		{"integer", TargetField{Type: "integer"}, ClassInteger},
		{"number", TargetField{Type: "number"}, ClassNumber},
		{"object", TargetField{Type: "object"}, ClassComposite},
		{"array", TargetField{Type: "array"}, ClassComposite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassOfField(tt.in))
		})
	}
}
