package match

import "erp-migrator/internal/schema"

// Compatibility ranks how well a source column's type fits a target field's
// type. It only breaks ties between equal name scores; it never changes the
// confidence itself.
type Compatibility int

const (
	// Incompatible means a straight value copy can never succeed
	// (e.g. anything scalar into an object/array field).
	Incompatible Compatibility = iota
	// Coercible means the value needs parsing or formatting but routinely
	// works (text into a date field, integer into a number field).
	Coercible
	// Exact means the type families line up directly.
	Exact
)

// String returns a human-readable compatibility name.
func (c Compatibility) String() string {
	switch c {
	case Exact:
		return "exact"
	case Coercible:
		return "coercible"
	default:
		return "incompatible"
	}
}

// TypeCompatibility classifies a source column against a target field.
func TypeCompatibility(col *schema.SourceColumn, field *schema.TargetField) Compatibility {
	src := schema.ClassOfColumnType(col.Type)
	dst := schema.ClassOfField(*field)

	if dst == schema.ClassComposite {
		// Nested objects/arrays need explicit shaping, never a plain copy.
		return Incompatible
	}

	if src == dst && src != schema.ClassUnknown {
		return Exact
	}

	switch {
	case src == schema.ClassUnknown || dst == schema.ClassUnknown:
		return Coercible
	case src == schema.ClassText || dst == schema.ClassText:
		// Legacy text columns carry anything; most fields render to text.
		return Coercible
	case src == schema.ClassInteger && dst == schema.ClassNumber:
		return Coercible
	case src == schema.ClassNumber && dst == schema.ClassInteger:
		return Coercible
	case src == schema.ClassDate && dst == schema.ClassTimestamp:
		return Coercible
	case src == schema.ClassTimestamp && dst == schema.ClassDate:
		return Coercible
	default:
		return Incompatible
	}
}
