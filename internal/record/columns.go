// Package record implements the metadata-driven partial-update core shared by
// every persisted collection: per-type column tables, ordered update intents,
// untyped-value coercion, the sanitize/apply engine and sequence allocation.
//
// A column table is the compile-time substitute for runtime reflection: each
// record type registers, per field name, its capability tag plus a typed
// getter and setter. The engine only ever touches records through the table.
package record

// Capability is the per-field access-control tag held by a column table.
type Capability int

const (
	// Mutable fields accept any type-correct value. The default.
	Mutable Capability = iota
	// Unmodifiable fields reject every update.
	Unmodifiable
	// Unique fields reject values already held by a different record in the
	// same collection.
	Unique
	// NotEmpty is declared by some fields but carries no behavioral contract
	// in the engine. Reserved.
	NotEmpty
)

func (c Capability) String() string {
	switch c {
	case Unmodifiable:
		return "unmodifiable"
	case Unique:
		return "unique"
	case NotEmpty:
		return "not_empty"
	default:
		return "mutable"
	}
}

// Column describes one field of record type T.
type Column[T any] struct {
	Capability Capability
	// Type names the field's declared type for casting-error messages.
	Type string
	// Get returns the field's current value, used for uniqueness scans.
	Get func(*T) any
	// Set coerces an untyped input into the field's type and assigns it.
	// A non-nil error means the value could not be coerced.
	Set func(*T, any) error
}

// Table maps field names to columns for one record type. Tables are built
// once at package init and never mutated.
type Table[T any] map[string]Column[T]

// Capability resolves the tag for a field name; ok is false when the record
// type does not declare the field.
func (t Table[T]) Capability(field string) (Capability, bool) {
	col, ok := t[field]
	return col.Capability, ok
}
