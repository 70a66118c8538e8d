package record

import (
	"time"

	"github.com/google/uuid"

	dErrors "orgdir/pkg/domain-errors"
)

// Apply runs the update intent against target, one field change at a time in
// the supplied order, short-circuiting on the first failure:
//
//  1. undeclared field          -> non_existent_property
//  2. unmodifiable field        -> unmodifiable_property
//  3. unique value held by      -> unique_property
//     another record
//  4. value fails coercion      -> property_casting_error
//  5. coerced value is assigned
//
// Changes are staged on a copy of the record and copied back only when every
// pair passes, so a failed intent leaves target untouched. Callers persist
// the record themselves after a nil return.
//
// self is target's external identifier; collection is the full live
// collection used for uniqueness scans, with guidOf resolving each member's
// identifier so the target excludes itself.
func Apply[T any](tbl Table[T], target *T, self uuid.UUID, collection []*T, guidOf func(*T) uuid.UUID, intent Intent) error {
	draft := *target
	for _, ch := range intent.Changes {
		capability, ok := tbl.Capability(ch.Name)
		if !ok {
			return dErrors.Newf(dErrors.CodeNonExistentProperty, "property %q does not exist", ch.Name)
		}
		if capability == Unmodifiable {
			return dErrors.Newf(dErrors.CodeUnmodifiableProperty, "property %q cannot be modified", ch.Name)
		}
		col := tbl[ch.Name]
		if capability == Unique && heldByAnother(col, self, collection, guidOf, ch.Value) {
			return dErrors.Newf(dErrors.CodeUniqueProperty, "property %q must be unique", ch.Name)
		}
		if err := col.Set(&draft, ch.Value); err != nil {
			return dErrors.Newf(dErrors.CodePropertyCasting, "cannot assign property %q: expected %s", ch.Name, col.Type)
		}
	}
	*target = draft
	return nil
}

func heldByAnother[T any](col Column[T], self uuid.UUID, collection []*T, guidOf func(*T) uuid.UUID, value any) bool {
	for _, other := range collection {
		if guidOf(other) == self {
			continue
		}
		if valueEqual(col.Get(other), value) {
			return true
		}
	}
	return false
}

// valueEqual compares a field's current value against a JSON-untyped input
// using the field's natural equality.
func valueEqual(have, want any) bool {
	switch h := have.(type) {
	case string:
		w, ok := want.(string)
		return ok && h == w
	case bool:
		w, ok := want.(bool)
		return ok && h == w
	case int:
		switch w := want.(type) {
		case int:
			return h == w
		case float64:
			return float64(h) == w
		}
		return false
	case float64:
		switch w := want.(type) {
		case float64:
			return h == w
		case int:
			return h == float64(w)
		}
		return false
	case uuid.UUID:
		w, ok := want.(string)
		if !ok {
			return false
		}
		parsed, err := uuid.Parse(w)
		return err == nil && parsed == h
	case time.Time:
		w, ok := want.(string)
		if !ok {
			return false
		}
		parsed, err := time.Parse(time.RFC3339, w)
		return err == nil && parsed.Equal(h)
	default:
		return false
	}
}
