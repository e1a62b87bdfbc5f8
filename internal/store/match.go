package store

import (
	"reflect"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Matches reports whether doc satisfies every field of filter. Backends
// without native querying use it to emulate MongoDB equality matches.
func Matches(doc Document, filter Filter) bool {
	for field, want := range filter {
		got, present := doc[field]

		if want == nil {
			if present && got != nil {
				return false
			}
			continue
		}

		if !present || !equal(got, want) {
			return false
		}
	}
	return true
}

func equal(a, b any) bool {
	return reflect.DeepEqual(Normalize(a), Normalize(b))
}

// Normalize maps a value to its JSON-equivalent form so that documents that
// went through an encoder compare equal to the ones that did not.
func Normalize(v any) any {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case float32:
		return float64(t)
	case Document:
		return normalizeMap(t)
	case map[string]any:
		return normalizeMap(t)
	case primitive.M:
		return normalizeMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Normalize(e)
		}
		return out
	case primitive.A:
		return Normalize([]any(t))
	default:
		return v
	}
}

func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, e := range m {
		out[k] = Normalize(e)
	}
	return out
}

// Clone returns a deep copy of doc.
func Clone(doc Document) Document {
	if doc == nil {
		return nil
	}
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Document:
		return Clone(t)
	case map[string]any:
		return map[string]any(Clone(Document(t)))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
