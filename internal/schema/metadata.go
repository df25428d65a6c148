package schema

import "fmt"

// Extraction is the structured metadata pulled from one page (or one query).
// Field values are always lists of short keyword strings; absent fields are
// simply missing from the map.
type Extraction struct {
	Fields          map[string][]string
	AddedNewKeyword bool
}

// Empty returns true when the extraction carries no field values.
func (e Extraction) Empty() bool {
	return len(e.Fields) == 0
}

// Normalize converts a loosely-typed metadata map (as decoded from LLM JSON)
// into the canonical list-valued form:
//   - nil -> dropped
//   - list -> string elements kept as-is
//   - scalar -> wrapped in a singleton list
//
// Empty lists are dropped: absence, not an empty list, represents "no value".
func Normalize(raw map[string]any) map[string][]string {
	normalized := make(map[string][]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
			continue
		case []any:
			var vals []string
			for _, item := range v {
				if s := stringify(item); s != "" {
					vals = append(vals, s)
				}
			}
			if len(vals) > 0 {
				normalized[key] = vals
			}
		case []string:
			if len(v) > 0 {
				normalized[key] = v
			}
		default:
			if s := stringify(v); s != "" {
				normalized[key] = []string{s}
			}
		}
	}
	return normalized
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	case float64:
		// JSON numbers decode as float64; keep integers readable.
		if s == float64(int64(s)) {
			return fmt.Sprintf("%d", int64(s))
		}
		return fmt.Sprintf("%g", s)
	case bool:
		return fmt.Sprintf("%t", s)
	default:
		return fmt.Sprintf("%v", s)
	}
}
