package schema

// Predicate is one condition in a vector store filter. Exactly one of
// AnyOf or Equals is set: AnyOf matches when the stored field shares at
// least one value with the predicate, Equals requires an exact scalar match.
type Predicate struct {
	AnyOf  []string
	Equals string
}

// Filter maps field names to predicates. All predicates must hold for a
// chunk to pass (conjunction across fields, disjunction inside AnyOf).
type Filter map[string]Predicate

// internalFields are bookkeeping or free-text fields that must never leak
// into a similarity-search filter.
var internalFields = map[string]bool{
	"added_new_keyword": true,
	"obligations":       true,
	"exclusions":        true,
	"notes":             true,
}

// BuildFilter converts extracted metadata into the store filter dialect:
// list-valued fields become any-of membership predicates, scalar values pass
// through as equality predicates, empty lists and internal fields are dropped.
func BuildFilter(metadata map[string]any) Filter {
	filter := make(Filter)
	for key, value := range metadata {
		if internalFields[key] {
			continue
		}
		switch v := value.(type) {
		case nil:
			continue
		case []string:
			if len(v) > 0 {
				filter[key] = Predicate{AnyOf: v}
			}
		case []any:
			var vals []string
			for _, item := range v {
				if s := stringify(item); s != "" {
					vals = append(vals, s)
				}
			}
			if len(vals) > 0 {
				filter[key] = Predicate{AnyOf: vals}
			}
		default:
			if s := stringify(v); s != "" {
				filter[key] = Predicate{Equals: s}
			}
		}
	}
	return filter
}

// FilterFromLists builds a Filter from already-normalized list metadata.
func FilterFromLists(metadata map[string][]string) Filter {
	raw := make(map[string]any, len(metadata))
	for k, v := range metadata {
		raw[k] = v
	}
	return BuildFilter(raw)
}

// Matches reports whether chunk metadata satisfies every predicate in the
// filter. Fields absent from the chunk metadata fail their predicate.
func (f Filter) Matches(metadata map[string][]string) bool {
	for field, pred := range f {
		values, ok := metadata[field]
		if !ok || len(values) == 0 {
			return false
		}
		if pred.Equals != "" {
			if !intersects(values, []string{pred.Equals}) {
				return false
			}
			continue
		}
		if !intersects(values, pred.AnyOf) {
			return false
		}
	}
	return true
}

func intersects(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, v := range a {
		set[v] = true
	}
	for _, v := range b {
		if set[v] {
			return true
		}
	}
	return false
}
