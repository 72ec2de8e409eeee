package template

// DeepMerge returns a new map holding base with override applied on top.
// Nested maps merge key by key; every other value type — slices included —
// is replaced wholesale. Nil override values are skipped so an explicit
// null never erases a default. Neither argument is mutated.
func DeepMerge(base, override map[string]any) map[string]any {
	result := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		result[k] = copyValue(v)
	}
	for k, v := range override {
		if v == nil {
			continue
		}
		ov, ok := v.(map[string]any)
		if !ok {
			result[k] = copyValue(v)
			continue
		}
		bv, ok := result[k].(map[string]any)
		if !ok {
			result[k] = DeepMerge(nil, ov)
			continue
		}
		result[k] = DeepMerge(bv, ov)
	}
	return result
}

// MergeProperty layers the three sources of one element property by
// precedence: user-set values win over shorthand-derived values, which win
// over template defaults. The result is always a fresh map.
func MergeProperty(templateDefault, shorthand, user map[string]any) map[string]any {
	return DeepMerge(DeepMerge(templateDefault, shorthand), user)
}

// copyValue deep-copies maps so later merges cannot reach back into an
// input; scalars and slices are kept as-is (slices are replaced wholesale
// by merges, never written into).
func copyValue(v any) any {
	if m, ok := v.(map[string]any); ok {
		return DeepMerge(nil, m)
	}
	return v
}
