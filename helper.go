// File: lixenwraith/lconfig/helper.go
package lconfig

import "strings"

// flattenMap turns scope tables into "scope.param" keys. Values nested
// deeper than a param are kept as dotted keys so ApplyDefaults can reject them.
func flattenMap(nested map[string]any, prefix string) map[string]any {
	flat := make(map[string]any)
	for key, value := range nested {
		path := joinKey(prefix, key)
		if table, ok := value.(map[string]any); ok {
			for k, v := range flattenMap(table, path) {
				flat[k] = v
			}
			continue
		}
		flat[path] = value
	}
	return flat
}

// setNestedValue stores value under a dotted key, creating tables on the way.
// A non-table value in the way is replaced.
func setNestedValue(nested map[string]any, path string, value any) {
	segments := strings.Split(path, ".")
	table := nested
	for _, segment := range segments[:len(segments)-1] {
		next, ok := table[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			table[segment] = next
		}
		table = next
	}
	table[segments[len(segments)-1]] = value
}

// splitDefaultsKey splits "scope.param" into its two bare-key halves.
func splitDefaultsKey(key string) (scope, param string, ok bool) {
	scope, param, ok = strings.Cut(key, ".")
	if !ok || !isValidKeySegment(scope) || !isValidKeySegment(param) {
		return "", "", false
	}
	return scope, param, true
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// isValidKeySegment reports whether s is a TOML bare key (A-Za-z0-9_-).
func isValidKeySegment(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}
