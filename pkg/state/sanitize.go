package state

import "strings"

// DefaultMaxDepth is the default recursion ceiling for value sanitization
// and the default maximum number of segments in a path.
const DefaultMaxDepth = 50

// Wildcard is the special path meaning "any change, whole-tree view".
// It is valid only for Subscribe; mutation and read paths must address a
// concrete location.
const Wildcard = "*"

// reservedKeys are object keys that may never appear in the value tree or
// as a path segment. They are the keys an attacker-controlled path could
// use to escape the tree's intended shape on prototype-based runtimes, and
// rejecting them keeps serialized trees safe to hand to such consumers.
var reservedKeys = map[string]struct{}{
	"__proto__":   {},
	"constructor": {},
	"prototype":   {},
}

// ValidateKey reports whether key is safe to use in the value tree.
// It rejects only the reserved prototype-escaping keys.
func ValidateKey(key string) bool {
	_, reserved := reservedKeys[key]
	return !reserved
}

// ValidatePath reports whether path is a well-formed, safe path: non-empty,
// not whitespace-only, at most DefaultMaxDepth dot-delimited segments, with
// no empty, wildcard, or reserved segments.
func ValidatePath(path string) bool {
	return validatePath(path, DefaultMaxDepth)
}

func validatePath(path string, maxDepth int) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	segments := strings.Split(path, ".")
	if len(segments) > maxDepth {
		return false
	}
	for _, seg := range segments {
		if seg == "" || seg == Wildcard || !ValidateKey(seg) {
			return false
		}
	}
	return true
}

// SanitizeValue returns a deep copy of v with reserved keys dropped from
// every nested map, using the default recursion ceiling. At the ceiling a
// map or slice is still copied one level with reserved keys dropped, but
// nothing below it is descended into: the result is degraded but safe,
// never an error.
func SanitizeValue(v any) any {
	return sanitizeValue(v, 0, DefaultMaxDepth)
}

func sanitizeValue(v any, depth, maxDepth int) any {
	switch val := v.(type) {
	case map[string]any:
		atCeiling := depth >= maxDepth
		out := make(map[string]any, len(val))
		for k, item := range val {
			if !ValidateKey(k) {
				continue
			}
			if atCeiling {
				out[k] = item
			} else {
				out[k] = sanitizeValue(item, depth+1, maxDepth)
			}
		}
		return out
	case []any:
		out := make([]any, len(val))
		if depth >= maxDepth {
			copy(out, val)
			return out
		}
		for i, item := range val {
			out[i] = sanitizeValue(item, depth+1, maxDepth)
		}
		return out
	default:
		// Scalars and opaque types are stored by value/reference as given.
		return v
	}
}

// splitPath splits a validated path into its segments.
func splitPath(path string) []string {
	return strings.Split(path, ".")
}
