package age

import "regexp"

// MaxIdentifierLength is PostgreSQL's NAMEDATALEN - 1.
const MaxIdentifierLength = 63

var safeIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsSafeIdentifier reports whether s can be interpolated as a graph, label or
// property name without quoting.
func IsSafeIdentifier(s string) bool {
	return len(s) <= MaxIdentifierLength && safeIdentifier.MatchString(s)
}
