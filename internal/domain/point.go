package domain

import (
	"fmt"
	"sort"
	"strings"
)

// DesignPoint is a single parameter assignment in the design space.
type DesignPoint map[string]interface{}

// PointKey derives the stable store key of a design point: parameter names
// sorted lexicographically, each rendered as "name-value" and joined with
// semicolons. Two points with the same assignment always map to the same key.
func PointKey(point DesignPoint) string {
	names := make([]string, 0, len(point))
	for name := range point {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, fmt.Sprintf("%s-%v", name, point[name]))
	}
	return strings.Join(pairs, ";")
}
