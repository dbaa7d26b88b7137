package ogm

import (
	"maps"
	"regexp"
	"slices"
	"strings"
)

var plainIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// quoteIdent backtick-quotes a label, relationship type or property name when
// it is not a plain identifier.
func quoteIdent(s string) string {
	if plainIdent.MatchString(s) {
		return s
	}

	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// labelPattern renders labels as :A:B.
func labelPattern(labels []string) string {
	var b strings.Builder
	for _, l := range labels {
		b.WriteString(":")
		b.WriteString(quoteIdent(l))
	}

	return b.String()
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
