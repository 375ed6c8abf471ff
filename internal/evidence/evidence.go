// Package evidence decides which evidence item, if any, a file read uncovers.
package evidence

import (
	"fmt"
	"slices"
	"strings"

	"github.com/fakeyudi/forensim/internal/scenario"
)

// normalize folds separators and case so authored and typed paths compare.
func normalize(p string) string {
	return strings.ToLower(strings.ReplaceAll(p, `\`, "/"))
}

// Match returns the first evidence item, in authored order and not already in
// found, whose path contains or is contained in path. The containment check
// runs both ways to tolerate prefix and suffix differences between authored
// and read paths; an evidence path that is a substring of an unrelated path
// will therefore match it too.
func Match(path string, items []scenario.Evidence, found []string) (*scenario.Evidence, bool) {
	read := normalize(path)
	if read == "" {
		return nil, false
	}
	for i := range items {
		ev := &items[i]
		if slices.Contains(found, ev.ID) {
			continue
		}
		want := normalize(ev.Path)
		if want == "" {
			continue
		}
		if strings.Contains(read, want) || strings.Contains(want, read) {
			return ev, true
		}
	}
	return nil, false
}

// Banner is appended to a file read that uncovered ev.
func Banner(ev *scenario.Evidence) string {
	return fmt.Sprintf("\n\n⚠️  EVIDENCE FOUND: %s\n    %s", ev.Name, ev.Description)
}

// IsEvidenceName reports whether a directory entry called name is one of the
// case's evidence items. Listings use it to flag entries.
func IsEvidenceName(name string, items []scenario.Evidence) bool {
	for _, ev := range items {
		if strings.EqualFold(name, ev.Name) {
			return true
		}
	}
	return false
}
