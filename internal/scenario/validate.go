package scenario

import (
	"fmt"
	"slices"
	"strings"

	"github.com/fakeyudi/forensim/internal/vfs"
)

// ValidationError lists every authoring problem found in one case.
type ValidationError struct {
	CaseID   string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("case %q is invalid: %s", e.CaseID, strings.Join(e.Problems, "; "))
}

// Validate checks the authoring contract of c: identity, enums, unique ids,
// and that every evidence path resolves to a file in the case's own tree.
func Validate(c *Case) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.ID == "" {
		add("missing id")
	}
	if c.Title == "" {
		add("missing title")
	}
	if !slices.Contains(Difficulties, c.Difficulty) {
		add("unknown difficulty %q", c.Difficulty)
	}
	if !slices.Contains(Categories, c.Category) {
		add("unknown category %q", c.Category)
	}
	if c.TimeLimit <= 0 {
		add("time_limit must be positive")
	}
	if c.XPReward < 0 {
		add("xp_reward must not be negative")
	}

	if c.FileSystem == nil {
		add("missing file_system")
	} else if !c.FileSystem.IsDir() {
		add("file_system root must be a directory")
	}

	evidenceIDs := make(map[string]bool, len(c.Evidence))
	for _, e := range c.Evidence {
		if e.ID == "" {
			add("evidence %q has no id", e.Name)
			continue
		}
		if evidenceIDs[e.ID] {
			add("duplicate evidence id %q", e.ID)
		}
		evidenceIDs[e.ID] = true
		if c.FileSystem == nil {
			continue
		}
		n, ok := vfs.Lookup(c.FileSystem, e.Path)
		switch {
		case !ok:
			add("evidence %q path %s does not exist", e.ID, e.Path)
		case n.IsDir():
			add("evidence %q path %s is a directory", e.ID, e.Path)
		}
	}

	objectiveIDs := make(map[string]bool, len(c.Objectives))
	for _, o := range c.Objectives {
		if objectiveIDs[o.ID] {
			add("duplicate objective id %q", o.ID)
		}
		objectiveIDs[o.ID] = true
		for _, eid := range o.Evidence {
			if !evidenceIDs[eid] {
				add("objective %q references unknown evidence %q", o.ID, eid)
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{CaseID: c.ID, Problems: problems}
	}
	return nil
}
