package scenario

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
)

// ErrCaseNotFound is returned by Catalog.Get for an unknown case id.
var ErrCaseNotFound = errors.New("case not found")

//go:embed cases/*.yaml
var builtinFS embed.FS

// Catalog is the ordered set of playable cases, unique by id.
type Catalog struct {
	cases []*Case
}

// NewCatalog builds a catalog from cases. A later case replaces an earlier
// one with the same id in place.
func NewCatalog(cases ...*Case) *Catalog {
	cat := &Catalog{}
	for _, c := range cases {
		cat.add(c)
	}
	return cat
}

func (cat *Catalog) add(c *Case) {
	for i, existing := range cat.cases {
		if existing.ID == c.ID {
			cat.cases[i] = c
			return
		}
	}
	cat.cases = append(cat.cases, c)
}

// Builtin returns the cases shipped with the binary.
func Builtin() ([]*Case, error) {
	names, err := fs.Glob(builtinFS, "cases/*.yaml")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	var cases []*Case
	for _, name := range names {
		data, err := builtinFS.ReadFile(name)
		if err != nil {
			return nil, err
		}
		c, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("builtin %s: %w", name, err)
		}
		cases = append(cases, c)
	}
	return cases, nil
}

// LoadCatalog returns the built-in cases overlaid with every valid case file
// found in dir. Invalid user cases are skipped and reported in the returned
// warnings; dir may be empty.
func LoadCatalog(dir string) (*Catalog, []string, error) {
	builtin, err := Builtin()
	if err != nil {
		return nil, nil, err
	}
	cat := NewCatalog(builtin...)
	if dir == "" {
		return cat, nil, nil
	}

	user, err := LoadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading cases from %s: %w", dir, err)
	}
	var warnings []string
	for _, c := range user {
		if err := Validate(c); err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		cat.add(c)
	}
	return cat, warnings, nil
}

// All returns the cases in catalog order.
func (cat *Catalog) All() []*Case {
	return append([]*Case(nil), cat.cases...)
}

// Len returns the number of cases.
func (cat *Catalog) Len() int {
	return len(cat.cases)
}

// Get returns the case with the given id.
func (cat *Catalog) Get(id string) (*Case, error) {
	for _, c := range cat.cases {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCaseNotFound, id)
}

// Filter returns the cases matching difficulty and category; an empty value
// matches everything.
func (cat *Catalog) Filter(d Difficulty, cg Category) []*Case {
	var out []*Case
	for _, c := range cat.cases {
		if d != "" && c.Difficulty != d {
			continue
		}
		if cg != "" && c.Category != cg {
			continue
		}
		out = append(out, c)
	}
	return out
}
