// Package scenario holds the authored training cases: their metadata,
// objectives, evidence and simulated disk, plus loading and validation of
// case files.
package scenario

import "github.com/fakeyudi/forensim/internal/vfs"

// Difficulty grades a case.
type Difficulty string

const (
	Beginner     Difficulty = "Beginner"
	Intermediate Difficulty = "Intermediate"
	Advanced     Difficulty = "Advanced"
	Expert       Difficulty = "Expert"
)

// Difficulties lists the grades in ascending order.
var Difficulties = []Difficulty{Beginner, Intermediate, Advanced, Expert}

// Category is the forensics domain a case trains.
type Category string

const (
	MalwareAnalysis  Category = "Malware Analysis"
	NetworkForensics Category = "Network Forensics"
	MemoryForensics  Category = "Memory Forensics"
	LogAnalysis      Category = "Log Analysis"
	IncidentResponse Category = "Incident Response"
)

// Categories lists every known category.
var Categories = []Category{MalwareAnalysis, NetworkForensics, MemoryForensics, LogAnalysis, IncidentResponse}

// EvidenceType describes what kind of artifact an evidence item is.
type EvidenceType string

const (
	EvidenceEmail    EvidenceType = "email"
	EvidenceLog      EvidenceType = "log"
	EvidenceFile     EvidenceType = "file"
	EvidenceImage    EvidenceType = "image"
	EvidenceRegistry EvidenceType = "registry"
	EvidenceNetwork  EvidenceType = "network"
)

// Case is one training scenario.
type Case struct {
	ID          string      `yaml:"id"`
	Title       string      `yaml:"title"`
	Description string      `yaml:"description"`
	Requestor   string      `yaml:"requestor"`
	Date        string      `yaml:"date"`
	Difficulty  Difficulty  `yaml:"difficulty"`
	Category    Category    `yaml:"category"`
	TimeLimit   int         `yaml:"time_limit"` // minutes
	XPReward    int         `yaml:"xp_reward"`
	Briefing    string      `yaml:"briefing"`
	Objectives  []Objective `yaml:"objectives"`
	Evidence    []Evidence  `yaml:"evidence"`
	Hints       []string    `yaml:"hints,omitempty"`
	FileSystem  *vfs.Node   `yaml:"file_system"`
	Solution    []string    `yaml:"solution,omitempty"`
}

// Objective is one goal listed in the case briefing. When Evidence names
// evidence ids, the objective completes once all of them are found.
type Objective struct {
	ID          string   `yaml:"id"`
	Description string   `yaml:"description"`
	IsCompleted bool     `yaml:"-"`
	XPReward    int      `yaml:"xp_reward"`
	Evidence    []string `yaml:"evidence,omitempty"`
}

// Evidence is one discoverable clue. Path must name a file in the case's
// tree.
type Evidence struct {
	ID          string       `yaml:"id"`
	Path        string       `yaml:"path"`
	Name        string       `yaml:"name"`
	Type        EvidenceType `yaml:"type"`
	Description string       `yaml:"description"`
	IsFound     bool         `yaml:"-"`
}

// Clone returns the per-session working copy of c. Evidence and objectives
// are copied so their flags can change; the file tree is shared because it is
// never mutated.
func (c *Case) Clone() *Case {
	cp := *c
	cp.Objectives = make([]Objective, len(c.Objectives))
	for i, o := range c.Objectives {
		o.Evidence = append([]string(nil), o.Evidence...)
		cp.Objectives[i] = o
	}
	cp.Evidence = append([]Evidence(nil), c.Evidence...)
	cp.Hints = append([]string(nil), c.Hints...)
	cp.Solution = append([]string(nil), c.Solution...)
	return &cp
}

// EvidenceByID returns the evidence item with the given id.
func (c *Case) EvidenceByID(id string) (*Evidence, bool) {
	for i := range c.Evidence {
		if c.Evidence[i].ID == id {
			return &c.Evidence[i], true
		}
	}
	return nil, false
}

// FoundCount returns how many evidence items are flagged found.
func (c *Case) FoundCount() int {
	n := 0
	for _, e := range c.Evidence {
		if e.IsFound {
			n++
		}
	}
	return n
}

// AllEvidenceFound reports whether every evidence item is flagged found.
func (c *Case) AllEvidenceFound() bool {
	return c.FoundCount() == len(c.Evidence)
}

// MarkFound flags the evidence item found and completes any objective whose
// evidence is now all found. It reports false if id is unknown or already
// found.
func (c *Case) MarkFound(id string) bool {
	ev, ok := c.EvidenceByID(id)
	if !ok || ev.IsFound {
		return false
	}
	ev.IsFound = true
	for i := range c.Objectives {
		o := &c.Objectives[i]
		if o.IsCompleted || len(o.Evidence) == 0 {
			continue
		}
		done := true
		for _, eid := range o.Evidence {
			if e, ok := c.EvidenceByID(eid); !ok || !e.IsFound {
				done = false
				break
			}
		}
		o.IsCompleted = done
	}
	return true
}
