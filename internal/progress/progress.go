// Package progress owns the investigator's long-lived record: XP, levels,
// completed cases, hints and badges, and its persistence.
package progress

import (
	"maps"
	"slices"
	"time"
)

// Thresholds are the XP values at which each level starts.
var Thresholds = []int{0, 1000, 5000, 15000, 50000}

var levelNames = []string{
	"Novice Investigator",
	"Junior Analyst",
	"Digital Forensics Specialist",
	"Senior Investigator",
	"Expert Forensics Consultant",
}

// MaxLevel is the highest reachable level.
var MaxLevel = len(Thresholds)

// Level returns the 1-based level for xp: the highest i with xp >= Thresholds[i-1].
func Level(xp int) int {
	level := 1
	for i, t := range Thresholds {
		if xp >= t {
			level = i + 1
		}
	}
	return level
}

// LevelName returns the title shown for level. Out-of-range levels clamp.
func LevelName(level int) string {
	level = max(1, min(level, len(levelNames)))
	return levelNames[level-1]
}

// XPToNextLevel returns how much XP is missing to reach the next level, or 0
// at the maximum level.
func XPToNextLevel(xp int) int {
	level := Level(xp)
	if level >= MaxLevel {
		return 0
	}
	return Thresholds[level] - xp
}

// Badge is an achievement, earned at most once.
type Badge struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Icon        string    `json:"icon"`
	Description string    `json:"description"`
	EarnedAt    time.Time `json:"earned_at"`
}

// UserProgress is the single persisted record.
type UserProgress struct {
	XP                 int            `json:"xp"`
	CompletedCases     []string       `json:"completed_cases"`
	Badges             []Badge        `json:"badges"`
	HintsUsed          map[string]int `json:"hints_used"`
	TotalEvidenceFound int            `json:"total_evidence_found"`
	// EvidenceLog holds "caseID/evidenceID" keys already counted in
	// TotalEvidenceFound.
	EvidenceLog []string `json:"evidence_log,omitempty"`
}

// New returns the zero-value record used on first run.
func New() *UserProgress {
	return &UserProgress{
		CompletedCases: []string{},
		Badges:         []Badge{},
		HintsUsed:      map[string]int{},
	}
}

// Level is derived from XP on every call.
func (p *UserProgress) Level() int { return Level(p.XP) }

// HasCompleted reports whether caseID is in the completed set.
func (p *UserProgress) HasCompleted(caseID string) bool {
	return slices.Contains(p.CompletedCases, caseID)
}

// HasBadge reports whether a badge with id has been earned.
func (p *UserProgress) HasBadge(id string) bool {
	return slices.ContainsFunc(p.Badges, func(b Badge) bool { return b.ID == id })
}

// Clone returns a deep copy.
func (p *UserProgress) Clone() *UserProgress {
	cp := *p
	cp.CompletedCases = slices.Clone(p.CompletedCases)
	cp.Badges = slices.Clone(p.Badges)
	cp.HintsUsed = maps.Clone(p.HintsUsed)
	cp.EvidenceLog = slices.Clone(p.EvidenceLog)
	if cp.CompletedCases == nil {
		cp.CompletedCases = []string{}
	}
	if cp.Badges == nil {
		cp.Badges = []Badge{}
	}
	if cp.HintsUsed == nil {
		cp.HintsUsed = map[string]int{}
	}
	return &cp
}
