package progress

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
)

// CaseResult describes one finished case.
type CaseResult struct {
	CaseID    string
	XPReward  int
	TimeLimit int // minutes
	StartedAt time.Time
	EndedAt   time.Time
	Completed bool
}

// Outcome is what EndCase reports back to the player.
type Outcome struct {
	CaseID    string        `json:"case_id"`
	Completed bool          `json:"completed"`
	Elapsed   time.Duration `json:"elapsed"`
	Reward    Reward        `json:"reward"`
	OldXP     int           `json:"old_xp"`
	NewXP     int           `json:"new_xp"`
	OldLevel  int           `json:"old_level"`
	NewLevel  int           `json:"new_level"`
	Badges    []Badge       `json:"badges,omitempty"`
}

// LevelUp reports whether the case end crossed a level threshold.
func (o Outcome) LevelUp() bool { return o.NewLevel > o.OldLevel }

// Engine applies progress mutations and writes every change through to its
// Store. A failed save is logged and returned; the in-memory state keeps the
// mutation.
type Engine struct {
	store Store
	log   *zap.Logger
	p     *UserProgress
}

// NewEngine loads the saved record from store, starting from zero when none
// exists.
func NewEngine(store Store, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	p, err := store.Load()
	switch {
	case errors.Is(err, ErrNoProgress):
		p = New()
	case err != nil:
		return nil, fmt.Errorf("loading progress: %w", err)
	}
	return &Engine{store: store, log: log, p: p}, nil
}

// Progress returns a copy of the current record.
func (e *Engine) Progress() *UserProgress {
	return e.p.Clone()
}

// HintsUsed returns the hints recorded for caseID.
func (e *Engine) HintsUsed(caseID string) int {
	return e.p.HintsUsed[caseID]
}

func (e *Engine) save(op string) error {
	if err := e.store.Save(e.p); err != nil {
		e.log.Warn("progress save failed", zap.String("op", op), zap.Error(err))
		return err
	}
	return nil
}

// AddXP adds n to the XP total.
func (e *Engine) AddXP(n int) error {
	e.p.XP += n
	e.log.Debug("xp added", zap.Int("amount", n), zap.Int("xp", e.p.XP))
	return e.save("add_xp")
}

// RecordHint counts one hint for caseID. The penalty is applied at EndCase.
func (e *Engine) RecordHint(caseID string) error {
	e.p.HintsUsed[caseID]++
	e.log.Info("hint used", zap.String("case", caseID), zap.Int("count", e.p.HintsUsed[caseID]))
	return e.save("record_hint")
}

// RecordEvidence counts a discovered evidence item once per case and id,
// across all sessions. It reports whether the item was counted now.
func (e *Engine) RecordEvidence(caseID, evidenceID string) (bool, error) {
	key := caseID + "/" + evidenceID
	if slices.Contains(e.p.EvidenceLog, key) {
		return false, nil
	}
	e.p.EvidenceLog = append(e.p.EvidenceLog, key)
	e.p.TotalEvidenceFound++
	e.log.Info("evidence recorded",
		zap.String("case", caseID),
		zap.String("evidence", evidenceID),
		zap.Int("total", e.p.TotalEvidenceFound))
	return true, e.save("record_evidence")
}

// EndCase applies the reward for a finished case and evaluates badges.
// Badges are only considered for completed cases and never awarded twice.
func (e *Engine) EndCase(r CaseResult) (Outcome, error) {
	elapsed := max(r.EndedAt.Sub(r.StartedAt), 0)
	hints := e.p.HintsUsed[r.CaseID]
	reward := ComputeReward(RewardInput{
		XPReward:  r.XPReward,
		TimeLimit: r.TimeLimit,
		Elapsed:   elapsed,
		Completed: r.Completed,
		Hints:     hints,
	})

	out := Outcome{
		CaseID:    r.CaseID,
		Completed: r.Completed,
		Elapsed:   elapsed,
		Reward:    reward,
		OldXP:     e.p.XP,
		OldLevel:  e.p.Level(),
	}

	e.p.XP += reward.Final
	if r.Completed && !e.p.HasCompleted(r.CaseID) {
		e.p.CompletedCases = append(e.p.CompletedCases, r.CaseID)
	}
	if r.Completed {
		for _, id := range qualifyingBadges(len(e.p.CompletedCases), WithinLimit(elapsed, r.TimeLimit), hints) {
			if b, ok := e.p.award(id, r.EndedAt); ok {
				out.Badges = append(out.Badges, b)
			}
		}
	}
	out.NewXP = e.p.XP
	out.NewLevel = e.p.Level()

	e.log.Info("case ended",
		zap.String("case", r.CaseID),
		zap.Bool("completed", r.Completed),
		zap.Duration("elapsed", elapsed),
		zap.Int("hints", hints),
		zap.Int("xp_awarded", reward.Final),
		zap.Int("level", out.NewLevel),
		zap.Int("badges", len(out.Badges)))

	return out, e.save("end_case")
}

// Reset returns the record to its first-run state and removes it from the
// store.
func (e *Engine) Reset() error {
	e.p = New()
	e.log.Info("progress reset")
	if err := e.store.Delete(); err != nil {
		e.log.Warn("progress delete failed", zap.Error(err))
		return err
	}
	return nil
}
