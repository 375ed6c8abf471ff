package progress

import "time"

// Badge ids.
const (
	FirstBlood  = "first-blood"
	SpeedDemon  = "speed-demon"
	GuidedLight = "guided-light"
)

var badgeCatalog = map[string]Badge{
	FirstBlood: {
		ID:          FirstBlood,
		Name:        "First Blood",
		Icon:        "🏆",
		Description: "Complete your first case",
	},
	SpeedDemon: {
		ID:          SpeedDemon,
		Name:        "Speed Demon",
		Icon:        "⚡",
		Description: "Complete case under time limit",
	},
	GuidedLight: {
		ID:          GuidedLight,
		Name:        "Guided Light",
		Icon:        "💡",
		Description: "Complete case without hints",
	},
}

// AllBadges returns every badge that can be earned, in display order.
func AllBadges() []Badge {
	return []Badge{badgeCatalog[FirstBlood], badgeCatalog[SpeedDemon], badgeCatalog[GuidedLight]}
}

// qualifyingBadges returns the ids a completed case qualifies for, in
// evaluation order.
func qualifyingBadges(completedCount int, withinLimit bool, hints int) []string {
	var ids []string
	if completedCount == 1 {
		ids = append(ids, FirstBlood)
	}
	if withinLimit {
		ids = append(ids, SpeedDemon)
	}
	if hints == 0 {
		ids = append(ids, GuidedLight)
	}
	return ids
}

// award adds the badge unless it is already held. It reports whether the
// badge was new.
func (p *UserProgress) award(id string, at time.Time) (Badge, bool) {
	if p.HasBadge(id) {
		return Badge{}, false
	}
	b := badgeCatalog[id]
	b.EarnedAt = at
	p.Badges = append(p.Badges, b)
	return b, true
}
