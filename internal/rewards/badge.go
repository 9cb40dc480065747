package rewards

import "time"

// BadgeType identifies the kind of achievement.
type BadgeType string

const (
	BadgeSession BadgeType = "session"
	BadgeVictory BadgeType = "victory"
	BadgePerfect BadgeType = "perfect"
)

// DisplayName returns a human-readable label for the badge type.
func (t BadgeType) DisplayName() string {
	switch t {
	case BadgeSession:
		return "Session"
	case BadgeVictory:
		return "Victory"
	case BadgePerfect:
		return "Perfect Round"
	default:
		return string(t)
	}
}

// Icon returns the display icon for the badge type.
func (t BadgeType) Icon() string {
	switch t {
	case BadgeSession:
		return "🏆"
	case BadgeVictory:
		return "⚔️"
	case BadgePerfect:
		return "💎"
	default:
		return "✦"
	}
}

// Award is one reward credited for a finished session: either coins or a
// badge.
type Award struct {
	SessionID string
	Coins     int       // zero for badges
	Badge     BadgeType // empty for coins
	Rarity    Rarity    // empty for coins
	Reason    string
	AwardedAt time.Time
}

// IsBadge reports whether the award is a badge rather than coins.
func (a Award) IsBadge() bool { return a.Badge != "" }
