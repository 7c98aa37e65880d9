package domain

import (
	"math"
)

// Tier is a named level derived from the cumulative completion count.
// Max < 0 marks the open-ended final tier.
type Tier struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
}

func (t Tier) Contains(count int) bool {
	if count < t.Min {
		return false
	}
	return t.Max < 0 || count <= t.Max
}

var tiers = []Tier{
	{Index: 0, Name: "Novice Explorer", Icon: "🌱", Min: 0, Max: 5},
	{Index: 1, Name: "Rising Star", Icon: "⭐", Min: 6, Max: 10},
	{Index: 2, Name: "Airdrop Hunter", Icon: "🎯", Min: 11, Max: 20},
	{Index: 3, Name: "Crypto Veteran", Icon: "🛡️", Min: 21, Max: 35},
	{Index: 4, Name: "Airdrop Master", Icon: "👑", Min: 36, Max: 50},
	{Index: 5, Name: "Legendary Farmer", Icon: "🚀", Min: 51, Max: -1},
}

// Tiers returns a copy of the ordered tier table.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

// TierFor returns the tier containing count. Counts outside every range clamp
// to the nearest tier.
func TierFor(count int) Tier {
	if count < 0 {
		return tiers[0]
	}
	for _, tier := range tiers {
		if tier.Contains(count) {
			return tier
		}
	}
	return tiers[len(tiers)-1]
}

// ProgressToNext is the rounded percentage of the way from the current tier
// minimum to the next tier minimum.
func ProgressToNext(count int) int {
	tier := TierFor(count)
	if tier.Index == len(tiers)-1 {
		return 0
	}
	next := tiers[tier.Index+1]
	span := next.Min - tier.Min
	if span <= 0 {
		return 0
	}
	pct := int(math.Round(100 * float64(count-tier.Min) / float64(span)))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

func CrossedUp(prevCount, newCount int) bool {
	return TierFor(newCount).Index > TierFor(prevCount).Index
}

func CrossedDown(prevCount, newCount int) bool {
	return TierFor(newCount).Index < TierFor(prevCount).Index
}

// TierChange describes a transition between two tiers.
type TierChange struct {
	Previous Tier `json:"previous"`
	Current  Tier `json:"current"`
}

func (c TierChange) Up() bool {
	return c.Current.Index > c.Previous.Index
}

// DetectTierChange reports the transition between the tiers of two counts.
func DetectTierChange(prevCount, newCount int) (TierChange, bool) {
	change := TierChange{Previous: TierFor(prevCount), Current: TierFor(newCount)}
	return change, change.Previous.Index != change.Current.Index
}

// Level summarizes a completion count for display.
type Level struct {
	Count          int   `json:"count"`
	Tier           Tier  `json:"tier"`
	Next           *Tier `json:"next,omitempty"`
	ProgressToNext int   `json:"progress_to_next"`
}

func LevelFor(count int) Level {
	tier := TierFor(count)
	level := Level{Count: count, Tier: tier, ProgressToNext: ProgressToNext(count)}
	if tier.Index < len(tiers)-1 {
		next := tiers[tier.Index+1]
		level.Next = &next
	}
	return level
}
