package rank

import (
	"github.com/joshua-hq/warroom/pkg/domain/model/chat"
	"github.com/joshua-hq/warroom/pkg/domain/types"
)

// Tier is the derived reputation label. Tiers are ordered; comparing
// two tiers with < / <= is meaningful.
type Tier int

const (
	TierWordSoldier Tier = iota
	TierShieldBearer
	TierFaithCaptain
	TierFaithGeneral
)

var tierNames = map[Tier]string{
	TierWordSoldier:  "Word Soldier",
	TierShieldBearer: "Shield Bearer",
	TierFaithCaptain: "Faith Captain",
	TierFaithGeneral: "Faith General",
}

// thresholds must stay in ascending order; TierFor depends on it for
// monotonicity.
var thresholds = []int{0, 10, 20, 50}

func (t Tier) String() string {
	return tierNames[t]
}

func (t Tier) Threshold() int {
	return thresholds[t]
}

// TierFor maps an activity count to a tier. Pure, total and monotonic:
// a negative count clamps to the base tier, and a higher count never
// yields a lower tier.
func TierFor(activityCount int) Tier {
	tier := TierWordSoldier
	for i, threshold := range thresholds {
		if activityCount >= threshold {
			tier = Tier(i)
		}
	}
	return tier
}

// CountActivity recomputes the activity count by scanning the loaded
// chat window for the given author. O(window), which is fine for the
// bounded windows this system displays.
func CountActivity(msgs []*chat.Message, authorID types.IdentityID) int {
	count := 0
	for _, msg := range msgs {
		if msg != nil && msg.AuthorID == authorID {
			count++
		}
	}
	return count
}
