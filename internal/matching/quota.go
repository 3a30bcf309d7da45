package matching

import (
	"fmt"
	"time"

	"match-engine/internal/models"
)

// QuotaPolicy holds the daily right-swipe ceiling per subscription tier.
//
// The check is read-then-decide: concurrent right swipes from one actor can
// overrun the ceiling by the number of requests in flight. The ceiling is a
// soft, tier-scaled allowance and that slack is accepted.
type QuotaPolicy struct {
	limits map[models.Tier]int
}

var defaultTierLimits = map[models.Tier]int{
	models.TierFree:    50,
	models.TierPremium: 50,
	models.TierPro:     100,
}

func DefaultQuotaPolicy() *QuotaPolicy {
	p, _ := NewQuotaPolicy(defaultTierLimits)
	return p
}

// NewQuotaPolicy requires a non-negative limit for every tier and limits that
// never decrease from free to pro.
func NewQuotaPolicy(limits map[models.Tier]int) (*QuotaPolicy, error) {
	copied := make(map[models.Tier]int, len(models.Tiers))
	prev := 0
	for i, tier := range models.Tiers {
		limit, ok := limits[tier]
		if !ok {
			return nil, fmt.Errorf("quota: missing limit for tier %s", tier)
		}
		if limit < 0 {
			return nil, fmt.Errorf("quota: negative limit %d for tier %s", limit, tier)
		}
		if i > 0 && limit < prev {
			return nil, fmt.Errorf("quota: tier %s limit %d is below %s limit %d", tier, limit, models.Tiers[i-1], prev)
		}
		copied[tier] = limit
		prev = limit
	}
	return &QuotaPolicy{limits: copied}, nil
}

// Limit returns the ceiling for tier; unknown tiers get the free ceiling.
func (p *QuotaPolicy) Limit(tier models.Tier) int {
	if limit, ok := p.limits[tier]; ok {
		return limit
	}
	return p.limits[models.TierFree]
}

// Check returns a QuotaExceededError when used has reached the tier ceiling.
func (p *QuotaPolicy) Check(tier models.Tier, used int) error {
	if _, ok := p.limits[tier]; !ok {
		tier = models.TierFree
	}
	limit := p.Limit(tier)
	if used >= limit {
		return &QuotaExceededError{Tier: tier, Limit: limit, Used: used}
	}
	return nil
}

// DayStart is local midnight of the day containing now.
func DayStart(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}
