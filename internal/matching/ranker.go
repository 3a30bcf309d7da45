package matching

import "sort"

// DefaultFallbackTopN is how many zero-score eligible items are promoted when
// nothing in the pool scores above zero.
const DefaultFallbackTopN = 15

// Scored is a pool entry after constraint and relevance evaluation.
type Scored[T any] struct {
	Item     T
	Eligible bool
	Score    int
}

// Rank splits an evaluated pool into recommended and remaining tiers.
//
// Recommended holds every eligible item with a positive score, highest first.
// When no eligible item scores above zero the first min(fallbackTopN, eligible)
// eligible items are recommended instead. Remaining holds the eligible overflow
// followed by ineligible items in pool order.
func Rank[T any](pool []Scored[T], fallbackTopN int) (recommended, remaining []Scored[T]) {
	eligible := make([]Scored[T], 0, len(pool))
	ineligible := make([]Scored[T], 0)
	for _, s := range pool {
		if s.Eligible {
			eligible = append(eligible, s)
		} else {
			ineligible = append(ineligible, s)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Score > eligible[j].Score
	})

	split := 0
	for _, s := range eligible {
		if s.Score > 0 {
			split++
		}
	}
	if split == 0 {
		split = min(max(fallbackTopN, 0), len(eligible))
	}

	recommended = eligible[:split:split]
	remaining = make([]Scored[T], 0, len(pool)-split)
	remaining = append(remaining, eligible[split:]...)
	remaining = append(remaining, ineligible...)
	return recommended, remaining
}
