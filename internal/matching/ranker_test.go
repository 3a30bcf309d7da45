package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func scoresOf(items []Scored[string]) []int {
	out := make([]int, 0, len(items))
	for _, s := range items {
		out = append(out, s.Score)
	}
	return out
}

func namesOf(items []Scored[string]) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		out = append(out, s.Item)
	}
	return out
}

func eligiblePool(scores ...int) []Scored[string] {
	pool := make([]Scored[string], 0, len(scores))
	for i, sc := range scores {
		pool = append(pool, Scored[string]{Item: string(rune('a' + i)), Eligible: true, Score: sc})
	}
	return pool
}

func TestRank_PositiveScoresRecommended(t *testing.T) {
	recommended, remaining := Rank(eligiblePool(3, 0, 0, 2, 0), DefaultFallbackTopN)

	assert.Equal(t, []int{3, 2}, scoresOf(recommended))
	assert.Equal(t, []string{"a", "d"}, namesOf(recommended))
	assert.Equal(t, []string{"b", "c", "e"}, namesOf(remaining))
}

func TestRank_FallbackTopN(t *testing.T) {
	pool := make([]Scored[string], 0, 20)
	for i := 0; i < 20; i++ {
		pool = append(pool, Scored[string]{Item: string(rune('A' + i)), Eligible: true})
	}

	recommended, remaining := Rank(pool, DefaultFallbackTopN)

	assert.Len(t, recommended, 15)
	assert.Len(t, remaining, 5)
	assert.Equal(t, namesOf(pool[:15]), namesOf(recommended))
	assert.Equal(t, namesOf(pool[15:]), namesOf(remaining))
}

func TestRank_FallbackSmallerThanPool(t *testing.T) {
	recommended, remaining := Rank(eligiblePool(0, 0, 0), DefaultFallbackTopN)

	assert.Len(t, recommended, 3)
	assert.Empty(t, remaining)
}

func TestRank_IneligibleGoLast(t *testing.T) {
	pool := []Scored[string]{
		{Item: "x", Eligible: false},
		{Item: "a", Eligible: true, Score: 1},
		{Item: "y", Eligible: false},
		{Item: "b", Eligible: true, Score: 0},
		{Item: "c", Eligible: true, Score: 4},
	}

	recommended, remaining := Rank(pool, DefaultFallbackTopN)

	assert.Equal(t, []string{"c", "a"}, namesOf(recommended))
	assert.Equal(t, []string{"b", "x", "y"}, namesOf(remaining))
}

func TestRank_NoEligible(t *testing.T) {
	pool := []Scored[string]{{Item: "x"}, {Item: "y"}}

	recommended, remaining := Rank(pool, DefaultFallbackTopN)

	assert.Empty(t, recommended)
	assert.Equal(t, []string{"x", "y"}, namesOf(remaining))
}

func TestRank_ConfigurableFallback(t *testing.T) {
	recommended, remaining := Rank(eligiblePool(0, 0, 0, 0), 2)
	assert.Equal(t, []string{"a", "b"}, namesOf(recommended))
	assert.Equal(t, []string{"c", "d"}, namesOf(remaining))

	recommended, remaining = Rank(eligiblePool(0, 0), 0)
	assert.Empty(t, recommended)
	assert.Len(t, remaining, 2)
}

func TestRank_StableForEqualScores(t *testing.T) {
	recommended, _ := Rank(eligiblePool(2, 5, 2, 5), DefaultFallbackTopN)
	assert.Equal(t, []string{"b", "d", "a", "c"}, namesOf(recommended))
}

func TestRank_Empty(t *testing.T) {
	recommended, remaining := Rank[string](nil, DefaultFallbackTopN)
	assert.Empty(t, recommended)
	assert.Empty(t, remaining)
}
