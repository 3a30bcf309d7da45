// internal/models/match.go
package models

import "time"

// PairState tracks the reciprocal-swipe progress of a (candidate, listing) pair.
type PairState string

const (
	PairNoInteraction PairState = "none"
	PairOneSidedRight PairState = "one_sided_right"
	PairMatched       PairState = "matched"
)

// Next returns the state after a swipe in direction dir. completes is true
// when the opposite side has already right-swiped the pair. Matched is terminal
// and left swipes never move the pair.
func (p PairState) Next(dir Direction, completes bool) PairState {
	if p == PairMatched || dir != DirectionRight {
		return p
	}
	if completes {
		return PairMatched
	}
	return PairOneSidedRight
}

// Signal categories recorded in a match explanation.
const (
	SignalIntent      = "intent"
	SignalConstraints = "constraints"
	SignalSkills      = "skills"
)

// Explainability records which signal categories contributed to a match.
type Explainability struct {
	Signals       []string `json:"signals"`
	MatchedSkills []string `json:"matchedSkills,omitempty"`
	SkillScore    int      `json:"skillScore"`
	RequiredCount int      `json:"requiredCount"`
	Alignment     string   `json:"alignment"`
}

func (e Explainability) Has(signal string) bool {
	for _, s := range e.Signals {
		if s == signal {
			return true
		}
	}
	return false
}

type Match struct {
	ID             string         `json:"id"`
	CandidateID    string         `json:"candidateId"`
	ListingID      string         `json:"listingId"`
	RevealStatus   bool           `json:"revealStatus"`
	Explainability Explainability `json:"explainability"`
	CreatedAt      time.Time      `json:"createdAt"`
}

func (m *Match) Pair() PairKey {
	return PairKey{CandidateID: m.CandidateID, ListingID: m.ListingID}
}

type Message struct {
	ID        string    `json:"id"`
	MatchID   string    `json:"matchId"`
	SenderID  string    `json:"senderId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Signal is a candidate right-swipe on a recruiter's listing that the
// recruiter has not acted on yet.
type Signal struct {
	SwipeID      string      `json:"swipeId"`
	CandidateID  string      `json:"candidateId"`
	ListingID    string      `json:"listingId"`
	ListingTitle string      `json:"listingTitle"`
	Skills       []Skill     `json:"skills"`
	Constraints  Constraints `json:"constraints,omitempty"`
	IntentText   string      `json:"intentText,omitempty"`
	ReceivedAt   time.Time   `json:"receivedAt"`
}
