// internal/models/swipe.go
package models

import "time"

type Direction string

const (
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

func (d Direction) Valid() bool {
	return d == DirectionLeft || d == DirectionRight
}

// Side identifies which party of a pair a swipe came from.
type Side uint8

const (
	SideCandidate Side = iota + 1
	SideRecruiter
)

func (s Side) Opposite() Side {
	if s == SideCandidate {
		return SideRecruiter
	}
	return SideCandidate
}

func (s Side) String() string {
	if s == SideCandidate {
		return "candidate"
	}
	return "recruiter"
}

// PairKey identifies the (candidate, listing) pair whose reciprocal state is tracked.
type PairKey struct {
	CandidateID string `json:"candidateId"`
	ListingID   string `json:"listingId"`
}

// SwipeIntent is a validated swipe waiting to be persisted. Both variants
// resolve to the same PairKey so the match detector never branches on shape.
type SwipeIntent interface {
	Pair() PairKey
	Side() Side
	ActorID() string
	Direction() Direction
	Record(id string, at time.Time) *Swipe
}

// CandidateSwipe is a candidate acting on a listing.
type CandidateSwipe struct {
	CandidateID string
	ListingID   string
	Dir         Direction
}

func (s CandidateSwipe) Pair() PairKey { return PairKey{CandidateID: s.CandidateID, ListingID: s.ListingID} }
func (s CandidateSwipe) Side() Side { return SideCandidate }
func (s CandidateSwipe) ActorID() string { return s.CandidateID }
func (s CandidateSwipe) Direction() Direction { return s.Dir }

func (s CandidateSwipe) Record(id string, at time.Time) *Swipe {
	return &Swipe{ID: id, ActorID: s.CandidateID, ListingID: s.ListingID, Direction: s.Dir, CreatedAt: at}
}

// RecruiterSwipe is a listing owner acting on one candidate for that listing.
type RecruiterSwipe struct {
	RecruiterID string
	CandidateID string
	ListingID   string
	Dir         Direction
}

func (s RecruiterSwipe) Pair() PairKey { return PairKey{CandidateID: s.CandidateID, ListingID: s.ListingID} }
func (s RecruiterSwipe) Side() Side { return SideRecruiter }
func (s RecruiterSwipe) ActorID() string { return s.RecruiterID }
func (s RecruiterSwipe) Direction() Direction { return s.Dir }

func (s RecruiterSwipe) Record(id string, at time.Time) *Swipe {
	return &Swipe{
		ID:           id,
		ActorID:      s.RecruiterID,
		ListingID:    s.ListingID,
		TargetUserID: s.CandidateID,
		Direction:    s.Dir,
		CreatedAt:    at,
	}
}

// Swipe is the persisted, append-only row. TargetUserID is empty for
// candidate swipes.
type Swipe struct {
	ID           string    `json:"id"`
	ActorID      string    `json:"actorId"`
	ListingID    string    `json:"listingId"`
	TargetUserID string    `json:"targetUserId,omitempty"`
	Direction    Direction `json:"direction"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (s *Swipe) Side() Side {
	if s.TargetUserID == "" {
		return SideCandidate
	}
	return SideRecruiter
}
