package matching

import (
	"context"
	"fmt"
	"time"

	"match-engine/internal/models"
)

// Detection is what the detector observed and wrote for one swipe.
type Detection struct {
	State   models.PairState
	Match   *models.Match
	Created bool
	// Advanced is true when a pending application moved to reviewing.
	Advanced bool
}

// Detector turns a completed pair of right swipes into a match. It runs on the
// swipe's transaction so it sees the swipe just written.
type Detector struct {
	now   func() time.Time
	newID func() string
}

func NewDetector(now func() time.Time, newID func() string) *Detector {
	return &Detector{now: now, newID: newID}
}

// Detect checks the opposite side of intent's pair for a right swipe. The
// match insert is conditional; losing a race to another transaction returns
// the existing match with Created false.
func (d *Detector) Detect(ctx context.Context, tx Tx, intent models.SwipeIntent, candidate *models.User, listing *models.Listing, prior models.PairState) (*Detection, error) {
	det := &Detection{State: prior}
	if intent.Direction() != models.DirectionRight {
		return det, nil
	}

	pair := intent.Pair()
	reciprocal, err := tx.FindReciprocalSwipe(ctx, pair, intent.Side().Opposite())
	if err != nil {
		return nil, fmt.Errorf("find reciprocal swipe: %w", err)
	}
	if reciprocal == nil {
		det.State = prior.Next(models.DirectionRight, false)
		return det, nil
	}

	now := d.now()
	m := &models.Match{
		ID:             d.newID(),
		CandidateID:    pair.CandidateID,
		ListingID:      pair.ListingID,
		RevealStatus:   true,
		Explainability: Explain(candidate, listing),
		CreatedAt:      now,
	}
	created, err := tx.CreateMatchIfAbsent(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}
	if !created {
		if m, err = tx.GetMatchByPair(ctx, pair); err != nil {
			return nil, fmt.Errorf("load existing match: %w", err)
		}
	}

	advanced, err := tx.AdvancePendingApplication(ctx, pair, models.StatusReviewing, now)
	if err != nil {
		return nil, fmt.Errorf("advance application: %w", err)
	}

	det.State = prior.Next(models.DirectionRight, true)
	det.Match = m
	det.Created = created
	det.Advanced = advanced
	return det, nil
}

// Explain records which signal categories line up for a candidate and listing.
// Intent is always present since both sides swiped right.
func Explain(candidate *models.User, listing *models.Listing) models.Explainability {
	skills := NewSkillSet(candidate.Skills)
	matched := skills.Matched(listing.RequiredSkills)

	e := models.Explainability{
		Signals:       []string{models.SignalIntent},
		MatchedSkills: matched,
		SkillScore:    len(matched),
		RequiredCount: len(listing.RequiredSkills),
	}
	if ConstraintsMatch(candidate.Constraints, listing.Constraints) {
		e.Signals = append(e.Signals, models.SignalConstraints)
	}
	if len(matched) > 0 {
		e.Signals = append(e.Signals, models.SignalSkills)
	}

	switch len(e.Signals) {
	case 3:
		e.Alignment = "strong"
	case 2:
		e.Alignment = "moderate"
	default:
		e.Alignment = "weak"
	}
	return e
}
