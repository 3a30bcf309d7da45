package matching

import (
	"context"
	"strings"

	"match-engine/internal/cache"
	"match-engine/internal/common/metrics"
	"match-engine/internal/models"

	"go.opentelemetry.io/otel/attribute"
)

// FeedItem is one card in a feed. Candidate feeds carry listing fields;
// recruiter feeds carry candidate fields plus the best-fitting listing.
type FeedItem struct {
	ListingID      string             `json:"listingId,omitempty"`
	CompanyID      string             `json:"companyId,omitempty"`
	Title          string             `json:"title,omitempty"`
	RequiredSkills []string           `json:"requiredSkills,omitempty"`
	CandidateID    string             `json:"candidateId,omitempty"`
	Skills         []models.Skill     `json:"skills,omitempty"`
	IntentText     string             `json:"intentText,omitempty"`
	Constraints    models.Constraints `json:"constraints,omitempty"`
	Score          int                `json:"score"`
	Eligible       bool               `json:"eligible"`
}

type Feed struct {
	Recommended []FeedItem `json:"recommended"`
	Remaining   []FeedItem `json:"remaining"`
}

func emptyFeed() *Feed {
	return &Feed{Recommended: []FeedItem{}, Remaining: []FeedItem{}}
}

// GetFeed returns the actor's two-tier feed, served from the view cache when
// a fresh copy exists.
func (e *Engine) GetFeed(ctx context.Context, actorID string, role models.Role) (feed *Feed, err error) {
	actorID = strings.TrimSpace(actorID)
	ctx, span := e.startSpan(ctx, "GetFeed",
		attribute.String("actor.id", actorID),
		attribute.String("actor.role", string(role)),
	)
	defer func() { endSpan(span, err) }()

	if actorID == "" {
		return nil, wrapf(ErrValidation, "actorId is required")
	}

	var key string
	var compute func(context.Context) (*Feed, error)
	switch role {
	case models.RoleCandidate:
		key = cache.CandidateFeedKey(actorID)
		compute = func(ctx context.Context) (*Feed, error) { return e.candidateFeed(ctx, actorID) }
	case models.RoleRecruiter:
		key = cache.RecruiterFeedKey(actorID)
		compute = func(ctx context.Context) (*Feed, error) { return e.recruiterFeed(ctx, actorID) }
	default:
		return nil, wrapf(ErrUnauthorized, "role %q has no feed", role)
	}

	feed, err = readThrough(ctx, e, key, e.cfg.FeedTTL, compute)
	if err != nil {
		return nil, err
	}
	if feed == nil {
		feed = emptyFeed()
	}
	metrics.FeedItems.WithLabelValues(string(role), "recommended").Observe(float64(len(feed.Recommended)))
	metrics.FeedItems.WithLabelValues(string(role), "remaining").Observe(float64(len(feed.Remaining)))
	return feed, nil
}

func (e *Engine) actorWithRole(ctx context.Context, actorID string, role models.Role) (*models.User, error) {
	actor, err := e.loadActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != role {
		return nil, wrapf(ErrUnauthorized, "actor %s is not a %s", actorID, role)
	}
	return actor, nil
}

func (e *Engine) candidateFeed(ctx context.Context, actorID string) (*Feed, error) {
	actor, err := e.actorWithRole(ctx, actorID, models.RoleCandidate)
	if err != nil {
		return nil, err
	}

	listings, err := e.repo.FindEligibleListings(ctx, PoolQuery{ActorID: actor.ID, Limit: e.cfg.PoolLimit})
	if err != nil {
		return nil, storeFailure("find eligible listings", err)
	}

	skills := NewSkillSet(actor.Skills)
	pool := make([]Scored[models.Listing], 0, len(listings))
	for _, l := range listings {
		s := Scored[models.Listing]{Item: l}
		if ConstraintsMatch(actor.Constraints, l.Constraints) {
			s.Eligible = true
			s.Score = skills.Score(l.RequiredSkills)
		}
		pool = append(pool, s)
	}

	recommended, remaining := Rank(pool, e.cfg.FallbackTopN)
	feed := emptyFeed()
	for _, s := range recommended {
		feed.Recommended = append(feed.Recommended, listingItem(s))
	}
	for _, s := range remaining {
		feed.Remaining = append(feed.Remaining, listingItem(s))
	}
	return feed, nil
}

func listingItem(s Scored[models.Listing]) FeedItem {
	return FeedItem{
		ListingID:      s.Item.ID,
		CompanyID:      s.Item.CompanyID,
		Title:          s.Item.Title,
		RequiredSkills: s.Item.RequiredSkills,
		Constraints:    s.Item.Constraints,
		Score:          s.Score,
		Eligible:       s.Eligible,
	}
}

// candidateFit is a candidate paired with the recruiter listing it fits best.
type candidateFit struct {
	candidate models.User
	listing   *models.Listing
}

// recruiterFeed ranks candidates the recruiter has not swiped. Each candidate
// is scored against the recruiter's active listings whose constraints it
// satisfies, keeping the highest scoring listing; the first listing wins ties.
func (e *Engine) recruiterFeed(ctx context.Context, actorID string) (*Feed, error) {
	actor, err := e.actorWithRole(ctx, actorID, models.RoleRecruiter)
	if err != nil {
		return nil, err
	}

	listings, err := e.repo.ListActiveListingsByOwner(ctx, actor.ID)
	if err != nil {
		return nil, storeFailure("list recruiter listings", err)
	}
	if len(listings) == 0 {
		return emptyFeed(), nil
	}

	candidates, err := e.repo.FindEligibleCandidates(ctx, PoolQuery{ActorID: actor.ID, Limit: e.cfg.RecruiterPoolLimit})
	if err != nil {
		return nil, storeFailure("find eligible candidates", err)
	}

	pool := make([]Scored[candidateFit], 0, len(candidates))
	for _, c := range candidates {
		fit := Scored[candidateFit]{Item: candidateFit{candidate: c}}
		skills := NewSkillSet(c.Skills)
		for i := range listings {
			l := &listings[i]
			if !ConstraintsMatch(c.Constraints, l.Constraints) {
				continue
			}
			score := skills.Score(l.RequiredSkills)
			if !fit.Eligible || score > fit.Score {
				fit.Eligible = true
				fit.Score = score
				fit.Item.listing = l
			}
		}
		pool = append(pool, fit)
	}

	recommended, remaining := Rank(pool, e.cfg.FallbackTopN)
	feed := emptyFeed()
	for _, s := range recommended {
		feed.Recommended = append(feed.Recommended, candidateItem(s))
	}
	for _, s := range remaining {
		feed.Remaining = append(feed.Remaining, candidateItem(s))
	}
	return feed, nil
}

func candidateItem(s Scored[candidateFit]) FeedItem {
	item := FeedItem{
		CandidateID: s.Item.candidate.ID,
		Skills:      s.Item.candidate.Skills,
		IntentText:  s.Item.candidate.IntentText,
		Constraints: s.Item.candidate.Constraints,
		Score:       s.Score,
		Eligible:    s.Eligible,
	}
	if s.Item.listing != nil {
		item.ListingID = s.Item.listing.ID
		item.Title = s.Item.listing.Title
		item.RequiredSkills = s.Item.listing.RequiredSkills
	}
	return item
}
