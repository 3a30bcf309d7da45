package matching

import (
	"context"
	"strings"
	"unicode/utf8"

	"match-engine/internal/models"

	"go.opentelemetry.io/otel/attribute"
)

// ListMatches returns the matches visible to the actor: their own as a
// candidate, or those on listings they own as a recruiter.
func (e *Engine) ListMatches(ctx context.Context, actorID string) (matches []models.Match, err error) {
	actorID = strings.TrimSpace(actorID)
	ctx, span := e.startSpan(ctx, "ListMatches", attribute.String("actor.id", actorID))
	defer func() { endSpan(span, err) }()

	if actorID == "" {
		return nil, wrapf(ErrValidation, "actorId is required")
	}
	actor, err := e.loadActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleCandidate && actor.Role != models.RoleRecruiter {
		return nil, wrapf(ErrUnauthorized, "role %q has no matches", actor.Role)
	}

	matches, err = e.repo.ListMatches(ctx, actor.ID, actor.Role)
	if err != nil {
		return nil, storeFailure("list matches", err)
	}
	if matches == nil {
		matches = []models.Match{}
	}
	return matches, nil
}

// SendMessage posts to a match's chat. Only the matched candidate and the
// recruiter owning the listing may post.
func (e *Engine) SendMessage(ctx context.Context, actorID, matchID, content string) (msg *models.Message, err error) {
	ctx, span := e.startSpan(ctx, "SendMessage", attribute.String("match.id", matchID))
	defer func() { endSpan(span, err) }()

	actorID, matchID = strings.TrimSpace(actorID), strings.TrimSpace(matchID)
	content = strings.TrimSpace(content)
	if actorID == "" || matchID == "" {
		return nil, wrapf(ErrValidation, "actorId and matchId are required")
	}
	if content == "" {
		return nil, wrapf(ErrValidation, "content is required")
	}
	if n := utf8.RuneCountInString(content); n > e.cfg.MaxMessageLength {
		return nil, wrapf(ErrValidation, "content is %d characters, limit %d", n, e.cfg.MaxMessageLength)
	}

	m, err := e.repo.GetMatch(ctx, matchID)
	if err != nil {
		if isNotFound(err) {
			return nil, wrapf(ErrNotFound, "match %s", matchID)
		}
		return nil, storeFailure("load match", err)
	}
	if actorID != m.CandidateID {
		listing, err := e.repo.GetListing(ctx, m.ListingID)
		if err != nil {
			if isNotFound(err) {
				return nil, wrapf(ErrForbidden, "not a participant of match %s", matchID)
			}
			return nil, storeFailure("load listing", err)
		}
		if listing.OwnerID != actorID {
			return nil, wrapf(ErrForbidden, "not a participant of match %s", matchID)
		}
	}

	msg = &models.Message{
		ID:        e.newID(),
		MatchID:   m.ID,
		SenderID:  actorID,
		Content:   content,
		CreatedAt: e.now(),
	}
	if err := e.repo.CreateMessage(ctx, msg); err != nil {
		return nil, storeFailure("create message", err)
	}
	e.emit(ctx, models.NewMessageSent(e.newID(), msg.CreatedAt, msg))
	return msg, nil
}
