package matching

import (
	"context"
	"strings"

	"match-engine/internal/cache"
	"match-engine/internal/models"

	"go.opentelemetry.io/otel/attribute"
)

// GetIncomingSignals lists candidate right swipes on the recruiter's active
// listings that the recruiter has not answered, newest first.
func (e *Engine) GetIncomingSignals(ctx context.Context, actorID string) (signals []models.Signal, err error) {
	actorID = strings.TrimSpace(actorID)
	ctx, span := e.startSpan(ctx, "GetIncomingSignals", attribute.String("actor.id", actorID))
	defer func() { endSpan(span, err) }()

	if actorID == "" {
		return nil, wrapf(ErrValidation, "actorId is required")
	}
	actor, err := e.actorWithRole(ctx, actorID, models.RoleRecruiter)
	if err != nil {
		return nil, err
	}

	signals, err = readThrough(ctx, e, cache.IncomingSignalsKey(actor.ID), e.cfg.SignalsTTL,
		func(ctx context.Context) ([]models.Signal, error) {
			found, err := e.repo.FindIncomingSignals(ctx, actor.ID, e.cfg.SignalsLimit)
			if err != nil {
				return nil, storeFailure("find incoming signals", err)
			}
			if found == nil {
				found = []models.Signal{}
			}
			return found, nil
		})
	if err != nil {
		return nil, err
	}
	if signals == nil {
		signals = []models.Signal{}
	}
	return signals, nil
}
