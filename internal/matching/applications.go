package matching

import (
	"context"
	"strings"

	"match-engine/internal/models"

	"go.opentelemetry.io/otel/attribute"
)

// WithdrawApplication lets a candidate pull out of a pipeline that has not
// reached a decision.
func (e *Engine) WithdrawApplication(ctx context.Context, actorID, applicationID string) (app *models.Application, err error) {
	ctx, span := e.startSpan(ctx, "WithdrawApplication", attribute.String("application.id", applicationID))
	defer func() { endSpan(span, err) }()

	actorID, applicationID = strings.TrimSpace(actorID), strings.TrimSpace(applicationID)
	if actorID == "" || applicationID == "" {
		return nil, wrapf(ErrValidation, "actorId and applicationId are required")
	}

	app, err = e.loadApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.UserID != actorID {
		return nil, wrapf(ErrForbidden, "application %s belongs to another user", applicationID)
	}
	if !app.Status.CanWithdraw() {
		return nil, wrapf(ErrInvalidTransition, "cannot withdraw an application in status %s", app.Status)
	}
	return e.moveApplication(ctx, app, models.StatusWithdrawn)
}

// UpdateApplicationStatus advances an application along the pipeline. Only
// the recruiter who owns the listing may do so.
func (e *Engine) UpdateApplicationStatus(ctx context.Context, actorID, applicationID string, to models.ApplicationStatus) (app *models.Application, err error) {
	ctx, span := e.startSpan(ctx, "UpdateApplicationStatus",
		attribute.String("application.id", applicationID),
		attribute.String("status", string(to)),
	)
	defer func() { endSpan(span, err) }()

	actorID, applicationID = strings.TrimSpace(actorID), strings.TrimSpace(applicationID)
	if actorID == "" || applicationID == "" {
		return nil, wrapf(ErrValidation, "actorId and applicationId are required")
	}
	if _, perr := models.ParseApplicationStatus(string(to)); perr != nil {
		return nil, wrapf(ErrValidation, "%v", perr)
	}
	if to == models.StatusWithdrawn {
		return nil, wrapf(ErrValidation, "only the applicant can withdraw")
	}

	app, err = e.loadApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	listing, err := e.repo.GetListing(ctx, app.ListingID)
	if err != nil {
		if isNotFound(err) {
			return nil, wrapf(ErrNotFound, "listing %s", app.ListingID)
		}
		return nil, storeFailure("load listing", err)
	}
	if listing.OwnerID != actorID {
		return nil, wrapf(ErrForbidden, "listing %s is not owned by %s", listing.ID, actorID)
	}
	if !app.Status.CanTransition(to) {
		return nil, wrapf(ErrInvalidTransition, "%s -> %s", app.Status, to)
	}
	return e.moveApplication(ctx, app, to)
}

func (e *Engine) loadApplication(ctx context.Context, id string) (*models.Application, error) {
	app, err := e.repo.GetApplication(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, wrapf(ErrNotFound, "application %s", id)
		}
		return nil, storeFailure("load application", err)
	}
	return app, nil
}

func (e *Engine) moveApplication(ctx context.Context, app *models.Application, to models.ApplicationStatus) (*models.Application, error) {
	from := app.Status
	now := e.now()
	if err := e.repo.UpdateApplicationStatus(ctx, app.ID, from, to, now); err != nil {
		return nil, storeFailure("update application status", err)
	}

	updated := *app
	updated.Status = to
	updated.UpdatedAt = now
	e.emit(ctx, models.NewApplicationStatusChanged(e.newID(), now, &updated, from))
	e.logger.Info("application status changed", map[string]interface{}{
		"applicationId": app.ID,
		"from":          string(from),
		"to":            string(to),
	})
	return &updated, nil
}
