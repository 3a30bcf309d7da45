// internal/workers/application/update-application-status/handler_test.go
package updateapplicationstatus

import (
	"context"
	"testing"

	"match-engine/internal/common/config"
	apperrors "match-engine/internal/common/errors"
	"match-engine/internal/common/logger"
	"match-engine/internal/models"
	"match-engine/internal/workers/workertest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Execute_Pipeline(t *testing.T) {
	f := workertest.New(t)
	h := NewHandler(LoadConfig(config.WorkerConfig{}), f.Engine, logger.NewTestLogger(t))
	app := f.Application(t)

	for _, status := range []string{"reviewing", "interview", "accepted"} {
		out, err := h.Execute(context.Background(), &Input{
			ActorID:       workertest.Recruiter,
			ApplicationID: app.ID,
			Status:        status,
		})
		require.NoError(t, err, status)
		assert.Equal(t, status, out.ApplicationStatus)
		assert.Equal(t, models.ApplicationStatus(status), out.Application.Status)
	}

	_, err := h.Execute(context.Background(), &Input{ActorID: workertest.Recruiter, ApplicationID: app.ID, Status: "rejected"})
	assert.Equal(t, apperrors.ErrCodeInvalidStatusTransition, apperrors.FromDomain(err).Code)
}

func TestHandler_Execute_Errors(t *testing.T) {
	f := workertest.New(t)
	h := NewHandler(LoadConfig(config.WorkerConfig{}), f.Engine, logger.NewTestLogger(t))
	app := f.Application(t)

	tests := []struct {
		name  string
		input *Input
		code  apperrors.ErrorCode
	}{
		{"foreign recruiter", &Input{ActorID: workertest.OtherRecruiter, ApplicationID: app.ID, Status: "reviewing"}, apperrors.ErrCodeForbidden},
		{"applicant", &Input{ActorID: workertest.Candidate, ApplicationID: app.ID, Status: "reviewing"}, apperrors.ErrCodeForbidden},
		{"unknown status", &Input{ActorID: workertest.Recruiter, ApplicationID: app.ID, Status: "hired"}, apperrors.ErrCodeValidationFailed},
		{"withdraw by owner", &Input{ActorID: workertest.Recruiter, ApplicationID: app.ID, Status: "withdrawn"}, apperrors.ErrCodeValidationFailed},
		{"skip ahead", &Input{ActorID: workertest.Recruiter, ApplicationID: app.ID, Status: "accepted"}, apperrors.ErrCodeInvalidStatusTransition},
		{"missing", &Input{ActorID: workertest.Recruiter, ApplicationID: "app-missing", Status: "reviewing"}, apperrors.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Execute(context.Background(), tt.input)

			assert.Equal(t, tt.code, apperrors.FromDomain(err).Code)
		})
	}
}

func TestHandler_Execute_RejectEmitsEvent(t *testing.T) {
	f := workertest.New(t)
	h := NewHandler(LoadConfig(config.WorkerConfig{}), f.Engine, logger.NewTestLogger(t))
	app := f.Application(t)

	out, err := h.Execute(context.Background(), &Input{ActorID: workertest.Recruiter, ApplicationID: app.ID, Status: "rejected"})
	require.NoError(t, err)

	assert.Equal(t, "rejected", out.ApplicationStatus)
	assert.Contains(t, f.Events.Types(), models.EventApplicationStatusChanged)
}

func TestParseInput(t *testing.T) {
	_, err := parseInput(`{"actorId":"rec-1","applicationId":"app-1","status":""}`)
	assert.Equal(t, apperrors.ErrCodeValidationFailed, apperrors.FromDomain(err).Code)
}
