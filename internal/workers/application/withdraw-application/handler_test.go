// internal/workers/application/withdraw-application/handler_test.go
package withdrawapplication

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

func TestHandler_Execute(t *testing.T) {
	f := workertest.New(t)
	h := NewHandler(LoadConfig(config.WorkerConfig{}), f.Engine, logger.NewTestLogger(t))
	app := f.Application(t)

	out, err := h.Execute(context.Background(), &Input{ActorID: workertest.Candidate, ApplicationID: app.ID})
	require.NoError(t, err)

	assert.Equal(t, app.ID, out.ApplicationID)
	assert.Equal(t, "withdrawn", out.ApplicationStatus)
	assert.Contains(t, f.Events.Types(), models.EventApplicationStatusChanged)

	_, err = h.Execute(context.Background(), &Input{ActorID: workertest.Candidate, ApplicationID: app.ID})
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
		{"other candidate", &Input{ActorID: workertest.OtherCandidate, ApplicationID: app.ID}, apperrors.ErrCodeForbidden},
		{"recruiter", &Input{ActorID: workertest.Recruiter, ApplicationID: app.ID}, apperrors.ErrCodeForbidden},
		{"unknown application", &Input{ActorID: workertest.Candidate, ApplicationID: "app-missing"}, apperrors.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Execute(context.Background(), tt.input)

			assert.Equal(t, tt.code, apperrors.FromDomain(err).Code)
		})
	}
}

func TestParseInput(t *testing.T) {
	_, err := parseInput(`{"actorId":"cand-1"}`)
	assert.Equal(t, apperrors.ErrCodeValidationFailed, apperrors.FromDomain(err).Code)
}
