package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplicationStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to ApplicationStatus
		want     bool
	}{
		{StatusPending, StatusReviewing, true},
		{StatusReviewing, StatusInterview, true},
		{StatusInterview, StatusAccepted, true},
		{StatusPending, StatusRejected, true},
		{StatusInterview, StatusRejected, true},
		{StatusReviewing, StatusPending, false},
		{StatusPending, StatusAccepted, false},
		{StatusAccepted, StatusRejected, false},
		{StatusPending, StatusWithdrawn, true},
		{StatusInterview, StatusWithdrawn, true},
		{StatusAccepted, StatusWithdrawn, false},
		{StatusRejected, StatusWithdrawn, false},
		{StatusWithdrawn, StatusReviewing, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestParseApplicationStatus(t *testing.T) {
	st, err := ParseApplicationStatus(" Interview ")
	assert.NoError(t, err)
	assert.Equal(t, StatusInterview, st)

	_, err = ParseApplicationStatus("hired")
	assert.Error(t, err)
}

func TestPairState_Next(t *testing.T) {
	assert.Equal(t, PairOneSidedRight, PairNoInteraction.Next(DirectionRight, false))
	assert.Equal(t, PairMatched, PairOneSidedRight.Next(DirectionRight, true))
	assert.Equal(t, PairNoInteraction, PairNoInteraction.Next(DirectionLeft, false))
	assert.Equal(t, PairOneSidedRight, PairOneSidedRight.Next(DirectionLeft, true))
	assert.Equal(t, PairMatched, PairMatched.Next(DirectionLeft, false))
}
