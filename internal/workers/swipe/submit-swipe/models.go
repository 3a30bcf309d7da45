// internal/workers/swipe/submit-swipe/models.go
package submitswipe

import (
	"match-engine/internal/common/validation"
	"match-engine/internal/models"
)

// targetUserId is required for recruiter swipes; the engine enforces that
// once the actor's role is known.
var inputSchema = validation.MustCompile(`{
	"type": "object",
	"required": ["actorId", "listingId", "direction"],
	"properties": {
		"actorId":      {"type": "string", "minLength": 1},
		"listingId":    {"type": "string", "minLength": 1},
		"targetUserId": {"type": ["string", "null"]},
		"direction":    {"type": "string", "enum": ["left", "right", "LEFT", "RIGHT"]}
	}
}`)

type Input struct {
	ActorID      string `json:"actorId"`
	ListingID    string `json:"listingId"`
	TargetUserID string `json:"targetUserId,omitempty"`
	Direction    string `json:"direction"`
}

type Output struct {
	Accepted      bool                `json:"accepted"`
	MatchCreated  bool                `json:"matchCreated"`
	MatchID       string              `json:"matchId,omitempty"`
	Match         *models.Match       `json:"match,omitempty"`
	ApplicationID string              `json:"applicationId,omitempty"`
	Application   *models.Application `json:"application,omitempty"`
	PairState     string              `json:"pairState"`
}
