// internal/workers/match/send-message/models.go
package sendmessage

import (
	"match-engine/internal/common/validation"
	"match-engine/internal/models"
)

var inputSchema = validation.MustCompile(`{
	"type": "object",
	"required": ["actorId", "matchId", "content"],
	"properties": {
		"actorId": {"type": "string", "minLength": 1},
		"matchId": {"type": "string", "minLength": 1},
		"content": {"type": "string"}
	}
}`)

// Content length is enforced by the engine after trimming.
type Input struct {
	ActorID string `json:"actorId"`
	MatchID string `json:"matchId"`
	Content string `json:"content"`
}

type Output struct {
	MessageID string          `json:"messageId"`
	Message   *models.Message `json:"message"`
}
