// internal/workers/feed/get-incoming-signals/models.go
package getincomingsignals

import (
	"match-engine/internal/common/validation"
	"match-engine/internal/models"
)

var inputSchema = validation.MustCompile(`{
	"type": "object",
	"required": ["actorId"],
	"properties": {
		"actorId": {"type": "string", "minLength": 1}
	}
}`)

type Input struct {
	ActorID string `json:"actorId"`
}

type Output struct {
	Signals []models.Signal `json:"signals"`
	Count   int             `json:"count"`
}
