// internal/workers/match/list-matches/models.go
package listmatches

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
	Matches []models.Match `json:"matches"`
	Count   int            `json:"count"`
}
