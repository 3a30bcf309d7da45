// internal/workers/application/withdraw-application/models.go
package withdrawapplication

import (
	"match-engine/internal/common/validation"
	"match-engine/internal/models"
)

var inputSchema = validation.MustCompile(`{
	"type": "object",
	"required": ["actorId", "applicationId"],
	"properties": {
		"actorId":       {"type": "string", "minLength": 1},
		"applicationId": {"type": "string", "minLength": 1}
	}
}`)

type Input struct {
	ActorID       string `json:"actorId"`
	ApplicationID string `json:"applicationId"`
}

type Output struct {
	ApplicationID     string              `json:"applicationId"`
	ApplicationStatus string              `json:"applicationStatus"`
	Application       *models.Application `json:"application"`
}
