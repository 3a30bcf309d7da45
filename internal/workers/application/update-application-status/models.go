// internal/workers/application/update-application-status/models.go
package updateapplicationstatus

import (
	"match-engine/internal/common/validation"
	"match-engine/internal/models"
)

var inputSchema = validation.MustCompile(`{
	"type": "object",
	"required": ["actorId", "applicationId", "status"],
	"properties": {
		"actorId":       {"type": "string", "minLength": 1},
		"applicationId": {"type": "string", "minLength": 1},
		"status":        {"type": "string", "minLength": 1}
	}
}`)

// Status is checked against the status graph by the engine, so an unknown
// value surfaces as VALIDATION_FAILED with the engine's message.
type Input struct {
	ActorID       string `json:"actorId"`
	ApplicationID string `json:"applicationId"`
	Status        string `json:"status"`
}

type Output struct {
	ApplicationID     string              `json:"applicationId"`
	ApplicationStatus string              `json:"applicationStatus"`
	Application       *models.Application `json:"application"`
}
