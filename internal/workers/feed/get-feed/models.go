// internal/workers/feed/get-feed/models.go
package getfeed

import (
	"match-engine/internal/common/validation"
	"match-engine/internal/matching"
)

var inputSchema = validation.MustCompile(`{
	"type": "object",
	"required": ["actorId", "actorRole"],
	"properties": {
		"actorId":   {"type": "string", "minLength": 1},
		"actorRole": {"type": "string", "enum": ["candidate", "recruiter", "admin"]}
	}
}`)

type Input struct {
	ActorID   string `json:"actorId"`
	ActorRole string `json:"actorRole"`
}

type Output struct {
	Recommended []matching.FeedItem `json:"recommended"`
	Remaining   []matching.FeedItem `json:"remaining"`
}
