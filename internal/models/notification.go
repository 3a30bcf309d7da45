// internal/models/notification.go
package models

import "time"

type EventType string

const (
	EventApplicationCreated       EventType = "application.created"
	EventMatchCreated             EventType = "match.created"
	EventApplicationStatusChanged EventType = "application.status_changed"
	EventMessageSent              EventType = "message.sent"
)

// Event is a post-commit notification. Payload carries only identifiers so
// downstream consumers resolve identities under their own access rules.
type Event struct {
	ID         string            `json:"id"`
	Type       EventType         `json:"type"`
	OccurredAt time.Time         `json:"occurredAt"`
	Payload    map[string]string `json:"payload"`
}

func NewApplicationCreated(id string, at time.Time, app *Application) Event {
	return Event{ID: id, Type: EventApplicationCreated, OccurredAt: at, Payload: map[string]string{
		"applicationId": app.ID,
		"userId":        app.UserID,
		"listingId":     app.ListingID,
	}}
}

func NewMatchCreated(id string, at time.Time, m *Match) Event {
	return Event{ID: id, Type: EventMatchCreated, OccurredAt: at, Payload: map[string]string{
		"matchId":     m.ID,
		"candidateId": m.CandidateID,
		"listingId":   m.ListingID,
	}}
}

func NewApplicationStatusChanged(id string, at time.Time, app *Application, from ApplicationStatus) Event {
	return Event{ID: id, Type: EventApplicationStatusChanged, OccurredAt: at, Payload: map[string]string{
		"applicationId": app.ID,
		"userId":        app.UserID,
		"listingId":     app.ListingID,
		"from":          string(from),
		"to":            string(app.Status),
	}}
}

func NewMessageSent(id string, at time.Time, msg *Message) Event {
	return Event{ID: id, Type: EventMessageSent, OccurredAt: at, Payload: map[string]string{
		"messageId": msg.ID,
		"matchId":   msg.MatchID,
		"senderId":  msg.SenderID,
	}}
}
