// internal/models/application.go
package models

import (
	"fmt"
	"strings"
	"time"
)

// ApplicationStatus is a stage in the hiring pipeline.
type ApplicationStatus string

const (
	StatusPending   ApplicationStatus = "pending"
	StatusReviewing ApplicationStatus = "reviewing"
	StatusInterview ApplicationStatus = "interview"
	StatusAccepted  ApplicationStatus = "accepted"
	StatusRejected  ApplicationStatus = "rejected"
	StatusWithdrawn ApplicationStatus = "withdrawn"
)

// forward pipeline moves; withdraw is handled separately.
var validTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusPending:   {StatusReviewing, StatusRejected},
	StatusReviewing: {StatusInterview, StatusRejected},
	StatusInterview: {StatusAccepted, StatusRejected},
}

func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusReviewing, StatusInterview, StatusAccepted, StatusRejected, StatusWithdrawn:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// Terminal statuses accept no further transitions.
func (s ApplicationStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected || s == StatusWithdrawn
}

// CanTransition reports whether the pipeline may move from s to next.
func (s ApplicationStatus) CanTransition(next ApplicationStatus) bool {
	if next == StatusWithdrawn {
		return s.CanWithdraw()
	}
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CanWithdraw is false once the listing owner has decided.
func (s ApplicationStatus) CanWithdraw() bool {
	return s != StatusAccepted && s != StatusRejected && s != StatusWithdrawn
}

type Application struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	ListingID string            `json:"listingId"`
	Status    ApplicationStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}
