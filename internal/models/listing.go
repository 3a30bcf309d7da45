// internal/models/listing.go
package models

import "time"

// Listing is a job opening owned by a company. OwnerID is the recruiter who
// administers the company and is the only actor allowed to swipe for it.
type Listing struct {
	ID             string      `json:"id"`
	CompanyID      string      `json:"companyId"`
	OwnerID        string      `json:"ownerId"`
	Title          string      `json:"title"`
	RequiredSkills []string    `json:"requiredSkills"`
	Constraints    Constraints `json:"constraints"`
	Active         bool        `json:"active"`
	CreatedAt      time.Time   `json:"createdAt"`
}
