package models

import "strings"

type Role string

const (
	RoleCandidate Role = "candidate"
	RoleRecruiter Role = "recruiter"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCandidate, RoleRecruiter, RoleAdmin:
		return true
	}
	return false
}

// Tier is the subscription level that governs the daily right-swipe quota.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
	TierPro     Tier = "pro"
)

// Tiers lists the subscription levels in ascending order.
var Tiers = []Tier{TierFree, TierPremium, TierPro}

func ParseTier(s string) (Tier, bool) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Tiers {
		if t == known {
			return t, true
		}
	}
	return "", false
}

type Skill struct {
	Name       string  `json:"name"`
	Source     string  `json:"source,omitempty"`
	Confidence float64 `json:"confidence"`
}

type User struct {
	ID               string      `json:"id"`
	Role             Role        `json:"role"`
	Skills           []Skill     `json:"skills"`
	Constraints      Constraints `json:"constraints"`
	SubscriptionTier Tier        `json:"subscriptionTier"`
	IntentText       string      `json:"intentText,omitempty"`
}

// SkillNames returns the names of the user's skills in profile order.
func (u *User) SkillNames() []string {
	out := make([]string, 0, len(u.Skills))
	for _, s := range u.Skills {
		out = append(out, s.Name)
	}
	return out
}
