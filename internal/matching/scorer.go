package matching

import (
	"strings"

	"match-engine/internal/models"
)

// SkillSet is a case-insensitive set of skill names.
type SkillSet map[string]struct{}

func NewSkillSet(skills []models.Skill) SkillSet {
	set := make(SkillSet, len(skills))
	for _, s := range skills {
		name := normalizeSkill(s.Name)
		if name != "" {
			set[name] = struct{}{}
		}
	}
	return set
}

func (s SkillSet) Has(name string) bool {
	_, ok := s[normalizeSkill(name)]
	return ok
}

// Score counts the required skills present in the set. Repeated requirements
// count once per occurrence.
func (s SkillSet) Score(required []string) int {
	score := 0
	for _, r := range required {
		if s.Has(r) {
			score++
		}
	}
	return score
}

// Matched returns the required skills present in the set, in listing order.
func (s SkillSet) Matched(required []string) []string {
	var out []string
	for _, r := range required {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

// RelevanceScore is the overlap between a profile's skills and a listing's requirements.
func RelevanceScore(skills []models.Skill, required []string) int {
	return NewSkillSet(skills).Score(required)
}

func normalizeSkill(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
