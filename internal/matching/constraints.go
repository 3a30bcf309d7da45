package matching

import "match-engine/internal/models"

// ConstraintsMatch reports whether every key the actor declares is either
// absent on the counterparty or holds an equal value there.
func ConstraintsMatch(actor, counterparty models.Constraints) bool {
	for key, want := range actor {
		have, ok := counterparty[key]
		if !ok {
			continue
		}
		if !want.Equal(have) {
			return false
		}
	}
	return true
}
