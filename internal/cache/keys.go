// internal/cache/keys.go
package cache

import "strings"

// View kinds. Keys are "<kind>:<userId>" and are shared with every instance
// using the same Redis, so the format must not change.
const (
	ViewCandidateFeed   = "candidate-feed"
	ViewRecruiterFeed   = "recruiter-feed"
	ViewIncomingSignals = "incoming-signals"
)

func CandidateFeedKey(userID string) string {
	return ViewCandidateFeed + ":" + userID
}

func RecruiterFeedKey(userID string) string {
	return ViewRecruiterFeed + ":" + userID
}

func IncomingSignalsKey(userID string) string {
	return ViewIncomingSignals + ":" + userID
}

// viewOf extracts the view kind from a key for metric labels.
func viewOf(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "unknown"
}
