// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	apperrors "match-engine/internal/common/errors"

	uas "match-engine/internal/workers/application/update-application-status"
	wa "match-engine/internal/workers/application/withdraw-application"
	gf "match-engine/internal/workers/feed/get-feed"
	gis "match-engine/internal/workers/feed/get-incoming-signals"
	lm "match-engine/internal/workers/match/list-matches"
	sm "match-engine/internal/workers/match/send-message"
	ss "match-engine/internal/workers/swipe/submit-swipe"
)

const CatalogVersion = "1.0.0"

func codes(cs ...apperrors.ErrorCode) []string {
	out := []string{string(apperrors.ErrCodeValidationFailed), string(apperrors.ErrCodeDependencyFailure)}
	for _, c := range cs {
		out = append(out, string(c))
	}
	return out
}

// Catalog describes every job type the match engine serves.
func Catalog() *ActivityRegistry {
	activity := func(taskType, name, desc, category string, in, out []string, errs []string) Activity {
		return Activity{
			ID:          taskType,
			DisplayName: name,
			Description: desc,
			Category:    category,
			TaskType:    taskType,
			Inputs:      in,
			Outputs:     out,
			ErrorCodes:  errs,
			Timeout:     "10s",
			Retries:     3,
		}
	}

	return &ActivityRegistry{
		Version: CatalogVersion,
		Activities: []Activity{
			activity(ss.TaskType, "Submit Swipe",
				"Records a swipe, opening an application or a match when the pair qualifies",
				"swipe",
				[]string{"actorId", "listingId", "targetUserId", "direction"},
				[]string{"accepted", "matchCreated", "matchId", "applicationId", "pairState"},
				codes(apperrors.ErrCodeUnauthorized, apperrors.ErrCodeForbidden, apperrors.ErrCodeNotFound,
					apperrors.ErrCodeAlreadySwiped, apperrors.ErrCodeQuotaExceeded)),
			activity(gf.TaskType, "Get Feed",
				"Serves the two-tier recommended and remaining feed for a candidate or recruiter",
				"feed",
				[]string{"actorId", "actorRole"},
				[]string{"recommended", "remaining"},
				codes(apperrors.ErrCodeUnauthorized)),
			activity(gis.TaskType, "Get Incoming Signals",
				"Lists unanswered candidate right swipes on the recruiter's listings",
				"feed",
				[]string{"actorId"},
				[]string{"signals", "count"},
				codes(apperrors.ErrCodeUnauthorized)),
			activity(wa.TaskType, "Withdraw Application",
				"Withdraws the candidate's own undecided application",
				"application",
				[]string{"actorId", "applicationId"},
				[]string{"applicationId", "applicationStatus", "application"},
				codes(apperrors.ErrCodeForbidden, apperrors.ErrCodeNotFound, apperrors.ErrCodeInvalidStatusTransition)),
			activity(uas.TaskType, "Update Application Status",
				"Moves an application along the review pipeline for the listing owner",
				"application",
				[]string{"actorId", "applicationId", "status"},
				[]string{"applicationId", "applicationStatus", "application"},
				codes(apperrors.ErrCodeForbidden, apperrors.ErrCodeNotFound, apperrors.ErrCodeInvalidStatusTransition)),
			activity(lm.TaskType, "List Matches",
				"Lists the matches visible to a candidate or recruiter",
				"match",
				[]string{"actorId"},
				[]string{"matches", "count"},
				codes(apperrors.ErrCodeUnauthorized)),
			activity(sm.TaskType, "Send Message",
				"Posts a chat message to a match the actor participates in",
				"match",
				[]string{"actorId", "matchId", "content"},
				[]string{"messageId", "message"},
				codes(apperrors.ErrCodeForbidden, apperrors.ErrCodeNotFound)),
		},
	}
}

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// Save writes reg to path, stamping LastUpdated.
func Save(reg *ActivityRegistry, path string, now time.Time) error {
	reg.LastUpdated = now.UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// Validate checks required fields and duplicate IDs.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}
	ids := make(map[string]bool, len(r.Activities))
	for _, a := range r.Activities {
		if a.ID == "" {
			return fmt.Errorf("activity missing required field: ID")
		}
		if ids[a.ID] {
			return fmt.Errorf("duplicate activity ID: %s", a.ID)
		}
		ids[a.ID] = true
		if a.DisplayName == "" {
			return fmt.Errorf("activity %s missing required field: DisplayName", a.ID)
		}
		if a.TaskType == "" {
			return fmt.Errorf("activity %s missing required field: TaskType", a.ID)
		}
		if a.Category == "" {
			return fmt.Errorf("activity %s missing required field: Category", a.ID)
		}
	}
	return nil
}

// Drift lists task types served by want but missing from r, and task types
// in r that want does not serve.
func (r *ActivityRegistry) Drift(want *ActivityRegistry) (missing, unknown []string) {
	have := map[string]bool{}
	for _, a := range r.Activities {
		have[a.TaskType] = true
	}
	served := map[string]bool{}
	for _, a := range want.Activities {
		served[a.TaskType] = true
		if !have[a.TaskType] {
			missing = append(missing, a.TaskType)
		}
	}
	for t := range have {
		if !served[t] {
			unknown = append(unknown, t)
		}
	}
	sort.Strings(missing)
	sort.Strings(unknown)
	return missing, unknown
}
