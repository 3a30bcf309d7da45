// pkg/registry/registry_test.go
package registry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	cat := Catalog()

	require.NoError(t, cat.Validate())
	assert.Len(t, cat.Activities, 7)
	for _, a := range cat.Activities {
		assert.Contains(t, a.ErrorCodes, "VALIDATION_FAILED", a.ID)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "activity-registry.json")
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, Save(Catalog(), path, now))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10T09:00:00Z", reg.LastUpdated)

	missing, unknown := reg.Drift(Catalog())
	assert.Empty(t, missing)
	assert.Empty(t, unknown)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		reg     ActivityRegistry
		wantErr string
	}{
		{"empty", ActivityRegistry{}, "no activities"},
		{"duplicate", ActivityRegistry{Activities: []Activity{
			{ID: "a", DisplayName: "A", TaskType: "a", Category: "x"},
			{ID: "a", DisplayName: "A", TaskType: "a", Category: "x"},
		}}, "duplicate activity ID: a"},
		{"no task type", ActivityRegistry{Activities: []Activity{
			{ID: "a", DisplayName: "A", Category: "x"},
		}}, "TaskType"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorContains(t, tt.reg.Validate(), tt.wantErr)
		})
	}
}

func TestDrift(t *testing.T) {
	reg := &ActivityRegistry{Activities: []Activity{
		{TaskType: "get-feed"},
		{TaskType: "validate-subscription"},
	}}

	missing, unknown := reg.Drift(Catalog())

	assert.NotContains(t, missing, "get-feed")
	assert.Contains(t, missing, "submit-swipe")
	assert.Equal(t, []string{"validate-subscription"}, unknown)
}
