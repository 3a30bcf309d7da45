package matching

import (
	"testing"

	"match-engine/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestConstraintsMatch(t *testing.T) {
	tests := []struct {
		name         string
		actor        models.Constraints
		counterparty models.Constraints
		want         bool
	}{
		{
			name: "no constraints",
			want: true,
		},
		{
			name:         "equal scalar",
			actor:        models.Constraints{"remote_only": models.Bool(true)},
			counterparty: models.Constraints{"remote_only": models.Bool(true)},
			want:         true,
		},
		{
			name:         "unequal scalar",
			actor:        models.Constraints{"remote_only": models.Bool(true)},
			counterparty: models.Constraints{"remote_only": models.Bool(false)},
			want:         false,
		},
		{
			name:         "key absent on counterparty",
			actor:        models.Constraints{"preferred_salary": models.Number(90000)},
			counterparty: models.Constraints{"remote_only": models.Bool(true)},
			want:         true,
		},
		{
			name:         "key only on counterparty",
			counterparty: models.Constraints{"remote_only": models.Bool(true)},
			want:         true,
		},
		{
			name:         "list positional equality",
			actor:        models.Constraints{"locations": models.List(models.String("NYC"), models.String("Remote"))},
			counterparty: models.Constraints{"locations": models.List(models.String("NYC"), models.String("Remote"))},
			want:         true,
		},
		{
			name:         "list order differs",
			actor:        models.Constraints{"locations": models.List(models.String("NYC"), models.String("Remote"))},
			counterparty: models.Constraints{"locations": models.List(models.String("Remote"), models.String("NYC"))},
			want:         false,
		},
		{
			name:         "malformed value is unequal",
			actor:        models.Constraints{"level": {}},
			counterparty: models.Constraints{"level": models.String("senior")},
			want:         false,
		},
		{
			name:         "number and string differ",
			actor:        models.Constraints{"years": models.Number(5)},
			counterparty: models.Constraints{"years": models.String("5")},
			want:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConstraintsMatch(tt.actor, tt.counterparty))
		})
	}
}
