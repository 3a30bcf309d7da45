package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"same string", String("remote"), String("remote"), true},
		{"different string", String("remote"), String("onsite"), false},
		{"number", Number(120000), Number(120000), true},
		{"bool", Bool(true), Bool(false), false},
		{"kind mismatch", String("1"), Number(1), false},
		{"list positional", List(String("NYC"), String("SF")), List(String("NYC"), String("SF")), true},
		{"list order matters", List(String("NYC"), String("SF")), List(String("SF"), String("NYC")), false},
		{"list length", List(String("NYC")), List(String("NYC"), String("SF")), false},
		{"invalid never equal", Value{}, Value{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
		})
	}
}

func TestConstraints_JSON(t *testing.T) {
	raw := `{"remote_only":true,"preferred_salary":90000,"locations":["Berlin","Remote"],"meta":{"x":1},"none":null}`

	var c Constraints
	require.NoError(t, json.Unmarshal([]byte(raw), &c))

	assert.Equal(t, KindBool, c["remote_only"].Kind())
	assert.Equal(t, KindNumber, c["preferred_salary"].Kind())
	assert.True(t, c["locations"].Equal(List(String("Berlin"), String("Remote"))))
	assert.Equal(t, KindInvalid, c["meta"].Kind())
	assert.Equal(t, KindInvalid, c["none"].Kind())

	out, err := json.Marshal(Constraints{"remote_only": Bool(true)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"remote_only":true}`, string(out))
}

func TestConstraintsFromMap(t *testing.T) {
	c := ConstraintsFromMap(map[string]interface{}{
		"level":     "senior",
		"locations": []interface{}{"NYC"},
	})

	assert.True(t, c["level"].Equal(String("senior")))
	assert.True(t, c["locations"].Equal(List(String("NYC"))))
	assert.Nil(t, ConstraintsFromMap(nil))
}
