package team

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	testCases := []struct {
		input    string
		expected Role
	}{
		{input: "Carry", expected: Carry},
		{input: "mid", expected: Mid},
		{input: "Midlane", expected: Mid},
		{input: " Offlane ", expected: Offlane},
		{input: "Soft Support", expected: Support},
		{input: "Hard Support", expected: HardSupport},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			r, err := ParseRole(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, r)
		})
	}

	_, err := ParseRole("Jungler")
	assert.Error(t, err)
}

func TestRoleSet_Operations(t *testing.T) {
	s := NewRoleSet(HardSupport, Carry)

	assert.True(t, s.Has(Carry))
	assert.False(t, s.Has(Mid))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []Role{Carry, HardSupport}, s.Roles())
	assert.Equal(t, 1, s.Remove(Carry).Len())
	assert.Equal(t, NewRoleSet(Carry), s.Intersect(NewRoleSet(Carry, Mid)))
	assert.Equal(t, 5, AllRoleSet.Len())
}

func TestRoleSet_JSONUsesCanonicalLabels(t *testing.T) {
	b, err := json.Marshal(NewRoleSet(HardSupport, Mid))
	require.NoError(t, err)
	assert.JSONEq(t, `["Mid","Hard Support"]`, string(b))

	var s RoleSet
	require.NoError(t, json.Unmarshal([]byte(`["Soft Support","Carry","Carry"]`), &s))
	assert.Equal(t, NewRoleSet(Carry, Support), s)

	assert.Error(t, json.Unmarshal([]byte(`["Roamer"]`), &s))
}

func TestRoleSet_ScanAndValue(t *testing.T) {
	v, err := NewRoleSet(Offlane).Value()
	require.NoError(t, err)
	assert.Equal(t, `["Offlane"]`, v)

	var s RoleSet
	require.NoError(t, s.Scan([]byte(`["Carry","Mid"]`)))
	assert.Equal(t, NewRoleSet(Carry, Mid), s)

	require.NoError(t, s.Scan(nil))
	assert.Equal(t, RoleSet(0), s)

	assert.Error(t, s.Scan(42))
}
