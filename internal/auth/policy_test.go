package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordPolicy_Validate(t *testing.T) {
	policy := NewPasswordPolicy(8)

	tests := []struct {
		name     string
		password string
		wantMsg  string
	}{
		{"strong", "Tr1cky-Horse-Battery", ""},
		{"contains a username", "alice2024", ""},
		{"scrambled username", "ecilaxyz9", ""},
		{"too short", "Ab3$x", "This password is too short. It must contain at least 8 characters."},
		{"too common", "password123", "This password is too common."},
		{"common is case-insensitive", "PassWord123", "This password is too common."},
		{"entirely numeric", "73915284", "This password is entirely numeric."},
		// Length is checked before the other rules, so only the first failure surfaces.
		{"first failure wins", "1234", "This password is too short. It must contain at least 8 characters."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := policy.Validate(tc.password)
			if tc.wantMsg == "" {
				require.NoError(t, err)
				return
			}
			var perr *PolicyError
			require.True(t, errors.As(err, &perr), "want *PolicyError, got %T", err)
			assert.Equal(t, tc.wantMsg, perr.Message)
		})
	}
}

func TestPasswordPolicy_CustomMinLength(t *testing.T) {
	policy := NewPasswordPolicy(12)

	require.NoError(t, policy.Validate("Tr1cky-Horse"))

	err := policy.Validate("Tr1cky-Hors")
	require.Error(t, err)
	assert.Equal(t, "This password is too short. It must contain at least 12 characters.", err.Error())
}
