package utils

import (
	"testing"

	"github.com/GriffinCanCode/simdriver/internal/shared/types"
	"github.com/stretchr/testify/assert"
)

func TestValidateBundleID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "reverse dns", id: "com.apple.mobilesafari"},
		{name: "hyphenated", id: "io.appium.test-app"},
		{name: "single label", id: "Safari"},
		{name: "empty", id: "", wantErr: true},
		{name: "spaces", id: "com.x y", wantErr: true},
		{name: "trailing dot", id: "com.x.", wantErr: true},
		{name: "null byte", id: "com.x\x00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBundleID(tt.id)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrInvalidBundleID)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUDID(t *testing.T) {
	assert.NoError(t, ValidateUDID("8A6A5C8E-4C41-4E5C-9E0B-2D7C1E2A3B4C"))
	assert.NoError(t, ValidateUDID("booted"))
	assert.ErrorIs(t, ValidateUDID("not-a-udid"), types.ErrInvalidUDID)
}

func TestNormalizePatterns(t *testing.T) {
	assert.Equal(t, []string{"*.db*", "blabla.sqlite"}, NormalizePatterns("*.db*,blabla.sqlite"))
	assert.Equal(t, []string{"a", "b", "c"}, NormalizePatterns("a", " b , c", ""))
	assert.Empty(t, NormalizePatterns())
}

func TestValidatePatterns(t *testing.T) {
	assert.NoError(t, ValidatePatterns([]string{"*.db*", "TrustStore/**", "{a,b}.sqlite"}))
	assert.NoError(t, ValidatePatterns(nil))

	err := ValidatePatterns([]string{"*.db*", "["})
	assert.ErrorIs(t, err, types.ErrInvalidPattern)
	assert.Contains(t, err.Error(), `"["`)
}
