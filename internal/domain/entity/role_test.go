package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/strategic-ledger/internal/domain/entity"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want entity.Role
		ok   bool
	}{
		{"admin", entity.RoleAdmin, true},
		{"HR", entity.RoleHR, true},
		{" manager ", entity.RoleManager, true},
		{"employee", entity.RoleEmployee, true},
		{"bodeguero", entity.RoleUnknown, false},
		{"", entity.RoleUnknown, false},
	}
	for _, tt := range tests {
		got, ok := entity.ParseRole(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestRole_StringRoundTrip(t *testing.T) {
	for _, r := range []entity.Role{entity.RoleAdmin, entity.RoleHR, entity.RoleManager, entity.RoleEmployee} {
		parsed, ok := entity.ParseRole(r.String())
		assert.True(t, ok)
		assert.Equal(t, r, parsed)
	}
	assert.Equal(t, "unknown", entity.RoleUnknown.String())
}

func TestResourceStatus_Valid(t *testing.T) {
	assert.True(t, entity.ResourceStatusActive.Valid())
	assert.True(t, entity.ResourceStatusPaused.Valid())
	assert.True(t, entity.ResourceStatusArchived.Valid())
	assert.False(t, entity.ResourceStatus("deleted").Valid())
}
