package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidRole(t *testing.T) {
	for _, role := range GetAllRoles() {
		assert.True(t, IsValidRole(role))
	}
	assert.False(t, IsValidRole("superhero"))
	assert.False(t, IsValidRole(""))
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("admin")
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, role)

	_, ok = ParseRole("nope")
	assert.False(t, ok)
}

func TestRoleIsAtLeast(t *testing.T) {
	assert.True(t, RoleIsAtLeast(RoleOwner, RoleAdmin))
	assert.True(t, RoleIsAtLeast(RoleAdmin, RoleAdmin))
	assert.False(t, RoleIsAtLeast(RoleMember, RoleAdmin))
	assert.False(t, RoleIsAtLeast("bogus", RoleGuest))
	assert.False(t, RoleIsAtLeast(RoleOwner, "bogus"))
}

func TestRolePermissions(t *testing.T) {
	tests := []struct {
		role     UserRole
		expected []string
	}{
		{RoleGuest, []string{"read"}},
		{RoleMember, []string{"read", "edit"}},
		{RoleAdmin, []string{"read", "edit", "create"}},
		{RoleOwner, []string{"read", "edit", "create", "delete"}},
		{"bogus", nil},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, RolePermissions(tc.role), "role %q", tc.role)
	}
}
