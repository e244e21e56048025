package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func perm(id int64, resource, action string) Permission {
	return Permission{ID: id, Name: resource + " " + action, Resource: resource, Action: action}
}

func TestEffectivePermissionsDeduplicates(t *testing.T) {
	viewUsers := perm(1, "users", "read")
	editUsers := perm(2, "users", "update")
	user := &User{
		Roles: []Role{
			{ID: 1, Name: "viewer", Permissions: []Permission{viewUsers}},
			{ID: 2, Name: "editor", Permissions: []Permission{viewUsers, editUsers}},
		},
	}

	got := user.EffectivePermissions()
	assert.Equal(t, []string{"users:read", "users:update"}, got)

	seen := make(map[string]int)
	for _, p := range got {
		seen[p]++
	}
	for p, n := range seen {
		assert.Equal(t, 1, n, "permission %s appears more than once", p)
	}
}

func TestEffectivePermissionsEmpty(t *testing.T) {
	user := &User{}
	assert.Empty(t, user.EffectivePermissions())

	user.Roles = []Role{{ID: 1, Name: "empty"}}
	assert.Empty(t, user.EffectivePermissions())
}

func TestHasPermission(t *testing.T) {
	user := &User{
		Roles: []Role{
			{ID: 1, Name: "viewer", Permissions: []Permission{perm(1, "users", "read")}},
		},
	}
	assert.True(t, user.HasPermission("users", "read"))
	assert.False(t, user.HasPermission("users", "create"))
	assert.False(t, user.HasPermission("roles", "read"))
}

func TestPermissionKey(t *testing.T) {
	assert.Equal(t, "users:create", PermissionKey("users", "create"))
	assert.Equal(t, "users:read", perm(1, "users", "read").Key())
}
