// Package rbac holds the role-based access control model and the
// per-request authorization guard.
package rbac

import "time"

// Permission represents an atomic capability as a (resource, action)
// pair with a unique display name.
type Permission struct {
	ID          int64
	Name        string
	Description string
	Resource    string
	Action      string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// Key returns the permission identifier in resource:action form.
func (p Permission) Key() string {
	return PermissionKey(p.Resource, p.Action)
}

// Role is a named bundle of permissions.
type Role struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	Permissions []Permission
}

// User is an account holding roles. Permissions are never attached to
// users directly; they are always derived through roles.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	Roles        []Role
}

// PermissionKey builds the resource:action identifier.
func PermissionKey(resource, action string) string {
	return resource + ":" + action
}

// EffectivePermissions flattens the user's roles into resource:action
// strings, deduplicated in insertion order. It works over whatever
// role/permission graph is currently loaded on the user, so callers that
// reload the user per request always see fresh grants.
func (u *User) EffectivePermissions() []string {
	var perms []string
	seen := make(map[string]struct{})
	for _, role := range u.Roles {
		for _, p := range role.Permissions {
			key := p.Key()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			perms = append(perms, key)
		}
	}
	return perms
}

// HasPermission reports whether any of the user's roles grants the
// (resource, action) pair.
func (u *User) HasPermission(resource, action string) bool {
	for _, role := range u.Roles {
		for _, p := range role.Permissions {
			if p.Resource == resource && p.Action == action {
				return true
			}
		}
	}
	return false
}
