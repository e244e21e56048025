package users

import (
	"time"

	"github.com/accessd/accessd/internal/crud"
	"github.com/accessd/accessd/internal/rbac"
	"github.com/accessd/accessd/internal/roles"
)

// CreateRequest is the payload for POST /users/.
type CreateRequest struct {
	Username string  `json:"username" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required"`
	IsActive *bool   `json:"is_active"`
	RoleIDs  []int64 `json:"role_ids"`
}

// Fields reports the columns a create sets plus the relationship list.
// New users default to active.
func (r CreateRequest) Fields() crud.Fields {
	f := crud.Fields{}
	f.Set("username", r.Username)
	f.Set("email", r.Email)
	f.Set("password", r.Password)
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	f.Set("is_active", active)
	if r.RoleIDs != nil {
		f.Set("role_ids", r.RoleIDs)
	}
	return f
}

// UpdateRequest is the payload for PUT /users/{id}. Absent fields leave
// the stored value untouched; a present but empty role_ids list clears
// the user's roles.
type UpdateRequest struct {
	Username *string  `json:"username" validate:"omitempty,min=1"`
	Email    *string  `json:"email" validate:"omitempty,email"`
	Password *string  `json:"password" validate:"omitempty,min=1"`
	IsActive *bool    `json:"is_active"`
	RoleIDs  *[]int64 `json:"role_ids"`
}

// Fields reports only the fields present in the request body.
func (r UpdateRequest) Fields() crud.Fields {
	f := crud.Fields{}
	if r.Username != nil {
		f.Set("username", *r.Username)
	}
	if r.Email != nil {
		f.Set("email", *r.Email)
	}
	if r.Password != nil {
		f.Set("password", *r.Password)
	}
	if r.IsActive != nil {
		f.Set("is_active", *r.IsActive)
	}
	if r.RoleIDs != nil {
		f.Set("role_ids", *r.RoleIDs)
	}
	return f
}

// Response is the wire shape of a user. The password hash never leaves
// the server.
type Response struct {
	ID        int64            `json:"id"`
	Username  string           `json:"username"`
	Email     string           `json:"email"`
	IsActive  bool             `json:"is_active"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt *time.Time       `json:"updated_at"`
	Roles     []roles.Response `json:"roles"`
}

// Present converts a stored user to its wire shape.
func Present(u *rbac.User) Response {
	return Response{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		Roles:     roles.PresentAll(u.Roles),
	}
}
