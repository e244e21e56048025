package roles

import (
	"time"

	"github.com/accessd/accessd/internal/crud"
	"github.com/accessd/accessd/internal/permissions"
	"github.com/accessd/accessd/internal/rbac"
)

// CreateRequest is the payload for POST /roles/.
type CreateRequest struct {
	Name          string  `json:"name" validate:"required"`
	Description   string  `json:"description"`
	PermissionIDs []int64 `json:"permission_ids"`
}

// Fields reports the columns a create sets plus the relationship list.
func (r CreateRequest) Fields() crud.Fields {
	f := crud.Fields{}
	f.Set("name", r.Name)
	f.Set("description", r.Description)
	if r.PermissionIDs != nil {
		f.Set("permission_ids", r.PermissionIDs)
	}
	return f
}

// UpdateRequest is the payload for PUT /roles/{id}. Absent fields leave
// the stored value untouched; a present but empty permission_ids list
// clears the role's permissions.
type UpdateRequest struct {
	Name          *string  `json:"name" validate:"omitempty,min=1"`
	Description   *string  `json:"description"`
	PermissionIDs *[]int64 `json:"permission_ids"`
}

// Fields reports only the fields present in the request body.
func (r UpdateRequest) Fields() crud.Fields {
	f := crud.Fields{}
	if r.Name != nil {
		f.Set("name", *r.Name)
	}
	if r.Description != nil {
		f.Set("description", *r.Description)
	}
	if r.PermissionIDs != nil {
		f.Set("permission_ids", *r.PermissionIDs)
	}
	return f
}

// Response is the wire shape of a role.
type Response struct {
	ID          int64                  `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   *time.Time             `json:"updated_at"`
	Permissions []permissions.Response `json:"permissions"`
}

// Present converts a stored role to its wire shape.
func Present(r *rbac.Role) Response {
	return Response{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Permissions: permissions.PresentAll(r.Permissions),
	}
}

// PresentAll converts a slice of roles.
func PresentAll(rs []rbac.Role) []Response {
	out := make([]Response, 0, len(rs))
	for i := range rs {
		out = append(out, Present(&rs[i]))
	}
	return out
}
