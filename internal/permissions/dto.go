package permissions

import (
	"time"

	"github.com/accessd/accessd/internal/crud"
	"github.com/accessd/accessd/internal/rbac"
)

// CreateRequest is the payload for POST /permissions/.
type CreateRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Resource    string `json:"resource" validate:"required"`
	Action      string `json:"action" validate:"required"`
}

// Fields reports the columns a create sets.
func (r CreateRequest) Fields() crud.Fields {
	f := crud.Fields{}
	f.Set("name", r.Name)
	f.Set("description", r.Description)
	f.Set("resource", r.Resource)
	f.Set("action", r.Action)
	return f
}

// UpdateRequest is the payload for PUT /permissions/{id}. Absent fields
// leave the stored value untouched.
type UpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Description *string `json:"description"`
	Resource    *string `json:"resource" validate:"omitempty,min=1"`
	Action      *string `json:"action" validate:"omitempty,min=1"`
}

// Fields reports only the columns present in the request body.
func (r UpdateRequest) Fields() crud.Fields {
	f := crud.Fields{}
	if r.Name != nil {
		f.Set("name", *r.Name)
	}
	if r.Description != nil {
		f.Set("description", *r.Description)
	}
	if r.Resource != nil {
		f.Set("resource", *r.Resource)
	}
	if r.Action != nil {
		f.Set("action", *r.Action)
	}
	return f
}

// Response is the wire shape of a permission.
type Response struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Resource    string     `json:"resource"`
	Action      string     `json:"action"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

// Present converts a stored permission to its wire shape.
func Present(p *rbac.Permission) Response {
	return Response{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Resource:    p.Resource,
		Action:      p.Action,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// PresentAll converts a slice of permissions.
func PresentAll(perms []rbac.Permission) []Response {
	out := make([]Response, 0, len(perms))
	for i := range perms {
		out = append(out, Present(&perms[i]))
	}
	return out
}
