package users

import "github.com/hccc/gameroom-console/internal/domain/listview"

// UpdateRequest is the body of PUT /api/admin/users/{id}. Empty fields are
// left unchanged.
type UpdateRequest struct {
	Name  string `json:"name" validate:"omitempty,min=2,max=120"`
	Email string `json:"email" validate:"omitempty,email"`
	Role  string `json:"role" validate:"omitempty,role"`
}

// BlockRequest is the body of PATCH /api/admin/users/{id}/block.
type BlockRequest struct {
	Blocked *bool `json:"blocked" validate:"required"`
}

// ListResponse is one page of users.
type ListResponse struct {
	Items  []User               `json:"items"`
	Window listview.PageWindow  `json:"window"`
	Filter listview.FilterState `json:"filter"`
}
