package showcase

import "github.com/hccc/gameroom-console/internal/domain/listview"

// VisibilityRequest is the body of PATCH .../{id}/visibility.
type VisibilityRequest struct {
	IsVisible *bool `json:"isVisible" validate:"required"`
}

// ListResponse is one page of events or winners.
type ListResponse[T any] struct {
	Items  []T                  `json:"items"`
	Window listview.PageWindow  `json:"window"`
	Filter listview.FilterState `json:"filter"`
}
