package listview

// PageWindow is the set of page buttons to render.
type PageWindow struct {
	Current    int   `json:"current"`
	TotalPages int   `json:"total_pages"`
	Pages      []int `json:"pages"`

	// ShowFirst renders a shortcut to page 1 before the window,
	// LeadingEllipsis a gap between it and the window.
	ShowFirst       bool `json:"show_first"`
	LeadingEllipsis bool `json:"leading_ellipsis"`

	ShowLast         bool `json:"show_last"`
	TrailingEllipsis bool `json:"trailing_ellipsis"`

	PrevDisabled bool `json:"prev_disabled"`
	NextDisabled bool `json:"next_disabled"`
}

// Window centres at most maxVisible page buttons on current. When the
// window is short at the end it is shifted back so it stays full.
func Window(current, totalPages, maxVisible int) PageWindow {
	if maxVisible <= 0 {
		maxVisible = DefaultMaxVisible
	}
	if totalPages <= 0 {
		return PageWindow{
			Current:      1,
			Pages:        []int{},
			PrevDisabled: true,
			NextDisabled: true,
		}
	}
	current = max(1, min(current, totalPages))

	start := max(1, current-maxVisible/2)
	end := min(totalPages, start+maxVisible-1)
	if end-start+1 < maxVisible {
		start = max(1, end-maxVisible+1)
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}

	return PageWindow{
		Current:          current,
		TotalPages:       totalPages,
		Pages:            pages,
		ShowFirst:        start > 1,
		LeadingEllipsis:  start > 2,
		ShowLast:         end < totalPages,
		TrailingEllipsis: end < totalPages-1,
		PrevDisabled:     current <= 1,
		NextDisabled:     current >= totalPages,
	}
}

// WindowFor computes the window for a pagination state.
func WindowFor(p Pagination) PageWindow {
	return Window(p.Page, p.TotalPages(), DefaultMaxVisible)
}
