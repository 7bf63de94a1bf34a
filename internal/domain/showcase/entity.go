// Package showcase manages the events and winners shown on the storefront.
package showcase

import (
	"time"

	"github.com/hccc/gameroom-console/internal/domain/listview"
	"github.com/hccc/gameroom-console/internal/pkg/hccc"
)

type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Image       string    `json:"image,omitempty"`
	IsVisible   bool      `json:"isVisible"`
}

type Winner struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	GameName  string    `json:"game"`
	Prize     string    `json:"prize"`
	Date      time.Time `json:"date"`
	Location  string    `json:"location,omitempty"`
	Image     string    `json:"image,omitempty"`
	IsVisible bool      `json:"isVisible"`
}

func EventFromHCCC(e hccc.Event) Event {
	return Event{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Location:    e.Location,
		Image:       e.Image,
		IsVisible:   e.IsVisible,
	}
}

func WinnerFromHCCC(w hccc.Winner) Winner {
	return Winner{
		ID:        w.ID,
		Name:      w.Name,
		GameName:  w.GameName,
		Prize:     w.Prize,
		Date:      w.Date,
		Location:  w.Location,
		Image:     w.Image,
		IsVisible: w.IsVisible,
	}
}

var EventList = listview.Config[Event]{
	Name: "events",
	Search: []func(Event) string{
		func(e Event) string { return e.Title },
		func(e Event) string { return e.Description },
	},
	Filters: map[string]func(Event) string{
		"location": func(e Event) string { return e.Location },
	},
	Sorts: map[string]listview.SortField[Event]{
		"date":  {Kind: listview.KindTime, Time: func(e Event) time.Time { return e.Date }},
		"title": {Kind: listview.KindString, String: func(e Event) string { return e.Title }},
	},
	DefaultSort:  "date",
	DefaultOrder: listview.Desc,
}

var WinnerList = listview.Config[Winner]{
	Name: "winners",
	Search: []func(Winner) string{
		func(w Winner) string { return w.Name },
		func(w Winner) string { return w.GameName },
		func(w Winner) string { return w.Prize },
	},
	Filters: map[string]func(Winner) string{
		"location": func(w Winner) string { return w.Location },
	},
	Sorts: map[string]listview.SortField[Winner]{
		"date": {Kind: listview.KindTime, Time: func(w Winner) time.Time { return w.Date }},
		"name": {Kind: listview.KindString, String: func(w Winner) string { return w.Name }},
	},
	DefaultSort:  "date",
	DefaultOrder: listview.Desc,
}
