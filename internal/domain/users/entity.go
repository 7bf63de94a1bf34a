package users

import (
	"strings"
	"time"

	"github.com/hccc/gameroom-console/internal/domain/listview"
	"github.com/hccc/gameroom-console/internal/pkg/hccc"
)

// User is an account as the admin console shows it.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsBlocked bool      `json:"isBlocked"`
	CreatedAt time.Time `json:"createdAt"`
}

func FromHCCC(u hccc.User) User {
	return User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      strings.ToLower(u.Role),
		IsBlocked: u.IsBlocked,
		CreatedAt: u.CreatedAt,
	}
}

func FromHCCCList(list []hccc.User) []User {
	out := make([]User, 0, len(list))
	for _, u := range list {
		out = append(out, FromHCCC(u))
	}
	return out
}

// List is the admin users table.
var List = listview.Config[User]{
	Name: "users",
	Search: []func(User) string{
		func(u User) string { return u.Name },
		func(u User) string { return u.Email },
	},
	Filters: map[string]func(User) string{
		"role": func(u User) string { return u.Role },
	},
	Sorts: map[string]listview.SortField[User]{
		"name":      {Kind: listview.KindString, String: func(u User) string { return u.Name }},
		"email":     {Kind: listview.KindString, String: func(u User) string { return u.Email }},
		"role":      {Kind: listview.KindString, String: func(u User) string { return u.Role }},
		"createdAt": {Kind: listview.KindTime, Time: func(u User) time.Time { return u.CreatedAt }},
	},
	DefaultSort:  "createdAt",
	DefaultOrder: listview.Desc,
	DefaultLimit: 20,
}
