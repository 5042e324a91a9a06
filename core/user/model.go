package user

import "time"

// User is a shop operator account. Only admins may manage the catalog of
// users; everyone authenticated can run the floor.
type User struct {
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"`
	IsAdmin        bool      `json:"isAdmin"`
	Created        time.Time `json:"created"`
}

type CreateUserRequest struct {
	Username          string `json:"username,omitempty"`
	IsAdmin           bool   `json:"isAdmin,omitempty"`
	PlainTextPassword string `json:"-"`
}
