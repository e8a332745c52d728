package model

// User is a registered account. Rows are immutable after registration.
type User struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	HashedPassword string `json:"-"` // Not exposed
	Salt           string `json:"-"`
	RoleID         int64  `json:"-"`
	Role           Role   `json:"role"`
}
