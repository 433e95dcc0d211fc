package model

import "time"

type User struct {
	UserID    string    `firestore:"userid,omitempty"`
	Name      string    `firestore:"name,omitempty"`
	Email     string    `firestore:"email,omitempty"`
	Password  string    `firestore:"password,omitempty"`
	Role      string    `firestore:"role,omitempty"` // "viewer" or "admin"
	CreatedAt time.Time `firestore:"createdat,omitempty"`
}

// IsAdmin reports whether the operator may perform mutating operations.
func (u User) IsAdmin() bool {
	return u.Role == "admin"
}
