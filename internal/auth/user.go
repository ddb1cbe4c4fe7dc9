package auth

import (
	"strings"
	"time"
)

// User is an account as persisted under the users key, and also the shape of
// a pending draft under the pending key.
type User struct {
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
	Approved     bool      `json:"approved"`
}

func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func findUser(users []User, email string) int {
	for i := range users {
		if sameEmail(users[i].Email, email) {
			return i
		}
	}
	return -1
}
