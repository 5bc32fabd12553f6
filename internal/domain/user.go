package domain

import "time"

// User is the identity returned by the identity provider.
type User struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email,omitempty"`
	SignedIn time.Time `json:"signedInAt"`
}
