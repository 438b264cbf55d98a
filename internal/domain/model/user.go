package model

import "github.com/google/uuid"

// User is an account allowed to call the API or the dashboard.
type User struct {
	ID       uuid.UUID
	Username string
	Roles    []string
}
