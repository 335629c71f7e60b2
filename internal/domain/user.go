package domain

import "time"

// User is the minimal account record the catalog core needs: imported
// entities record which user created them. Authentication and membership
// live outside this core.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
