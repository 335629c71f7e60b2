// Package domain defines the core catalog entities.
//
// Every catalog entity carries a BarID: the bar is the tenant isolation
// boundary, and uniqueness (names, slugs) is only ever evaluated within a
// single bar.
package domain

import "time"

// Bar represents one tenant's recipe catalog.
type Bar struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Subtitle    string    `json:"subtitle,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"created_by"` // User ID of the owner
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
