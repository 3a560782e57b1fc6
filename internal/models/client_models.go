package models

import "time"

// Client represents a customer record managed by the backend.
// Email is stored normalized (trimmed, lowercase). A non-nil DeletedAt marks a soft-deleted row.
type Client struct {
	ID          string     `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Email       string     `json:"email" db:"email"`
	Phone       string     `json:"phone" db:"phone"`
	AccessCount int64      `json:"access_count" db:"access_count"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// IsDeleted reports whether the client has been soft-deleted.
func (c *Client) IsDeleted() bool {
	return c.DeletedAt != nil
}
