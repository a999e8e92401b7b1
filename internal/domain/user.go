// Package domain defines the persistent models and the request identity.
package domain

import "time"

// User is a registered account. APIKey is nil until the first key is
// issued; regeneration overwrites the previous value.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	Email     string    `gorm:"size:255" json:"email,omitempty"`
	APIKey    *string   `gorm:"uniqueIndex;size:64" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
