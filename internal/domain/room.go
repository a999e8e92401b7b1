package domain

import "time"

// Room is a code-addressable sharing scope. Code is the 6-character
// join code, always stored uppercase.
type Room struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"size:500" json:"description,omitempty"`
	Code        string    `gorm:"uniqueIndex;size:6;not null" json:"code"`
	OwnerID     uint      `gorm:"index;not null" json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// RoomSummary is a room as seen through one user's membership, with the
// aggregates the room list shows.
type RoomSummary struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Code           string    `json:"code"`
	OwnerID        uint      `json:"ownerId"`
	OwnerName      string    `json:"owner"`
	Role           string    `json:"role"`
	MemberCount    int64     `json:"memberCount"`
	ClipboardCount int64     `json:"clipboardCount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// RoomDetail is the single-room view, including the member roster.
type RoomDetail struct {
	RoomSummary
	Members []MemberInfo `json:"members"`
}
