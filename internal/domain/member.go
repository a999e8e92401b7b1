package domain

import "time"

// Membership roles. Exactly one owner row exists per room and it is
// created in the same transaction as the room itself.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// RoomMember grants a user access to a room's clipboard.
type RoomMember struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	RoomID    uint      `gorm:"primaryKey;autoIncrement:false" json:"roomId"`
	Role      string    `gorm:"size:10;not null" json:"role"`
	CreatedAt time.Time `json:"joinedAt"`
}

// MemberInfo is a membership row joined with the member's username,
// used by the room detail view.
type MemberInfo struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
