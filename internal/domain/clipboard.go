package domain

import "time"

// Clipboard item types.
const (
	ItemTypeText  = "text"
	ItemTypeImage = "image"
	ItemTypeFile  = "file"
)

// ClipboardItem is one shared payload in a room. For text items Content
// holds ciphertext at rest; for image/file items it holds the
// storage-relative path in the clear (the bytes live on disk, not in the
// database). Meta is an encrypted JSON blob describing uploaded files.
type ClipboardItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RoomID    uint      `gorm:"index;not null" json:"roomId"`
	UserID    uint      `gorm:"index;not null" json:"userId"`
	Type      string    `gorm:"size:10;not null" json:"type"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Title     string    `gorm:"size:255" json:"title,omitempty"`
	Category  string    `gorm:"size:100" json:"category,omitempty"`
	Meta      string    `gorm:"type:text" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Author is the poster's username, filled by list queries.
	Author string `gorm:"-:migration;->" json:"createdBy,omitempty"`
	// MetaData is the decrypted form of Meta, filled at the read boundary.
	MetaData map[string]any `gorm:"-" json:"meta,omitempty"`
}
