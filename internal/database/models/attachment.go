package models

import (
	"time"
)

// Attachment belongs to exactly one Email and is deleted with it.
// The (email_id, filename, size) triple identifies an attachment across
// repeated syncs of the same message.
type Attachment struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	EmailID        uint      `gorm:"not null;uniqueIndex:idx_attachments_identity" json:"email_id"`
	Filename       string    `gorm:"size:255;uniqueIndex:idx_attachments_identity" json:"filename"`
	Size           int64     `gorm:"uniqueIndex:idx_attachments_identity" json:"size"`
	Content        []byte    `gorm:"type:blob" json:"-"`
	ContentPreview string    `gorm:"type:text" json:"content_preview,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
