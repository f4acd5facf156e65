package models

import (
	"time"
)

// EmailReply is one entry in the append-only reply log for an email.
// Unlike analyses and summaries there is no uniqueness constraint: a
// message may accumulate any number of drafts and sent replies.
type EmailReply struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	EmailID      uint       `gorm:"index;not null" json:"email_id"`
	ReplyGmailID string     `gorm:"size:255" json:"reply_gmail_id"`
	Subject      string     `gorm:"size:500" json:"subject"`
	Body         string     `gorm:"type:text" json:"body"`
	ReplyType    string     `gorm:"size:20" json:"reply_type"`  // ai_generated, manual, edited_ai
	SentStatus   string     `gorm:"size:20" json:"sent_status"` // draft, sent, failed
	SentAt       *time.Time `json:"sent_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Reply provenance values
const (
	ReplyTypeAIGenerated = "ai_generated"
	ReplyTypeManual      = "manual"
	ReplyTypeEditedAI    = "edited_ai"
)

// Reply lifecycle values
const (
	ReplyStatusDraft  = "draft"
	ReplyStatusSent   = "sent"
	ReplyStatusFailed = "failed"
)
