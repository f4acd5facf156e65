package models

import (
	"strings"
	"time"
)

// Email represents one mailbox message mirrored into the local store.
// GmailID is the provider's immutable identifier; ID is the local key
// every annotation table hangs off.
type Email struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	GmailID      string    `gorm:"uniqueIndex;size:255;not null" json:"gmail_id"`
	ThreadID     string    `gorm:"index;size:255" json:"thread_id"`
	HistoryID    string    `gorm:"size:64" json:"history_id"`
	Sender       string    `gorm:"index;size:255" json:"sender"`
	ToRecipients string    `gorm:"type:text" json:"to_recipients"`
	Subject      string    `gorm:"size:500" json:"subject"`
	Date         string    `gorm:"index;size:128" json:"date"` // provider-formatted header date
	Snippet      string    `gorm:"type:text" json:"snippet"`
	Body         string    `gorm:"type:text" json:"body"`
	Labels       string    `gorm:"type:text" json:"labels"` // CSV of provider label ids
	Category     string    `gorm:"index;size:32;default:'Other'" json:"category"`
	IsRead       bool      `gorm:"index;default:false" json:"is_read"`
	AIAnalyzed   bool      `gorm:"default:false" json:"ai_analyzed"`
	AISummarized bool      `gorm:"default:false" json:"ai_summarized"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Attachments []Attachment   `gorm:"foreignKey:EmailID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
	Analysis    *EmailAnalysis `gorm:"foreignKey:EmailID;constraint:OnDelete:CASCADE" json:"analysis,omitempty"`
	Summaries   []EmailSummary `gorm:"foreignKey:EmailID;constraint:OnDelete:CASCADE" json:"summaries,omitempty"`
	Replies     []EmailReply   `gorm:"foreignKey:EmailID;constraint:OnDelete:CASCADE" json:"replies,omitempty"`
}

// Category values derived from the provider label set.
const (
	CategoryInbox      = "Inbox"
	CategorySent       = "Sent"
	CategoryDrafts     = "Drafts"
	CategoryPromotions = "Promotions"
	CategoryImportant  = "Important"
	CategoryOther      = "Other"
)

// LabelList splits the stored CSV label column back into label ids.
func (e *Email) LabelList() []string {
	if e.Labels == "" {
		return nil
	}
	return strings.Split(e.Labels, ",")
}

// JoinLabels builds the CSV form stored in the Labels column.
func JoinLabels(labels []string) string {
	return strings.Join(labels, ",")
}
