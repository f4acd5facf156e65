package models

import (
	"time"
)

// EmailAnalysis stores the AI analysis of a single email. One row per
// email; a second analysis request returns the stored row instead of
// calling the model again.
type EmailAnalysis struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	EmailID          uint      `gorm:"uniqueIndex;not null" json:"email_id"`
	GmailID          string    `gorm:"size:255;not null" json:"gmail_id"`
	Summary          string    `gorm:"size:500" json:"summary"`
	PriorityScore    int       `gorm:"default:3" json:"priority_score"` // 1-5, 5 highest
	PriorityReason   string    `gorm:"size:200" json:"priority_reason"`
	Sentiment        string    `gorm:"size:20;default:'neutral'" json:"sentiment"`
	ActionRequired   bool      `gorm:"default:false" json:"action_required"`
	SuggestedActions string    `gorm:"type:text" json:"suggested_actions"` // JSON array
	KeyTopics        string    `gorm:"type:text" json:"key_topics"`        // JSON array
	DraftReply       string    `gorm:"size:1000" json:"draft_reply"`
	AnalyzedAt       time.Time `json:"analyzed_at"`
	ProcessingMs     int64     `json:"processing_ms"`
}

// Sentiment represents the tone detected in an email
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
	SentimentUrgent   Sentiment = "urgent"
)

// IsValid checks if the sentiment value is one of the allowed set
func (s Sentiment) IsValid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral, SentimentUrgent:
		return true
	}
	return false
}
