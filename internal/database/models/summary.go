package models

import (
	"time"
)

// EmailSummary stores one AI-generated summary of an email. An email may
// carry several summaries, at most one per summary type.
type EmailSummary struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	EmailID           uint      `gorm:"not null;uniqueIndex:idx_summaries_identity" json:"email_id"`
	GmailID           string    `gorm:"size:255;not null" json:"gmail_id"`
	SummaryType       string    `gorm:"size:20;uniqueIndex:idx_summaries_identity" json:"summary_type"`
	BriefSummary      string    `gorm:"size:500" json:"brief_summary"`
	DetailedSummary   string    `gorm:"size:1500" json:"detailed_summary"`
	KeyPoints         string    `gorm:"type:text" json:"key_points"`      // JSON array
	ActionItems       string    `gorm:"type:text" json:"action_items"`    // JSON array
	ImportantDates    string    `gorm:"type:text" json:"important_dates"` // JSON array
	MentionedPeople   string    `gorm:"type:text" json:"mentioned_people"` // JSON array
	WordCountOriginal int       `json:"word_count_original"`
	WordCountSummary  int       `json:"word_count_summary"`
	CompressionRatio  float64   `json:"compression_ratio"`
	SummarizedAt      time.Time `json:"summarized_at"`
	ProcessingMs      int64     `json:"processing_ms"`
}

// SummaryType selects the style of summary to generate
type SummaryType string

const (
	SummaryBrief        SummaryType = "brief"
	SummaryDetailed     SummaryType = "detailed"
	SummaryBulletPoints SummaryType = "bullet_points"
	SummaryExecutive    SummaryType = "executive"
)

// IsValid checks if the summary type is one of the supported styles
func (t SummaryType) IsValid() bool {
	switch t {
	case SummaryBrief, SummaryDetailed, SummaryBulletPoints, SummaryExecutive:
		return true
	}
	return false
}
