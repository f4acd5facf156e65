package services

import (
	"errors"

	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/database/models"
	"gorm.io/gorm"
)

var (
	// ErrEmailNotFound indicates the email was not found
	ErrEmailNotFound = errors.New("email not found")
)

// EmailService handles queries and mutations over the stored mailbox
type EmailService struct {
	db         *gorm.DB
	logService *LogService
}

// NewEmailService creates a new EmailService instance
func NewEmailService(db *gorm.DB) *EmailService {
	return &EmailService{
		db:         db,
		logService: NewLogService(db),
	}
}

// EmailQuery represents filters for email listing
type EmailQuery struct {
	Category string
	Sender   string
	IsRead   *bool
	Analyzed *bool
	Search   string
	Page     int
	Limit    int
}

// EmailQueryResult represents one page of emails plus the filtered total
type EmailQueryResult struct {
	Total  int64          `json:"total"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
	Emails []models.Email `json:"emails"`
}

// ListEmails returns a page of emails matching the query, newest first
func (s *EmailService) ListEmails(query EmailQuery) (*EmailQueryResult, error) {
	db := s.db.Model(&models.Email{})

	if query.Category != "" {
		db = db.Where("category = ?", query.Category)
	}
	if query.Sender != "" {
		db = db.Where("sender LIKE ?", "%"+query.Sender+"%")
	}
	if query.IsRead != nil {
		db = db.Where("is_read = ?", *query.IsRead)
	}
	if query.Analyzed != nil {
		db = db.Where("ai_analyzed = ?", *query.Analyzed)
	}
	if query.Search != "" {
		pattern := "%" + query.Search + "%"
		db = db.Where("subject LIKE ? OR sender LIKE ? OR snippet LIKE ? OR body LIKE ?",
			pattern, pattern, pattern, pattern)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, err
	}

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 50
	}

	offset := (query.Page - 1) * query.Limit

	var emails []models.Email
	if err := db.Order("created_at DESC").Offset(offset).Limit(query.Limit).
		Preload("Attachments").Find(&emails).Error; err != nil {
		return nil, err
	}

	return &EmailQueryResult{
		Total:  total,
		Page:   query.Page,
		Limit:  query.Limit,
		Emails: emails,
	}, nil
}

// GetEmailByID retrieves one email with all of its annotations
func (s *EmailService) GetEmailByID(id uint) (*models.Email, error) {
	var email models.Email
	err := s.db.Preload("Attachments").Preload("Analysis").
		Preload("Summaries").Preload("Replies").First(&email, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmailNotFound
		}
		return nil, err
	}
	return &email, nil
}

// GetEmailByGmailID retrieves one email by its provider id
func (s *EmailService) GetEmailByGmailID(gmailID string) (*models.Email, error) {
	var email models.Email
	err := s.db.Preload("Attachments").First(&email, "gmail_id = ?", gmailID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmailNotFound
		}
		return nil, err
	}
	return &email, nil
}

// MarkRead flips the read flag on an email
func (s *EmailService) MarkRead(id uint, read bool) error {
	result := s.db.Model(&models.Email{}).Where("id = ?", id).Update("is_read", read)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEmailNotFound
	}
	return nil
}

// DeleteEmail removes an email. Attachments, analyses, summaries and
// replies go with it via the foreign key cascade.
func (s *EmailService) DeleteEmail(id uint) error {
	var email models.Email
	if err := s.db.Select("id", "subject").First(&email, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmailNotFound
		}
		return err
	}

	if err := s.db.Delete(&models.Email{}, id).Error; err != nil {
		return err
	}

	s.logService.LogInfo(models.LogModuleEmail, "delete", "Email deleted", map[string]interface{}{
		"email_id": id,
		"subject":  email.Subject,
	})
	return nil
}

// CategoryCount is one row of the category breakdown
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// MailboxStats summarizes the stored mailbox
type MailboxStats struct {
	Total      int64           `json:"total"`
	Unread     int64           `json:"unread"`
	Analyzed   int64           `json:"analyzed"`
	Summarized int64           `json:"summarized"`
	Categories []CategoryCount `json:"categories"`
}

// GetStats computes mailbox-wide counts
func (s *EmailService) GetStats() (*MailboxStats, error) {
	stats := &MailboxStats{}

	if err := s.db.Model(&models.Email{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Email{}).Where("is_read = ?", false).Count(&stats.Unread).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Email{}).Where("ai_analyzed = ?", true).Count(&stats.Analyzed).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Email{}).Where("ai_summarized = ?", true).Count(&stats.Summarized).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.Email{}).
		Select("category, COUNT(*) as count").
		Group("category").
		Order("count DESC").
		Scan(&stats.Categories).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

// GetUniqueSenders lists distinct senders with their message counts
func (s *EmailService) GetUniqueSenders(limit int) ([]SenderCount, error) {
	if limit <= 0 {
		limit = 100
	}

	var senders []SenderCount
	err := s.db.Model(&models.Email{}).
		Select("sender, COUNT(*) as count").
		Where("sender <> ''").
		Group("sender").
		Order("count DESC").
		Limit(limit).
		Scan(&senders).Error
	if err != nil {
		return nil, err
	}
	return senders, nil
}

// SenderCount is one row of the sender breakdown
type SenderCount struct {
	Sender string `json:"sender"`
	Count  int64  `json:"count"`
}
