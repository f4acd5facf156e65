package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/database/models"
	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/functions"
	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/functions/local"
	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/gmail"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrSyncFailed indicates a sync run stopped before reaching the end of the mailbox
	ErrSyncFailed = errors.New("mailbox sync failed")
)

const (
	// attachmentFetchRetries is how many times an attachment download is attempted
	attachmentFetchRetries = 3
	// attachmentRetryDelay separates attachment download attempts
	attachmentRetryDelay = 1 * time.Second
	// pageDelay separates page fetches to stay under provider rate limits
	pageDelay = 100 * time.Millisecond
	// dedupBatchSize bounds the IN clause when filtering already-stored ids
	dedupBatchSize = 500

	// attachmentUnavailable is stored as the preview when all download attempts fail
	attachmentUnavailable = "Failed to fetch attachment content"
)

// Mailbox is the slice of the provider client the sync path needs.
// *gmail.Client satisfies it; tests substitute a scripted fake.
type Mailbox interface {
	ListMessageIDs(pageToken string, maxResults int) (ids []string, nextPageToken string, err error)
	GetMessage(id string) (*gmail.Message, error)
	GetAttachment(messageID, attachmentID string) ([]byte, error)
}

// SyncService pulls the remote mailbox into the local store. Runs are
// resumable: progress is checkpointed after every page, so a crashed or
// aborted run continues from the last stored page token.
type SyncService struct {
	db         *gorm.DB
	mailbox    Mailbox
	logService *LogService
	pageSize   int
	maxEmails  int // 0 means no budget
}

// NewSyncService creates a new SyncService instance
func NewSyncService(db *gorm.DB, mailbox Mailbox, pageSize, maxEmails int) *SyncService {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &SyncService{
		db:         db,
		mailbox:    mailbox,
		logService: NewLogService(db),
		pageSize:   pageSize,
		maxEmails:  maxEmails,
	}
}

// PageResult reports what one page of syncing did
type PageResult struct {
	Fetched       int    `json:"fetched"`
	Skipped       int    `json:"skipped"`
	Failed        int    `json:"failed"`
	NextPageToken string `json:"next_page_token"`
}

// SyncResult reports a whole sync run
type SyncResult struct {
	Pages   int  `json:"pages"`
	Fetched int  `json:"fetched"`
	Skipped int  `json:"skipped"`
	Failed  int  `json:"failed"`
	Partial bool `json:"partial"` // true when the run stopped on a page error
}

// SyncStatus is the externally visible sync bookkeeping
type SyncStatus struct {
	LastPageToken string `json:"last_page_token"`
	LastSyncTime  string `json:"last_sync_time"`
	TotalFetched  int64  `json:"total_emails_fetched"`
	StoredEmails  int64  `json:"stored_emails"`
}

// getSyncState reads one checkpoint value, empty string when unset
func (s *SyncService) getSyncState(key string) string {
	var state models.SyncState
	if err := s.db.First(&state, "key = ?", key).Error; err != nil {
		return ""
	}
	return state.Value
}

// setSyncState upserts one checkpoint value
func (s *SyncService) setSyncState(key, value string) error {
	state := models.SyncState{Key: key, Value: value}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"value": value}),
	}).Create(&state).Error
}

// FetchPage ingests one page of the mailbox starting at pageToken.
// Messages already in the store are skipped without a provider fetch;
// a failure on one message is recorded and does not stop the rest of
// the page. Only a failed list call aborts the page.
func (s *SyncService) FetchPage(pageToken string) (*PageResult, error) {
	if s.mailbox == nil {
		return nil, fmt.Errorf("%w: mailbox not configured", ErrSyncFailed)
	}

	ids, nextToken, err := s.mailbox.ListMessageIDs(pageToken, s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}

	result := &PageResult{NextPageToken: nextToken}
	if len(ids) == 0 {
		return result, nil
	}

	existing := s.existingGmailIDs(ids)

	for _, id := range ids {
		if existing[id] {
			result.Skipped++
			continue
		}

		msg, err := s.mailbox.GetMessage(id)
		if err != nil {
			result.Failed++
			s.logService.LogWarn(models.LogModuleEmail, "fetch_message", "Failed to fetch message", map[string]interface{}{
				"gmail_id": id,
				"error":    err.Error(),
			})
			continue
		}

		if err := s.storeMessage(msg); err != nil {
			result.Failed++
			s.logService.LogError(models.LogModuleEmail, "store_message", "Failed to store message", map[string]interface{}{
				"gmail_id": id,
				"error":    err.Error(),
			})
			continue
		}

		result.Fetched++
	}

	s.logService.LogSyncPage(pageToken, result.Fetched, result.Skipped, result.Failed)
	return result, nil
}

// existingGmailIDs returns the subset of ids already present in the
// store, queried in batches to keep the IN clause bounded.
func (s *SyncService) existingGmailIDs(ids []string) map[string]bool {
	existing := make(map[string]bool)
	for i := 0; i < len(ids); i += dedupBatchSize {
		end := i + dedupBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		var stored []models.Email
		s.db.Select("gmail_id").Where("gmail_id IN ?", ids[i:end]).Find(&stored)
		for _, e := range stored {
			existing[e.GmailID] = true
		}
	}
	return existing
}

// storeMessage converts one provider message and upserts it with its
// attachments in a single transaction.
func (s *SyncService) storeMessage(msg *gmail.Message) error {
	email := s.convertMessage(msg)
	attachments := s.fetchAttachments(msg)

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "gmail_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"thread_id":     email.ThreadID,
				"history_id":    email.HistoryID,
				"sender":        email.Sender,
				"to_recipients": email.ToRecipients,
				"subject":       email.Subject,
				"date":          email.Date,
				"snippet":       email.Snippet,
				"body":          email.Body,
				"labels":        email.Labels,
				"category":      email.Category,
				// Read state only moves towards read across syncs
				"is_read":    gorm.Expr("emails.is_read OR excluded.is_read"),
				"updated_at": time.Now(),
			}),
		}).Create(email).Error; err != nil {
			return err
		}

		// The upsert does not report the surviving row id on conflict
		var stored models.Email
		if err := tx.Select("id").First(&stored, "gmail_id = ?", email.GmailID).Error; err != nil {
			return err
		}

		for i := range attachments {
			attachments[i].EmailID = stored.ID
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "email_id"}, {Name: "filename"}, {Name: "size"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					// Keep previously fetched content when a retry came back empty
					"content":         gorm.Expr("COALESCE(excluded.content, attachments.content)"),
					"content_preview": gorm.Expr("CASE WHEN excluded.content IS NOT NULL THEN excluded.content_preview ELSE attachments.content_preview END"),
				}),
			}).Create(&attachments[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// convertMessage maps a provider message onto the local email model
func (s *SyncService) convertMessage(msg *gmail.Message) *models.Email {
	labels := msg.LabelIDs
	return &models.Email{
		GmailID:      msg.ID,
		ThreadID:     msg.ThreadID,
		HistoryID:    msg.HistoryID,
		Sender:       msg.Header("From"),
		ToRecipients: msg.Header("To"),
		Subject:      msg.Header("Subject"),
		Date:         msg.Header("Date"),
		Snippet:      msg.Snippet,
		Body:         extractBody(&msg.Payload),
		Labels:       models.JoinLabels(labels),
		Category:     local.Classify(labels),
		IsRead:       local.IsRead(labels),
	}
}

// extractBody walks the MIME tree and assembles the display body.
// text/plain parts win; when a message has none, text/html parts are
// stripped to text. Multiple parts are joined with a blank line.
func extractBody(payload *gmail.Part) string {
	var plain, html []string
	collectBodyParts(payload, &plain, &html)

	if len(plain) > 0 {
		return strings.TrimSpace(strings.Join(plain, "\n\n"))
	}
	if len(html) > 0 {
		stripped := make([]string, 0, len(html))
		for _, h := range html {
			if text := functions.HTMLToText(h); text != "" {
				stripped = append(stripped, text)
			}
		}
		return strings.TrimSpace(strings.Join(stripped, "\n\n"))
	}
	return ""
}

func collectBodyParts(part *gmail.Part, plain, html *[]string) {
	// A part with a filename is an attachment, not body text
	if part.Filename == "" && part.Body.Data != "" {
		data, err := gmail.DecodeBase64URL(part.Body.Data)
		if err == nil && len(data) > 0 {
			switch {
			case strings.HasPrefix(part.MimeType, "text/plain"):
				*plain = append(*plain, strings.TrimSpace(string(data)))
			case strings.HasPrefix(part.MimeType, "text/html"):
				*html = append(*html, string(data))
			}
		}
	}
	for i := range part.Parts {
		collectBodyParts(&part.Parts[i], plain, html)
	}
}

// fetchAttachments downloads every attachment of a message. A download
// that keeps failing produces a placeholder row instead of dropping the
// attachment, so the mail record still shows what was attached.
func (s *SyncService) fetchAttachments(msg *gmail.Message) []models.Attachment {
	var attachments []models.Attachment
	collectAttachmentParts(&msg.Payload, func(part *gmail.Part) {
		att := models.Attachment{
			Filename: part.Filename,
			Size:     part.Body.Size,
		}

		content, err := s.downloadAttachment(msg.ID, part)
		if err != nil {
			att.ContentPreview = attachmentUnavailable
			s.logService.LogWarn(models.LogModuleEmail, "fetch_attachment", "Attachment download failed", map[string]interface{}{
				"gmail_id": msg.ID,
				"filename": part.Filename,
				"error":    err.Error(),
			})
		} else {
			att.Content = content
			att.ContentPreview = local.BuildPreview(part.Filename, content)
		}

		attachments = append(attachments, att)
	})
	return attachments
}

func collectAttachmentParts(part *gmail.Part, visit func(*gmail.Part)) {
	if part.Filename != "" {
		visit(part)
	}
	for i := range part.Parts {
		collectAttachmentParts(&part.Parts[i], visit)
	}
}

// downloadAttachment fetches attachment content, retrying transient
// provider failures. Small attachments arrive inline and need no call.
func (s *SyncService) downloadAttachment(messageID string, part *gmail.Part) ([]byte, error) {
	if part.Body.Data != "" {
		return gmail.DecodeBase64URL(part.Body.Data)
	}
	if part.Body.AttachmentID == "" {
		return nil, nil
	}

	var lastErr error
	for attempt := 0; attempt < attachmentFetchRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(attachmentRetryDelay)
		}
		content, err := s.mailbox.GetAttachment(messageID, part.Body.AttachmentID)
		if err == nil {
			return content, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// SyncAll walks the mailbox page by page from the stored checkpoint.
// The checkpoint advances after every page, so an aborted run resumes
// where it stopped instead of refetching from the start. The run ends
// when a page yields no new messages, the token runs out or the email
// budget is reached. A page-level error ends the run but keeps
// everything stored so far.
func (s *SyncService) SyncAll() (*SyncResult, error) {
	result := &SyncResult{}
	pageToken := s.getSyncState(models.SyncKeyPageToken)

	for {
		page, err := s.FetchPage(pageToken)
		if err != nil {
			result.Partial = true
			s.logService.LogSyncCompleted(result.Fetched, err)
			return result, err
		}

		result.Pages++
		result.Fetched += page.Fetched
		result.Skipped += page.Skipped
		result.Failed += page.Failed

		if err := s.advanceCheckpoint(page); err != nil {
			result.Partial = true
			s.logService.LogSyncCompleted(result.Fetched, err)
			return result, err
		}

		// A page that added nothing means the walk caught up with the
		// store; stop instead of re-listing the rest of the mailbox.
		if page.Fetched == 0 {
			break
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
		if s.maxEmails > 0 && result.Fetched >= s.maxEmails {
			break
		}

		time.Sleep(pageDelay)
	}

	s.logService.LogSyncCompleted(result.Fetched, nil)
	return result, nil
}

// advanceCheckpoint records a finished page in the sync state
func (s *SyncService) advanceCheckpoint(page *PageResult) error {
	if err := s.setSyncState(models.SyncKeyPageToken, page.NextPageToken); err != nil {
		return err
	}
	if err := s.setSyncState(models.SyncKeyLastSyncTime, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	total, _ := strconv.ParseInt(s.getSyncState(models.SyncKeyTotalFetched), 10, 64)
	total += int64(page.Fetched)
	return s.setSyncState(models.SyncKeyTotalFetched, strconv.FormatInt(total, 10))
}

// Status returns the current sync bookkeeping
func (s *SyncService) Status() (*SyncStatus, error) {
	var stored int64
	if err := s.db.Model(&models.Email{}).Count(&stored).Error; err != nil {
		return nil, err
	}

	total, _ := strconv.ParseInt(s.getSyncState(models.SyncKeyTotalFetched), 10, 64)
	return &SyncStatus{
		LastPageToken: s.getSyncState(models.SyncKeyPageToken),
		LastSyncTime:  s.getSyncState(models.SyncKeyLastSyncTime),
		TotalFetched:  total,
		StoredEmails:  stored,
	}, nil
}
