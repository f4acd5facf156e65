package functions

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/database/models"
	"gorm.io/gorm"
)

var (
	// ErrReplyFailed indicates the provider rejected the draft or send call
	ErrReplyFailed = errors.New("reply delivery failed")
)

const replyContentCap = 1500

// Reply style names accepted by GenerateReply
const (
	ReplyStyleStandard    = "standard"
	ReplyStyleAcknowledge = "acknowledge"
	ReplyStyleDecline     = "decline"
	ReplyStyleRequestInfo = "request_info"
	ReplyStyleFollowUp    = "follow_up"
)

// replyPrompts holds the per-style system prompts. Unknown styles fall
// back to standard.
var replyPrompts = map[string]string{
	ReplyStyleStandard: `You are a professional email assistant. Generate a thoughtful, appropriate reply to the given email.

Guidelines:
- Be professional but warm
- Address the main points from the original email
- Keep it concise but complete
- Use proper email etiquette
- Match the tone of the original sender
- Include next steps if applicable
- Don't repeat information unnecessarily

Generate only the email body, not subject line or signatures.`,

	ReplyStyleAcknowledge: `Generate a brief acknowledgment reply that confirms receipt and understanding.

Guidelines:
- Acknowledge receipt of the email
- Confirm understanding of key points
- Provide timeline if action is needed
- Keep it short and professional
- Express appreciation if appropriate`,

	ReplyStyleDecline: `Generate a polite decline/rejection email.

Guidelines:
- Be respectful and diplomatic
- Provide a brief reason if appropriate
- Thank them for the opportunity/request
- Suggest alternatives if possible
- Keep the door open for future opportunities
- Be firm but kind`,

	ReplyStyleRequestInfo: `Generate a professional request for additional information.

Guidelines:
- Clearly state what information is needed
- Explain why the information is important
- Provide context about the request
- Set a reasonable timeline
- Make it easy for them to respond
- Be specific about what you need`,

	ReplyStyleFollowUp: `Generate a follow-up email for previous communication.

Guidelines:
- Reference previous communication
- Restate key points if needed
- Be persistent but not pushy
- Provide value or new information
- Include clear call to action
- Show understanding of their time constraints`,
}

// Sender is the slice of the provider client the reply path needs
type Sender interface {
	CreateDraft(raw []byte) (string, error)
	SendMessage(raw []byte) (string, error)
}

// Replier generates reply drafts and delivers them. Unlike analyses
// and summaries the reply log is append-only: every generated, drafted
// or sent reply adds a record.
type Replier struct {
	db     *gorm.DB
	model  ModelClient
	sender Sender
	log    ProcessLogger
}

// NewReplier creates a new Replier instance
func NewReplier(db *gorm.DB, model ModelClient, sender Sender, log ProcessLogger) *Replier {
	return &Replier{db: db, model: model, sender: sender, log: log}
}

// GenerateReply produces a reply body for an email in the given style.
// The stored analysis, when present, feeds the prompt as context. A
// model failure is logged and yields a polite fallback template
// instead of an error.
func (r *Replier) GenerateReply(emailID uint, replyStyle string) (string, error) {
	var email models.Email
	if err := r.db.Preload("Analysis").First(&email, emailID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrEmailNotFound
		}
		return "", err
	}

	systemPrompt, ok := replyPrompts[replyStyle]
	if !ok {
		replyStyle = ReplyStyleStandard
		systemPrompt = replyPrompts[ReplyStyleStandard]
	}

	userPrompt := buildReplyPrompt(&email, replyStyle)
	response, err := r.model.Invoke(systemPrompt, userPrompt)
	if err != nil {
		logOutcome(r.log, ProcessingRecord{
			EmailID:  email.ID,
			GmailID:  email.GmailID,
			Kind:     "reply",
			Variant:  replyStyle,
			Fallback: true,
		}, err)
		return fallbackReply(&email), nil
	}
	return strings.TrimSpace(StripCodeFences(response)), nil
}

// buildReplyPrompt assembles the context block for reply generation
func buildReplyPrompt(email *models.Email, replyStyle string) string {
	body := email.Body
	if looksLikeHTML(body) {
		body = HTMLToText(body)
	}
	if body == "" {
		body = NormalizeWhitespace(email.Snippet)
	}

	name, addr := splitSender(email.Sender)

	var sb strings.Builder
	fmt.Fprintf(&sb, `Original Email Details:
- From: %s
- Subject: %s
- Date: %s

Recipient Information:
- Name: %s
- Email: %s

Email Content:
%s

`, email.Sender, email.Subject, email.Date, name, addr, TruncateForPrompt(body, replyContentCap))

	if email.Analysis != nil {
		fmt.Fprintf(&sb, `AI Analysis Context:
- Priority: %d/5
- Sentiment: %s
- Action Required: %t
- Summary: %s

`, email.Analysis.PriorityScore, email.Analysis.Sentiment, email.Analysis.ActionRequired, email.Analysis.Summary)
	}

	fmt.Fprintf(&sb, "Reply Type: %s\n\nGenerate an appropriate reply email body based on the above context.", replyStyle)
	return sb.String()
}

// fallbackReply is returned when the model is unavailable
func fallbackReply(email *models.Email) string {
	name, _ := splitSender(email.Sender)
	if name == "" {
		name = "Sender"
	}
	return fmt.Sprintf(`Dear %s,

Thank you for your email. I have received your message and will review it carefully.

I will get back to you with a proper response shortly.

Best regards`, name)
}

// CreateDraft stores a reply as a provider draft and records it.
// The record is kept even when the provider call fails, with the
// failure marked in its status.
func (r *Replier) CreateDraft(emailID uint, content, replyType string) (*models.EmailReply, error) {
	return r.deliver(emailID, content, replyType, false)
}

// SendReply sends a reply through the provider and records it. A
// successful send marks the original email read.
func (r *Replier) SendReply(emailID uint, content, replyType string) (*models.EmailReply, error) {
	return r.deliver(emailID, content, replyType, true)
}

func (r *Replier) deliver(emailID uint, content, replyType string, send bool) (*models.EmailReply, error) {
	var email models.Email
	if err := r.db.First(&email, emailID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmailNotFound
		}
		return nil, err
	}

	if replyType == "" {
		replyType = models.ReplyTypeAIGenerated
	}
	if r.sender == nil {
		return nil, fmt.Errorf("%w: mailbox not configured", ErrReplyFailed)
	}

	subject := replySubject(email.Subject)
	raw := buildRawReply(&email, subject, content)

	record := &models.EmailReply{
		EmailID:   email.ID,
		Subject:   subject,
		Body:      content,
		ReplyType: replyType,
	}

	var gmailID string
	var deliverErr error
	if send {
		gmailID, deliverErr = r.sender.SendMessage(raw)
	} else {
		gmailID, deliverErr = r.sender.CreateDraft(raw)
	}

	if deliverErr != nil {
		record.SentStatus = models.ReplyStatusFailed
	} else {
		record.ReplyGmailID = gmailID
		if send {
			now := time.Now()
			record.SentStatus = models.ReplyStatusSent
			record.SentAt = &now
		} else {
			record.SentStatus = models.ReplyStatusDraft
		}
	}

	if err := r.db.Create(record).Error; err != nil {
		return nil, err
	}

	if deliverErr != nil {
		return record, fmt.Errorf("%w: %v", ErrReplyFailed, deliverErr)
	}

	if send {
		r.db.Model(&models.Email{}).Where("id = ?", email.ID).Update("is_read", true)
	}
	return record, nil
}

// GetReplies returns the reply log of an email, newest first
func (r *Replier) GetReplies(emailID uint) ([]models.EmailReply, error) {
	var replies []models.EmailReply
	if err := r.db.Where("email_id = ?", emailID).
		Order("created_at DESC").Find(&replies).Error; err != nil {
		return nil, err
	}
	return replies, nil
}

// replySubject prefixes Re: unless the subject already carries one
func replySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	return "Re: " + subject
}

// buildRawReply assembles the RFC 2822 reply message. In-Reply-To and
// References keep the reply threaded with the original.
func buildRawReply(email *models.Email, subject, content string) []byte {
	_, to := splitSender(email.Sender)

	var sb strings.Builder
	fmt.Fprintf(&sb, "To: %s\r\n", to)
	fmt.Fprintf(&sb, "Subject: %s\r\n", subject)
	if email.GmailID != "" {
		fmt.Fprintf(&sb, "In-Reply-To: <%s>\r\n", email.GmailID)
		fmt.Fprintf(&sb, "References: <%s>\r\n", email.GmailID)
	}
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(content)
	return []byte(sb.String())
}

// splitSender separates a "Name <addr>" sender into its parts. A bare
// address comes back with an empty name.
func splitSender(sender string) (name, addr string) {
	parsed, err := mail.ParseAddress(sender)
	if err != nil {
		return "", strings.TrimSpace(sender)
	}
	return parsed.Name, parsed.Address
}
