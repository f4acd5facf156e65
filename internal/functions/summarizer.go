package functions

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrInvalidSummaryType indicates an unsupported summary style was requested
	ErrInvalidSummaryType = errors.New("invalid summary type")
)

const (
	summaryContentCap = 3000

	maxBriefChars    = 500
	maxDetailedChars = 1500
	maxListItems     = 10
	maxPeople        = 20
	maxItemChars     = 200
)

const summarySystemPrompt = `You are an expert email summarization AI assistant. Your role is to create clear, concise, and actionable summaries of email content.

Guidelines:
- Focus on actionable information
- Preserve important context and nuance
- Use clear, professional language
- Extract specific dates, names, and numbers accurately
- Identify urgent or time-sensitive items
- Maintain the sender's intent and tone`

// summaryPrompts holds the per-style user prompt templates. Each takes
// sender, subject, date and content.
var summaryPrompts = map[models.SummaryType]string{
	models.SummaryBrief: `Create a BRIEF summary (max 2-3 sentences) of this email:

From: %s
Subject: %s
Date: %s

Email Content:
%s

Provide a concise summary that captures the main purpose and any urgent actions needed.`,

	models.SummaryDetailed: `Create a DETAILED summary of this email with structured analysis:

From: %s
Subject: %s
Date: %s

Email Content:
%s

Please provide a comprehensive summary in JSON format:
{
    "brief_summary": "2-3 sentence overview",
    "detailed_summary": "Comprehensive paragraph summary",
    "key_points": ["point 1", "point 2", "point 3"],
    "action_items": ["action 1", "action 2"],
    "important_dates": ["date 1", "date 2"],
    "mentioned_people": ["person 1", "person 2"]
}`,

	models.SummaryBulletPoints: `Summarize this email in clear bullet points:

From: %s
Subject: %s
Date: %s

Email Content:
%s

Format as:
Brief Summary: [1-2 sentences]

Key Points:
- Point 1
- Point 2

Action Items:
- Action 1 (if any)

Important Dates:
- Date 1 (if any)`,

	models.SummaryExecutive: `Create an EXECUTIVE summary for leadership review:

From: %s
Subject: %s
Date: %s

Email Content:
%s

Focus on:
1. Business impact and implications
2. Decisions or approvals needed
3. Strategic relevance
4. Risk factors or opportunities
5. Recommended next steps

Keep it executive-level: high-impact information only.`,
}

// Summarizer produces cached per-style summaries. An email holds at
// most one summary per style; repeated requests for the same style
// return the stored row.
type Summarizer struct {
	db    *gorm.DB
	model ModelClient
	log   ProcessLogger
}

// NewSummarizer creates a new Summarizer instance
func NewSummarizer(db *gorm.DB, model ModelClient, log ProcessLogger) *Summarizer {
	return &Summarizer{db: db, model: model, log: log}
}

// SummarizeEmail summarizes one email in the given style. An empty
// style means detailed. The boolean reports a cache hit.
func (s *Summarizer) SummarizeEmail(emailID uint, summaryType models.SummaryType) (*models.EmailSummary, bool, error) {
	if summaryType == "" {
		summaryType = models.SummaryDetailed
	}
	if !summaryType.IsValid() {
		return nil, false, fmt.Errorf("%w: %s", ErrInvalidSummaryType, summaryType)
	}

	var email models.Email
	if err := s.db.First(&email, emailID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrEmailNotFound
		}
		return nil, false, err
	}

	summary, cached, err := produceCached(
		func() (*models.EmailSummary, error) {
			var existing models.EmailSummary
			err := s.db.First(&existing, "email_id = ? AND summary_type = ?", emailID, string(summaryType)).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			if err != nil {
				return nil, err
			}
			return &existing, nil
		},
		func() (*models.EmailSummary, error) {
			return s.buildSummary(&email, summaryType)
		},
	)
	if err != nil {
		return nil, false, err
	}

	if cached {
		logOutcome(s.log, ProcessingRecord{
			EmailID: email.ID,
			GmailID: email.GmailID,
			Kind:    "summary",
			Variant: string(summaryType),
			Cached:  true,
		}, nil)
	}
	return summary, cached, nil
}

// buildSummary runs the model, parses the output and stores the row
func (s *Summarizer) buildSummary(email *models.Email, summaryType models.SummaryType) (*models.EmailSummary, error) {
	started := time.Now()

	content := prepareSummaryContent(email)
	userPrompt := fmt.Sprintf(summaryPrompts[summaryType], email.Sender, email.Subject, email.Date, content)

	var parsed map[string]interface{}
	response, modelErr := s.model.Invoke(summarySystemPrompt, userPrompt)
	if modelErr == nil {
		parsed = parseSummaryResponse(response)
	}

	var summary *models.EmailSummary
	if modelErr != nil {
		summary = fallbackSummary(email, content)
	} else {
		summary = validateSummary(parsed)
	}

	summary.EmailID = email.ID
	summary.GmailID = email.GmailID
	summary.SummaryType = string(summaryType)
	summary.WordCountOriginal = countWords(content)
	summary.WordCountSummary = summaryWordCount(summary)
	summary.CompressionRatio = compressionRatio(summary.WordCountSummary, summary.WordCountOriginal)
	summary.SummarizedAt = time.Now()
	summary.ProcessingMs = time.Since(started).Milliseconds()

	if err := s.storeSummary(summary); err != nil {
		return nil, err
	}

	logOutcome(s.log, ProcessingRecord{
		EmailID:    email.ID,
		GmailID:    email.GmailID,
		Kind:       "summary",
		Variant:    string(summaryType),
		Fallback:   modelErr != nil,
		DurationMs: summary.ProcessingMs,
	}, modelErr)
	return summary, nil
}

// prepareSummaryContent builds the capped plain-text content block
func prepareSummaryContent(email *models.Email) string {
	body := email.Body
	if looksLikeHTML(body) {
		body = HTMLToText(body)
	}
	if body == "" {
		body = NormalizeWhitespace(email.Snippet)
	}
	return TruncateForPrompt(body, summaryContentCap)
}

// parseSummaryResponse handles both response shapes: structured JSON
// from the detailed style, free text from the others. Free text is
// scanned for labeled sections and bullet lists.
func parseSummaryResponse(response string) map[string]interface{} {
	cleaned := StripCodeFences(response)

	if strings.HasPrefix(strings.TrimSpace(cleaned), "{") {
		if parsed, err := parseJSONObject(cleaned); err == nil {
			return parsed
		}
	}

	result := map[string]interface{}{
		"brief_summary":    "",
		"detailed_summary": "",
	}
	lists := map[string][]interface{}{
		"key_points":       nil,
		"action_items":     nil,
		"important_dates":  nil,
		"mentioned_people": nil,
	}

	section := ""
	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		switch {
		case strings.Contains(lower, "brief summary:"):
			section = "brief_summary"
			result[section] = valueAfterColon(line)
		case strings.Contains(lower, "detailed summary:"):
			section = "detailed_summary"
			result[section] = valueAfterColon(line)
		case strings.Contains(lower, "key points:"):
			section = "key_points"
		case strings.Contains(lower, "action items:"):
			section = "action_items"
		case strings.Contains(lower, "important dates:"):
			section = "important_dates"
		case strings.Contains(lower, "mentioned people:"):
			section = "mentioned_people"
		case strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") || strings.HasPrefix(line, "*"):
			if _, ok := lists[section]; ok {
				lists[section] = append(lists[section], strings.TrimSpace(line[1:]))
			}
		default:
			if current, ok := result[section].(string); ok {
				result[section] = strings.TrimSpace(current + " " + line)
			}
		}
	}

	// An unlabeled response becomes the brief summary as-is
	if result["brief_summary"] == "" && result["detailed_summary"] == "" {
		result["brief_summary"] = truncateRunes(cleaned, maxItemChars)
		result["detailed_summary"] = cleaned
	}

	for key, items := range lists {
		result[key] = items
	}
	return result
}

func valueAfterColon(line string) string {
	if idx := strings.Index(line, ":"); idx >= 0 {
		return strings.TrimSpace(line[idx+1:])
	}
	return ""
}

// validateSummary clamps a parsed response onto the schema
func validateSummary(raw map[string]interface{}) *models.EmailSummary {
	return &models.EmailSummary{
		BriefSummary:    truncateRunes(getString(raw, "brief_summary", "Summary not available"), maxBriefChars),
		DetailedSummary: truncateRunes(getString(raw, "detailed_summary", "Detailed summary not available"), maxDetailedChars),
		KeyPoints:       toJSONArray(clampList(getStringList(raw, "key_points"), maxListItems, maxItemChars)),
		ActionItems:     toJSONArray(clampList(getStringList(raw, "action_items"), maxListItems, maxItemChars)),
		ImportantDates:  toJSONArray(clampList(getStringList(raw, "important_dates"), maxListItems, maxItemChars)),
		MentionedPeople: toJSONArray(clampList(getStringList(raw, "mentioned_people"), maxPeople, maxItemChars)),
	}
}

// fallbackSummary is stored when the model fails
func fallbackSummary(email *models.Email, content string) *models.EmailSummary {
	detailed := content
	if len([]rune(detailed)) > 300 {
		detailed = truncateRunes(detailed, 300) + "..."
	}
	return &models.EmailSummary{
		BriefSummary:    truncateRunes(fmt.Sprintf("Email from %s about %s", email.Sender, email.Subject), maxBriefChars),
		DetailedSummary: detailed,
		KeyPoints:       toJSONArray([]string{"AI summarization temporarily unavailable"}),
		ActionItems:     toJSONArray([]string{"Review email manually"}),
		ImportantDates:  toJSONArray(nil),
		MentionedPeople: toJSONArray(nil),
	}
}

func summaryWordCount(summary *models.EmailSummary) int {
	return countWords(summary.BriefSummary) + countWords(summary.DetailedSummary) +
		wordsInJSONArray(summary.KeyPoints) + wordsInJSONArray(summary.ActionItems)
}

func wordsInJSONArray(jsonList string) int {
	var items []string
	if err := json.Unmarshal([]byte(jsonList), &items); err != nil {
		return 0
	}
	total := 0
	for _, item := range items {
		total += countWords(item)
	}
	return total
}

func compressionRatio(summaryWords, originalWords int) float64 {
	if originalWords <= 0 {
		return 0
	}
	return math.Round(float64(summaryWords)/float64(originalWords)*100*100) / 100
}

// storeSummary writes the summary and flips the email's summarized
// flag. A concurrent duplicate for the same style keeps the first row.
func (s *Summarizer) storeSummary(summary *models.EmailSummary) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email_id"}, {Name: "summary_type"}},
			DoNothing: true,
		}).Create(summary).Error; err != nil {
			return err
		}
		return tx.Model(&models.Email{}).Where("id = ?", summary.EmailID).
			Update("ai_summarized", true).Error
	})
}

// GetSummaries returns every stored summary of an email
func (s *Summarizer) GetSummaries(emailID uint) ([]models.EmailSummary, error) {
	var summaries []models.EmailSummary
	if err := s.db.Where("email_id = ?", emailID).
		Order("summarized_at DESC").Find(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}

// BatchSummarize summarizes up to limit unsummarized emails in one
// style, newest first. One failed email does not stop the batch.
func (s *Summarizer) BatchSummarize(limit int, summaryType models.SummaryType) ([]models.EmailSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	if summaryType == "" {
		summaryType = models.SummaryDetailed
	}
	if !summaryType.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSummaryType, summaryType)
	}

	var pending []models.Email
	if err := s.db.Where("ai_summarized = ?", false).
		Order("date DESC").Limit(limit).Find(&pending).Error; err != nil {
		return nil, err
	}

	var results []models.EmailSummary
	for i, email := range pending {
		if i > 0 {
			time.Sleep(batchDelay)
		}
		summary, _, err := s.SummarizeEmail(email.ID, summaryType)
		if err != nil {
			continue
		}
		results = append(results, *summary)
	}
	return results, nil
}
