package functions

import (
	"errors"
	"strings"
	"time"

	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	analysisContentCap = 2000
	batchDelay         = 500 * time.Millisecond

	maxSummaryChars        = 500
	maxPriorityReasonChars = 200
	maxDraftReplyChars     = 1000
	maxSuggestedActions    = 5
	maxKeyTopics           = 10
)

const analysisSystemPrompt = `You are an expert email analysis AI assistant. Your task is to analyze emails and provide:

1. **Summary**: A concise 2-3 sentence summary of the email's main points
2. **Priority Score**: Rate 1-5 (5 = highest priority, needs immediate attention)
3. **Priority Reason**: Brief explanation for the priority score
4. **Sentiment**: One of: positive, negative, neutral, urgent
5. **Action Required**: Boolean - does this email require action from the recipient?
6. **Suggested Actions**: List of specific actions the recipient should take
7. **Key Topics**: List of main topics/themes discussed
8. **Draft Reply**: A professional draft response (or "No reply needed" if appropriate)

Consider these factors for priority scoring:
- Time-sensitive requests (meetings, deadlines) = Higher priority
- Questions requiring answers = Medium-high priority
- FYI/newsletters = Lower priority
- Urgent language/tone = Higher priority
- Important stakeholders = Higher priority

Respond in valid JSON format only.`

const analysisUserPromptSuffix = `

Provide analysis in this exact JSON format:
{
    "summary": "Brief summary here",
    "priority_score": 1-5,
    "priority_reason": "Explanation for priority",
    "sentiment": "positive/negative/neutral/urgent",
    "action_required": true/false,
    "suggested_actions": ["action1", "action2"],
    "key_topics": ["topic1", "topic2"],
    "draft_reply": "Draft response or 'No reply needed'"
}`

// Analyzer produces one cached analysis per email. The first request
// calls the model; every later request returns the stored row.
type Analyzer struct {
	db    *gorm.DB
	model ModelClient
	log   ProcessLogger
}

// NewAnalyzer creates a new Analyzer instance
func NewAnalyzer(db *gorm.DB, model ModelClient, log ProcessLogger) *Analyzer {
	return &Analyzer{db: db, model: model, log: log}
}

// AnalyzeEmail analyzes one email. The boolean reports a cache hit.
// A model failure does not fail the operation: a fallback payload is
// stored instead so the email is never analyzed twice.
func (a *Analyzer) AnalyzeEmail(emailID uint) (*models.EmailAnalysis, bool, error) {
	var email models.Email
	if err := a.db.First(&email, emailID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrEmailNotFound
		}
		return nil, false, err
	}

	analysis, cached, err := produceCached(
		func() (*models.EmailAnalysis, error) {
			var existing models.EmailAnalysis
			err := a.db.First(&existing, "email_id = ?", emailID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			if err != nil {
				return nil, err
			}
			return &existing, nil
		},
		func() (*models.EmailAnalysis, error) {
			return a.buildAnalysis(&email)
		},
	)
	if err != nil {
		return nil, false, err
	}

	if cached {
		logOutcome(a.log, ProcessingRecord{
			EmailID: email.ID,
			GmailID: email.GmailID,
			Kind:    "analysis",
			Cached:  true,
		}, nil)
	}
	return analysis, cached, nil
}

// buildAnalysis runs the model, validates the result and stores it
func (a *Analyzer) buildAnalysis(email *models.Email) (*models.EmailAnalysis, error) {
	started := time.Now()

	content := prepareEmailContent(email, analysisContentCap)
	userPrompt := "Analyze this email:\n\n" + content + analysisUserPromptSuffix

	var raw map[string]interface{}
	response, modelErr := a.model.Invoke(analysisSystemPrompt, userPrompt)
	if modelErr == nil {
		raw, modelErr = parseJSONObject(response)
	}

	var analysis *models.EmailAnalysis
	if modelErr != nil {
		analysis = fallbackAnalysis()
	} else {
		analysis = validateAnalysis(raw)
	}

	analysis.EmailID = email.ID
	analysis.GmailID = email.GmailID
	analysis.AnalyzedAt = time.Now()
	analysis.ProcessingMs = time.Since(started).Milliseconds()

	if err := a.storeAnalysis(analysis); err != nil {
		return nil, err
	}

	logOutcome(a.log, ProcessingRecord{
		EmailID:    email.ID,
		GmailID:    email.GmailID,
		Kind:       "analysis",
		Fallback:   modelErr != nil,
		DurationMs: analysis.ProcessingMs,
	}, modelErr)
	return analysis, nil
}

// validateAnalysis clamps a decoded model response onto the schema
func validateAnalysis(raw map[string]interface{}) *models.EmailAnalysis {
	// Models sometimes capitalize the sentiment; normalize before validating
	sentiment := models.Sentiment(strings.ToLower(getString(raw, "sentiment", string(models.SentimentNeutral))))
	if !sentiment.IsValid() {
		sentiment = models.SentimentNeutral
	}

	priority := getInt(raw, "priority_score", 3)
	if priority < 1 {
		priority = 1
	}
	if priority > 5 {
		priority = 5
	}

	return &models.EmailAnalysis{
		Summary:          truncateRunes(getString(raw, "summary", "Analysis not available"), maxSummaryChars),
		PriorityScore:    priority,
		PriorityReason:   truncateRunes(getString(raw, "priority_reason", "Standard priority"), maxPriorityReasonChars),
		Sentiment:        string(sentiment),
		ActionRequired:   getBool(raw, "action_required", false),
		SuggestedActions: toJSONArray(clampList(getStringList(raw, "suggested_actions"), maxSuggestedActions, maxPriorityReasonChars)),
		KeyTopics:        toJSONArray(clampList(getStringList(raw, "key_topics"), maxKeyTopics, maxPriorityReasonChars)),
		DraftReply:       truncateRunes(getString(raw, "draft_reply", "No reply needed"), maxDraftReplyChars),
	}
}

// fallbackAnalysis is stored when the model fails or returns garbage
func fallbackAnalysis() *models.EmailAnalysis {
	return &models.EmailAnalysis{
		Summary:          "AI analysis temporarily unavailable",
		PriorityScore:    3,
		PriorityReason:   "Default priority - analysis failed",
		Sentiment:        string(models.SentimentNeutral),
		ActionRequired:   true,
		SuggestedActions: toJSONArray([]string{"Review email manually"}),
		KeyTopics:        toJSONArray([]string{"Unknown"}),
		DraftReply:       "AI draft unavailable - please compose manually",
	}
}

// storeAnalysis writes the analysis and flips the email's analyzed flag
// in one transaction. A concurrent duplicate loses the insert race and
// keeps the first stored row.
func (a *Analyzer) storeAnalysis(analysis *models.EmailAnalysis) error {
	return a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email_id"}},
			DoNothing: true,
		}).Create(analysis).Error; err != nil {
			return err
		}
		return tx.Model(&models.Email{}).Where("id = ?", analysis.EmailID).
			Update("ai_analyzed", true).Error
	})
}

// BatchAnalyze analyzes up to limit unanalyzed emails, newest first.
// One failed email does not stop the batch.
func (a *Analyzer) BatchAnalyze(limit int) ([]models.EmailAnalysis, error) {
	if limit <= 0 {
		limit = 10
	}

	var pending []models.Email
	if err := a.db.Where("ai_analyzed = ?", false).
		Order("date DESC").Limit(limit).Find(&pending).Error; err != nil {
		return nil, err
	}

	var results []models.EmailAnalysis
	for i, email := range pending {
		if i > 0 {
			time.Sleep(batchDelay)
		}
		analysis, _, err := a.AnalyzeEmail(email.ID)
		if err != nil {
			continue
		}
		results = append(results, *analysis)
	}
	return results, nil
}
