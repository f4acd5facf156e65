package functions

import (
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/database/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupEnrichTestDB(t *testing.T) (*gorm.DB, func()) {
	tmpFile, err := os.CreateTemp("", "enrich_test_*.db")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tmpFile.Close()

	db, err := gorm.Open(sqlite.Open(tmpFile.Name()+"?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("Failed to open database: %v", err)
	}

	err = db.AutoMigrate(&models.Email{}, &models.Attachment{}, &models.EmailAnalysis{},
		&models.EmailSummary{}, &models.EmailReply{})
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("Failed to migrate: %v", err)
	}

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		os.Remove(tmpFile.Name())
	}

	return db, cleanup
}

// stubModel is a scripted ModelClient that counts invocations
type stubModel struct {
	response string
	err      error
	calls    int
}

func (s *stubModel) Invoke(systemPrompt, userPrompt string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func seedEmail(t *testing.T, db *gorm.DB, gmailID string) *models.Email {
	email := &models.Email{
		GmailID:  gmailID,
		Sender:   "Alice <alice@example.com>",
		Subject:  "Quarterly report",
		Date:     "Mon, 2 Jun 2025 10:00:00 +0000",
		Snippet:  "Please review the attached report",
		Body:     "Please review the attached quarterly report before Friday.",
		Category: models.CategoryInbox,
	}
	if err := db.Create(email).Error; err != nil {
		t.Fatalf("Failed to seed email: %v", err)
	}
	return email
}

// recordingLog captures enrichment outcomes handed to the log
type recordingLog struct {
	records []ProcessingRecord
	errs    []error
}

func (r *recordingLog) LogProcessing(record ProcessingRecord, err error) error {
	r.records = append(r.records, record)
	r.errs = append(r.errs, err)
	return nil
}

func analysisJSON(t *testing.T, fields map[string]interface{}) string {
	data, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func TestAnalyzeEmailClampsModelOutput(t *testing.T) {
	db, cleanup := setupEnrichTestDB(t)
	defer cleanup()

	longActions := make([]string, 20)
	for i := range longActions {
		longActions[i] = "do something"
	}

	model := &stubModel{response: analysisJSON(t, map[string]interface{}{
		"summary":           "A report needs review.",
		"priority_score":    9,
		"priority_reason":   "deadline",
		"sentiment":         "furious",
		"action_required":   true,
		"suggested_actions": longActions,
		"key_topics":        []string{"reports", "deadlines"},
		"draft_reply":       "Will do.",
	})}

	email := seedEmail(t, db, "g-clamp")
	analyzer := NewAnalyzer(db, model, nil)

	analysis, cached, err := analyzer.AnalyzeEmail(email.ID)
	if err != nil {
		t.Fatalf("AnalyzeEmail: %v", err)
	}
	if cached {
		t.Error("first analysis reported as cached")
	}
	if analysis.PriorityScore != 5 {
		t.Errorf("priority = %d, want clamped to 5", analysis.PriorityScore)
	}
	if analysis.Sentiment != string(models.SentimentNeutral) {
		t.Errorf("sentiment = %q, want neutral for invalid value", analysis.Sentiment)
	}

	var actions []string
	if err := json.Unmarshal([]byte(analysis.SuggestedActions), &actions); err != nil {
		t.Fatalf("suggested_actions not valid JSON: %v", err)
	}
	if len(actions) != 5 {
		t.Errorf("suggested actions = %d, want capped at 5", len(actions))
	}
}

func TestAnalyzeEmailLowPriorityClampsUp(t *testing.T) {
	db, cleanup := setupEnrichTestDB(t)
	defer cleanup()

	model := &stubModel{response: analysisJSON(t, map[string]interface{}{
		"summary":        "x",
		"priority_score": -3,
	})}

	email := seedEmail(t, db, "g-low")
	analyzer := NewAnalyzer(db, model, nil)

	analysis, _, err := analyzer.AnalyzeEmail(email.ID)
	if err != nil {
		t.Fatalf("AnalyzeEmail: %v", err)
	}
	if analysis.PriorityScore != 1 {
		t.Errorf("priority = %d, want clamped to 1", analysis.PriorityScore)
	}
}

func TestAnalyzeEmailFallbackOnGarbage(t *testing.T) {
	db, cleanup := setupEnrichTestDB(t)
	defer cleanup()

	model := &stubModel{response: "I am sorry, I cannot analyze this email."}
	email := seedEmail(t, db, "g-garbage")
	analyzer := NewAnalyzer(db, model, nil)

	analysis, _, err := analyzer.AnalyzeEmail(email.ID)
	if err != nil {
		t.Fatalf("AnalyzeEmail: %v", err)
	}

	if analysis.PriorityScore != 3 {
		t.Errorf("fallback priority = %d, want 3", analysis.PriorityScore)
	}
	if analysis.Sentiment != string(models.SentimentNeutral) {
		t.Errorf("fallback sentiment = %q, want neutral", analysis.Sentiment)
	}
	if !analysis.ActionRequired {
		t.Error("fallback should flag action required")
	}
	if analysis.DraftReply != "AI draft unavailable - please compose manually" {
		t.Errorf("fallback draft = %q", analysis.DraftReply)
	}

	// The fallback is stored, so the email is never analyzed twice
	var flagged models.Email
	if err := db.First(&flagged, email.ID).Error; err != nil {
		t.Fatalf("reload email: %v", err)
	}
	if !flagged.AIAnalyzed {
		t.Error("email not marked analyzed after fallback")
	}
}

func TestAnalyzeEmailFallbackOnModelError(t *testing.T) {
	db, cleanup := setupEnrichTestDB(t)
	defer cleanup()

	model := &stubModel{err: errors.New("rate limited")}
	email := seedEmail(t, db, "g-err")
	analyzer := NewAnalyzer(db, model, nil)

	analysis, _, err := analyzer.AnalyzeEmail(email.ID)
	if err != nil {
		t.Fatalf("AnalyzeEmail: %v", err)
	}
	if analysis.Summary != "AI analysis temporarily unavailable" {
		t.Errorf("fallback summary = %q", analysis.Summary)
	}
}

func TestAnalyzeEmailInvokesModelAtMostOnce(t *testing.T) {
	db, cleanup := setupEnrichTestDB(t)
	defer cleanup()

	model := &stubModel{response: analysisJSON(t, map[string]interface{}{
		"summary":        "one",
		"priority_score": 4,
		"sentiment":      "positive",
	})}

	email := seedEmail(t, db, "g-once")
	analyzer := NewAnalyzer(db, model, nil)

	first, cached, err := analyzer.AnalyzeEmail(email.ID)
	if err != nil {
		t.Fatalf("first AnalyzeEmail: %v", err)
	}
	if cached {
		t.Error("first call reported cached")
	}

	second, cached, err := analyzer.AnalyzeEmail(email.ID)
	if err != nil {
		t.Fatalf("second AnalyzeEmail: %v", err)
	}
	if !cached {
		t.Error("second call not served from cache")
	}
	if model.calls != 1 {
		t.Errorf("model invoked %d times, want 1", model.calls)
	}
	if first.Summary != second.Summary || first.PriorityScore != second.PriorityScore {
		t.Error("cached analysis differs from the stored one")
	}

	var count int64
	db.Model(&models.EmailAnalysis{}).Where("email_id = ?", email.ID).Count(&count)
	if count != 1 {
		t.Errorf("stored analyses = %d, want 1", count)
	}
}

func TestAnalyzeEmailNotFound(t *testing.T) {
	db, cleanup := setupEnrichTestDB(t)
	defer cleanup()

	analyzer := NewAnalyzer(db, &stubModel{response: "{}"}, nil)
	if _, _, err := analyzer.AnalyzeEmail(9999); !errors.Is(err, ErrEmailNotFound) {
		t.Errorf("err = %v, want ErrEmailNotFound", err)
	}
}

func TestAnalyzeEmailNormalizesSentimentCase(t *testing.T) {
	db, cleanup := setupEnrichTestDB(t)
	defer cleanup()

	model := &stubModel{response: analysisJSON(t, map[string]interface{}{
		"summary":        "good news",
		"priority_score": 2,
		"sentiment":      "Positive",
	})}

	email := seedEmail(t, db, "g-case")
	analyzer := NewAnalyzer(db, model, nil)

	analysis, _, err := analyzer.AnalyzeEmail(email.ID)
	if err != nil {
		t.Fatalf("AnalyzeEmail: %v", err)
	}
	if analysis.Sentiment != string(models.SentimentPositive) {
		t.Errorf("sentiment = %q, want positive", analysis.Sentiment)
	}
}

func TestAnalyzeEmailLogsFallbackAndCacheHit(t *testing.T) {
	db, cleanup := setupEnrichTestDB(t)
	defer cleanup()

	log := &recordingLog{}
	model := &stubModel{err: errors.New("model unavailable")}
	email := seedEmail(t, db, "g-logged")
	analyzer := NewAnalyzer(db, model, log)

	if _, _, err := analyzer.AnalyzeEmail(email.ID); err != nil {
		t.Fatalf("first AnalyzeEmail: %v", err)
	}
	if len(log.records) != 1 {
		t.Fatalf("logged records = %d, want 1", len(log.records))
	}
	if !log.records[0].Fallback || log.records[0].Kind != "analysis" {
		t.Errorf("fallback record = %+v", log.records[0])
	}
	if log.errs[0] == nil {
		t.Error("fallback record carries no error detail")
	}
	if log.records[0].EmailID != email.ID {
		t.Errorf("logged email id = %d, want %d", log.records[0].EmailID, email.ID)
	}

	if _, _, err := analyzer.AnalyzeEmail(email.ID); err != nil {
		t.Fatalf("second AnalyzeEmail: %v", err)
	}
	if len(log.records) != 2 {
		t.Fatalf("logged records = %d, want 2", len(log.records))
	}
	if !log.records[1].Cached {
		t.Errorf("cache hit record = %+v", log.records[1])
	}
	if log.errs[1] != nil {
		t.Errorf("cache hit logged with error: %v", log.errs[1])
	}
}

func TestBatchAnalyzeSkipsAnalyzed(t *testing.T) {
	db, cleanup := setupEnrichTestDB(t)
	defer cleanup()

	model := &stubModel{response: analysisJSON(t, map[string]interface{}{
		"summary": "batch", "priority_score": 2,
	})}
	analyzer := NewAnalyzer(db, model, nil)

	a := seedEmail(t, db, "g-batch-1")
	seedEmail(t, db, "g-batch-2")

	if _, _, err := analyzer.AnalyzeEmail(a.ID); err != nil {
		t.Fatalf("pre-analyze: %v", err)
	}
	callsBefore := model.calls

	results, err := analyzer.BatchAnalyze(10)
	if err != nil {
		t.Fatalf("BatchAnalyze: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("batch analyzed %d emails, want 1", len(results))
	}
	if model.calls != callsBefore+1 {
		t.Errorf("model invoked %d extra times, want 1", model.calls-callsBefore)
	}
}
