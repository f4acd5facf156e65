package functions

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/database/models"
)

var (
	// ErrEmailNotFound indicates the email to enrich does not exist
	ErrEmailNotFound = errors.New("email not found")
)

// ModelClient is the slice of the AI client the enrichers call.
// *ai.Client satisfies it; tests substitute a scripted fake.
type ModelClient interface {
	Invoke(systemPrompt, userPrompt string) (string, error)
}

// ProcessingRecord describes one enrichment outcome for the system log
type ProcessingRecord struct {
	EmailID    uint
	GmailID    string
	Kind       string // analysis, summary, reply
	Variant    string
	Cached     bool
	Fallback   bool
	DurationMs int64
}

// ProcessLogger records enrichment outcomes in the system log.
// *services.LogService satisfies it; a nil logger drops the records.
type ProcessLogger interface {
	LogProcessing(record ProcessingRecord, err error) error
}

func logOutcome(log ProcessLogger, record ProcessingRecord, err error) {
	if log != nil {
		log.LogProcessing(record, err)
	}
}

// produceCached is the shared shape of every enrichment: return the
// stored record when one exists, otherwise build and store exactly one.
// The boolean reports whether the result came from the cache.
func produceCached[T any](lookup func() (*T, error), build func() (*T, error)) (*T, bool, error) {
	existing, err := lookup()
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, true, nil
	}

	record, err := build()
	if err != nil {
		return nil, false, err
	}
	return record, false, nil
}

// prepareEmailContent assembles the prompt block describing one email.
// HTML bodies are stripped to text and the content is capped so a large
// message cannot blow the prompt budget.
func prepareEmailContent(email *models.Email, maxChars int) string {
	body := email.Body
	if looksLikeHTML(body) {
		body = HTMLToText(body)
	}
	content := body
	if content == "" {
		content = NormalizeWhitespace(email.Snippet)
	}

	return fmt.Sprintf(`Email Metadata:
- From: %s
- Subject: %s
- Date: %s
- Category: %s

Email Content:
%s`, email.Sender, email.Subject, email.Date, email.Category, TruncateForPrompt(content, maxChars))
}

func looksLikeHTML(s string) bool {
	return strings.Contains(s, "<") && strings.Contains(s, ">")
}

// parseJSONObject decodes a model response into a loose map. The
// response may be wrapped in a markdown fence.
func parseJSONObject(response string) (map[string]interface{}, error) {
	cleaned := StripCodeFences(response)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Loose accessors over a decoded model response. Models return the
// right keys most of the time but not the right types all of the time.

func getString(m map[string]interface{}, key, fallback string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return fallback
	}
	switch s := v.(type) {
	case string:
		if s == "" {
			return fallback
		}
		return s
	default:
		return fmt.Sprintf("%v", v)
	}
}

func getInt(m map[string]interface{}, key string, fallback int) int {
	v, ok := m[key]
	if !ok || v == nil {
		return fallback
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		var parsed int
		if _, err := fmt.Sscanf(strings.TrimSpace(n), "%d", &parsed); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(m map[string]interface{}, key string, fallback bool) bool {
	v, ok := m[key]
	if !ok || v == nil {
		return fallback
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(strings.TrimSpace(b), "true")
	}
	return fallback
}

func getStringList(m map[string]interface{}, key string) []string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var result []string
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			result = append(result, s)
		}
	}
	return result
}

// clampList caps a list's length and each item's length
func clampList(items []string, maxItems, maxItemChars int) []string {
	if len(items) > maxItems {
		items = items[:maxItems]
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, truncateRunes(item, maxItemChars))
	}
	return out
}

// truncateRunes caps a string at n runes
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// toJSONArray stores a string list as its JSON text form. An empty or
// nil list becomes "[]" so the column never holds invalid JSON.
func toJSONArray(items []string) string {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// countWords counts whitespace-separated words
func countWords(s string) int {
	return len(strings.Fields(s))
}
