package services

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/database/models"
	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/functions"
	"gorm.io/gorm"
)

// LogService handles logging operations
type LogService struct {
	db       *gorm.DB
	logLevel models.LogLevel
}

// NewLogService creates a new LogService instance
func NewLogService(db *gorm.DB) *LogService {
	return &LogService{
		db:       db,
		logLevel: models.LogLevelInfo, // Default log level
	}
}

// NewLogServiceWithLevel creates a new LogService instance with specified log level
func NewLogServiceWithLevel(db *gorm.DB, level string) *LogService {
	return &LogService{
		db:       db,
		logLevel: parseLogLevel(level),
	}
}

// parseLogLevel converts a string to LogLevel
func parseLogLevel(level string) models.LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return models.LogLevelDebug
	case "INFO":
		return models.LogLevelInfo
	case "WARN", "WARNING":
		return models.LogLevelWarn
	case "ERROR":
		return models.LogLevelError
	default:
		return models.LogLevelInfo
	}
}

// SetLogLevel sets the minimum log level
func (s *LogService) SetLogLevel(level string) {
	s.logLevel = parseLogLevel(level)
}

// shouldLog checks if a log entry should be recorded based on log level
func (s *LogService) shouldLog(level models.LogLevel) bool {
	levelPriority := map[models.LogLevel]int{
		models.LogLevelDebug: 0,
		models.LogLevelInfo:  1,
		models.LogLevelWarn:  2,
		models.LogLevelError: 3,
	}

	return levelPriority[level] >= levelPriority[s.logLevel]
}

// LogEntry represents a log entry to be created
type LogEntry struct {
	Level   models.LogLevel
	Module  models.LogModule
	Action  string
	Message string
	Details interface{} // Will be serialized to JSON
}

// Log creates a new log entry
func (s *LogService) Log(entry LogEntry) error {
	if !s.shouldLog(entry.Level) {
		return nil
	}

	var detailsJSON string
	if entry.Details != nil {
		bytes, err := json.Marshal(entry.Details)
		if err != nil {
			detailsJSON = "{}"
		} else {
			detailsJSON = string(bytes)
		}
	}

	log := &models.Log{
		Level:   string(entry.Level),
		Module:  string(entry.Module),
		Action:  entry.Action,
		Message: entry.Message,
		Details: detailsJSON,
	}

	return s.db.Create(log).Error
}

// LogInfo creates an INFO level log entry
func (s *LogService) LogInfo(module models.LogModule, action, message string, details interface{}) error {
	return s.Log(LogEntry{
		Level:   models.LogLevelInfo,
		Module:  module,
		Action:  action,
		Message: message,
		Details: details,
	})
}

// LogWarn creates a WARN level log entry
func (s *LogService) LogWarn(module models.LogModule, action, message string, details interface{}) error {
	return s.Log(LogEntry{
		Level:   models.LogLevelWarn,
		Module:  module,
		Action:  action,
		Message: message,
		Details: details,
	})
}

// LogError creates an ERROR level log entry
func (s *LogService) LogError(module models.LogModule, action, message string, details interface{}) error {
	return s.Log(LogEntry{
		Level:   models.LogLevelError,
		Module:  module,
		Action:  action,
		Message: message,
		Details: details,
	})
}

// LogDebug creates a DEBUG level log entry
func (s *LogService) LogDebug(module models.LogModule, action, message string, details interface{}) error {
	return s.Log(LogEntry{
		Level:   models.LogLevelDebug,
		Module:  module,
		Action:  action,
		Message: message,
		Details: details,
	})
}

// SyncDetails represents details for mailbox sync logs
type SyncDetails struct {
	PageToken string `json:"page_token,omitempty"`
	Fetched   int    `json:"fetched,omitempty"`
	Skipped   int    `json:"skipped,omitempty"`
	Failed    int    `json:"failed,omitempty"`
	Total     int    `json:"total,omitempty"`
	ErrorMsg  string `json:"error_msg,omitempty"`
}

// LogSyncPage logs the outcome of one sync page
func (s *LogService) LogSyncPage(pageToken string, fetched, skipped, failed int) error {
	level := models.LogLevelInfo
	if failed > 0 {
		level = models.LogLevelWarn
	}
	return s.Log(LogEntry{
		Level:   level,
		Module:  models.LogModuleEmail,
		Action:  "sync_page",
		Message: "Sync page completed",
		Details: SyncDetails{
			PageToken: pageToken,
			Fetched:   fetched,
			Skipped:   skipped,
			Failed:    failed,
		},
	})
}

// LogSyncCompleted logs the end of a full sync run
func (s *LogService) LogSyncCompleted(total int, err error) error {
	details := SyncDetails{Total: total}
	level := models.LogLevelInfo
	message := "Mailbox sync completed"

	if err != nil {
		level = models.LogLevelError
		details.ErrorMsg = err.Error()
		message = "Mailbox sync stopped on error"
	}

	return s.Log(LogEntry{
		Level:   level,
		Module:  models.LogModuleEmail,
		Action:  "sync",
		Message: message,
		Details: details,
	})
}

// APIRequestDetails represents details for API request logs
type APIRequestDetails struct {
	Method     string `json:"method"`
	Path       string `json:"path"`
	StatusCode int    `json:"status_code"`
	Duration   int64  `json:"duration_ms"`
	ClientIP   string `json:"client_ip"`
}

// LogAPIRequest logs an API request
func (s *LogService) LogAPIRequest(method, path string, statusCode int, durationMs int64, clientIP string) error {
	level := models.LogLevelInfo
	if statusCode >= 400 && statusCode < 500 {
		level = models.LogLevelWarn
	} else if statusCode >= 500 {
		level = models.LogLevelError
	}

	return s.Log(LogEntry{
		Level:   level,
		Module:  models.LogModuleAPI,
		Action:  "request",
		Message: method + " " + path,
		Details: APIRequestDetails{
			Method:     method,
			Path:       path,
			StatusCode: statusCode,
			Duration:   durationMs,
			ClientIP:   clientIP,
		},
	})
}

// ProcessingDetails represents details for AI processing logs
type ProcessingDetails struct {
	EmailID    uint   `json:"email_id"`
	GmailID    string `json:"gmail_id,omitempty"`
	Kind       string `json:"kind"` // analysis, summary, reply
	Variant    string `json:"variant,omitempty"`
	Cached     bool   `json:"cached"`
	Fallback   bool   `json:"fallback,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
	ErrorMsg   string `json:"error_msg,omitempty"`
}

// LogProcessing logs one AI enrichment operation. It satisfies
// functions.ProcessLogger so the enrichers can report their outcomes.
func (s *LogService) LogProcessing(record functions.ProcessingRecord, err error) error {
	details := ProcessingDetails{
		EmailID:    record.EmailID,
		GmailID:    record.GmailID,
		Kind:       record.Kind,
		Variant:    record.Variant,
		Cached:     record.Cached,
		Fallback:   record.Fallback,
		DurationMs: record.DurationMs,
	}

	level := models.LogLevelInfo
	message := "Email " + details.Kind + " completed"

	if err != nil {
		level = models.LogLevelError
		details.ErrorMsg = err.Error()
		message = "Email " + details.Kind + " failed"
	} else if details.Cached {
		level = models.LogLevelDebug
		message = "Email " + details.Kind + " served from cache"
	}

	return s.Log(LogEntry{
		Level:   level,
		Module:  models.LogModuleProcess,
		Action:  details.Kind,
		Message: message,
		Details: details,
	})
}

// LogQuery represents query parameters for log retrieval
type LogQuery struct {
	Level     string
	Module    string
	Action    string
	StartTime *time.Time
	EndTime   *time.Time
	Page      int
	Limit     int
}

// LogQueryResult represents the result of a log query
type LogQueryResult struct {
	Total int64
	Logs  []models.Log
}

// QueryLogs retrieves logs based on query parameters
func (s *LogService) QueryLogs(query LogQuery) (*LogQueryResult, error) {
	db := s.db.Model(&models.Log{})

	if query.Level != "" {
		db = db.Where("level = ?", query.Level)
	}
	if query.Module != "" {
		db = db.Where("module = ?", query.Module)
	}
	if query.Action != "" {
		db = db.Where("action = ?", query.Action)
	}
	if query.StartTime != nil {
		db = db.Where("created_at >= ?", query.StartTime)
	}
	if query.EndTime != nil {
		db = db.Where("created_at <= ?", query.EndTime)
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

	var logs []models.Log
	if err := db.Order("created_at DESC").Offset(offset).Limit(query.Limit).Find(&logs).Error; err != nil {
		return nil, err
	}

	return &LogQueryResult{
		Total: total,
		Logs:  logs,
	}, nil
}

// GetRecentLogs retrieves the most recent logs
func (s *LogService) GetRecentLogs(limit int) ([]models.Log, error) {
	if limit <= 0 {
		limit = 100
	}

	var logs []models.Log
	if err := s.db.Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
