package services

import (
	"errors"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/database/models"
	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/functions"
)

// Every API request, sync page and enrichment operation leaves a row in
// the log table with the right module, action and severity.

// TestProperty_LogCompleteness_APIRequest tests that API requests are logged correctly
func TestProperty_LogCompleteness_APIRequest(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	properties.Property("api_request_creates_complete_log_entry", prop.ForAll(
		func(statusCode int) bool {
			db, cleanup := setupServiceTestDB(t)
			defer cleanup()

			service := NewLogService(db)
			beforeTime := time.Now().Add(-time.Second)

			method := "GET"
			path := "/api/emails"
			durationMs := int64(100)
			clientIP := "127.0.0.1"

			err := service.LogAPIRequest(method, path, statusCode, durationMs, clientIP)
			if err != nil {
				return false
			}

			afterTime := time.Now().Add(time.Second)

			var log models.Log
			if err := db.Where("module = ? AND action = ?", "api", "request").First(&log).Error; err != nil {
				return false
			}

			expectedLevel := "INFO"
			if statusCode >= 500 {
				expectedLevel = "ERROR"
			} else if statusCode >= 400 {
				expectedLevel = "WARN"
			}

			return log.Module == "api" &&
				log.Action == "request" &&
				log.Level == expectedLevel &&
				log.Message == method+" "+path &&
				log.CreatedAt.After(beforeTime) &&
				log.CreatedAt.Before(afterTime)
		},
		gen.IntRange(200, 599),
	))

	properties.TestingRun(t)
}

// TestProperty_LogCompleteness_SyncOperations tests that sync pages are logged correctly
func TestProperty_LogCompleteness_SyncOperations(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	properties.Property("sync_page_creates_complete_log_entry", prop.ForAll(
		func(fetched, skipped, failed int) bool {
			db, cleanup := setupServiceTestDB(t)
			defer cleanup()

			service := NewLogService(db)

			err := service.LogSyncPage("token-1", fetched, skipped, failed)
			if err != nil {
				return false
			}

			var log models.Log
			if err := db.Where("module = ? AND action = ?", "email", "sync_page").First(&log).Error; err != nil {
				return false
			}

			// A page with failures escalates to WARN
			expectedLevel := "INFO"
			if failed > 0 {
				expectedLevel = "WARN"
			}

			return log.Module == "email" &&
				log.Action == "sync_page" &&
				log.Level == expectedLevel
		},
		gen.IntRange(0, 100),
		gen.IntRange(0, 100),
		gen.IntRange(0, 10),
	))

	properties.Property("sync_completion_error_escalates_level", prop.ForAll(
		func(total int, failed bool) bool {
			db, cleanup := setupServiceTestDB(t)
			defer cleanup()

			service := NewLogService(db)

			var syncErr error
			if failed {
				syncErr = errors.New("list failed")
			}
			if err := service.LogSyncCompleted(total, syncErr); err != nil {
				return false
			}

			var log models.Log
			if err := db.Where("module = ? AND action = ?", "email", "sync").First(&log).Error; err != nil {
				return false
			}

			expectedLevel := "INFO"
			if failed {
				expectedLevel = "ERROR"
			}
			return log.Level == expectedLevel
		},
		gen.IntRange(0, 1000),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// TestProperty_LogCompleteness_ProcessingOperations tests that enrichment operations are logged correctly
func TestProperty_LogCompleteness_ProcessingOperations(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	properties.Property("processing_creates_complete_log_entry", prop.ForAll(
		func(emailID uint, failed bool) bool {
			db, cleanup := setupServiceTestDB(t)
			defer cleanup()

			service := NewLogService(db)

			var procErr error
			if failed {
				procErr = errors.New("model unavailable")
			}

			err := service.LogProcessing(functions.ProcessingRecord{
				EmailID: emailID,
				Kind:    "analysis",
			}, procErr)
			if err != nil {
				return false
			}

			var log models.Log
			if err := db.Where("module = ? AND action = ?", "process", "analysis").First(&log).Error; err != nil {
				return false
			}

			expectedLevel := "INFO"
			if failed {
				expectedLevel = "ERROR"
			}
			return log.Level == expectedLevel
		},
		gen.UIntRange(1, 1000),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// TestProperty_LogLevelFiltering tests that log level filtering works correctly
func TestProperty_LogLevelFiltering(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	// Property: only ERROR is written at ERROR level
	properties.Property("log_level_filtering_respects_configured_level", prop.ForAll(
		func(action string) bool {
			db, cleanup := setupServiceTestDB(t)
			defer cleanup()

			service := NewLogServiceWithLevel(db, "ERROR")

			service.LogDebug(models.LogModuleAPI, action, "debug message", nil)
			service.LogInfo(models.LogModuleAPI, action, "info message", nil)
			service.LogWarn(models.LogModuleAPI, action, "warn message", nil)
			service.LogError(models.LogModuleAPI, action, "error message", nil)

			var count int64
			db.Model(&models.Log{}).Count(&count)

			return count == 1
		},
		gen.AlphaString(),
	))

	// Property: INFO level logs INFO, WARN, and ERROR
	properties.Property("info_level_logs_info_warn_error", prop.ForAll(
		func(action string) bool {
			db, cleanup := setupServiceTestDB(t)
			defer cleanup()

			service := NewLogServiceWithLevel(db, "INFO")

			service.LogDebug(models.LogModuleAPI, action, "debug message", nil)
			service.LogInfo(models.LogModuleAPI, action, "info message", nil)
			service.LogWarn(models.LogModuleAPI, action, "warn message", nil)
			service.LogError(models.LogModuleAPI, action, "error message", nil)

			var count int64
			db.Model(&models.Log{}).Count(&count)

			return count == 3
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestQueryLogsFilters(t *testing.T) {
	db, cleanup := setupServiceTestDB(t)
	defer cleanup()

	service := NewLogServiceWithLevel(db, "DEBUG")
	service.LogInfo(models.LogModuleEmail, "sync_page", "page done", nil)
	service.LogWarn(models.LogModuleEmail, "fetch_message", "fetch failed", nil)
	service.LogError(models.LogModuleAPI, "request", "GET /api/emails", nil)

	byModule, err := service.QueryLogs(LogQuery{Module: "email"})
	if err != nil {
		t.Fatalf("QueryLogs by module: %v", err)
	}
	if byModule.Total != 2 {
		t.Errorf("email logs = %d, want 2", byModule.Total)
	}

	byLevel, err := service.QueryLogs(LogQuery{Level: "ERROR"})
	if err != nil {
		t.Fatalf("QueryLogs by level: %v", err)
	}
	if byLevel.Total != 1 {
		t.Errorf("error logs = %d, want 1", byLevel.Total)
	}

	byAction, err := service.QueryLogs(LogQuery{Module: "email", Action: "sync_page"})
	if err != nil {
		t.Fatalf("QueryLogs by action: %v", err)
	}
	if byAction.Total != 1 {
		t.Errorf("sync_page logs = %d, want 1", byAction.Total)
	}
}
