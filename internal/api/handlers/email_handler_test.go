package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/database/models"
	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupHandlerTest(t *testing.T) (*gin.Engine, *gorm.DB, func()) {
	gin.SetMode(gin.TestMode)

	tmpFile, err := os.CreateTemp("", "handler_test_*.db")
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
		&models.EmailSummary{}, &models.EmailReply{}, &models.Log{})
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("Failed to migrate: %v", err)
	}

	handler := NewEmailHandler(services.NewEmailService(db))

	router := gin.New()
	router.GET("/api/emails", handler.ListEmails)
	router.GET("/api/emails/stats", handler.GetStats)
	router.GET("/api/emails/senders", handler.GetSenders)
	router.GET("/api/emails/:id", handler.GetEmail)
	router.PUT("/api/emails/:id/read", handler.MarkAsRead)
	router.DELETE("/api/emails/:id", handler.DeleteEmail)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		os.Remove(tmpFile.Name())
	}

	return router, db, cleanup
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doRequest(t *testing.T, router *gin.Engine, method, path, body string) (int, envelope) {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("response not an envelope: %v (%s)", err, w.Body.String())
	}
	return w.Code, env
}

func TestListEmailsEndpoint(t *testing.T) {
	router, db, cleanup := setupHandlerTest(t)
	defer cleanup()

	db.Create(&models.Email{GmailID: "h1", Sender: "a@example.com", Subject: "one", Category: models.CategoryInbox})
	db.Create(&models.Email{GmailID: "h2", Sender: "b@example.com", Subject: "two", Category: models.CategoryOther})

	code, env := doRequest(t, router, "GET", "/api/emails", "")
	if code != http.StatusOK || !env.Success {
		t.Fatalf("code=%d env=%+v", code, env)
	}

	var result struct {
		Total  int64          `json:"total"`
		Emails []models.Email `json:"emails"`
	}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if result.Total != 2 || len(result.Emails) != 2 {
		t.Errorf("total=%d len=%d", result.Total, len(result.Emails))
	}

	code, env = doRequest(t, router, "GET", "/api/emails?category=Inbox", "")
	if code != http.StatusOK {
		t.Fatalf("filtered list code=%d", code)
	}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if result.Total != 1 {
		t.Errorf("inbox total=%d, want 1", result.Total)
	}
}

func TestGetEmailEndpointNotFound(t *testing.T) {
	router, _, cleanup := setupHandlerTest(t)
	defer cleanup()

	code, env := doRequest(t, router, "GET", "/api/emails/42", "")
	if code != http.StatusNotFound {
		t.Errorf("code = %d, want 404", code)
	}
	if env.Success || env.Error == nil || env.Error.Code != "EMAIL_NOT_FOUND" {
		t.Errorf("envelope = %+v", env)
	}
}

func TestGetEmailEndpointBadID(t *testing.T) {
	router, _, cleanup := setupHandlerTest(t)
	defer cleanup()

	code, env := doRequest(t, router, "GET", "/api/emails/abc", "")
	if code != http.StatusBadRequest {
		t.Errorf("code = %d, want 400", code)
	}
	if env.Error == nil || env.Error.Code != "INVALID_ID" {
		t.Errorf("envelope = %+v", env)
	}
}

func TestMarkAsReadEndpoint(t *testing.T) {
	router, db, cleanup := setupHandlerTest(t)
	defer cleanup()

	email := models.Email{GmailID: "h-read", Sender: "a@example.com", Subject: "read me", Category: models.CategoryInbox}
	db.Create(&email)

	code, env := doRequest(t, router, "PUT", "/api/emails/1/read", `{"is_read": true}`)
	if code != http.StatusOK || !env.Success {
		t.Fatalf("code=%d env=%+v", code, env)
	}

	var reloaded models.Email
	db.First(&reloaded, email.ID)
	if !reloaded.IsRead {
		t.Error("email not marked read")
	}

	// A body without is_read is rejected
	code, env = doRequest(t, router, "PUT", "/api/emails/1/read", `{}`)
	if code != http.StatusBadRequest || env.Error == nil || env.Error.Code != "INVALID_REQUEST" {
		t.Errorf("code=%d env=%+v", code, env)
	}
}

func TestDeleteEmailEndpoint(t *testing.T) {
	router, db, cleanup := setupHandlerTest(t)
	defer cleanup()

	email := models.Email{GmailID: "h-del", Sender: "a@example.com", Subject: "bye", Category: models.CategoryInbox}
	db.Create(&email)

	code, env := doRequest(t, router, "DELETE", "/api/emails/1", "")
	if code != http.StatusOK || !env.Success {
		t.Fatalf("code=%d env=%+v", code, env)
	}

	var count int64
	db.Model(&models.Email{}).Count(&count)
	if count != 0 {
		t.Errorf("emails left = %d, want 0", count)
	}

	code, env = doRequest(t, router, "DELETE", "/api/emails/1", "")
	if code != http.StatusNotFound || env.Error == nil || env.Error.Code != "EMAIL_NOT_FOUND" {
		t.Errorf("repeat delete code=%d env=%+v", code, env)
	}
}

func TestStatsEndpoint(t *testing.T) {
	router, db, cleanup := setupHandlerTest(t)
	defer cleanup()

	db.Create(&models.Email{GmailID: "h-s1", Sender: "a@example.com", Subject: "x", Category: models.CategoryInbox, IsRead: true})
	db.Create(&models.Email{GmailID: "h-s2", Sender: "a@example.com", Subject: "y", Category: models.CategoryInbox})

	code, env := doRequest(t, router, "GET", "/api/emails/stats", "")
	if code != http.StatusOK || !env.Success {
		t.Fatalf("code=%d env=%+v", code, env)
	}

	var stats struct {
		Total  int64 `json:"total"`
		Unread int64 `json:"unread"`
	}
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Total != 2 || stats.Unread != 1 {
		t.Errorf("stats = %+v", stats)
	}
}
