package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/services"
)

// EmailHandler handles email related requests
type EmailHandler struct {
	emailService *services.EmailService
}

// NewEmailHandler creates a new EmailHandler instance
func NewEmailHandler(emailService *services.EmailService) *EmailHandler {
	return &EmailHandler{
		emailService: emailService,
	}
}

// parseIDParam reads the :id path segment as a uint
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid email ID")
		return 0, false
	}
	return uint(id), true
}

// ListEmails returns a page of emails with optional filters
// GET /api/emails?category=&sender=&is_read=&analyzed=&search=&page=&limit=
func (h *EmailHandler) ListEmails(c *gin.Context) {
	query := services.EmailQuery{
		Category: c.Query("category"),
		Sender:   c.Query("sender"),
		Search:   c.Query("search"),
	}

	if v := c.Query("is_read"); v != "" {
		isRead := v == "true"
		query.IsRead = &isRead
	}
	if v := c.Query("analyzed"); v != "" {
		analyzed := v == "true"
		query.Analyzed = &analyzed
	}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))

	result, err := h.emailService.ListEmails(query)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "LIST_FAILED", err.Error())
		return
	}

	respondOK(c, http.StatusOK, result)
}

// GetEmail returns one email with its annotations
// GET /api/emails/:id
func (h *EmailHandler) GetEmail(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	email, err := h.emailService.GetEmailByID(id)
	if err != nil {
		if errors.Is(err, services.ErrEmailNotFound) {
			respondError(c, http.StatusNotFound, "EMAIL_NOT_FOUND", "Email not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "GET_FAILED", err.Error())
		return
	}

	respondOK(c, http.StatusOK, email)
}

// MarkAsRead flips the read flag on an email
// PUT /api/emails/:id/read
func (h *EmailHandler) MarkAsRead(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req struct {
		IsRead *bool `json:"is_read"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.IsRead == nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "is_read is required")
		return
	}

	if err := h.emailService.MarkRead(id, *req.IsRead); err != nil {
		if errors.Is(err, services.ErrEmailNotFound) {
			respondError(c, http.StatusNotFound, "EMAIL_NOT_FOUND", "Email not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", err.Error())
		return
	}

	respondOK(c, http.StatusOK, gin.H{"id": id, "is_read": *req.IsRead})
}

// DeleteEmail removes an email and everything attached to it
// DELETE /api/emails/:id
func (h *EmailHandler) DeleteEmail(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.emailService.DeleteEmail(id); err != nil {
		if errors.Is(err, services.ErrEmailNotFound) {
			respondError(c, http.StatusNotFound, "EMAIL_NOT_FOUND", "Email not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "DELETE_FAILED", err.Error())
		return
	}

	respondOK(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}

// GetStats returns mailbox-wide counts
// GET /api/emails/stats
func (h *EmailHandler) GetStats(c *gin.Context) {
	stats, err := h.emailService.GetStats()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "STATS_FAILED", err.Error())
		return
	}

	respondOK(c, http.StatusOK, stats)
}

// GetSenders returns distinct senders with message counts
// GET /api/emails/senders?limit=
func (h *EmailHandler) GetSenders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	senders, err := h.emailService.GetUniqueSenders(limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "SENDERS_FAILED", err.Error())
		return
	}

	respondOK(c, http.StatusOK, senders)
}
