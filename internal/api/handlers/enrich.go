package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/database/models"
	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/functions"
)

// EnrichHandler handles AI analysis, summary and reply requests
type EnrichHandler struct {
	analyzer   *functions.Analyzer
	summarizer *functions.Summarizer
	replier    *functions.Replier
}

// NewEnrichHandler creates a new EnrichHandler instance
func NewEnrichHandler(analyzer *functions.Analyzer, summarizer *functions.Summarizer, replier *functions.Replier) *EnrichHandler {
	return &EnrichHandler{
		analyzer:   analyzer,
		summarizer: summarizer,
		replier:    replier,
	}
}

// AnalyzeEmail analyzes one email, returning the cached analysis when
// it already exists
// POST /api/emails/:id/analyze
func (h *EnrichHandler) AnalyzeEmail(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	analysis, cached, err := h.analyzer.AnalyzeEmail(id)
	if err != nil {
		if errors.Is(err, functions.ErrEmailNotFound) {
			respondError(c, http.StatusNotFound, "EMAIL_NOT_FOUND", "Email not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "ANALYZE_FAILED", err.Error())
		return
	}

	respondOK(c, http.StatusOK, gin.H{"analysis": analysis, "cached": cached})
}

// BatchAnalyze analyzes up to limit unanalyzed emails
// POST /api/analyze/batch?limit=
func (h *EnrichHandler) BatchAnalyze(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	results, err := h.analyzer.BatchAnalyze(limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "BATCH_ANALYZE_FAILED", err.Error())
		return
	}

	respondOK(c, http.StatusOK, gin.H{"analyzed": len(results), "results": results})
}

// SummarizeEmail summarizes one email in the requested style
// POST /api/emails/:id/summarize?type=
func (h *EnrichHandler) SummarizeEmail(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	summaryType := models.SummaryType(c.DefaultQuery("type", string(models.SummaryDetailed)))

	summary, cached, err := h.summarizer.SummarizeEmail(id, summaryType)
	if err != nil {
		switch {
		case errors.Is(err, functions.ErrEmailNotFound):
			respondError(c, http.StatusNotFound, "EMAIL_NOT_FOUND", "Email not found")
		case errors.Is(err, functions.ErrInvalidSummaryType):
			respondError(c, http.StatusBadRequest, "INVALID_SUMMARY_TYPE", err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "SUMMARIZE_FAILED", err.Error())
		}
		return
	}

	respondOK(c, http.StatusOK, gin.H{"summary": summary, "cached": cached})
}

// GetSummaries returns every stored summary of an email
// GET /api/emails/:id/summaries
func (h *EnrichHandler) GetSummaries(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	summaries, err := h.summarizer.GetSummaries(id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "SUMMARIES_FAILED", err.Error())
		return
	}

	respondOK(c, http.StatusOK, summaries)
}

// BatchSummarize summarizes up to limit unsummarized emails
// POST /api/summarize/batch?limit=&type=
func (h *EnrichHandler) BatchSummarize(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	summaryType := models.SummaryType(c.DefaultQuery("type", string(models.SummaryDetailed)))

	results, err := h.summarizer.BatchSummarize(limit, summaryType)
	if err != nil {
		if errors.Is(err, functions.ErrInvalidSummaryType) {
			respondError(c, http.StatusBadRequest, "INVALID_SUMMARY_TYPE", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "BATCH_SUMMARIZE_FAILED", err.Error())
		return
	}

	respondOK(c, http.StatusOK, gin.H{"summarized": len(results), "results": results})
}

// ReplyRequest represents a reply generation or delivery request
type ReplyRequest struct {
	Style   string `json:"style"`   // standard, acknowledge, decline, request_info, follow_up
	Content string `json:"content"` // empty means generate with the model
	Send    bool   `json:"send"`    // false stores a provider draft
}

// ReplyToEmail generates and optionally delivers a reply
// POST /api/emails/:id/reply
func (h *EnrichHandler) ReplyToEmail(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	content := req.Content
	replyType := models.ReplyTypeManual
	if content == "" {
		generated, err := h.replier.GenerateReply(id, req.Style)
		if err != nil {
			if errors.Is(err, functions.ErrEmailNotFound) {
				respondError(c, http.StatusNotFound, "EMAIL_NOT_FOUND", "Email not found")
				return
			}
			respondError(c, http.StatusInternalServerError, "REPLY_FAILED", err.Error())
			return
		}
		content = generated
		replyType = models.ReplyTypeAIGenerated
	}

	var record *models.EmailReply
	var err error
	if req.Send {
		record, err = h.replier.SendReply(id, content, replyType)
	} else {
		record, err = h.replier.CreateDraft(id, content, replyType)
	}
	if err != nil {
		if errors.Is(err, functions.ErrEmailNotFound) {
			respondError(c, http.StatusNotFound, "EMAIL_NOT_FOUND", "Email not found")
			return
		}
		// The record is stored with a failed status; surface both
		respondError(c, http.StatusBadGateway, "DELIVERY_FAILED", err.Error())
		return
	}

	respondOK(c, http.StatusOK, record)
}

// GetReplies returns the reply log of an email
// GET /api/emails/:id/replies
func (h *EnrichHandler) GetReplies(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	replies, err := h.replier.GetReplies(id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "REPLIES_FAILED", err.Error())
		return
	}

	respondOK(c, http.StatusOK, replies)
}
