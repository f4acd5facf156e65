package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/services"
)

// LogHandler exposes the system log
type LogHandler struct {
	logService *services.LogService
}

// NewLogHandler creates a new LogHandler instance
func NewLogHandler(logService *services.LogService) *LogHandler {
	return &LogHandler{logService: logService}
}

// QueryLogs returns log entries matching the filters
// GET /api/logs?level=&module=&action=&page=&limit=
func (h *LogHandler) QueryLogs(c *gin.Context) {
	query := services.LogQuery{
		Level:  c.Query("level"),
		Module: c.Query("module"),
		Action: c.Query("action"),
	}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))

	result, err := h.logService.QueryLogs(query)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "LOGS_FAILED", err.Error())
		return
	}

	respondOK(c, http.StatusOK, result)
}
