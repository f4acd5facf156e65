package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/services"
)

// SyncHandler handles mailbox sync requests
type SyncHandler struct {
	syncService *services.SyncService
	scheduler   *services.SyncScheduler
}

// NewSyncHandler creates a new SyncHandler instance
func NewSyncHandler(syncService *services.SyncService, scheduler *services.SyncScheduler) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
		scheduler:   scheduler,
	}
}

// TriggerSync starts a background sync run. Returns 409 when a sync
// is already in flight.
// POST /api/sync
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	if !h.scheduler.StartManualSync() {
		respondError(c, http.StatusConflict, "SYNC_IN_PROGRESS", "A sync is already running")
		return
	}
	respondOK(c, http.StatusAccepted, gin.H{"status": "started"})
}

// GetStatus returns the sync checkpoint and mailbox counts
// GET /api/sync/status
func (h *SyncHandler) GetStatus(c *gin.Context) {
	status, err := h.syncService.Status()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "STATUS_FAILED", err.Error())
		return
	}

	respondOK(c, http.StatusOK, status)
}
