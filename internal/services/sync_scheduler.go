package services

import (
	"log"
	"sync"
	"time"

	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/database/models"
)

// SyncScheduler runs mailbox syncs on a fixed interval
type SyncScheduler struct {
	syncService *SyncService
	logService  *LogService
	interval    time.Duration
	stopChan    chan struct{}
	running     bool
	mu          sync.Mutex
	syncing     sync.Mutex // prevents overlapping sync cycles
}

// NewSyncScheduler creates a new sync scheduler
func NewSyncScheduler(syncService *SyncService, logService *LogService, interval time.Duration) *SyncScheduler {
	return &SyncScheduler{
		syncService: syncService,
		logService:  logService,
		interval:    interval,
		stopChan:    make(chan struct{}),
	}
}

// Start begins the automatic sync process
func (s *SyncScheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	log.Printf("[SyncScheduler] Starting with interval: %v", s.interval)

	go func() {
		// Let the server finish starting before the first sync
		select {
		case <-time.After(10 * time.Second):
			s.runSync()
		case <-s.stopChan:
			return
		}

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runSync()
			case <-s.stopChan:
				log.Println("[SyncScheduler] Stopping")
				return
			}
		}
	}()
}

// Stop stops the automatic sync process
func (s *SyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	close(s.stopChan)
	s.running = false
}

// TrySync runs one sync cycle unless one is already in flight. Returns
// false when skipped.
func (s *SyncScheduler) TrySync() bool {
	if !s.syncing.TryLock() {
		return false
	}
	defer s.syncing.Unlock()

	s.doSync()
	return true
}

// StartManualSync launches a background sync cycle. Returns false when
// one is already running. Manual syncs triggered over the API share the
// same lock as scheduled runs so they never overlap.
func (s *SyncScheduler) StartManualSync() bool {
	if !s.syncing.TryLock() {
		return false
	}
	go func() {
		defer s.syncing.Unlock()
		s.doSync()
	}()
	return true
}

func (s *SyncScheduler) doSync() {
	result, err := s.syncService.SyncAll()
	if err != nil {
		log.Printf("[SyncScheduler] Sync stopped on error after %d emails: %v", result.Fetched, err)
		return
	}
	if result.Fetched > 0 {
		log.Printf("[SyncScheduler] Synced %d new emails across %d pages", result.Fetched, result.Pages)
		s.logService.LogInfo(models.LogModuleEmail, "auto_sync", "Auto sync completed", map[string]interface{}{
			"fetched": result.Fetched,
			"pages":   result.Pages,
		})
	}
}

func (s *SyncScheduler) runSync() {
	if !s.TrySync() {
		log.Println("[SyncScheduler] Previous sync still running, skipping this cycle")
	}
}
