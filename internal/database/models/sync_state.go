package models

// SyncState is a flat key/value register for sync bookkeeping. Each key
// is upserted independently; no cross-key transaction is needed.
type SyncState struct {
	Key   string `gorm:"primaryKey;size:64" json:"key"`
	Value string `gorm:"type:text" json:"value"`
}

// Well-known sync state keys
const (
	SyncKeyPageToken    = "last_page_token"
	SyncKeyLastSyncTime = "last_sync_time"
	SyncKeyTotalFetched = "total_emails_fetched"
)
