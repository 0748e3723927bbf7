package domain

// SyncResult is the outcome of one full sync pass for a single entity kind.
// Synced counts every node processed, including nodes applied before a
// mid-run failure; already-written rows are never rolled back.
type SyncResult struct {
	Success bool   `json:"success"`
	Synced  int    `json:"synced"`
	Message string `json:"message"`
}

// Change kinds published on the delta bus.
const (
	ChangeSynced  = "synced"
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

// ChangeEvent describes one applied local write, emitted by both the sync
// engine and the webhook ingestion path.
type ChangeEvent struct {
	Entity     string `json:"entity"` // product, collection, order
	Kind       string `json:"kind"`
	ShopDomain string `json:"shop_domain"`
	ExternalID string `json:"external_id"`
}
