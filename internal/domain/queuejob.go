package domain

// QueueJob is a per-URL-per-method unit of work. It is never persisted to
// Postgres — it lives only in the method queue (Redis sorted set in
// production, an in-memory heap in tests) and is reconstructed from JSON
// on every pop. Losing one does not corrupt URL or credit state. The
// periodic pending-URL sweep (internal/scheduler.PendingDispatcher)
// re-enqueues URLs still in `pending`, including those whose enqueue
// failed at submission; a job lost from the queue after a successful
// enqueue is not reissued, and its URL is still picked up by the
// verification and refund sweeps.
type QueueJob struct {
	URLID          string            `json:"url_id"`
	ProjectID      string            `json:"project_id"`
	Method         Method            `json:"method"`
	Attempt        int               `json:"attempt"`
	IndexNowConfig *IndexNowConfig   `json:"indexnow_config,omitempty"`
}

// IndexNowConfig carries the per-project IndexNow key/host when the
// project has its own key instead of relying on the global one.
type IndexNowConfig struct {
	Host        string `json:"host"`
	APIKey      string `json:"api_key"`
	KeyLocation string `json:"key_location"`
}

const MaxMethodAttempts = 3
