package constants

const (
	StatusOK      = "ok"
	StatusQueued  = "queued"
	StatusPending = "pending"

	TxStatusPending      = "pending"
	TxStatusConfirmed    = "confirmed"
	TxStatusTimedOut     = "timed_out"
	TxStatusLookupFailed = "lookup_failed"
	TxStatusExpired      = "expired"
	TxStatusRejected     = "rejected"
	TxStatusCancelled    = "cancelled"

	// Redis list names shared by the server and the worker.
	ConfirmQueue   = "confirm_queue"
	ConfirmedQueue = "confirmed_queue"

	// ZeroAddress is the anonymous viewer used for access probes.
	ZeroAddress = "0x0000000000000000000000000000000000000000"
)
