// internal/app/system/limits/limits.go
package limits

// Request limits for the admin API.
const (
	// MaxBulkDeleteBody is the largest request body accepted by bulk deletion.
	MaxBulkDeleteBody = 1 << 20 // 1 MB

	// BulkDeleteWindowLimit is the default number of bulk deletion batches an
	// admin may submit per minute. Zero disables the limiter.
	BulkDeleteWindowLimit = 30
)
