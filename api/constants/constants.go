package constants

// Common error messages
const (
	ErrInvalidJSON        = "invalid json or missing fields"
	ErrInvalidRequestBody = "Invalid request body"
	ErrBatchIDRequired    = "batch_id required"
	ErrBatchNotFound      = "batch not found"
	ErrMethodNotAllowed   = "Method Not Allowed"
	ErrDB                 = "DB error"
	ErrFailedToQuery      = "Failed to query"
)

// DB / SQL error templates
const (
	ErrTxStartFailed  = "failed to start transaction: "
	ErrTxCommitFailed = "failed to commit transaction: "
	ErrQueryFailed    = "query failed: "
)

// Content Types
const (
	ContentTypeJSON = "application/json"
	ContentTypeText = "Content-Type"
)

// Date formats
const (
	DateTimeFormat = "2006-01-02 15:04:05"
	DateFormat     = "2006-01-02"
	DateFormatAlt  = "02-01-2006"
	DateFormatISO  = "2006-01-02T15:04:05"
)

// NBSP is the non-breaking space character scrubbed during cell normalization.
const NBSP = " "

// Reconciliation and analysis constants
const (
	// InternalCodePrefix marks internal-activity contract codes that are
	// auto-classified as cost centers when they carry no revenue.
	InternalCodePrefix = "THS-"

	// ExpectedHoursPerMonth is the divisor for Strategy B hourly-cost
	// computation (fixed company-wide staffing assumption).
	ExpectedHoursPerMonth = "216.6667"

	// ReconcileTolerance is the absolute tolerance for revenue and
	// allocation reconciliation checks.
	ReconcileTolerance = "0.01"

	// DetailInsertChunkSize bounds the rows per insert batch when persisting
	// hours/expense detail tables (storage payload limit).
	DetailInsertChunkSize = 500
)

// Overhead pool buckets
const (
	BucketSGA       = "SGA"
	BucketData      = "DATA"
	BucketWorkplace = "WORKPLACE"
	BucketNIL       = "NIL"
)

// Allocation tags carried on Pro Forma rows
const (
	TagData     = "Data"
	TagWellness = "Wellness"
)

// Batch lifecycle states
const (
	BatchStatusProcessing = "processing"
	BatchStatusCompleted  = "completed"
	BatchStatusFailed     = "failed"
)
