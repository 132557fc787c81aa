package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Actor (set by pkg/middleware after token verification)
	FieldSubject = "subject"

	// Service
	FieldService = "service"

	// Search
	FieldIndex    = "index"
	FieldQuery    = "query"
	FieldCount    = "count"
	FieldCacheHit = "cache_hit"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
