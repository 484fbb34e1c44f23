package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Actor (matches pkg/middleware/auth.go keys)
	FieldUserID    = "user_id"
	FieldUserEmail = "user_email"

	// Service
	FieldService = "service"

	// Cache
	FieldCacheKey       = "cache_key"
	FieldCacheNamespace = "cache_namespace"

	// Domain
	FieldPropertyID = "property_id"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
