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
	FieldUsername = "username"

	// Service
	FieldService = "service"

	// Overlay domain
	FieldBroadcaster = "broadcaster"
	FieldAssetID     = "asset_id"
	FieldTopic       = "topic"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
