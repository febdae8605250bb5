package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldServiceName = "service_name"
	FieldPlanName    = "plan_name"
	FieldAmountCents = "amount_cents"
	FieldRangeKey    = "range"
	FieldCount       = "count"
	FieldBackend     = "backend"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentServices = "services"
	ComponentPlans    = "plans"
	ComponentReport   = "report"
	ComponentStorage  = "storage"
	ComponentCache    = "cache"
	ComponentBackend  = "backend"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpClear    = "clear"
	OpImport   = "import"
	OpConsume  = "consume"
	OpRenew    = "renew"
	OpParse    = "parse"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
