package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldEvent       = "event"
	FieldTransaction = "transaction_id"
	FieldJar         = "jar"
	FieldAmountCents = "amount_cents"
	FieldTotalCents  = "total_cents"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentBackup  = "backup"
)

// Operations defines standard operation names
const (
	OpSave     = "save"
	OpLoad     = "load"
	OpPublish  = "publish"
	OpImport   = "import"
	OpExport   = "export"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
