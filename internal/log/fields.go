package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldQuery         = "query"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldStore         = "store"
	FieldEvent         = "event"
	FieldEventID       = "event_id"
	FieldTarget        = "target"
	FieldWalletID      = "wallet_id"
	FieldFromWalletID  = "from_wallet_id"
	FieldToWalletID    = "to_wallet_id"
	FieldTransactionID = "transaction_id"
	FieldDebtID        = "debt_id"
	FieldDebtType      = "debt_type"
	FieldRemaining     = "remaining"
	FieldIsPaid        = "is_paid"
	FieldEntityID      = "entity_id"
	FieldAmount        = "amount"
	FieldCount         = "count"
	FieldUserID        = "user_id"
)

// Components
const (
	ComponentApp      = "app"
	ComponentAPI      = "api"
	ComponentStore    = "store"
	ComponentRefresh  = "refresh"
	ComponentSession  = "session"
	ComponentStorage  = "storage"
	ComponentEvents   = "events"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentExport   = "export"
	ComponentCache    = "cache"
	ComponentFakeAPI  = "fakeapi"
	ComponentCLI      = "cli"
)

// Operations
const (
	OpFetch         = "fetch"
	OpCreate        = "create"
	OpUpdate        = "update"
	OpDelete        = "delete"
	OpTransfer      = "transfer"
	OpPay           = "pay"
	OpContribute    = "contribute"
	OpRefresh       = "refresh"
	OpPublish       = "publish"
	OpConsume       = "consume"
	OpExport        = "export"
	OpLogin         = "login"
	OpLogout        = "logout"
	OpShutdown      = "shutdown"
	OpStartup       = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithStore adds the store name
func (f LogFields) WithStore(name string) LogFields {
	f[FieldStore] = name
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithEntity adds the entity id touched by an operation
func (f LogFields) WithEntity(id int64) LogFields {
	f[FieldEntityID] = id
	return f
}

// WithHTTPRequest adds HTTP request fields
func (f LogFields) WithHTTPRequest(method, path, query string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	if query != "" {
		f[FieldQuery] = query
	}
	return f
}

// WithHTTPResponse adds HTTP response fields
func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
