package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldQueryLen    = "query_len"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldUserID      = "user_id"
	FieldTxID        = "transaction_id"
	FieldKind        = "kind"
	FieldAmount      = "amount"
	FieldCategoryID  = "category_id"
	FieldReport      = "report"
	FieldSortKey     = "sort"
	FieldSortDir     = "dir"
	FieldCurrency    = "currency"
	FieldEventType   = "event_type"
	FieldSheetsRange = "sheets_range"
)

// Components defines standard component names
const (
	ComponentApp         = "app"
	ComponentHTTP        = "http"
	ComponentTransaction = "transaction"
	ComponentAuth        = "auth"
	ComponentReport      = "report"
	ComponentStorage     = "storage"
	ComponentSession     = "session"
	ComponentAMQP        = "amqp"
	ComponentWorker      = "worker"
	ComponentSheets      = "sheets"
	ComponentRateLimit   = "rate_limit"
	ComponentTrace       = "trace"
	ComponentBackend     = "backend"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpReport   = "report"
	OpExport   = "export"
	OpLogin    = "login"
	OpRegister = "register"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields builds a flat attribute list for slog.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	if requestID != "" {
		f[FieldRequestID] = requestID
	}
	return f
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

func (f LogFields) WithUser(userID int64) LogFields {
	if userID > 0 {
		f[FieldUserID] = userID
	}
	return f
}

// WithTransaction records identifying fields only; descriptions stay out
// of the logs.
func (f LogFields) WithTransaction(id int64, kind, amount string, categoryID int64) LogFields {
	f[FieldTxID] = id
	f[FieldKind] = kind
	f[FieldAmount] = amount
	if categoryID > 0 {
		f[FieldCategoryID] = categoryID
	}
	return f
}

// WithHTTPRequest logs the query string only by length, since it carries
// free-text searches.
func (f LogFields) WithHTTPRequest(method, path, rawQuery, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQueryLen] = len(rawQuery)
	if userAgent != "" {
		f[FieldUserAgent] = userAgent
	}
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
