package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound          = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput      = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrEntryNotFound     = NewDomainError("ENTRY_NOT_FOUND", "Journal entry not found")
	ErrChecksumMismatch  = NewDomainError("CHECKSUM_MISMATCH", "Stored event failed integrity verification")
	ErrStoreUnavailable  = NewDomainError("STORE_UNAVAILABLE", "Event store is unavailable")
	ErrTenantRequired    = NewDomainError("TENANT_REQUIRED", "Tenant context is required")
	ErrAccountNotFound   = NewDomainError("UNRESOLVABLE_ACCOUNT", "Account code cannot be resolved")
	ErrAccountInactive   = NewDomainError("ACCOUNT_INACTIVE", "Account is not active")
	ErrPayloadMalformed  = NewDomainError("PAYLOAD_MALFORMED", "Event payload does not match its declared schema")
	ErrUnknownEventType  = NewDomainError("UNKNOWN_EVENT_TYPE", "No payload schema registered for event type")
	ErrCursorOutOfRange  = NewDomainError("CURSOR_OUT_OF_RANGE", "Requested sequence is beyond the head of the log")
)
