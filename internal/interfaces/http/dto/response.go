package dto

import "net/http"

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// API error codes not covered by the domain taxonomy
const (
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// NewErrorResponseWithRequestID creates an error response carrying the request id
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      code,
			Message:   message,
			RequestID: requestID,
		},
	}
}

// statusByCode maps stable error codes to HTTP status codes. Validation
// rejections are 422: the request was well-formed but the entry is wrong.
var statusByCode = map[string]int{
	ErrCodeBadRequest:             http.StatusBadRequest,
	ErrCodeNotFound:               http.StatusNotFound,
	"ENTRY_NOT_FOUND":             http.StatusNotFound,
	"UNBALANCED_ENTRY":            http.StatusUnprocessableEntity,
	"MISSING_SUBLEDGER_DIMENSION": http.StatusUnprocessableEntity,
	"UNRESOLVABLE_ACCOUNT":        http.StatusUnprocessableEntity,
	"INVALID_LINE":                http.StatusUnprocessableEntity,
	"ACCOUNT_INACTIVE":            http.StatusUnprocessableEntity,
	"EMPTY_ENTRY":                 http.StatusUnprocessableEntity,
	"MISSING_CURRENCY":            http.StatusUnprocessableEntity,
	"INVALID_DATE":                http.StatusUnprocessableEntity,
	"NEGATIVE_AMOUNT":             http.StatusUnprocessableEntity,
	"MISSING_REFERENCE":           http.StatusUnprocessableEntity,
	"INVALID_PAYMENT_TYPE":        http.StatusUnprocessableEntity,
	"INVALID_AMOUNT":              http.StatusUnprocessableEntity,
	"TENANT_REQUIRED":             http.StatusBadRequest,
	"INVALID_INPUT":               http.StatusBadRequest,
	"PAYLOAD_MALFORMED":           http.StatusBadRequest,
	"UNKNOWN_EVENT_TYPE":          http.StatusBadRequest,
	"CURSOR_OUT_OF_RANGE":         http.StatusBadRequest,
	"STORE_UNAVAILABLE":           http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status for a stable error code
func GetHTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
