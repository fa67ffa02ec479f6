package paybridge

import (
	"fmt"
	"strings"
)

// ErrorCode is a symbolic error code as defined by the PayBridge API
// contract. Validation codes are produced locally in check order;
// REQUEST_ISSUE is the single code covering everything that went wrong
// in transit.
type ErrorCode string

const (
	ErrCodeMissingRedirectURI       ErrorCode = "MISSING_REDIRECT_URI"
	ErrCodeInvalidScopesFormat      ErrorCode = "INVALID_SCOPES_FORMAT"
	ErrCodeMissingAuthorizationCode ErrorCode = "MISSING_AUTHORIZATION_CODE"
	ErrCodeMissingToken             ErrorCode = "MISSING_TOKEN"
	ErrCodeMissingAmount            ErrorCode = "MISSING_AMOUNT"
	ErrCodeMinimumAmountIssue       ErrorCode = "MINIMUM_AMOUNT_ISSUE"
	ErrCodeMissingCurrency          ErrorCode = "MISSING_CURRENCY"
	ErrCodeMissingDescription       ErrorCode = "MISSING_DESCRIPTION"
	ErrCodeMissingPaymentID         ErrorCode = "MISSING_PAYMENT_ID"
	ErrCodeRequestIssue             ErrorCode = "REQUEST_ISSUE"
)

// ValidationError reports caller-supplied arguments that failed contract
// checks. Codes preserves check order and contains every failure, not
// just the first; no network call was made.
type ValidationError struct {
	Codes []ErrorCode
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	codes := make([]string, len(e.Codes))
	for i, c := range e.Codes {
		codes[i] = string(c)
	}
	return "paybridge: validation failed: " + strings.Join(codes, ", ")
}

// newValidationError wraps the collected codes, or returns nil when all
// checks passed.
func newValidationError(codes []ErrorCode) error {
	if len(codes) == 0 {
		return nil
	}
	return &ValidationError{Codes: codes}
}

// RemoteError reports a well-formed error response from the PayBridge
// service. Errors carries the remote `error`/`errors` content verbatim.
type RemoteError struct {
	StatusCode int
	Errors     []string
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	return fmt.Sprintf("paybridge: remote error (%d): %s", e.StatusCode, strings.Join(e.Errors, ", "))
}

// TransportError reports a failure between the SDK and the service:
// network errors, circuit breaker rejections, non-JSON bodies, and
// malformed response envelopes. Code is always REQUEST_ISSUE since no
// finer detail is recoverable.
type TransportError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("paybridge: %s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("paybridge: %s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// newTransportError creates a TransportError carrying the REQUEST_ISSUE code.
func newTransportError(message string, err error) *TransportError {
	return &TransportError{
		Code:    ErrCodeRequestIssue,
		Message: message,
		Err:     err,
	}
}

// Codes extracts the symbolic error codes from any SDK error. Validation
// errors yield their ordered code list, transport errors yield
// [REQUEST_ISSUE], and remote errors yield nil (their content is the
// service's, not the SDK's).
func Codes(err error) []ErrorCode {
	switch e := err.(type) {
	case *ValidationError:
		return e.Codes
	case *TransportError:
		return []ErrorCode{e.Code}
	default:
		return nil
	}
}
