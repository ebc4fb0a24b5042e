package errors

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// CorrelationIDHeader is the response header CDP uses to identify a request.
const CorrelationIDHeader = "X-Correlation-Id"

// maxRawMessageLen bounds how much of a non-JSON error body ends up in the message.
const maxRawMessageLen = 512

// APIError is returned when the CDP API answers with a non-2xx status.
type APIError struct {
	StatusCode    int
	ErrorType     string
	ErrorMessage  string
	CorrelationID string
	ErrorLink     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error [%d] %s: %s", e.StatusCode, e.ErrorType, e.ErrorMessage)
}

// Category maps the status code to a Category.
func (e *APIError) Category() Category {
	return CategoryFromStatus(e.StatusCode)
}

type apiErrorBody struct {
	ErrorType     string `json:"errorType"`
	ErrorMessage  string `json:"errorMessage"`
	CorrelationID string `json:"correlationId"`
	ErrorLink     string `json:"errorLink"`
}

// ParseAPIError builds an APIError from a CDP error response. Bodies that are
// not the CDP error shape are kept as the message.
func ParseAPIError(status int, header http.Header, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var parsed apiErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		apiErr.ErrorType = parsed.ErrorType
		apiErr.ErrorMessage = parsed.ErrorMessage
		apiErr.CorrelationID = parsed.CorrelationID
		apiErr.ErrorLink = parsed.ErrorLink
	}

	if apiErr.ErrorType == "" {
		apiErr.ErrorType = defaultErrorType(status)
	}
	if apiErr.ErrorMessage == "" {
		msg := strings.TrimSpace(string(body))
		if len(msg) > maxRawMessageLen {
			msg = msg[:maxRawMessageLen]
		}
		if msg == "" {
			msg = http.StatusText(status)
		}
		apiErr.ErrorMessage = msg
	}
	if apiErr.CorrelationID == "" && header != nil {
		apiErr.CorrelationID = header.Get(CorrelationIDHeader)
	}
	return apiErr
}

func defaultErrorType(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "already_exists"
	case http.StatusUnprocessableEntity:
		return "idempotency_error"
	case http.StatusTooManyRequests:
		return "rate_limit_exceeded"
	case http.StatusBadGateway:
		return "bad_gateway"
	case http.StatusServiceUnavailable:
		return "service_unavailable"
	case http.StatusGatewayTimeout:
		return "timed_out"
	default:
		if status >= 500 {
			return "internal_server_error"
		}
		return "unknown"
	}
}

// NetworkErrorType classifies a failure that produced no HTTP response.
type NetworkErrorType string

const (
	NetworkTimeout           NetworkErrorType = "timeout"
	NetworkConnectionRefused NetworkErrorType = "connection_refused"
	NetworkConnectionReset   NetworkErrorType = "connection_reset"
	NetworkDNSFailure        NetworkErrorType = "dns_failure"
	NetworkTLSError          NetworkErrorType = "tls_error"
	NetworkUnknown           NetworkErrorType = "unknown"
)

// NetworkError wraps a transport level failure.
type NetworkError struct {
	Type      NetworkErrorType
	Retryable bool
	Err       error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error (%s): %v", e.Type, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Category returns CategoryNetwork, or CategoryConnectionTimeout for timeouts.
func (e *NetworkError) Category() Category {
	if e.Type == NetworkTimeout {
		return CategoryConnectionTimeout
	}
	return CategoryNetwork
}

// NewNetworkError classifies err. Context cancellation is returned unchanged.
func NewNetworkError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	t := ClassifyNetworkError(err)
	return &NetworkError{
		Type:      t,
		Retryable: t != NetworkTLSError && t != NetworkDNSFailure,
		Err:       err,
	}
}

// ClassifyNetworkError inspects err for well known transport failures.
func ClassifyNetworkError(err error) NetworkErrorType {
	if errors.Is(err, context.DeadlineExceeded) {
		return NetworkTimeout
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return NetworkTimeout
		}
		return NetworkDNSFailure
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NetworkTimeout
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return NetworkConnectionRefused
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return NetworkConnectionReset
	}
	var recordErr tls.RecordHeaderError
	var certErr *tls.CertificateVerificationError
	var unknownAuth x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	if errors.As(err, &recordErr) || errors.As(err, &certErr) ||
		errors.As(err, &unknownAuth) || errors.As(err, &hostErr) {
		return NetworkTLSError
	}
	return NetworkUnknown
}

// ValidationError reports invalid input rejected before any request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("Validation error for '%s': %s", e.Field, e.Message)
}

// Category returns CategoryDataError.
func (e *ValidationError) Category() Category { return CategoryDataError }

// NewValidationError returns a ValidationError for field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// AuthErrorKind identifies which step of credential handling failed.
type AuthErrorKind string

const (
	AuthKeyParse      AuthErrorKind = "key_parse"
	AuthJWTGeneration AuthErrorKind = "jwt_generation"
	AuthWalletSecret  AuthErrorKind = "wallet_secret"
)

// AuthError is returned when a token cannot be produced locally.
type AuthError struct {
	Kind    AuthErrorKind
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AuthError) Unwrap() error { return e.Err }

// Category returns CategoryAuthentication.
func (e *AuthError) Category() Category { return CategoryAuthentication }

// KeyParseError returns an AuthError of kind AuthKeyParse.
func KeyParseError(message string, err error) error {
	return &AuthError{Kind: AuthKeyParse, Message: message, Err: err}
}

// JWTGenerationError returns an AuthError of kind AuthJWTGeneration.
func JWTGenerationError(message string, err error) error {
	return &AuthError{Kind: AuthJWTGeneration, Message: message, Err: err}
}

// WalletSecretError returns an AuthError of kind AuthWalletSecret.
func WalletSecretError(message string, err error) error {
	return &AuthError{Kind: AuthWalletSecret, Message: message, Err: err}
}

// StatusCode returns the HTTP status carried by err, 0 when there is none.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsRetryable reports whether err is a transient failure worth retrying.
func IsRetryable(err error) bool {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Retryable
	}
	switch StatusCode(err) {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
