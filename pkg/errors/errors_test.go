package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"testing"
)

func TestParseAPIError_CDPBody(t *testing.T) {
	body := []byte(`{"errorType":"not_found","errorMessage":"account not found","correlationId":"abc","errorLink":"https://docs.cdp.coinbase.com/api-reference/v2/errors#not-found"}`)

	apiErr := ParseAPIError(http.StatusNotFound, nil, body)

	if apiErr.ErrorType != "not_found" {
		t.Fatalf("expected errorType %q, got %q", "not_found", apiErr.ErrorType)
	}
	if apiErr.CorrelationID != "abc" {
		t.Fatalf("expected correlation id %q, got %q", "abc", apiErr.CorrelationID)
	}
	if want := "API error [404] not_found: account not found"; apiErr.Error() != want {
		t.Fatalf("expected message %q, got %q", want, apiErr.Error())
	}
	if !IsNotFound(fmt.Errorf("get account: %w", apiErr)) {
		t.Fatalf("expected wrapped APIError to be classified as not found")
	}
}

func TestParseAPIError_PlainBodyAndHeaderCorrelation(t *testing.T) {
	h := http.Header{}
	h.Set(CorrelationIDHeader, "corr-1")

	apiErr := ParseAPIError(http.StatusBadGateway, h, []byte("upstream exploded"))

	if apiErr.ErrorType != "bad_gateway" {
		t.Fatalf("expected default error type, got %q", apiErr.ErrorType)
	}
	if apiErr.ErrorMessage != "upstream exploded" {
		t.Fatalf("expected raw body as message, got %q", apiErr.ErrorMessage)
	}
	if apiErr.CorrelationID != "corr-1" {
		t.Fatalf("expected header correlation id, got %q", apiErr.CorrelationID)
	}
	if !IsRetryable(apiErr) {
		t.Fatalf("expected 502 to be retryable")
	}
}

func TestParseAPIError_EmptyBody(t *testing.T) {
	apiErr := ParseAPIError(http.StatusConflict, nil, nil)
	if apiErr.ErrorMessage != http.StatusText(http.StatusConflict) {
		t.Fatalf("expected status text, got %q", apiErr.ErrorMessage)
	}
	if !IsConflict(apiErr) {
		t.Fatalf("expected conflict category")
	}
	if IsRetryable(apiErr) {
		t.Fatalf("409 must not be retryable")
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationError("address", "either address or name must be provided")
	if want := "Validation error for 'address': either address or name must be provided"; err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
	if !Is(err, CategoryDataError) {
		t.Fatalf("expected data error category")
	}

	bare := &ValidationError{Message: "options are required"}
	if bare.Error() != "options are required" {
		t.Fatalf("expected bare message, got %q", bare.Error())
	}
}

func TestNewNetworkError_Classification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantType  NetworkErrorType
		retryable bool
	}{
		{"refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, NetworkConnectionRefused, true},
		{"reset", fmt.Errorf("read: %w", syscall.ECONNRESET), NetworkConnectionReset, true},
		{"dns", &net.DNSError{Err: "no such host", Name: "api.cdp.coinbase.com"}, NetworkDNSFailure, false},
		{"deadline", context.DeadlineExceeded, NetworkTimeout, true},
		{"other", errors.New("boom"), NetworkUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewNetworkError(tt.err)
			var netErr *NetworkError
			if !errors.As(err, &netErr) {
				t.Fatalf("expected NetworkError, got %T", err)
			}
			if netErr.Type != tt.wantType {
				t.Fatalf("expected type %q, got %q", tt.wantType, netErr.Type)
			}
			if netErr.Retryable != tt.retryable {
				t.Fatalf("expected retryable=%v, got %v", tt.retryable, netErr.Retryable)
			}
		})
	}
}

func TestNewNetworkError_CanceledPassesThrough(t *testing.T) {
	err := NewNetworkError(context.Canceled)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		t.Fatalf("cancellation must not be wrapped as a network error")
	}
}

func TestServiceErrorStatusCode(t *testing.T) {
	err := BadRequestError(nil, "invalid JSON")
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ServiceError")
	}
	if svcErr.StatusCode() != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", svcErr.StatusCode())
	}
	if CategoryOf(nil) != CategoryNoError {
		t.Fatalf("expected CategoryNoError for nil")
	}
	if CategoryOf(errors.New("x")) != CategoryGeneralError {
		t.Fatalf("expected CategoryGeneralError for foreign errors")
	}
	if !IsInternalError(GeneralError(nil)) {
		t.Fatalf("expected general error to be internal")
	}
}

func TestAuthErrorCategory(t *testing.T) {
	err := WalletSecretError("wallet secret is required", nil)
	if !Is(err, CategoryAuthentication) {
		t.Fatalf("expected authentication category")
	}
	if StatusForCategory(CategoryOf(err)) != http.StatusUnauthorized {
		t.Fatalf("expected 401 for authentication errors")
	}
}
