// Package http provides HTTP utilities including chi-compatible error handling
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	cdperrors "github.com/chainsafe/cdp-sdk-go/pkg/errors"
)

// HandlerFunc defines a function that returns an error for clean error handling
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// HandleError wraps an error-returning HandlerFunc into a standard http.HandlerFunc
// This allows using clean error-returning handlers with any router (chi, http.ServeMux, etc.)
//
// Usage with chi:
//
//	r.Post("/v1/tokens", http.HandleError(handler.issue))
func HandleError(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			DefaultErrorHandler(w, err)
		}
	}
}

type errorResponse struct {
	ErrMsg     string `json:"error"`
	ErrMsgCode int    `json:"code"`
}

// StatusOf returns the status DefaultErrorHandler answers err with.
func StatusOf(err error) int {
	code, _ := resolve(err)
	return code
}

// resolve picks the status and the caller-safe message for err. Only
// service and validation errors expose their message.
func resolve(err error) (int, string) {
	var svcErr *cdperrors.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.StatusCode(), svcErr.Message
	}
	var valErr *cdperrors.ValidationError
	if errors.As(err, &valErr) {
		return http.StatusBadRequest, valErr.Error()
	}
	return http.StatusInternalServerError, "Unexpected Service Error"
}

// DefaultErrorHandler handles errors returned from HTTP handlers
func DefaultErrorHandler(w http.ResponseWriter, err error) {
	code, msg := resolve(err)
	WriteJSON(w, code, &errorResponse{ErrMsg: msg, ErrMsgCode: code})
}

// WriteJSON writes v as the JSON response body with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
