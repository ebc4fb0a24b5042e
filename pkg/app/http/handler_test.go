package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	cdperrors "github.com/chainsafe/cdp-sdk-go/pkg/errors"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{name: "bad request", err: cdperrors.BadRequestError(nil, "invalid JSON"), wantCode: http.StatusBadRequest, wantMsg: "invalid JSON"},
		{name: "forbidden", err: cdperrors.ForbiddenError(nil, "host not allowed"), wantCode: http.StatusForbidden, wantMsg: "host not allowed"},
		{name: "general hides cause", err: cdperrors.GeneralError(errors.New("key exploded")), wantCode: http.StatusInternalServerError, wantMsg: "Internal Server Error"},
		{name: "validation", err: cdperrors.NewValidationError("path", "is required"), wantCode: http.StatusBadRequest, wantMsg: "Validation error for 'path': is required"},
		{name: "unknown", err: errors.New("boom"), wantCode: http.StatusInternalServerError, wantMsg: "Unexpected Service Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := HandleError(func(http.ResponseWriter, *http.Request) error { return tt.err })
			rec := httptest.NewRecorder()
			h(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d", tt.wantCode, rec.Code)
			}
			var got errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("failed to decode response JSON: %v", err)
			}
			if got.ErrMsg != tt.wantMsg {
				t.Fatalf("expected error %q, got %q", tt.wantMsg, got.ErrMsg)
			}
			if got.ErrMsgCode != tt.wantCode {
				t.Fatalf("expected code %d, got %d", tt.wantCode, got.ErrMsgCode)
			}
			if StatusOf(tt.err) != tt.wantCode {
				t.Fatalf("StatusOf mismatch")
			}
		})
	}
}

func TestHandleError_NoError(t *testing.T) {
	h := HandleError(func(w http.ResponseWriter, _ *http.Request) error {
		WriteJSON(w, http.StatusCreated, map[string]string{"ok": "yes"})
		return nil
	})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, rec.Code)
	}
}
