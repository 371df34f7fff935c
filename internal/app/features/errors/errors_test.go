package errors_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/groupbook/internal/app/enrollment"
	uierrors "github.com/dalemusser/groupbook/internal/app/features/errors"
	"github.com/dalemusser/groupbook/internal/app/store"
	"github.com/dalemusser/groupbook/internal/app/system/inputval"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"capacity", enrollment.ErrCapacityExceeded, http.StatusConflict, uierrors.CodeCapacityExceeded},
		{"wrapped capacity", fmt.Errorf("register: %w", enrollment.ErrCapacityExceeded), http.StatusConflict, uierrors.CodeCapacityExceeded},
		{"group started", enrollment.ErrGroupStarted, http.StatusConflict, uierrors.CodeGroupStarted},
		{"group missing", enrollment.ErrGroupNotFound, http.StatusNotFound, uierrors.CodeNotFound},
		{"store missing", store.ErrNotFound, http.StatusNotFound, uierrors.CodeNotFound},
		{"forbidden", enrollment.ErrForbidden, http.StatusForbidden, uierrors.CodeForbidden},
		{"not visitor", enrollment.ErrNotVisitor, http.StatusForbidden, uierrors.CodeForbidden},
		{"duplicate", store.ErrDuplicate, http.StatusConflict, uierrors.CodeDuplicate},
		{"conflict", store.ErrConflict, http.StatusConflict, uierrors.CodeConflict},
		{"validation", &inputval.ValidationError{Errors: []inputval.FieldError{{Rule: inputval.RuleInvalidCapacity}}}, http.StatusUnprocessableEntity, uierrors.CodeValidation},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, uierrors.CodeTimeout},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, uierrors.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := uierrors.Classify(tt.err)
			if status != tt.status || code != tt.code {
				t.Errorf("Classify = %d %q, want %d %q", status, code, tt.status, tt.code)
			}
		})
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) uierrors.Response {
	t.Helper()
	var resp uierrors.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestHandle_ValidationError(t *testing.T) {
	el := uierrors.NewErrorLogger(zap.NewNop())
	ve := &inputval.ValidationError{Errors: []inputval.FieldError{
		{Field: "end_time", Rule: inputval.RuleInvalidTimeRange, Message: "end_time must be after start_time"},
		{Field: "capacity", Rule: inputval.RuleInvalidCapacity, Message: "capacity must be at least 1"},
	}}

	rec := httptest.NewRecorder()
	el.Handle(rec, httptest.NewRequest("POST", "/api/v1/groups", nil), "create group", ve)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode(t, rec)
	if resp.Rule != inputval.RuleInvalidTimeRange || len(resp.Fields) != 2 {
		t.Errorf("unexpected body %+v", resp)
	}
}

func TestHandle_ServerErrorIsLoggedAndHidden(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	el := uierrors.NewErrorLogger(zap.New(core))

	rec := httptest.NewRecorder()
	el.Handle(rec, httptest.NewRequest("GET", "/api/v1/groups", nil), "list groups", errors.New("socket closed"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp := decode(t, rec); resp.Message == "socket closed" {
		t.Error("internal error text must not reach the client")
	}
	if logs.Len() != 1 {
		t.Errorf("expected one error log, got %d", logs.Len())
	}
}

func TestHandle_CapacityExceeded(t *testing.T) {
	rec := httptest.NewRecorder()
	uierrors.NewErrorLogger(nil).Handle(rec, httptest.NewRequest("POST", "/api/v1/registrations", nil), "register", enrollment.ErrCapacityExceeded)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp := decode(t, rec); resp.Error != uierrors.CodeCapacityExceeded {
		t.Errorf("error code = %q", resp.Error)
	}
}

func TestFallbackHandlers(t *testing.T) {
	rec := httptest.NewRecorder()
	uierrors.NotFound(rec, httptest.NewRequest("GET", "/nope", nil))
	if rec.Code != http.StatusNotFound || decode(t, rec).Error != uierrors.CodeNotFound {
		t.Errorf("NotFound wrote %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	uierrors.MethodNotAllowed(rec, httptest.NewRequest("DELETE", "/api/v1/groups", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("MethodNotAllowed wrote %d", rec.Code)
	}
}
