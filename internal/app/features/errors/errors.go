// internal/app/features/errors/errors.go
package errors

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/groupbook/internal/app/enrollment"
	"github.com/dalemusser/groupbook/internal/app/store"
	"github.com/dalemusser/groupbook/internal/app/system/inputval"
	"github.com/dalemusser/groupbook/internal/app/system/requestid"
	"go.uber.org/zap"
)

// ErrorLogger logs handler failures with request context and writes the
// matching JSON error response.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger creates an ErrorLogger. A nil logger is replaced with a no-op.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{log: logger}
}

func (e *ErrorLogger) logger(r *http.Request) *zap.Logger {
	return requestid.Logger(r, e.log).With(
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
}

// LogServerError logs err at error level and writes a 500 with userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.logger(r).Error(msg, zap.Error(err))
	if userMsg == "" {
		userMsg = "An internal error occurred."
	}
	WriteError(w, http.StatusInternalServerError, CodeInternal, userMsg)
}

// LogBadRequest logs at warn level and writes a 400 with userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.logger(r).Warn(msg, zap.Error(err))
	WriteError(w, http.StatusBadRequest, CodeBadRequest, userMsg)
}

// LogForbidden logs at warn level and writes a 403.
func (e *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, msg string) {
	e.logger(r).Warn(msg)
	WriteError(w, http.StatusForbidden, CodeForbidden, "You do not have permission to do that.")
}

// Handle classifies err and writes the matching response. Domain errors map
// to 4xx codes and are logged at debug; anything unrecognized is a 500.
func (e *ErrorLogger) Handle(w http.ResponseWriter, r *http.Request, op string, err error) {
	var ve *inputval.ValidationError
	if stderrors.As(err, &ve) {
		e.logger(r).Debug(op+": validation failed", zap.String("rule", ve.Rule()))
		WriteJSON(w, http.StatusUnprocessableEntity, Response{
			Error:   CodeValidation,
			Message: ve.Error(),
			Rule:    ve.Rule(),
			Fields:  ve.Errors,
		})
		return
	}

	status, code := Classify(err)
	if status == http.StatusInternalServerError {
		e.LogServerError(w, r, op+" failed", err, "")
		return
	}
	e.logger(r).Debug(op+" rejected", zap.Error(err), zap.Int("status", status))
	WriteError(w, status, code, message(err, status))
}

// Classify maps an error to an HTTP status and error code.
func Classify(err error) (int, string) {
	var ve *inputval.ValidationError
	switch {
	case err == nil:
		return http.StatusOK, ""
	case stderrors.As(err, &ve):
		return http.StatusUnprocessableEntity, CodeValidation
	case stderrors.Is(err, enrollment.ErrCapacityExceeded):
		return http.StatusConflict, CodeCapacityExceeded
	case stderrors.Is(err, enrollment.ErrGroupStarted):
		return http.StatusConflict, CodeGroupStarted
	case stderrors.Is(err, enrollment.ErrGroupNotFound),
		stderrors.Is(err, enrollment.ErrVisitorNotFound),
		stderrors.Is(err, enrollment.ErrRegistrationNotFound),
		stderrors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case stderrors.Is(err, enrollment.ErrForbidden),
		stderrors.Is(err, enrollment.ErrNotVisitor):
		return http.StatusForbidden, CodeForbidden
	case stderrors.Is(err, enrollment.ErrNotInstructor):
		return http.StatusBadRequest, CodeBadRequest
	case stderrors.Is(err, store.ErrDuplicate):
		return http.StatusConflict, CodeDuplicate
	case stderrors.Is(err, store.ErrConflict):
		return http.StatusConflict, CodeConflict
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, CodeTimeout
	}
	return http.StatusInternalServerError, CodeInternal
}

func message(err error, status int) string {
	switch {
	case stderrors.Is(err, store.ErrDuplicate):
		return "A record with that value already exists."
	case status == http.StatusGatewayTimeout:
		return "The request took too long."
	}
	return err.Error()
}
