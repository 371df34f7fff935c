// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/groupbook/internal/app/system/ratelimit"
	"github.com/dalemusser/groupbook/internal/app/system/requestid"
	"go.uber.org/zap"
)

// Categories.
const (
	CategoryAuth  = "auth"
	CategoryAdmin = "admin"
)

// Event types.
const (
	EventLoginSuccess       = "login_success"
	EventLoginFailed        = "login_failed"
	EventLoginRateLimited   = "login_rate_limited"
	EventLogout             = "logout"
	EventUserCreated        = "user_created"
	EventUserUpdated        = "user_updated"
	EventGroupCreated       = "group_created"
	EventGroupUpdated       = "group_updated"
	EventInstructorAssigned = "instructor_assigned"
)

// Modes for Config fields.
const (
	ModeLog = "log"
	ModeOff = "off"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls authentication events (login, logout). "log" or "off".
	Auth string
	// Admin controls account and group administration events. "log" or "off".
	Admin string
}

// Event is one audited action.
type Event struct {
	Category      string
	EventType     string
	UserID        int64 // subject of the event; 0 when unknown
	ActorID       int64 // who performed it; 0 for anonymous
	Success       bool
	FailureReason string
	Details       map[string]string
}

// Logger writes audit events as structured log lines tagged audit=true.
type Logger struct {
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(zapLog *zap.Logger, config Config) *Logger {
	return &Logger{zapLog: zapLog, config: config}
}

// Log records an audit event unless its category is switched off.
// A nil Logger is a no-op, so handlers built without auditing still work.
func (l *Logger) Log(ctx context.Context, r *http.Request, event Event) {
	if l == nil {
		return
	}

	setting := ModeLog
	switch event.Category {
	case CategoryAuth:
		setting = l.config.Auth
	case CategoryAdmin:
		setting = l.config.Admin
	}
	if setting == ModeOff {
		return
	}

	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}
	if r != nil {
		fields = append(fields,
			zap.String("ip", ratelimit.ClientIP(r)),
			zap.String("request_id", requestid.Get(r.Context())))
	}
	if event.UserID != 0 {
		fields = append(fields, zap.Int64("user_id", event.UserID))
	}
	if event.ActorID != 0 {
		fields = append(fields, zap.Int64("actor_id", event.ActorID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// --- Authentication Events ---

func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID int64, email string) {
	l.Log(ctx, r, Event{
		Category:  CategoryAuth,
		EventType: EventLoginSuccess,
		UserID:    userID,
		Success:   true,
		Details:   map[string]string{"email": email},
	})
}

// LoginFailed logs a rejected credential check. The reason is not shown to
// the caller, only recorded here.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, email, reason string) {
	l.Log(ctx, r, Event{
		Category:      CategoryAuth,
		EventType:     EventLoginFailed,
		FailureReason: reason,
		Details:       map[string]string{"attempted_email": email},
	})
}

func (l *Logger) LoginRateLimited(ctx context.Context, r *http.Request, email, reason string) {
	l.Log(ctx, r, Event{
		Category:      CategoryAuth,
		EventType:     EventLoginRateLimited,
		FailureReason: "rate limited",
		Details: map[string]string{
			"attempted_email": email,
			"reason":          reason,
		},
	})
}

func (l *Logger) Logout(ctx context.Context, r *http.Request, userID int64) {
	l.Log(ctx, r, Event{
		Category:  CategoryAuth,
		EventType: EventLogout,
		UserID:    userID,
		Success:   true,
	})
}

// --- Admin Events ---

func (l *Logger) UserCreated(ctx context.Context, r *http.Request, actorID, userID int64, role string) {
	l.Log(ctx, r, Event{
		Category:  CategoryAdmin,
		EventType: EventUserCreated,
		UserID:    userID,
		ActorID:   actorID,
		Success:   true,
		Details:   map[string]string{"role": role},
	})
}

func (l *Logger) UserUpdated(ctx context.Context, r *http.Request, actorID, userID int64, fieldsChanged string) {
	l.Log(ctx, r, Event{
		Category:  CategoryAdmin,
		EventType: EventUserUpdated,
		UserID:    userID,
		ActorID:   actorID,
		Success:   true,
		Details:   map[string]string{"fields_changed": fieldsChanged},
	})
}

func (l *Logger) GroupCreated(ctx context.Context, r *http.Request, actorID, groupID int64, groupName string) {
	l.Log(ctx, r, Event{
		Category:  CategoryAdmin,
		EventType: EventGroupCreated,
		ActorID:   actorID,
		Success:   true,
		Details: map[string]string{
			"group_id":   intToString(groupID),
			"group_name": groupName,
		},
	})
}

func (l *Logger) GroupUpdated(ctx context.Context, r *http.Request, actorID, groupID int64) {
	l.Log(ctx, r, Event{
		Category:  CategoryAdmin,
		EventType: EventGroupUpdated,
		ActorID:   actorID,
		Success:   true,
		Details:   map[string]string{"group_id": intToString(groupID)},
	})
}

// InstructorAssigned logs an instructor change on a group. A nil
// instructorID records that the group was left without an instructor.
func (l *Logger) InstructorAssigned(ctx context.Context, r *http.Request, actorID, groupID int64, instructorID *int64) {
	inst := "none"
	if instructorID != nil {
		inst = intToString(*instructorID)
	}
	l.Log(ctx, r, Event{
		Category:  CategoryAdmin,
		EventType: EventInstructorAssigned,
		ActorID:   actorID,
		Success:   true,
		Details: map[string]string{
			"group_id":      intToString(groupID),
			"instructor_id": inst,
		},
	})
}

func intToString(i int64) string {
	return strconv.FormatInt(i, 10)
}
