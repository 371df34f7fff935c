// internal/app/features/groups/handler.go
package groups

import (
	"time"

	"github.com/dalemusser/groupbook/internal/app/enrollment"
	uierrors "github.com/dalemusser/groupbook/internal/app/features/errors"
	"github.com/dalemusser/groupbook/internal/app/system/auditlog"
	"github.com/dalemusser/groupbook/internal/app/system/timeouts"
	"github.com/dalemusser/groupbook/internal/domain/models"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the groups feature.
// The list, edit, and roster handlers share the enrollment service and
// timeout configuration; edits are also recorded in the audit trail.
type Handler struct {
	Svc      *enrollment.Service
	ErrLog   *uierrors.ErrorLogger
	Audit    *auditlog.Logger
	Timeouts timeouts.Config
	Log      *zap.Logger
}

// NewHandler constructs a new groups Handler. It is typically called
// from the bootstrap BuildHandler function.
func NewHandler(svc *enrollment.Service, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, to timeouts.Config, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:      svc,
		ErrLog:   errLog,
		Audit:    audit,
		Timeouts: to,
		Log:      logger,
	}
}

// groupInput is the JSON body of create and update requests.
type groupInput struct {
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Capacity     int       `json:"capacity"`
	MaxMale      int       `json:"max_male"`
	MaxFemale    int       `json:"max_female"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	InstructorID *int64    `json:"instructor_id"`
}

func (in groupInput) group() models.Group {
	return models.Group{
		Name:         in.Name,
		Description:  in.Description,
		Capacity:     in.Capacity,
		MaxMale:      in.MaxMale,
		MaxFemale:    in.MaxFemale,
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
		InstructorID: in.InstructorID,
	}
}

// listResponse wraps paged list results.
type listResponse[T any] struct {
	Items  []T `json:"items"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
