package enrollment

import (
	"context"
	"fmt"

	"github.com/dalemusser/groupbook/internal/app/store"
	"github.com/dalemusser/groupbook/internal/app/system/inputval"
	"github.com/dalemusser/groupbook/internal/app/system/normalize"
	"github.com/dalemusser/groupbook/internal/domain/models"
	"go.uber.org/zap"
)

// ownerFor resolves which instructor a preference or schedule belongs to.
// Instructors always own what they write; admins name the instructor.
func (s *Service) ownerFor(ctx context.Context, actor Actor, requested int64) (int64, error) {
	switch {
	case actor.Role == models.RoleInstructor:
		if requested != 0 && requested != actor.ID {
			return 0, ErrForbidden
		}
		return actor.ID, nil
	case actor.isAdmin():
		if err := s.requireInstructor(ctx, requested); err != nil {
			return 0, err
		}
		return requested, nil
	default:
		return 0, ErrForbidden
	}
}

// canTouch reports whether actor may read or change a record owned by
// instructorID.
func (a Actor) canTouch(instructorID int64) bool {
	return a.isAdmin() || (a.Role == models.RoleInstructor && a.ID == instructorID)
}

// listScope narrows a listing to the actor's own records unless the actor
// is an admin, who may optionally filter by instructor.
func (a Actor) listScope(instructorID *int64) (store.InstructorFilter, error) {
	switch {
	case a.isAdmin():
		return store.InstructorFilter{InstructorID: instructorID}, nil
	case a.Role == models.RoleInstructor:
		if instructorID != nil && *instructorID != a.ID {
			return store.InstructorFilter{}, ErrForbidden
		}
		id := a.ID
		return store.InstructorFilter{InstructorID: &id}, nil
	default:
		return store.InstructorFilter{}, ErrForbidden
	}
}

// CreatePreference records a weekly teaching window.
func (s *Service) CreatePreference(ctx context.Context, actor Actor, p models.InstructorPreference) (models.InstructorPreference, error) {
	owner, err := s.ownerFor(ctx, actor, p.InstructorID)
	if err != nil {
		return models.InstructorPreference{}, err
	}
	p.InstructorID = owner
	p.DayOfWeek = normalize.Day(p.DayOfWeek)
	if err := inputval.ValidatePreference(p).Err(); err != nil {
		return models.InstructorPreference{}, err
	}
	out, err := s.store.CreatePreference(ctx, p)
	if err != nil {
		return models.InstructorPreference{}, fmt.Errorf("create preference: %w", err)
	}
	s.log.Info("preference created",
		zap.Int64("preference_id", out.ID),
		zap.Int64("instructor_id", owner))
	return out, nil
}

func (s *Service) GetPreference(ctx context.Context, actor Actor, id int64) (models.InstructorPreference, error) {
	p, err := s.store.GetPreference(ctx, id)
	if err != nil {
		return models.InstructorPreference{}, err
	}
	if !actor.canTouch(p.InstructorID) {
		return models.InstructorPreference{}, ErrForbidden
	}
	return p, nil
}

func (s *Service) ListPreferences(ctx context.Context, actor Actor, instructorID *int64, page store.Page) ([]models.InstructorPreference, error) {
	f, err := actor.listScope(instructorID)
	if err != nil {
		return nil, err
	}
	return s.store.ListPreferences(ctx, f, page.Normalize())
}

// UpdatePreference replaces the window of an existing preference. The
// owning instructor never changes.
func (s *Service) UpdatePreference(ctx context.Context, actor Actor, p models.InstructorPreference) (models.InstructorPreference, error) {
	cur, err := s.GetPreference(ctx, actor, p.ID)
	if err != nil {
		return models.InstructorPreference{}, err
	}
	p.InstructorID = cur.InstructorID
	p.CreatedAt = cur.CreatedAt
	p.DayOfWeek = normalize.Day(p.DayOfWeek)
	if err := inputval.ValidatePreference(p).Err(); err != nil {
		return models.InstructorPreference{}, err
	}
	out, err := s.store.UpdatePreference(ctx, p)
	if err != nil {
		return models.InstructorPreference{}, fmt.Errorf("update preference: %w", err)
	}
	return out, nil
}

// CreateSchedule records an absolute booked range for an instructor.
func (s *Service) CreateSchedule(ctx context.Context, actor Actor, sc models.InstructorSchedule) (models.InstructorSchedule, error) {
	owner, err := s.ownerFor(ctx, actor, sc.InstructorID)
	if err != nil {
		return models.InstructorSchedule{}, err
	}
	sc.InstructorID = owner
	if err := inputval.ValidateSchedule(sc).Err(); err != nil {
		return models.InstructorSchedule{}, err
	}
	out, err := s.store.CreateSchedule(ctx, sc)
	if err != nil {
		return models.InstructorSchedule{}, fmt.Errorf("create schedule: %w", err)
	}
	s.log.Info("schedule created",
		zap.Int64("schedule_id", out.ID),
		zap.Int64("instructor_id", owner),
		zap.Time("start_time", out.StartTime))
	return out, nil
}

func (s *Service) GetSchedule(ctx context.Context, actor Actor, id int64) (models.InstructorSchedule, error) {
	sc, err := s.store.GetSchedule(ctx, id)
	if err != nil {
		return models.InstructorSchedule{}, err
	}
	if !actor.canTouch(sc.InstructorID) {
		return models.InstructorSchedule{}, ErrForbidden
	}
	return sc, nil
}

func (s *Service) ListSchedules(ctx context.Context, actor Actor, instructorID *int64, page store.Page) ([]models.InstructorSchedule, error) {
	f, err := actor.listScope(instructorID)
	if err != nil {
		return nil, err
	}
	return s.store.ListSchedules(ctx, f, page.Normalize())
}

func (s *Service) UpdateSchedule(ctx context.Context, actor Actor, sc models.InstructorSchedule) (models.InstructorSchedule, error) {
	cur, err := s.GetSchedule(ctx, actor, sc.ID)
	if err != nil {
		return models.InstructorSchedule{}, err
	}
	sc.InstructorID = cur.InstructorID
	sc.CreatedAt = cur.CreatedAt
	if err := inputval.ValidateSchedule(sc).Err(); err != nil {
		return models.InstructorSchedule{}, err
	}
	out, err := s.store.UpdateSchedule(ctx, sc)
	if err != nil {
		return models.InstructorSchedule{}, fmt.Errorf("update schedule: %w", err)
	}
	return out, nil
}
