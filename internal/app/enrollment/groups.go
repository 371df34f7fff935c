package enrollment

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/groupbook/internal/app/store"
	"github.com/dalemusser/groupbook/internal/app/system/htmlsanitize"
	"github.com/dalemusser/groupbook/internal/app/system/inputval"
	"github.com/dalemusser/groupbook/internal/domain/capacity"
	"github.com/dalemusser/groupbook/internal/domain/models"
	"go.uber.org/zap"
)

// ListGroups returns groups with their occupancy, ordered by start time.
// A non-nil instructorID restricts to that instructor's groups; upcoming
// restricts to groups starting strictly after now.
func (s *Service) ListGroups(ctx context.Context, instructorID *int64, upcoming bool, page store.Page) ([]GroupView, error) {
	f := store.GroupFilter{InstructorID: instructorID}
	if upcoming {
		now := s.now()
		f.StartsAfter = &now
	}
	groups, err := s.store.ListGroups(ctx, f, page.Normalize())
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return s.Views(ctx, groups)
}

// CreateGroup validates and stores a new group. Instructors may only create
// groups they lead; an instructor who names no instructor is assigned.
func (s *Service) CreateGroup(ctx context.Context, actor Actor, g models.Group) (GroupView, error) {
	switch {
	case actor.isAdmin():
		if g.InstructorID != nil {
			if err := s.requireInstructor(ctx, *g.InstructorID); err != nil {
				return GroupView{}, err
			}
		}
	case actor.Role == models.RoleInstructor:
		if g.InstructorID == nil {
			id := actor.ID
			g.InstructorID = &id
		} else if *g.InstructorID != actor.ID {
			return GroupView{}, ErrForbidden
		}
	default:
		return GroupView{}, ErrForbidden
	}

	g = cleanGroup(g)
	if err := inputval.ValidateGroup(g).Err(); err != nil {
		return GroupView{}, err
	}
	created, err := s.store.CreateGroup(ctx, g)
	if err != nil {
		return GroupView{}, fmt.Errorf("create group: %w", err)
	}
	s.log.Info("group created",
		zap.Int64("group_id", created.ID),
		zap.Int64("actor_id", actor.ID),
		zap.Int("capacity", created.Capacity))
	return GroupView{Group: created, Snapshot: capacity.Of(capacity.LimitsOf(created), capacity.Counts{})}, nil
}

// UpdateGroup replaces a group's editable fields after validation. The
// instructor assignment is unchanged; use AssignInstructor for that.
func (s *Service) UpdateGroup(ctx context.Context, actor Actor, g models.Group) (GroupView, error) {
	cur, err := s.authorizeGroup(ctx, actor, g.ID)
	if err != nil {
		return GroupView{}, err
	}
	g.InstructorID = cur.InstructorID

	g = cleanGroup(g)
	if err := inputval.ValidateGroup(g).Err(); err != nil {
		return GroupView{}, err
	}
	if _, err := s.store.UpdateGroup(ctx, g); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return GroupView{}, ErrGroupNotFound
		}
		return GroupView{}, fmt.Errorf("update group: %w", err)
	}
	return s.View(ctx, g.ID)
}

// AssignInstructor sets or, with nil, clears the group's instructor.
// Only admins may reassign.
func (s *Service) AssignInstructor(ctx context.Context, actor Actor, groupID int64, instructorID *int64) (GroupView, error) {
	if !actor.isAdmin() {
		return GroupView{}, ErrForbidden
	}
	if instructorID != nil {
		if err := s.requireInstructor(ctx, *instructorID); err != nil {
			return GroupView{}, err
		}
	}
	if _, err := s.store.SetInstructor(ctx, groupID, instructorID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return GroupView{}, ErrGroupNotFound
		}
		return GroupView{}, fmt.Errorf("set instructor: %w", err)
	}
	return s.View(ctx, groupID)
}

func (s *Service) requireInstructor(ctx context.Context, id int64) error {
	u, err := s.store.GetUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotInstructor
	}
	if err != nil {
		return fmt.Errorf("load instructor: %w", err)
	}
	if u.Role != models.RoleInstructor {
		return ErrNotInstructor
	}
	return nil
}

func cleanGroup(g models.Group) models.Group {
	g.Name = htmlsanitize.Text(g.Name)
	g.Description = htmlsanitize.Sanitize(g.Description)
	return g
}
