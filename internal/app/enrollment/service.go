// Package enrollment answers "which groups can this visitor join" and
// commits registrations without ever exceeding a group's limits.
package enrollment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/groupbook/internal/app/store"
	"github.com/dalemusser/groupbook/internal/domain/capacity"
	"github.com/dalemusser/groupbook/internal/domain/models"
	"go.uber.org/zap"
)

// scanChunk is how many candidate groups are pulled from the store per
// occupancy lookup while searching for available groups.
const scanChunk = 100

// GroupView is a group together with its derived occupancy.
type GroupView struct {
	models.Group
	capacity.Snapshot
}

// Actor identifies the user performing a privileged operation.
type Actor struct {
	ID   int64
	Role string
}

func (a Actor) isAdmin() bool { return a.Role == models.RoleAdmin }

// Service runs the availability and admission logic against a store.
type Service struct {
	store store.Store
	log   *zap.Logger
	now   func() time.Time
}

// New creates a Service. A nil logger is replaced with a no-op logger.
func New(st store.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: st, log: logger, now: time.Now}
}

// WithClock returns a copy of s that reads the current time from now.
func (s *Service) WithClock(now func() time.Time) *Service {
	cp := *s
	cp.now = now
	return &cp
}

// FindAvailable lists the upcoming groups the visitor could still join as a
// registrant of the given gender: groups that start strictly after now, that
// the visitor is not already registered for, and that admit one more
// registrant of that gender. Results are ordered by start time (then id) and
// the page window is applied after filtering.
func (s *Service) FindAvailable(ctx context.Context, visitorID int64, gender string, page store.Page) ([]GroupView, error) {
	page = page.Normalize()

	registered, err := s.store.RegisteredGroupIDs(ctx, visitorID)
	if err != nil {
		return nil, fmt.Errorf("registered groups: %w", err)
	}

	now := s.now()
	filter := store.GroupFilter{StartsAfter: &now, ExcludeIDs: registered}

	skip := page.Offset
	out := make([]GroupView, 0, min(page.Limit, scanChunk))

	for scanned := 0; ; {
		chunk, err := s.store.ListGroups(ctx, filter, store.Page{Offset: scanned, Limit: scanChunk})
		if err != nil {
			return nil, fmt.Errorf("list groups: %w", err)
		}
		if len(chunk) == 0 {
			return out, nil
		}
		scanned += len(chunk)

		occ, err := s.store.Occupancy(ctx, groupIDs(chunk))
		if err != nil {
			return nil, fmt.Errorf("occupancy: %w", err)
		}

		for _, g := range chunk {
			snap := capacity.Of(capacity.LimitsOf(g), occ[g.ID])
			if !snap.Admits(gender) {
				continue
			}
			if skip > 0 {
				skip--
				continue
			}
			out = append(out, GroupView{Group: g, Snapshot: snap})
			if len(out) == page.Limit {
				return out, nil
			}
		}

		if len(chunk) < scanChunk {
			return out, nil
		}
	}
}

// Register admits the visitor into the group. Registering twice for the
// same group returns the existing registration.
//
// Groups that have already started are closed to new registrations
// (ErrGroupStarted). The visitor's recorded gender selects the sub-limit
// that applies. The
// capacity check and the insert happen atomically in the store; if the
// store reports a conflicting concurrent admission the attempt is retried
// once and then reported as ErrCapacityExceeded.
func (s *Service) Register(ctx context.Context, visitorID, groupID int64) (models.Registration, error) {
	visitor, err := s.store.GetUser(ctx, visitorID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Registration{}, ErrVisitorNotFound
	}
	if err != nil {
		return models.Registration{}, fmt.Errorf("load visitor: %w", err)
	}
	if visitor.Role != models.RoleVisitor {
		return models.Registration{}, ErrNotVisitor
	}

	existing, err := s.store.FindRegistration(ctx, visitorID, groupID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return models.Registration{}, fmt.Errorf("lookup registration: %w", err)
	}

	now := s.now()
	check := func(g models.Group, before capacity.Counts) error {
		if !g.StartTime.After(now) {
			return ErrGroupStarted
		}
		if !capacity.Of(capacity.LimitsOf(g), before).Admits(visitor.Gender) {
			return ErrCapacityExceeded
		}
		return nil
	}

	for attempt := 0; ; attempt++ {
		reg, err := s.store.Admit(ctx, visitorID, groupID, check)
		switch {
		case err == nil:
			s.log.Info("registration admitted",
				zap.Int64("registration_id", reg.ID),
				zap.Int64("visitor_id", visitorID),
				zap.Int64("group_id", groupID))
			return reg, nil
		case errors.Is(err, store.ErrNotFound):
			return models.Registration{}, ErrGroupNotFound
		case errors.Is(err, store.ErrDuplicate):
			// A concurrent request for the same pair won; return its row.
			return s.store.FindRegistration(ctx, visitorID, groupID)
		case errors.Is(err, store.ErrConflict) && attempt == 0:
			s.log.Debug("admission conflict, retrying",
				zap.Int64("visitor_id", visitorID),
				zap.Int64("group_id", groupID))
			continue
		case errors.Is(err, store.ErrConflict):
			return models.Registration{}, ErrCapacityExceeded
		case errors.Is(err, ErrCapacityExceeded):
			return models.Registration{}, ErrCapacityExceeded
		case errors.Is(err, ErrGroupStarted):
			return models.Registration{}, ErrGroupStarted
		default:
			return models.Registration{}, fmt.Errorf("admit: %w", err)
		}
	}
}

// ListMine returns the visitor's registrations.
func (s *Service) ListMine(ctx context.Context, visitorID int64, page store.Page) ([]models.Registration, error) {
	return s.store.ListRegistrations(ctx, store.RegistrationFilter{VisitorID: &visitorID}, page.Normalize())
}

// SetAttended marks a registration attended or not. Admins may mark any
// registration; instructors only those of groups they lead.
func (s *Service) SetAttended(ctx context.Context, actor Actor, registrationID int64, attended bool) (models.Registration, error) {
	reg, err := s.store.GetRegistration(ctx, registrationID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Registration{}, ErrRegistrationNotFound
	}
	if err != nil {
		return models.Registration{}, fmt.Errorf("load registration: %w", err)
	}
	if _, err := s.authorizeGroup(ctx, actor, reg.GroupID); err != nil {
		return models.Registration{}, err
	}
	return s.store.SetAttended(ctx, registrationID, attended)
}

// GroupRoster lists a group's registrations for its instructor or an admin.
func (s *Service) GroupRoster(ctx context.Context, actor Actor, groupID int64, page store.Page) ([]models.Registration, error) {
	if _, err := s.authorizeGroup(ctx, actor, groupID); err != nil {
		return nil, err
	}
	return s.store.ListRegistrations(ctx, store.RegistrationFilter{GroupID: &groupID}, page.Normalize())
}

// View loads one group with its occupancy.
func (s *Service) View(ctx context.Context, groupID int64) (GroupView, error) {
	g, err := s.store.GetGroup(ctx, groupID)
	if errors.Is(err, store.ErrNotFound) {
		return GroupView{}, ErrGroupNotFound
	}
	if err != nil {
		return GroupView{}, fmt.Errorf("load group: %w", err)
	}
	views, err := s.Views(ctx, []models.Group{g})
	if err != nil {
		return GroupView{}, err
	}
	return views[0], nil
}

// Views attaches occupancy to each group, preserving order.
func (s *Service) Views(ctx context.Context, groups []models.Group) ([]GroupView, error) {
	if len(groups) == 0 {
		return []GroupView{}, nil
	}
	occ, err := s.store.Occupancy(ctx, groupIDs(groups))
	if err != nil {
		return nil, fmt.Errorf("occupancy: %w", err)
	}
	out := make([]GroupView, len(groups))
	for i, g := range groups {
		out[i] = GroupView{Group: g, Snapshot: capacity.Of(capacity.LimitsOf(g), occ[g.ID])}
	}
	return out, nil
}

func (s *Service) authorizeGroup(ctx context.Context, actor Actor, groupID int64) (models.Group, error) {
	g, err := s.store.GetGroup(ctx, groupID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Group{}, ErrGroupNotFound
	}
	if err != nil {
		return models.Group{}, fmt.Errorf("load group: %w", err)
	}
	if actor.isAdmin() || (actor.Role == models.RoleInstructor && g.HasInstructor(actor.ID)) {
		return g, nil
	}
	return models.Group{}, ErrForbidden
}

func groupIDs(groups []models.Group) []int64 {
	ids := make([]int64, len(groups))
	for i, g := range groups {
		ids[i] = g.ID
	}
	return ids
}
