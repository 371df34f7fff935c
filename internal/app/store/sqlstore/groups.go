package sqlstore

import (
	"context"
	"database/sql"

	"github.com/dalemusser/groupbook/internal/app/store"
	"github.com/dalemusser/groupbook/internal/app/system/normalize"
	"github.com/dalemusser/groupbook/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
)

const groupCols = `id, name, name_ci, description, capacity, max_male, max_female, start_time, end_time, instructor_id, created_at, updated_at`

func scanGroup(sc scanner) (models.Group, error) {
	var (
		g   models.Group
		ins sql.NullInt64
	)
	err := sc.Scan(&g.ID, &g.Name, &g.NameCI, &g.Description, &g.Capacity, &g.MaxMale, &g.MaxFemale,
		&g.StartTime, &g.EndTime, &ins, &g.CreatedAt, &g.UpdatedAt)
	g.InstructorID = ptrID(ins)
	return g, err
}

func getGroup(ctx context.Context, q queryer, id int64) (models.Group, error) {
	g, err := scanGroup(q.QueryRowContext(ctx, `SELECT `+groupCols+` FROM session_groups WHERE id = ?`, id))
	return g, mapErr(err)
}

// CreateGroup inserts g. Times are stored in UTC so that text ordering of
// the start_time column matches chronological order.
func (s *Store) CreateGroup(ctx context.Context, g models.Group) (models.Group, error) {
	g.Name = normalize.Name(g.Name)
	g.NameCI = text.Fold(g.Name)
	g.StartTime, g.EndTime = g.StartTime.UTC(), g.EndTime.UTC()
	now := s.now()
	g.CreatedAt, g.UpdatedAt = now, now

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO session_groups (name, name_ci, description, capacity, max_male, max_female, start_time, end_time, instructor_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.Name, g.NameCI, g.Description, g.Capacity, g.MaxMale, g.MaxFemale,
		g.StartTime, g.EndTime, nullID(g.InstructorID), g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return models.Group{}, mapErr(err)
	}
	if g.ID, err = res.LastInsertId(); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

func (s *Store) GetGroup(ctx context.Context, id int64) (models.Group, error) {
	return getGroup(ctx, s.db, id)
}

// ListGroups returns groups ordered by start_time, then id.
func (s *Store) ListGroups(ctx context.Context, f store.GroupFilter, p store.Page) ([]models.Group, error) {
	var w where
	if f.InstructorID != nil {
		w.add("instructor_id = ?", *f.InstructorID)
	}
	if f.StartsAfter != nil {
		w.add("start_time > ?", f.StartsAfter.UTC())
	}
	w.in("id", f.ExcludeIDs, true)

	tail, args := pageClause(p, w.args)
	rows, err := s.db.QueryContext(ctx, `SELECT `+groupCols+` FROM session_groups`+w.String()+` ORDER BY start_time, id`+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Group{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// UpdateGroup replaces the editable fields of the group identified by g.ID.
// The instructor assignment is changed only through SetInstructor.
func (s *Store) UpdateGroup(ctx context.Context, g models.Group) (models.Group, error) {
	name := normalize.Name(g.Name)
	res, err := s.db.ExecContext(ctx,
		`UPDATE session_groups
		    SET name = ?, name_ci = ?, description = ?, capacity = ?, max_male = ?, max_female = ?,
		        start_time = ?, end_time = ?, updated_at = ?
		  WHERE id = ?`,
		name, text.Fold(name), g.Description, g.Capacity, g.MaxMale, g.MaxFemale,
		g.StartTime.UTC(), g.EndTime.UTC(), s.now(), g.ID)
	if err != nil {
		return models.Group{}, mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Group{}, store.ErrNotFound
	}
	return s.GetGroup(ctx, g.ID)
}

// SetInstructor assigns (or with nil, clears) the group's instructor.
func (s *Store) SetInstructor(ctx context.Context, groupID int64, instructorID *int64) (models.Group, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE session_groups SET instructor_id = ?, updated_at = ? WHERE id = ?`,
		nullID(instructorID), s.now(), groupID)
	if err != nil {
		return models.Group{}, mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Group{}, store.ErrNotFound
	}
	return s.GetGroup(ctx, groupID)
}
