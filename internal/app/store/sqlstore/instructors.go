package sqlstore

import (
	"context"

	"github.com/dalemusser/groupbook/internal/app/store"
	"github.com/dalemusser/groupbook/internal/app/system/normalize"
	"github.com/dalemusser/groupbook/internal/domain/models"
)

const prefCols = `id, instructor_id, day_of_week, start_time, end_time, created_at, updated_at`

func scanPreference(sc scanner) (models.InstructorPreference, error) {
	var p models.InstructorPreference
	err := sc.Scan(&p.ID, &p.InstructorID, &p.DayOfWeek, &p.StartTime, &p.EndTime, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *Store) CreatePreference(ctx context.Context, p models.InstructorPreference) (models.InstructorPreference, error) {
	p.DayOfWeek = normalize.Day(p.DayOfWeek)
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO instructor_preferences (instructor_id, day_of_week, start_time, end_time, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.InstructorID, p.DayOfWeek, p.StartTime, p.EndTime, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return models.InstructorPreference{}, mapErr(err)
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return models.InstructorPreference{}, err
	}
	return p, nil
}

func (s *Store) GetPreference(ctx context.Context, id int64) (models.InstructorPreference, error) {
	p, err := scanPreference(s.db.QueryRowContext(ctx, `SELECT `+prefCols+` FROM instructor_preferences WHERE id = ?`, id))
	return p, mapErr(err)
}

func (s *Store) ListPreferences(ctx context.Context, f store.InstructorFilter, pg store.Page) ([]models.InstructorPreference, error) {
	var w where
	if f.InstructorID != nil {
		w.add("instructor_id = ?", *f.InstructorID)
	}
	tail, args := pageClause(pg, w.args)
	rows, err := s.db.QueryContext(ctx, `SELECT `+prefCols+` FROM instructor_preferences`+w.String()+` ORDER BY id`+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.InstructorPreference{}
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdatePreference replaces the window of preference p.ID. The owning
// instructor never changes.
func (s *Store) UpdatePreference(ctx context.Context, p models.InstructorPreference) (models.InstructorPreference, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE instructor_preferences SET day_of_week = ?, start_time = ?, end_time = ?, updated_at = ? WHERE id = ?`,
		normalize.Day(p.DayOfWeek), p.StartTime, p.EndTime, s.now(), p.ID)
	if err != nil {
		return models.InstructorPreference{}, mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.InstructorPreference{}, store.ErrNotFound
	}
	return s.GetPreference(ctx, p.ID)
}

const schedCols = `id, instructor_id, start_time, end_time, created_at, updated_at`

func scanSchedule(sc scanner) (models.InstructorSchedule, error) {
	var out models.InstructorSchedule
	err := sc.Scan(&out.ID, &out.InstructorID, &out.StartTime, &out.EndTime, &out.CreatedAt, &out.UpdatedAt)
	return out, err
}

func (s *Store) CreateSchedule(ctx context.Context, sch models.InstructorSchedule) (models.InstructorSchedule, error) {
	sch.StartTime, sch.EndTime = sch.StartTime.UTC(), sch.EndTime.UTC()
	now := s.now()
	sch.CreatedAt, sch.UpdatedAt = now, now

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO instructor_schedules (instructor_id, start_time, end_time, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		sch.InstructorID, sch.StartTime, sch.EndTime, sch.CreatedAt, sch.UpdatedAt)
	if err != nil {
		return models.InstructorSchedule{}, mapErr(err)
	}
	if sch.ID, err = res.LastInsertId(); err != nil {
		return models.InstructorSchedule{}, err
	}
	return sch, nil
}

func (s *Store) GetSchedule(ctx context.Context, id int64) (models.InstructorSchedule, error) {
	sch, err := scanSchedule(s.db.QueryRowContext(ctx, `SELECT `+schedCols+` FROM instructor_schedules WHERE id = ?`, id))
	return sch, mapErr(err)
}

// ListSchedules returns schedules ordered by start_time, then id.
func (s *Store) ListSchedules(ctx context.Context, f store.InstructorFilter, pg store.Page) ([]models.InstructorSchedule, error) {
	var w where
	if f.InstructorID != nil {
		w.add("instructor_id = ?", *f.InstructorID)
	}
	tail, args := pageClause(pg, w.args)
	rows, err := s.db.QueryContext(ctx, `SELECT `+schedCols+` FROM instructor_schedules`+w.String()+` ORDER BY start_time, id`+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.InstructorSchedule{}
	for rows.Next() {
		sch, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sch)
	}
	return out, rows.Err()
}

func (s *Store) UpdateSchedule(ctx context.Context, sch models.InstructorSchedule) (models.InstructorSchedule, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE instructor_schedules SET start_time = ?, end_time = ?, updated_at = ? WHERE id = ?`,
		sch.StartTime.UTC(), sch.EndTime.UTC(), s.now(), sch.ID)
	if err != nil {
		return models.InstructorSchedule{}, mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.InstructorSchedule{}, store.ErrNotFound
	}
	return s.GetSchedule(ctx, sch.ID)
}
