package sqlstore

import (
	"context"

	"github.com/dalemusser/groupbook/internal/app/store"
	"github.com/dalemusser/groupbook/internal/domain/capacity"
	"github.com/dalemusser/groupbook/internal/domain/models"
)

const regCols = `id, visitor_id, group_id, attended, created_at, updated_at`

func scanRegistration(sc scanner) (models.Registration, error) {
	var r models.Registration
	err := sc.Scan(&r.ID, &r.VisitorID, &r.GroupID, &r.Attended, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (s *Store) GetRegistration(ctx context.Context, id int64) (models.Registration, error) {
	r, err := scanRegistration(s.db.QueryRowContext(ctx, `SELECT `+regCols+` FROM registrations WHERE id = ?`, id))
	return r, mapErr(err)
}

func (s *Store) FindRegistration(ctx context.Context, visitorID, groupID int64) (models.Registration, error) {
	r, err := scanRegistration(s.db.QueryRowContext(ctx,
		`SELECT `+regCols+` FROM registrations WHERE visitor_id = ? AND group_id = ?`, visitorID, groupID))
	return r, mapErr(err)
}

// ListRegistrations returns registrations ordered by id.
func (s *Store) ListRegistrations(ctx context.Context, f store.RegistrationFilter, p store.Page) ([]models.Registration, error) {
	var w where
	if f.VisitorID != nil {
		w.add("visitor_id = ?", *f.VisitorID)
	}
	if f.GroupID != nil {
		w.add("group_id = ?", *f.GroupID)
	}
	tail, args := pageClause(p, w.args)
	rows, err := s.db.QueryContext(ctx, `SELECT `+regCols+` FROM registrations`+w.String()+` ORDER BY id`+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Registration{}
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) RegisteredGroupIDs(ctx context.Context, visitorID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT group_id FROM registrations WHERE visitor_id = ? ORDER BY group_id`, visitorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) Occupancy(ctx context.Context, groupIDs []int64) (map[int64]capacity.Counts, error) {
	return occupancy(ctx, s.db, groupIDs)
}

func occupancy(ctx context.Context, q queryer, groupIDs []int64) (map[int64]capacity.Counts, error) {
	out := make(map[int64]capacity.Counts, len(groupIDs))
	if len(groupIDs) == 0 {
		return out, nil
	}
	var w where
	w.in("r.group_id", groupIDs, false)

	rows, err := q.QueryContext(ctx, `
		SELECT r.group_id,
		       COUNT(*),
		       COALESCE(SUM(CASE WHEN u.gender = 'male' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN u.gender = 'female' THEN 1 ELSE 0 END), 0)
		  FROM registrations r
		  JOIN users u ON u.id = r.visitor_id`+w.String()+`
		 GROUP BY r.group_id`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id int64
			c  capacity.Counts
		)
		if err := rows.Scan(&id, &c.Total, &c.Male, &c.Female); err != nil {
			return nil, err
		}
		out[id] = c
	}
	return out, rows.Err()
}

// Admit counts the group's occupancy and inserts the registration inside
// one immediate transaction. The write lock is held from BEGIN, so no other
// admission can commit between the count and the insert.
func (s *Store) Admit(ctx context.Context, visitorID, groupID int64, check store.AdmitCheck) (reg models.Registration, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Registration{}, mapErr(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	g, err := getGroup(ctx, tx, groupID)
	if err != nil {
		return models.Registration{}, err
	}
	occ, err := occupancy(ctx, tx, []int64{groupID})
	if err != nil {
		return models.Registration{}, mapErr(err)
	}
	if err := check(g, occ[groupID]); err != nil {
		return models.Registration{}, err
	}

	now := s.now()
	reg = models.Registration{VisitorID: visitorID, GroupID: groupID, CreatedAt: now, UpdatedAt: now}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO registrations (visitor_id, group_id, attended, created_at, updated_at) VALUES (?, ?, 0, ?, ?)`,
		reg.VisitorID, reg.GroupID, reg.CreatedAt, reg.UpdatedAt)
	if err != nil {
		return models.Registration{}, mapErr(err)
	}
	if reg.ID, err = res.LastInsertId(); err != nil {
		return models.Registration{}, err
	}
	if err = tx.Commit(); err != nil {
		return models.Registration{}, mapErr(err)
	}
	return reg, nil
}

func (s *Store) SetAttended(ctx context.Context, id int64, attended bool) (models.Registration, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE registrations SET attended = ?, updated_at = ? WHERE id = ?`, attended, s.now(), id)
	if err != nil {
		return models.Registration{}, mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Registration{}, store.ErrNotFound
	}
	return s.GetRegistration(ctx, id)
}
