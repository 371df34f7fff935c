package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/dalemusser/groupbook/internal/app/store"
	"github.com/dalemusser/groupbook/internal/app/system/normalize"
	"github.com/dalemusser/groupbook/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
)

const userCols = `id, email, full_name, full_name_ci, hashed_password, role, gender, is_active, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(sc scanner) (models.User, error) {
	var u models.User
	err := sc.Scan(&u.ID, &u.Email, &u.FullName, &u.FullNameCI, &u.HashedPassword,
		&u.Role, &u.Gender, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// CreateUser inserts u after normalizing its email, name, and gender.
func (s *Store) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	u.Email = normalize.Email(u.Email)
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Role = normalize.Role(u.Role)
	u.Gender = normalize.Gender(u.Gender)
	now := s.now()
	u.CreatedAt, u.UpdatedAt = now, now

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, full_name, full_name_ci, hashed_password, role, gender, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Email, u.FullName, u.FullNameCI, u.HashedPassword, u.Role, u.Gender, u.IsActive, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return models.User{}, mapErr(err)
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id = ?`, id))
	return u, mapErr(err)
}

// GetUserByEmail looks up a user by case-insensitive email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE email = ?`, normalize.Email(email)))
	return u, mapErr(err)
}

// ListUsers returns users ordered by id.
func (s *Store) ListUsers(ctx context.Context, f store.UserFilter, p store.Page) ([]models.User, error) {
	var w where
	if f.Role != "" {
		w.add("role = ?", f.Role)
	}
	tail, args := pageClause(p, w.args)
	rows, err := s.db.QueryContext(ctx, `SELECT `+userCols+` FROM users`+w.String()+` ORDER BY id`+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateUser applies the non-nil fields of patch.
func (s *Store) UpdateUser(ctx context.Context, id int64, patch store.UserPatch) (models.User, error) {
	var sets []string
	var args []any
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if patch.FullName != nil {
		name := normalize.Name(*patch.FullName)
		set("full_name", name)
		set("full_name_ci", text.Fold(name))
	}
	if patch.Email != nil {
		set("email", normalize.Email(*patch.Email))
	}
	if patch.HashedPassword != nil {
		set("hashed_password", *patch.HashedPassword)
	}
	if patch.Role != nil {
		set("role", normalize.Role(*patch.Role))
	}
	if patch.Gender != nil {
		set("gender", normalize.Gender(*patch.Gender))
	}
	if patch.IsActive != nil {
		set("is_active", *patch.IsActive)
	}
	set("updated_at", s.now())
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`UPDATE users SET %s WHERE id = ?`, strings.Join(sets, ", ")), args...)
	if err != nil {
		return models.User{}, mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.User{}, store.ErrNotFound
	}
	return s.GetUser(ctx, id)
}
