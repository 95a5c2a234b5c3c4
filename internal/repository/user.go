package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/meethere/meethere-api/internal/domain"
)

const userColumns = `id, email, password_hash, name, age, gender, location, bio, avatar_url, is_admin, created_at, updated_at`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, name, age, gender, location, bio, avatar_url, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		u.Email, u.PasswordHash, u.Name, u.Age, u.Gender, u.Location, u.Bio, u.AvatarURL, u.IsAdmin,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("Create: %w", domain.ErrEmailTaken)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email,
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByEmail: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByEmail: %w", err)
	}
	return u, nil
}

func (r *UserRepository) GetSummary(ctx context.Context, id int64) (*domain.UserSummary, error) {
	var s domain.UserSummary
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, avatar_url FROM users WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.AvatarURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetSummary: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetSummary: %w", err)
	}
	return &s, nil
}

// List returns users matching f, newest first.
func (r *UserRepository) List(ctx context.Context, f domain.UserFilter) ([]domain.User, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.ExcludeID != 0 {
		conds = append(conds, "id <> "+arg(f.ExcludeID))
	}
	if f.Gender != nil {
		conds = append(conds, "gender = "+arg(*f.Gender))
	}
	if f.MinAge != nil {
		conds = append(conds, "age >= "+arg(*f.MinAge))
	}
	if f.MaxAge != nil {
		conds = append(conds, "age <= "+arg(*f.MaxAge))
	}
	if f.Location != "" {
		conds = append(conds, "location ILIKE '%' || "+arg(escapeLike(f.Location))+" || '%'")
	}

	q := `SELECT ` + userColumns + ` FROM users`
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	err := r.db.QueryRowContext(ctx,
		`UPDATE users
		SET name = $1, age = $2, gender = $3, location = $4, bio = $5, avatar_url = $6, updated_at = now()
		WHERE id = $7
		RETURNING updated_at`,
		u.Name, u.Age, u.Gender, u.Location, u.Bio, u.AvatarURL, u.ID,
	).Scan(&u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("Update: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("Update: %w", err)
	}
	return nil
}

func (r *UserRepository) SetAdmin(ctx context.Context, id int64, isAdmin bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_admin = $1, updated_at = now() WHERE id = $2`, isAdmin, id,
	)
	if err != nil {
		return fmt.Errorf("SetAdmin: %w", err)
	}
	return requireAffected("SetAdmin", res)
}

// Delete removes a non-admin user. Messages and meetups go with it through
// ON DELETE CASCADE.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM users WHERE id = $1 AND NOT is_admin`, id,
	)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return requireAffected("Delete", res)
}

func (r *UserRepository) ListWithStats(ctx context.Context) ([]domain.UserStats, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+prefixed("u", userColumns)+`,
			(SELECT COUNT(*) FROM messages m WHERE m.sender_id = u.id),
			(SELECT COUNT(*) FROM messages m WHERE m.receiver_id = u.id),
			(SELECT COUNT(*) FROM meetups mt WHERE mt.initiator_id = u.id),
			(SELECT COUNT(*) FROM meetups mt WHERE mt.receiver_id = u.id)
		FROM users u
		ORDER BY u.created_at DESC, u.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("ListWithStats: %w", err)
	}
	defer rows.Close()

	stats := []domain.UserStats{}
	for rows.Next() {
		var s domain.UserStats
		u := &s.User
		if err := rows.Scan(
			&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Age, &u.Gender,
			&u.Location, &u.Bio, &u.AvatarURL, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt,
			&s.SentMessages, &s.ReceivedMessages, &s.SentMeetups, &s.ReceivedMeetups,
		); err != nil {
			return nil, fmt.Errorf("ListWithStats: scan: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListWithStats: rows: %w", err)
	}
	return stats, nil
}

func scanUser(s scanner) (*domain.User, error) {
	var u domain.User
	err := s.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Age, &u.Gender,
		&u.Location, &u.Bio, &u.AvatarURL, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func requireAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}

func prefixed(alias, columns string) string {
	cols := strings.Split(columns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
