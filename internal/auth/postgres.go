package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL. Email and token uniqueness are
// enforced by database constraints; unique violations on users translate to
// ErrDuplicateEmail so concurrent duplicate registrations resolve to exactly
// one winner.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

// pgUniqueViolation is the PostgreSQL error code for unique_violation.
const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func (s *PGStore) CreateUser(ctx context.Context, u *User) error {
	_, err := s.db.ExecContext(ctx,
		`insert into users(id, email, password_hash, role, is_active, created_at)
		 values($1,$2,$3,$4,$5,$6)`,
		u.ID, u.Email, u.PasswordHash, string(u.Role), u.IsActive, u.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

const userColumns = `id, email, password_hash, role, is_active, created_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*User, error) {
	var (
		u    User
		role string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.IsActive, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.Role = Role(role)
	return &u, nil
}

func (s *PGStore) FindUserByID(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where id=$1`, id)
	return scanUser(row)
}

func (s *PGStore) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where email=$1`, email)
	return scanUser(row)
}

func (s *PGStore) UpdateUserRole(ctx context.Context, id string, role Role) error {
	res, err := s.db.ExecContext(ctx,
		`update users set role=$2 where id=$1`, id, string(role))
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (s *PGStore) UpdateUserActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`update users set is_active=$2 where id=$1`, id, active)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (s *PGStore) ListUsers(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+userColumns+` from users order by created_at desc, id desc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *PGStore) CreateRefreshToken(ctx context.Context, tok *RefreshToken) error {
	_, err := s.db.ExecContext(ctx,
		`insert into refresh_tokens(token, user_id, expires_at, created_at)
		 values($1,$2,$3,$4)`,
		tok.Token, tok.UserID, tok.ExpiresAt, tok.CreatedAt,
	)
	return err
}

func (s *PGStore) FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	row := s.db.QueryRowContext(ctx,
		`select token, user_id, expires_at, created_at from refresh_tokens where token=$1`, token)
	var tok RefreshToken
	if err := row.Scan(&tok.Token, &tok.UserID, &tok.ExpiresAt, &tok.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tok, nil
}

func (s *PGStore) DeleteRefreshToken(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx,
		`delete from refresh_tokens where token=$1`, token)
	return err
}

func (s *PGStore) DeleteRefreshTokensForUser(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`delete from refresh_tokens where user_id=$1`, userID)
	return err
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
