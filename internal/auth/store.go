package auth

import "context"

// Store describes the persistence operations required by the auth core.
// Uniqueness of emails and token values is enforced by the store, not by
// in-process locking; concurrent duplicate inserts must surface
// ErrDuplicateEmail on all but one request.
type Store interface {
	CreateUser(ctx context.Context, u *User) error
	FindUserByID(ctx context.Context, id string) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUserRole(ctx context.Context, id string, role Role) error
	UpdateUserActive(ctx context.Context, id string, active bool) error
	ListUsers(ctx context.Context) ([]*User, error)

	CreateRefreshToken(ctx context.Context, tok *RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteRefreshTokensForUser(ctx context.Context, userID string) error
}
