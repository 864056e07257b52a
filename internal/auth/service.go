package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"civicaid.org/internal/ids"
)

const (
	defaultRefreshTTL = 14 * 24 * time.Hour

	// MinPasswordLength is the registration password policy floor.
	MinPasswordLength = 8
)

// Service orchestrates registration, credential validation and the token
// lifecycle. It owns no transport concerns: refresh tokens are returned as
// values and the HTTP layer decides how they travel.
type Service struct {
	store  Store
	tokens *Issuer
	now    func() time.Time

	refreshTTL         time.Duration
	revokeOnDeactivate bool
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithRefreshTTL configures refresh token lifetime.
func WithRefreshTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.refreshTTL = ttl
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithRevokeSessionsOnDeactivate makes SetActive(false) also delete the
// target's outstanding refresh tokens. Off by default; Refresh re-checks
// IsActive regardless, so deactivation blocks refresh either way.
func WithRevokeSessionsOnDeactivate(enabled bool) ServiceOption {
	return func(s *Service) { s.revokeOnDeactivate = enabled }
}

// NewService constructs the auth core with explicit collaborators.
func NewService(store Store, tokens *Issuer, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth: store is required")
	}
	if tokens == nil {
		return nil, errors.New("auth: token issuer is required")
	}
	svc := &Service{
		store:      store,
		tokens:     tokens,
		now:        time.Now,
		refreshTTL: defaultRefreshTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Session is the result of a successful login.
type Session struct {
	User             *User
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// Register creates a new user account. The role is always CITIZEN; callers
// cannot influence it. A duplicate email fails with ErrDuplicateEmail, both
// on the pre-check and when a concurrent insert hits the store's uniqueness
// constraint.
func (s *Service) Register(ctx context.Context, email, password string) (*User, error) {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLength)
	}

	if _, err := s.store.FindUserByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &User{
		ID:           ids.New(),
		Email:        email,
		PasswordHash: hash,
		Role:         RoleCitizen,
		IsActive:     true,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ValidateCredentials checks an email/password pair. Unknown email and wrong
// password both return (nil, nil) so the two cases cannot be told apart. A
// deactivated account fails with ErrAccountDeactivated, but only after the
// password matched; a caller without the password learns nothing.
func (s *Service) ValidateCredentials(ctx context.Context, email, password string) (*User, error) {
	user, err := s.store.FindUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, nil
	}
	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}
	return user, nil
}

// Login validates credentials and mints a fresh access/refresh pair.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.ValidateCredentials(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	if user == nil {
		return Session{}, ErrInvalidCredentials
	}
	access, accessExp, err := s.tokens.AccessToken(user)
	if err != nil {
		return Session{}, err
	}
	refresh, err := s.CreateRefreshToken(ctx, user.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{
		User:             user,
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh.Token,
		RefreshExpiresAt: refresh.ExpiresAt,
	}, nil
}

// IssueAccessToken signs a new stateless access token for the user.
func (s *Service) IssueAccessToken(user *User) (string, time.Time, error) {
	return s.tokens.AccessToken(user)
}

// CreateRefreshToken generates and persists an opaque refresh token.
func (s *Service) CreateRefreshToken(ctx context.Context, userID string) (*RefreshToken, error) {
	secret, err := NewRefreshSecret()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	rec := &RefreshToken{
		Token:     secret,
		UserID:    userID,
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
	}
	if err := s.store.CreateRefreshToken(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ValidateRefreshToken looks up a presented token. Absent and expired tokens
// are indistinguishable: both return (nil, nil). Expired rows are deleted
// lazily on the way out.
func (s *Service) ValidateRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	rec, err := s.store.FindRefreshToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if s.now().After(rec.ExpiresAt) {
		_ = s.store.DeleteRefreshToken(ctx, rec.Token)
		return nil, nil
	}
	return rec, nil
}

// RevokeRefreshToken deletes a single token. Deleting a token that does not
// exist is not an error.
func (s *Service) RevokeRefreshToken(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	if err := s.store.DeleteRefreshToken(ctx, token); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// RevokeAllForUser deletes every refresh token owned by the user.
func (s *Service) RevokeAllForUser(ctx context.Context, userID string) error {
	if err := s.store.DeleteRefreshTokensForUser(ctx, userID); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself is not rotated. Deactivation of the owning user
// retroactively blocks refresh even though the token row is untouched.
func (s *Service) Refresh(ctx context.Context, token string) (string, time.Time, error) {
	rec, err := s.ValidateRefreshToken(ctx, token)
	if err != nil {
		return "", time.Time{}, err
	}
	if rec == nil {
		return "", time.Time{}, ErrInvalidRefreshToken
	}
	user, err := s.store.FindUserByID(ctx, rec.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", time.Time{}, ErrInvalidRefreshToken
		}
		return "", time.Time{}, err
	}
	if !user.IsActive {
		return "", time.Time{}, ErrInvalidRefreshToken
	}
	return s.tokens.AccessToken(user)
}

// Logout revokes the presented token if any. Always succeeds.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.RevokeRefreshToken(ctx, token)
}

// AssignRole updates the target user's role. ADMIN-gated at the transport.
func (s *Service) AssignRole(ctx context.Context, userID string, role Role) (*User, error) {
	if _, err := ParseRole(string(role)); err != nil {
		return nil, err
	}
	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateUserRole(ctx, userID, role); err != nil {
		return nil, err
	}
	user.Role = role
	return user, nil
}

// SetActive flips the target user's activation flag. Outstanding refresh
// tokens are only revoked when WithRevokeSessionsOnDeactivate is enabled.
func (s *Service) SetActive(ctx context.Context, userID string, active bool) (*User, error) {
	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateUserActive(ctx, userID, active); err != nil {
		return nil, err
	}
	user.IsActive = active
	if !active && s.revokeOnDeactivate {
		if err := s.RevokeAllForUser(ctx, userID); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// ListUsers returns all users, newest first.
func (s *Service) ListUsers(ctx context.Context) ([]*User, error) {
	return s.store.ListUsers(ctx)
}

func validateEmail(email string) error {
	at := strings.Index(email, "@")
	if email == "" || at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t") {
		return fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	return nil
}
