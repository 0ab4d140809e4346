package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"expense-tracker/internal/auth"
)

// TokenIssuer mints the access/refresh pair handed out at login.
type TokenIssuer interface {
	IssuePair(identity auth.Claims) (auth.TokenPair, error)
}

// TransactionPurger deletes every transaction recorded by a user.
type TransactionPurger interface {
	PurgeUser(ctx context.Context, username string) (int64, error)
}

// MembershipRemover drops a user from its group, if any.
type MembershipRemover interface {
	RemoveMember(ctx context.Context, email string) (bool, error)
}

// Service owns account registration and the login/logout session lifecycle.
// Password hashing is treated as an opaque primitive.
type Service struct {
	repo     Repository
	tokens   TokenIssuer
	purger   TransactionPurger
	groups   MembershipRemover
	hashCost int
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(repo Repository, tokens TokenIssuer) *Service {
	return &Service{repo: repo, tokens: tokens, hashCost: defaultHashCost, clock: time.Now}
}

// WithHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *Service) WithHashCost(cost int) *Service {
	s.hashCost = cost
	return s
}

// WithCleanup sets the collaborators Delete uses to remove a user's data.
func (s *Service) WithCleanup(purger TransactionPurger, groups MembershipRemover) *Service {
	s.purger = purger
	s.groups = groups
	return s
}

// Register creates an account with the given role.
func (s *Service) Register(ctx context.Context, req RegisterRequest, role auth.Role) (User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if !nonEmpty(req.Username, req.Email, req.Password) {
		return User{}, invalid(CauseMissingInformation)
	}
	if !ValidEmail(req.Email) {
		return User{}, invalid(CauseInvalidEmail)
	}
	if len(req.Password) > maxPasswordBytes {
		return User{}, invalid(CausePasswordTooLong)
	}

	if _, err := s.repo.ByEmail(ctx, req.Email); err == nil {
		return User{}, invalid(CauseEmailInUse)
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}
	if _, err := s.repo.ByUsername(ctx, req.Username); err == nil {
		return User{}, invalid(CauseUsernameInUse)
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hash, err := hashPassword(req.Password, s.hashCost)
	if err != nil {
		return User{}, err
	}
	if role != auth.RoleAdmin {
		role = auth.RoleRegular
	}

	u := User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.clock().UTC(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			// Lost a race with a concurrent registration.
			return User{}, invalid(CauseEmailInUse)
		}
		return User{}, err
	}
	return u, nil
}

// Login verifies credentials, issues a fresh token pair and records the
// refresh token on the user.
func (s *Service) Login(ctx context.Context, req LoginRequest) (User, auth.TokenPair, error) {
	req.Email = strings.TrimSpace(req.Email)
	if !nonEmpty(req.Email, req.Password) || !ValidEmail(req.Email) {
		return User{}, auth.TokenPair{}, invalid(CauseInvalidCredentials)
	}

	u, err := s.repo.ByEmail(ctx, req.Email)
	if errors.Is(err, ErrNotFound) {
		return User{}, auth.TokenPair{}, invalid(CauseUserDoesNotExist)
	}
	if err != nil {
		return User{}, auth.TokenPair{}, err
	}
	if !checkPassword(u.PasswordHash, req.Password) {
		return User{}, auth.TokenPair{}, invalid(CauseWrongCredentials)
	}

	pair, err := s.tokens.IssuePair(u.Claims())
	if err != nil {
		return User{}, auth.TokenPair{}, err
	}
	if err := s.repo.SetRefreshToken(ctx, u.Username, pair.RefreshToken); err != nil {
		return User{}, auth.TokenPair{}, err
	}
	u.RefreshToken = pair.RefreshToken
	return u, pair, nil
}

// Logout ends the session identified by refreshToken.
func (s *Service) Logout(ctx context.Context, refreshToken string) (User, error) {
	if refreshToken == "" {
		return User{}, invalid(CauseRefreshMissing)
	}
	u, err := s.repo.ByRefreshToken(ctx, refreshToken)
	if errors.Is(err, ErrNotFound) {
		return User{}, invalid(CauseUserDoesNotExist)
	}
	if err != nil {
		return User{}, err
	}
	if err := s.repo.SetRefreshToken(ctx, u.Username, ""); err != nil {
		return User{}, err
	}
	u.RefreshToken = ""
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]Profile, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Profile, 0, len(all))
	for _, u := range all {
		out = append(out, u.Profile())
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, username string) (Profile, error) {
	u, err := s.repo.ByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return Profile{}, invalid(CauseUserNotFound)
	}
	if err != nil {
		return Profile{}, err
	}
	return u.Profile(), nil
}

// ByEmail exposes account lookup to collaborators such as group management.
func (s *Service) ByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.ByEmail(ctx, email)
}

func (s *Service) ByUsername(ctx context.Context, username string) (User, error) {
	return s.repo.ByUsername(ctx, username)
}

// Delete removes a Regular account together with its transactions and
// group membership. Admin accounts cannot be deleted.
//
// The steps are not atomic. The account row goes last, so a failed delete
// leaves the account in place and repeating the call finishes the cleanup.
func (s *Service) Delete(ctx context.Context, email string) (DeleteResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return DeleteResult{}, invalid(CauseEmailMissing)
	}
	u, err := s.repo.ByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return DeleteResult{}, invalid(CauseUserMissing)
	}
	if err != nil {
		return DeleteResult{}, err
	}
	if u.Role == auth.RoleAdmin {
		return DeleteResult{}, invalid(CauseAdminUndeletable)
	}

	var res DeleteResult
	if s.purger != nil {
		if res.DeletedTransactions, err = s.purger.PurgeUser(ctx, u.Username); err != nil {
			return DeleteResult{}, err
		}
	}
	if s.groups != nil {
		if res.DeletedFromGroup, err = s.groups.RemoveMember(ctx, u.Email); err != nil {
			return DeleteResult{}, err
		}
	}
	if err := s.repo.Delete(ctx, u.Email); err != nil && !errors.Is(err, ErrNotFound) {
		return DeleteResult{}, err
	}
	return res, nil
}
