package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service records security events.
//
// Audit is internal-only and best-effort: callers log and drop the error.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" || e.Username == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

func (s *Service) LogLogin(ctx context.Context, username, ip string) error {
	return s.Append(ctx, Event{Type: EventTypeLogin, Username: username, IPAddress: ip, Message: "logged in"})
}

func (s *Service) LogLogout(ctx context.Context, username, ip string) error {
	return s.Append(ctx, Event{Type: EventTypeLogout, Username: username, IPAddress: ip, Message: "logged out"})
}

// LogRefresh records a silent access-token reissue.
func (s *Service) LogRefresh(ctx context.Context, username, ip string) error {
	return s.Append(ctx, Event{Type: EventTypeTokenRefresh, Username: username, IPAddress: ip, Message: "access token refreshed"})
}

// LogAdminAction records an admin acting on another account.
func (s *Service) LogAdminAction(ctx context.Context, actor, username, ip, message string) error {
	return s.Append(ctx, Event{
		Type:      EventTypeAdminAction,
		Username:  username,
		Actor:     actor,
		IPAddress: ip,
		Message:   message,
	})
}
