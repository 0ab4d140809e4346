package transactions

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"expense-tracker/internal/categories"
	"expense-tracker/internal/users"

	"github.com/google/uuid"
)

type UserDirectory interface {
	ByUsername(ctx context.Context, username string) (users.User, error)
}

// Catalog exposes the categories transactions are filed under.
type Catalog interface {
	List(ctx context.Context) ([]categories.Category, error)
	ByType(ctx context.Context, typ string) (categories.Category, error)
}

type Service struct {
	repo    Repository
	users   UserDirectory
	catalog Catalog
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(repo Repository, dir UserDirectory, catalog Catalog) *Service {
	return &Service{repo: repo, users: dir, catalog: catalog, clock: time.Now}
}

func parseAmount(n string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Create records a transaction for pathUser. The body's username must name
// the same user.
func (s *Service) Create(ctx context.Context, pathUser string, req CreateRequest) (Transaction, error) {
	amount, ok := parseAmount(req.Amount.String())
	if req.Username == "" || req.Type == "" || !ok || req.Username != pathUser {
		return Transaction{}, invalid(CauseInvalidInformation)
	}
	if err := s.userExists(ctx, req.Username, CauseUserDoesNotExist); err != nil {
		return Transaction{}, err
	}
	if err := s.categoryExists(ctx, req.Type, CauseCategoryMissing); err != nil {
		return Transaction{}, err
	}

	t := Transaction{
		ID:       uuid.NewString(),
		Username: req.Username,
		Type:     req.Type,
		Amount:   amount,
		Date:     s.clock().UTC(),
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

func (s *Service) userExists(ctx context.Context, username, cause string) error {
	_, err := s.users.ByUsername(ctx, username)
	if errors.Is(err, users.ErrNotFound) {
		return invalid(cause)
	}
	return err
}

func (s *Service) categoryExists(ctx context.Context, typ, cause string) error {
	_, err := s.catalog.ByType(ctx, typ)
	if errors.Is(err, categories.ErrNotFound) {
		return invalid(cause)
	}
	return err
}

// List returns matching transactions with their category color.
// Transactions whose type names no category are left out.
func (s *Service) List(ctx context.Context, q Query) ([]View, error) {
	txs, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	cats, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	colors := make(map[string]string, len(cats))
	for _, c := range cats {
		colors[c.Type] = c.Color
	}

	out := make([]View, 0, len(txs))
	for _, t := range txs {
		color, ok := colors[t.Type]
		if !ok {
			continue
		}
		out = append(out, View{Transaction: t, Color: color})
	}
	return out, nil
}

// ForUser lists a user's transactions, optionally restricted to a category.
func (s *Service) ForUser(ctx context.Context, username, category string, f Filter) ([]View, error) {
	if err := s.userExists(ctx, username, CauseUserMissing); err != nil {
		return nil, err
	}
	if category != "" {
		if err := s.categoryExists(ctx, category, CauseCategoryNotFound); err != nil {
			return nil, err
		}
	}
	return s.List(ctx, Query{Usernames: []string{username}, Type: category, Filter: f})
}

// ForMembers lists the transactions of the given users.
func (s *Service) ForMembers(ctx context.Context, usernames []string, category string) ([]View, error) {
	if usernames == nil {
		usernames = []string{}
	}
	return s.List(ctx, Query{Usernames: usernames, Type: category})
}

// DeleteOwn removes one of username's transactions.
func (s *Service) DeleteOwn(ctx context.Context, username, id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid(CauseInvalidInformation)
	}
	if err := s.userExists(ctx, username, CauseUserMissing); err != nil {
		return err
	}
	err := s.repo.Delete(ctx, id, username)
	if errors.Is(err, ErrNotFound) {
		return invalid(CauseTransactionNotFound)
	}
	return err
}

// DeleteMany removes every listed transaction, or none when one is missing.
func (s *Service) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return invalid(CauseInvalidInformation)
	}
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return invalid(CauseInvalidInformation)
		}
	}
	err := s.repo.DeleteMany(ctx, ids)
	if errors.Is(err, ErrNotFound) {
		return invalid(CauseIDNotFound)
	}
	return err
}

// PurgeUser deletes every transaction of username and reports how many.
func (s *Service) PurgeUser(ctx context.Context, username string) (int64, error) {
	return s.repo.DeleteByUsername(ctx, username)
}

// Retype moves transactions between category types.
func (s *Service) Retype(ctx context.Context, from []string, to string) (int64, error) {
	return s.repo.Retype(ctx, from, to)
}
