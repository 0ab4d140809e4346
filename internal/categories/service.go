package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Retyper moves transactions from one set of category types to another.
type Retyper interface {
	Retype(ctx context.Context, from []string, to string) (int64, error)
}

type Service struct {
	repo    Repository
	retyper Retyper
	clock   func() time.Time
}

func NewService(repo Repository, retyper Retyper) *Service {
	return &Service{repo: repo, retyper: retyper, clock: time.Now}
}

func (r Request) complete() bool {
	return strings.TrimSpace(r.Type) != "" && strings.TrimSpace(r.Color) != ""
}

func (s *Service) Create(ctx context.Context, req Request) (Category, error) {
	if !req.complete() {
		return Category{}, invalid(CauseMissingInformation)
	}
	c := Category{Type: req.Type, Color: req.Color, CreatedAt: s.clock().UTC()}
	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return Category{}, invalid(CauseTypeExists)
		}
		return Category{}, err
	}
	return c, nil
}

// Update changes a category's type and color. Renaming the type moves
// every transaction of the old type to the new one.
func (s *Service) Update(ctx context.Context, currentType string, req Request) (ChangeResult, error) {
	if !req.complete() {
		return ChangeResult{}, invalid(CauseMissingInformation)
	}
	if req.Type != currentType {
		if _, err := s.repo.ByType(ctx, req.Type); err == nil {
			return ChangeResult{}, invalid(CauseTypeExists)
		} else if !errors.Is(err, ErrNotFound) {
			return ChangeResult{}, err
		}
	}

	_, err := s.repo.Update(ctx, currentType, Category{Type: req.Type, Color: req.Color})
	switch {
	case errors.Is(err, ErrNotFound):
		return ChangeResult{}, invalid(CauseNotFound)
	case errors.Is(err, ErrAlreadyExists):
		return ChangeResult{}, invalid(CauseTypeExists)
	case err != nil:
		return ChangeResult{}, err
	}

	var count int64
	if req.Type != currentType {
		if count, err = s.retyper.Retype(ctx, []string{currentType}, req.Type); err != nil {
			return ChangeResult{}, err
		}
	}
	return ChangeResult{Message: "Successfully Updated", Count: count}, nil
}

// Delete removes the given types. Their transactions move to the oldest
// category that survives; when every category is named, the oldest one is
// kept.
func (s *Service) Delete(ctx context.Context, types []string) (ChangeResult, error) {
	if len(types) == 0 {
		return ChangeResult{}, invalid(CauseMissingInformation)
	}
	wanted := make(map[string]struct{}, len(types))
	for _, t := range types {
		if strings.TrimSpace(t) == "" {
			return ChangeResult{}, invalid(CauseMissingInformation)
		}
		wanted[t] = struct{}{}
	}

	all, err := s.repo.List(ctx)
	if err != nil {
		return ChangeResult{}, err
	}
	matching := 0
	target := ""
	for _, c := range all {
		if _, ok := wanted[c.Type]; ok {
			matching++
		} else if target == "" {
			target = c.Type
		}
	}
	if matching < len(wanted) {
		return ChangeResult{}, invalid(CauseUnknownTypes)
	}
	if target == "" {
		target = all[0].Type
		delete(wanted, target)
	}

	doomed := make([]string, 0, len(wanted))
	for _, c := range all {
		if _, ok := wanted[c.Type]; ok {
			doomed = append(doomed, c.Type)
		}
	}

	count, err := s.retyper.Retype(ctx, doomed, target)
	if err != nil {
		return ChangeResult{}, err
	}
	deleted, err := s.repo.Delete(ctx, doomed)
	if err != nil {
		return ChangeResult{}, err
	}
	return ChangeResult{Message: fmt.Sprintf("%d successfully Deleted", deleted), Count: count}, nil
}

func (s *Service) List(ctx context.Context) ([]Category, error) {
	return s.repo.List(ctx)
}

// ByType returns the named category or ErrNotFound.
func (s *Service) ByType(ctx context.Context, typ string) (Category, error) {
	return s.repo.ByType(ctx, typ)
}
