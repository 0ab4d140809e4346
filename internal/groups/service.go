package groups

import (
	"context"
	"errors"
	"strings"
	"time"

	"expense-tracker/internal/users"
)

// UserDirectory resolves accounts by email.
type UserDirectory interface {
	ByEmail(ctx context.Context, email string) (users.User, error)
}

type Service struct {
	repo  Repository
	users UserDirectory
	clock func() time.Time
}

func NewService(repo Repository, dir UserDirectory) *Service {
	return &Service{repo: repo, users: dir, clock: time.Now}
}

func validEmails(emails []string) bool {
	if emails == nil {
		return false
	}
	for _, e := range emails {
		if !users.ValidEmail(e) {
			return false
		}
	}
	return true
}

func dedupe(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		e = strings.TrimSpace(e)
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

// partition resolves emails against the user directory and the existing
// memberships. eligible holds the users that can join a group.
func (s *Service) partition(ctx context.Context, emails []string) (eligible []Member, grouped, notFound []string, err error) {
	found := make([]users.User, 0, len(emails))
	notFound = []string{}
	for _, e := range emails {
		u, err := s.users.ByEmail(ctx, e)
		if errors.Is(err, users.ErrNotFound) {
			notFound = append(notFound, e)
			continue
		}
		if err != nil {
			return nil, nil, nil, err
		}
		found = append(found, u)
	}

	foundEmails := make([]string, 0, len(found))
	for _, u := range found {
		foundEmails = append(foundEmails, u.Email)
	}
	grouped, err = s.repo.GroupedEmails(ctx, foundEmails)
	if err != nil {
		return nil, nil, nil, err
	}

	isGrouped := make(map[string]struct{}, len(grouped))
	for _, e := range grouped {
		isGrouped[e] = struct{}{}
	}
	for _, u := range found {
		if _, ok := isGrouped[u.Email]; !ok {
			eligible = append(eligible, Member{Email: u.Email, Username: u.Username})
		}
	}
	return eligible, grouped, notFound, nil
}

// Create makes a new group owned by callerEmail. The caller is always its
// first member; unknown or already grouped emails are skipped and reported.
func (s *Service) Create(ctx context.Context, callerEmail string, req CreateRequest) (CreateResult, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || !validEmails(req.MemberEmails) {
		return CreateResult{}, invalid(CauseInvalidInformation)
	}

	if _, err := s.repo.ByName(ctx, name); err == nil {
		return CreateResult{}, invalid(CauseNameTaken)
	} else if !errors.Is(err, ErrNotFound) {
		return CreateResult{}, err
	}

	caller, err := s.users.ByEmail(ctx, callerEmail)
	if errors.Is(err, users.ErrNotFound) {
		return CreateResult{}, invalid(CauseCallerMissing)
	}
	if err != nil {
		return CreateResult{}, err
	}
	if _, err := s.repo.GroupOf(ctx, caller.Email); err == nil {
		return CreateResult{}, invalid(CauseCallerGrouped)
	} else if !errors.Is(err, ErrNotFound) {
		return CreateResult{}, err
	}

	others := make([]string, 0, len(req.MemberEmails))
	for _, e := range dedupe(req.MemberEmails) {
		if e != caller.Email {
			others = append(others, e)
		}
	}
	eligible, grouped, notFound, err := s.partition(ctx, others)
	if err != nil {
		return CreateResult{}, err
	}

	g := Group{
		Name:      name,
		Members:   append([]Member{{Email: caller.Email, Username: caller.Username}}, eligible...),
		CreatedAt: s.clock().UTC(),
	}
	switch err := s.repo.Create(ctx, g); {
	case errors.Is(err, ErrAlreadyExists):
		return CreateResult{}, invalid(CauseNameTaken)
	case errors.Is(err, ErrMemberGrouped):
		return CreateResult{}, invalid(CauseCallerGrouped)
	case err != nil:
		return CreateResult{}, err
	}
	return CreateResult{Group: g, AlreadyInGroup: grouped, MembersNotFound: notFound}, nil
}

func (s *Service) List(ctx context.Context) ([]Group, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, name string) (Group, error) {
	return s.get(ctx, name, CauseNotFound)
}

// get loads a group; notFoundCause is the client message when it is missing.
func (s *Service) get(ctx context.Context, name, notFoundCause string) (Group, error) {
	g, err := s.repo.ByName(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return Group{}, invalid(notFoundCause)
	}
	return g, err
}

// AddMembers adds the eligible emails to the group.
func (s *Service) AddMembers(ctx context.Context, name string, emails []string) (CreateResult, error) {
	if _, err := s.get(ctx, name, CauseNotFound); err != nil {
		return CreateResult{}, err
	}
	if !validEmails(emails) || len(emails) == 0 {
		return CreateResult{}, invalid(CauseInvalidInformation)
	}

	eligible, grouped, notFound, err := s.partition(ctx, dedupe(emails))
	if err != nil {
		return CreateResult{}, err
	}
	if len(eligible) == 0 {
		return CreateResult{}, invalid(CauseNothingToAdd)
	}

	g, err := s.repo.AddMembers(ctx, name, eligible)
	switch {
	case errors.Is(err, ErrNotFound):
		return CreateResult{}, invalid(CauseNotFound)
	case errors.Is(err, ErrMemberGrouped):
		return CreateResult{}, invalid(CauseNothingToAdd)
	case err != nil:
		return CreateResult{}, err
	}
	return CreateResult{Group: g, AlreadyInGroup: grouped, MembersNotFound: notFound}, nil
}

// RemoveMembers removes the named members. The group is never emptied:
// when every member is named, the oldest one stays.
func (s *Service) RemoveMembers(ctx context.Context, name string, emails []string) (RemoveResult, error) {
	g, err := s.get(ctx, name, CauseDoesNotExist)
	if err != nil {
		return RemoveResult{}, err
	}
	if !validEmails(emails) || len(emails) == 0 {
		return RemoveResult{}, invalid(CauseInvalidEmails)
	}
	if len(g.Members) == 1 {
		return RemoveResult{}, invalid(CauseOnlyMember)
	}

	notFound := []string{}
	notInGroup := []string{}
	remove := []string{}
	for _, e := range dedupe(emails) {
		_, err := s.users.ByEmail(ctx, e)
		if errors.Is(err, users.ErrNotFound) {
			notFound = append(notFound, e)
			continue
		}
		if err != nil {
			return RemoveResult{}, err
		}
		if !g.has(e) {
			notInGroup = append(notInGroup, e)
			continue
		}
		remove = append(remove, e)
	}
	if len(remove) == 0 {
		return RemoveResult{}, invalid(CauseNothingToRemove)
	}
	if len(remove) == len(g.Members) {
		oldest := g.Members[0].Email
		kept := remove[:0]
		for _, e := range remove {
			if e != oldest {
				kept = append(kept, e)
			}
		}
		remove = kept
	}

	g, err = s.repo.RemoveMembers(ctx, name, remove)
	if errors.Is(err, ErrNotFound) {
		return RemoveResult{}, invalid(CauseDoesNotExist)
	}
	if err != nil {
		return RemoveResult{}, err
	}
	return RemoveResult{Group: g, NotInGroup: notInGroup, MembersNotFound: notFound}, nil
}

func (s *Service) Delete(ctx context.Context, name string) error {
	err := s.repo.Delete(ctx, strings.TrimSpace(name))
	if errors.Is(err, ErrNotFound) {
		return invalid(CauseNotFound)
	}
	return err
}

// RemoveMember drops email from its group, deleting the group when email
// was its last member. It reports whether email belonged to a group.
func (s *Service) RemoveMember(ctx context.Context, email string) (bool, error) {
	g, err := s.repo.GroupOf(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(g.Members) == 1 {
		if err := s.repo.Delete(ctx, g.Name); err != nil && !errors.Is(err, ErrNotFound) {
			return false, err
		}
		return true, nil
	}
	if _, err := s.repo.RemoveMembers(ctx, g.Name, []string{email}); err != nil {
		return false, err
	}
	return true, nil
}
