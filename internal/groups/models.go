package groups

import (
	"time"

	"expense-tracker/internal/auth"
)

// Member is a user belonging to a group. Only the email is exposed to
// clients; the username is kept for transaction lookups.
type Member struct {
	Email    string `json:"email" db:"email"`
	Username string `json:"-" db:"username"`
}

// Group is a named set of users. A user belongs to at most one group.
type Group struct {
	Name      string    `json:"name" db:"name"`
	Members   []Member  `json:"members"`
	CreatedAt time.Time `json:"-" db:"created_at"`
}

func (g Group) Emails() []string {
	out := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		out = append(out, m.Email)
	}
	return out
}

func (g Group) Usernames() []string {
	out := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		out = append(out, m.Username)
	}
	return out
}

// Policy returns the group-membership policy guarding this group's routes.
func (g Group) Policy() auth.GroupPolicy {
	return auth.NewGroupPolicy(g.Emails()...)
}

func (g Group) has(email string) bool {
	for _, m := range g.Members {
		if m.Email == email {
			return true
		}
	}
	return false
}

type CreateRequest struct {
	Name         string   `json:"name"`
	MemberEmails []string `json:"memberEmails"`
}

type MembersRequest struct {
	Emails []string `json:"emails"`
}

// CreateResult reports the created group and the emails that were skipped.
type CreateResult struct {
	Group           Group    `json:"group"`
	AlreadyInGroup  []string `json:"alreadyInGroup"`
	MembersNotFound []string `json:"membersNotFound"`
}

type RemoveResult struct {
	Group           Group    `json:"group"`
	NotInGroup      []string `json:"notInGroup"`
	MembersNotFound []string `json:"membersNotFound"`
}
