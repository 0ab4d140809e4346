package httpapi

import (
	"expense-tracker/internal/auth"
	"expense-tracker/internal/groups"

	"github.com/gin-gonic/gin"
)

// createGroupBody accepts the member list under any of the names clients
// have used for it.
type createGroupBody struct {
	Name         string   `json:"name"`
	MemberEmails []string `json:"memberEmails"`
	Emails       []string `json:"emails"`
	Members      []string `json:"members"`
}

func (b createGroupBody) request() groups.CreateRequest {
	emails := b.MemberEmails
	if emails == nil {
		emails = b.Emails
	}
	if emails == nil {
		emails = b.Members
	}
	return groups.CreateRequest{Name: b.Name, MemberEmails: emails}
}

// CreateGroup makes a group containing the caller. Route policy: Simple.
func (h Handlers) CreateGroup(c *gin.Context) {
	var body createGroupBody
	if !bind(c, &body, groups.CauseInvalidInformation) {
		return
	}
	email, err := auth.Email(c.Request.Context())
	if err != nil {
		badRequest(c, groups.CauseCallerMissing)
		return
	}
	res, err := h.Groups.Create(c.Request.Context(), email, body.request())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, res)
}

// GetGroups lists every group. Route policy: Admin.
func (h Handlers) GetGroups(c *gin.Context) {
	list, err := h.Groups.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, list)
}

// authorizeGroup loads the group named in the path and admits its members
// or an Admin. notFoundCause is reported when the group does not exist.
func (h Handlers) authorizeGroup(c *gin.Context, notFoundCause string) (groups.Group, bool) {
	g, err := h.Groups.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		if _, isClient := clientCause(err); isClient {
			badRequest(c, notFoundCause)
			return groups.Group{}, false
		}
		fail(c, err)
		return groups.Group{}, false
	}
	if _, ok := auth.AuthorizeOrAdmin(c, h.Guard, g.Policy()); !ok {
		return groups.Group{}, false
	}
	return g, true
}

func (h Handlers) GetGroup(c *gin.Context) {
	g, allowed := h.authorizeGroup(c, groups.CauseNotFound)
	if !allowed {
		return
	}
	ok(c, g)
}

func (h Handlers) AddToGroup(c *gin.Context) {
	g, allowed := h.authorizeGroup(c, groups.CauseNotFound)
	if !allowed {
		return
	}
	var req groups.MembersRequest
	if !bind(c, &req, groups.CauseInvalidInformation) {
		return
	}
	res, err := h.Groups.AddMembers(c.Request.Context(), g.Name, req.Emails)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, res)
}

func (h Handlers) RemoveFromGroup(c *gin.Context) {
	g, allowed := h.authorizeGroup(c, groups.CauseDoesNotExist)
	if !allowed {
		return
	}
	var req groups.MembersRequest
	if !bind(c, &req, groups.CauseInvalidEmails) {
		return
	}
	res, err := h.Groups.RemoveMembers(c.Request.Context(), g.Name, req.Emails)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, res)
}

type deleteGroupBody struct {
	Name string `json:"name"`
}

// DeleteGroup removes a group. Route policy: Admin.
func (h Handlers) DeleteGroup(c *gin.Context) {
	var body deleteGroupBody
	if !bind(c, &body, groups.CauseNotFound) {
		return
	}
	if err := h.Groups.Delete(c.Request.Context(), body.Name); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": "Successfully Deleted"})
}
