package auth

import (
	"net/http"

	"expense-tracker/pkg/logger"

	"github.com/gin-gonic/gin"
)

const refreshedMessageKey = "refreshed_token_message"

// Authorize runs the strict entry point for a gin request. On denial the
// request is aborted with 401 and the cause; on success the identity is
// injected into the request context and any reissued cookie is set.
func Authorize(c *gin.Context, g *Guard, p Policy) (Result, bool) {
	res, err := g.Require(PairFromRequest(c.Request), p)
	return apply(c, res, err)
}

// AuthorizeOrAdmin is Authorize with the administrator fallback.
func AuthorizeOrAdmin(c *gin.Context, g *Guard, p Policy) (Result, bool) {
	res, err := g.RequireOrAdmin(PairFromRequest(c.Request), p)
	return apply(c, res, err)
}

func apply(c *gin.Context, res Result, err error) (Result, bool) {
	log := logger.FromGin(c)
	if err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "authorization failed"})
		return Result{}, false
	}
	if !res.Authorized {
		log.Debug("authorization denied", "cause", res.Cause)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": res.Cause})
		return res, false
	}

	if res.Refresh != nil {
		http.SetCookie(c.Writer, res.Refresh.Cookie)
		c.Set(refreshedMessageKey, res.Refresh.Message)
		log.Info("access token refreshed", "username", res.Claims.Username)
	}

	ctx := WithIdentity(c.Request.Context(), res.Claims, res.GrantedAs)
	c.Request = c.Request.WithContext(ctx)
	return res, true
}

// RefreshedMessage returns the advisory set when the access token was
// reissued during this request, or "".
func RefreshedMessage(c *gin.Context) string {
	return c.GetString(refreshedMessageKey)
}

// RequirePolicy is middleware for routes whose policy does not depend on the request.
func RequirePolicy(g *Guard, p Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := Authorize(c, g, p); !ok {
			return
		}
		c.Next()
	}
}

// RequireUserOrAdmin admits the user named by the path parameter, or an administrator.
func RequireUserOrAdmin(g *Guard, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := AuthorizeOrAdmin(c, g, UserPolicy{Username: c.Param(param)}); !ok {
			return
		}
		c.Next()
	}
}

// RequireUser admits only the user named by the path parameter.
func RequireUser(g *Guard, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := Authorize(c, g, UserPolicy{Username: c.Param(param)}); !ok {
			return
		}
		c.Next()
	}
}
