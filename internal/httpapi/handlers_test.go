package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"expense-tracker/internal/audit"
	"expense-tracker/internal/auth"
	"expense-tracker/internal/categories"
	"expense-tracker/internal/groups"
	"expense-tracker/internal/reporting"
	"expense-tracker/internal/transactions"
	"expense-tracker/internal/users"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	codec  *auth.Codec
	audit  *audit.MemoryRepo
}

func newTestAPI(t *testing.T, loginLimit int) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	codec, err := auth.NewCodec("secret", time.Hour, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("codec: %v", err)
	}

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})

	usersRepo := users.NewMemoryRepo()
	catRepo := categories.NewMemoryRepo()
	groupsSvc := groups.NewService(groups.NewMemoryRepo(), usersRepo)
	txSvc := transactions.NewService(transactions.NewMemoryRepo(), usersRepo, catRepo)
	auditRepo := audit.NewMemoryRepo()

	h := Handlers{
		Guard:        auth.NewDefaultGuard(codec, "/api"),
		Users:        users.NewService(usersRepo, codec).WithHashCost(bcrypt.MinCost).WithCleanup(txSvc, groupsSvc),
		Groups:       groupsSvc,
		Categories:   categories.NewService(catRepo, txSvc),
		Transactions: txSvc,
		Reports:      reporting.NewService(txSvc),
		Audit:        audit.NewService(auditRepo),
		Limiter:      NewRedisLimiter(rdb, loginLimit, time.Minute),
		CookiePath:   "/api",
		AccessTTL:    time.Hour,
		RefreshTTL:   7 * 24 * time.Hour,
	}

	g := h.Guard
	admin := auth.RequirePolicy(g, auth.AdminPolicy{})
	userOrAdmin := auth.RequireUserOrAdmin(g, "username")

	r := gin.New()
	api := r.Group("/api")
	api.Use(h.AuditRefresh())
	api.POST("/register", h.Register)
	api.POST("/admin", h.RegisterAdmin)
	api.POST("/login", h.Login)
	api.GET("/logout", h.Logout)
	api.GET("/users/:username", userOrAdmin, h.GetUser)
	api.DELETE("/users", admin, h.DeleteUser)
	api.POST("/users/:username/transactions", auth.RequireUser(g, "username"), h.CreateTransaction)
	api.GET("/users/:username/transactions", userOrAdmin, h.GetTransactionsByUser)
	api.GET("/users/:username/summary", userOrAdmin, h.GetUserSummary)
	api.POST("/groups", auth.RequirePolicy(g, auth.SimplePolicy{}), h.CreateGroup)
	api.GET("/groups/:name", h.GetGroup)
	api.PATCH("/groups/:name/add", h.AddToGroup)
	api.GET("/groups/:name/transactions", h.GetTransactionsByGroup)
	api.GET("/groups/:name/summary", h.GetGroupSummary)
	api.POST("/categories", admin, h.CreateCategory)

	return &testAPI{t: t, router: r, codec: codec, audit: auditRepo}
}

type envelope struct {
	Data                  json.RawMessage `json:"data"`
	RefreshedTokenMessage string          `json:"refreshedTokenMessage"`
	Error                 string          `json:"error"`
}

func (a *testAPI) do(method, path string, body any, pair auth.TokenPair) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if pair.AccessToken != "" {
		req.AddCookie(&http.Cookie{Name: auth.AccessCookieName, Value: pair.AccessToken})
	}
	if pair.RefreshToken != "" {
		req.AddCookie(&http.Cookie{Name: auth.RefreshCookieName, Value: pair.RefreshToken})
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		a.t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
	}
	return w, env
}

// signup registers an account and logs it in.
func (a *testAPI) signup(username, email string, role auth.Role) auth.TokenPair {
	a.t.Helper()
	path := "/api/register"
	if role == auth.RoleAdmin {
		path = "/api/admin"
	}
	creds := gin.H{"username": username, "email": email, "password": "pw"}
	if w, env := a.do(http.MethodPost, path, creds, auth.TokenPair{}); w.Code != http.StatusOK {
		a.t.Fatalf("register %s: %d %s", username, w.Code, env.Error)
	}

	w, env := a.do(http.MethodPost, "/api/login", gin.H{"email": email, "password": "pw"}, auth.TokenPair{})
	if w.Code != http.StatusOK {
		a.t.Fatalf("login %s: %d %s", username, w.Code, env.Error)
	}
	var pair auth.TokenPair
	if err := json.Unmarshal(env.Data, &pair); err != nil {
		a.t.Fatalf("decode pair: %v", err)
	}
	return pair
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestRegister_ValidationErrors(t *testing.T) {
	a := newTestAPI(t, 5)
	a.signup("mario", "mario@x.com", auth.RoleRegular)

	cases := []struct {
		body  gin.H
		cause string
	}{
		{gin.H{"username": "luigi", "email": "luigi@x.com"}, users.CauseMissingInformation},
		{gin.H{"username": "luigi", "email": "nope", "password": "pw"}, users.CauseInvalidEmail},
		{gin.H{"username": "luigi", "email": "mario@x.com", "password": "pw"}, users.CauseEmailInUse},
		{gin.H{"username": "mario", "email": "luigi@x.com", "password": "pw"}, users.CauseUsernameInUse},
		{gin.H{"username": "luigi", "email": "luigi@x.com", "password": strings.Repeat("p", 80)}, users.CausePasswordTooLong},
	}
	for _, tc := range cases {
		w, env := a.do(http.MethodPost, "/api/register", tc.body, auth.TokenPair{})
		if w.Code != http.StatusBadRequest || env.Error != tc.cause {
			t.Fatalf("%v: got %d %q", tc.body, w.Code, env.Error)
		}
	}
}

func TestLogin_SetsCookiesAndAudits(t *testing.T) {
	a := newTestAPI(t, 5)
	a.do(http.MethodPost, "/api/register", gin.H{"username": "mario", "email": "mario@x.com", "password": "pw"}, auth.TokenPair{})

	w, env := a.do(http.MethodPost, "/api/login", gin.H{"email": "mario@x.com", "password": "pw"}, auth.TokenPair{})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", w.Code, env.Error)
	}
	access, refresh := cookieNamed(w, auth.AccessCookieName), cookieNamed(w, auth.RefreshCookieName)
	if access == nil || refresh == nil {
		t.Fatalf("expected both cookies, got %+v", w.Result().Cookies())
	}
	if !access.HttpOnly || access.Path != "/api" || refresh.MaxAge != int((7*24*time.Hour).Seconds()) {
		t.Fatalf("unexpected cookies %+v %+v", access, refresh)
	}

	events := a.audit.ForUser("mario")
	if len(events) != 1 || events[0].Type != audit.EventTypeLogin || events[0].Username != "mario" {
		t.Fatalf("unexpected audit events %+v", events)
	}
}

func TestLogin_Throttled(t *testing.T) {
	a := newTestAPI(t, 2)
	a.do(http.MethodPost, "/api/register", gin.H{"username": "mario", "email": "mario@x.com", "password": "pw"}, auth.TokenPair{})

	wrong := gin.H{"email": "mario@x.com", "password": "bad"}
	for i := 0; i < 2; i++ {
		if w, env := a.do(http.MethodPost, "/api/login", wrong, auth.TokenPair{}); w.Code != http.StatusBadRequest || env.Error != users.CauseWrongCredentials {
			t.Fatalf("attempt %d: got %d %q", i, w.Code, env.Error)
		}
	}
	w, env := a.do(http.MethodPost, "/api/login", gin.H{"email": "MARIO@x.com", "password": "pw"}, auth.TokenPair{})
	if w.Code != http.StatusTooManyRequests || env.Error != causeTooManyAttempts {
		t.Fatalf("expected 429, got %d %q", w.Code, env.Error)
	}
}

func TestLogout(t *testing.T) {
	a := newTestAPI(t, 5)
	pair := a.signup("mario", "mario@x.com", auth.RoleRegular)

	if w, env := a.do(http.MethodGet, "/api/logout", nil, auth.TokenPair{}); w.Code != http.StatusBadRequest || env.Error != users.CauseRefreshMissing {
		t.Fatalf("expected missing refresh, got %d %q", w.Code, env.Error)
	}

	w, _ := a.do(http.MethodGet, "/api/logout", nil, pair)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if c := cookieNamed(w, auth.AccessCookieName); c == nil || c.MaxAge >= 0 {
		t.Fatalf("expected expired access cookie, got %+v", c)
	}

	if w, env := a.do(http.MethodGet, "/api/logout", nil, pair); w.Code != http.StatusBadRequest || env.Error != users.CauseUserDoesNotExist {
		t.Fatalf("second logout: got %d %q", w.Code, env.Error)
	}
}

func TestGetUser_EnvelopeAndAdminFallback(t *testing.T) {
	a := newTestAPI(t, 5)
	mario := a.signup("mario", "mario@x.com", auth.RoleRegular)
	luigi := a.signup("luigi", "luigi@x.com", auth.RoleRegular)
	admin := a.signup("boss", "boss@x.com", auth.RoleAdmin)

	w, env := a.do(http.MethodGet, "/api/users/mario", nil, mario)
	if w.Code != http.StatusOK || env.RefreshedTokenMessage != "" {
		t.Fatalf("self: got %d %+v", w.Code, env)
	}
	var p users.Profile
	if err := json.Unmarshal(env.Data, &p); err != nil || p.Email != "mario@x.com" {
		t.Fatalf("unexpected profile %+v (%v)", p, err)
	}

	if w, _ := a.do(http.MethodGet, "/api/users/mario", nil, admin); w.Code != http.StatusOK {
		t.Fatalf("admin fallback: got %d", w.Code)
	}
	if w, env := a.do(http.MethodGet, "/api/users/mario", nil, luigi); w.Code != http.StatusUnauthorized || env.Error != auth.ReasonUsernameMismatch {
		t.Fatalf("other user: got %d %q", w.Code, env.Error)
	}
	if w, env := a.do(http.MethodGet, "/api/users/nobody", nil, admin); w.Code != http.StatusBadRequest || env.Error != users.CauseUserNotFound {
		t.Fatalf("missing user: got %d %q", w.Code, env.Error)
	}
}

func TestExpiredAccessToken_RefreshedAndAudited(t *testing.T) {
	a := newTestAPI(t, 5)
	pair := a.signup("mario", "mario@x.com", auth.RoleRegular)

	identity := auth.Claims{Username: "mario", Email: "mario@x.com", Role: auth.RoleRegular}
	stale, err := a.codec.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).Sign(identity, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	w, env := a.do(http.MethodGet, "/api/users/mario", nil, auth.TokenPair{AccessToken: stale, RefreshToken: pair.RefreshToken})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", w.Code, env.Error)
	}
	if env.RefreshedTokenMessage != auth.RefreshedTokenMessage {
		t.Fatalf("expected advisory, got %q", env.RefreshedTokenMessage)
	}
	if c := cookieNamed(w, auth.AccessCookieName); c == nil || c.Value == "" {
		t.Fatalf("expected refreshed access cookie")
	}

	events := a.audit.Events()
	last := events[len(events)-1]
	if last.Type != audit.EventTypeTokenRefresh || last.Username != "mario" {
		t.Fatalf("expected refresh audit, got %+v", last)
	}
}

func TestGroups_MemberAuthorization(t *testing.T) {
	a := newTestAPI(t, 5)
	mario := a.signup("mario", "mario@x.com", auth.RoleRegular)
	a.signup("luigi", "luigi@x.com", auth.RoleRegular)
	wario := a.signup("wario", "wario@x.com", auth.RoleRegular)
	admin := a.signup("boss", "boss@x.com", auth.RoleAdmin)

	w, env := a.do(http.MethodPost, "/api/groups", gin.H{"name": "home", "memberEmails": []string{"luigi@x.com", "ghost@x.com"}}, mario)
	if w.Code != http.StatusOK {
		t.Fatalf("create: got %d %s", w.Code, env.Error)
	}
	var created groups.CreateResult
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(created.Group.Members) != 2 || len(created.MembersNotFound) != 1 {
		t.Fatalf("unexpected create result %+v", created)
	}

	if w, _ := a.do(http.MethodGet, "/api/groups/home", nil, mario); w.Code != http.StatusOK {
		t.Fatalf("member: got %d", w.Code)
	}
	if w, _ := a.do(http.MethodGet, "/api/groups/home", nil, admin); w.Code != http.StatusOK {
		t.Fatalf("admin: got %d", w.Code)
	}
	if w, env := a.do(http.MethodGet, "/api/groups/home", nil, wario); w.Code != http.StatusUnauthorized || env.Error != auth.ReasonNotInGroup {
		t.Fatalf("outsider: got %d %q", w.Code, env.Error)
	}
	if w, env := a.do(http.MethodGet, "/api/groups/nope", nil, mario); w.Code != http.StatusBadRequest || env.Error != groups.CauseNotFound {
		t.Fatalf("missing group: got %d %q", w.Code, env.Error)
	}

	// The outsider cannot add itself.
	if w, _ := a.do(http.MethodPatch, "/api/groups/home/add", gin.H{"emails": []string{"wario@x.com"}}, wario); w.Code != http.StatusUnauthorized {
		t.Fatalf("outsider add: got %d", w.Code)
	}
	if w, env := a.do(http.MethodPatch, "/api/groups/home/add", gin.H{"emails": []string{"wario@x.com"}}, mario); w.Code != http.StatusOK {
		t.Fatalf("member add: got %d %s", w.Code, env.Error)
	}
	if w, _ := a.do(http.MethodGet, "/api/groups/home", nil, wario); w.Code != http.StatusOK {
		t.Fatalf("new member: got %d", w.Code)
	}
}

func TestTransactions_FiltersOnlyForOwner(t *testing.T) {
	a := newTestAPI(t, 5)
	mario := a.signup("mario", "mario@x.com", auth.RoleRegular)
	admin := a.signup("boss", "boss@x.com", auth.RoleAdmin)

	if w, env := a.do(http.MethodPost, "/api/categories", gin.H{"type": "food", "color": "#fff"}, admin); w.Code != http.StatusOK {
		t.Fatalf("category: got %d %s", w.Code, env.Error)
	}
	for _, amount := range []any{5, "50"} {
		body := gin.H{"username": "mario", "amount": amount, "type": "food"}
		if w, env := a.do(http.MethodPost, "/api/users/mario/transactions", body, mario); w.Code != http.StatusOK {
			t.Fatalf("create %v: got %d %s", amount, w.Code, env.Error)
		}
	}
	// Strict route: no admin fallback.
	if w, _ := a.do(http.MethodPost, "/api/users/mario/transactions", gin.H{"username": "mario", "amount": 1, "type": "food"}, admin); w.Code != http.StatusUnauthorized {
		t.Fatalf("admin create: got %d", w.Code)
	}

	count := func(pair auth.TokenPair, path string) int {
		t.Helper()
		w, env := a.do(http.MethodGet, path, nil, pair)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: got %d %s", path, w.Code, env.Error)
		}
		var views []transactions.View
		if err := json.Unmarshal(env.Data, &views); err != nil {
			t.Fatalf("decode: %v", err)
		}
		for _, v := range views {
			if v.Color != "#fff" {
				t.Fatalf("missing color on %+v", v)
			}
		}
		return len(views)
	}

	if n := count(mario, "/api/users/mario/transactions?min=10"); n != 1 {
		t.Fatalf("owner filter: got %d", n)
	}
	if n := count(admin, "/api/users/mario/transactions?min=10"); n != 2 {
		t.Fatalf("admin ignores filters: got %d", n)
	}

	w, env := a.do(http.MethodGet, "/api/users/mario/transactions?date=2024-01-01&from=2024-01-01", nil, mario)
	if w.Code != http.StatusBadRequest || env.Error != transactions.CauseDateWithRange {
		t.Fatalf("conflicting filters: got %d %q", w.Code, env.Error)
	}

	w, env = a.do(http.MethodGet, "/api/users/mario/summary", nil, admin)
	if w.Code != http.StatusOK {
		t.Fatalf("summary: got %d %s", w.Code, env.Error)
	}
	var sum reporting.SpendSummary
	if err := json.Unmarshal(env.Data, &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.Count != 2 || sum.TotalExpense != 55 || len(sum.ByCategory) != 1 || sum.ByCategory[0].Color != "#fff" {
		t.Fatalf("unexpected summary %+v", sum)
	}

	w, env = a.do(http.MethodGet, "/api/users/mario/summary?from=2024-02-01&upTo=2024-01-01", nil, mario)
	if w.Code != http.StatusBadRequest || env.Error != reporting.CauseInvalidRange {
		t.Fatalf("inverted range: got %d %q", w.Code, env.Error)
	}
}

func TestDeleteUser_AdminOnly(t *testing.T) {
	a := newTestAPI(t, 5)
	mario := a.signup("mario", "mario@x.com", auth.RoleRegular)
	admin := a.signup("boss", "boss@x.com", auth.RoleAdmin)

	if w, env := a.do(http.MethodDelete, "/api/users", gin.H{"email": "mario@x.com"}, mario); w.Code != http.StatusUnauthorized || env.Error != auth.ReasonNotAdmin {
		t.Fatalf("regular: got %d %q", w.Code, env.Error)
	}
	if w, env := a.do(http.MethodDelete, "/api/users", gin.H{"email": "boss@x.com"}, admin); w.Code != http.StatusBadRequest || env.Error != users.CauseAdminUndeletable {
		t.Fatalf("admin target: got %d %q", w.Code, env.Error)
	}
	w, env := a.do(http.MethodDelete, "/api/users", gin.H{"email": "mario@x.com"}, admin)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: got %d %s", w.Code, env.Error)
	}

	events := a.audit.Events()
	last := events[len(events)-1]
	if last.Type != audit.EventTypeAdminAction || last.Actor != "boss" || last.Username != "mario@x.com" {
		t.Fatalf("unexpected audit %+v", last)
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, context.DeadlineExceeded
}
func (failingLimiter) Reset(context.Context, string) error { return context.DeadlineExceeded }

func TestLogin_LimiterFailsOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)
	codec, err := auth.NewCodec("secret", time.Hour, 2*time.Hour)
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	h := Handlers{
		Users:   users.NewService(users.NewMemoryRepo(), codec).WithHashCost(bcrypt.MinCost),
		Limiter: failingLimiter{},
	}
	r := gin.New()
	r.POST("/api/register", h.Register)
	r.POST("/api/login", h.Login)
	a := &testAPI{t: t, router: r, codec: codec}

	a.do(http.MethodPost, "/api/register", gin.H{"username": "mario", "email": "mario@x.com", "password": "pw"}, auth.TokenPair{})
	if w, env := a.do(http.MethodPost, "/api/login", gin.H{"email": "mario@x.com", "password": "pw"}, auth.TokenPair{}); w.Code != http.StatusOK {
		t.Fatalf("expected login despite limiter failure, got %d %s", w.Code, env.Error)
	}
}
