package users

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"expense-tracker/internal/auth"

	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) (*Service, *MemoryRepo, *auth.Codec) {
	t.Helper()
	codec, err := auth.NewCodec("secret", time.Hour, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	repo := NewMemoryRepo()
	return NewService(repo, codec).WithHashCost(bcrypt.MinCost), repo, codec
}

func causeOf(t *testing.T, err error) string {
	t.Helper()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	return ve.Cause
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		req   RegisterRequest
		cause string
	}{
		{RegisterRequest{Email: "a@x.com", Password: "p"}, CauseMissingInformation},
		{RegisterRequest{Username: "a", Email: "  ", Password: "p"}, CauseMissingInformation},
		{RegisterRequest{Username: "a", Email: "a@x.com"}, CauseMissingInformation},
		{RegisterRequest{Username: "a", Email: "not-an-email", Password: "p"}, CauseInvalidEmail},
		{RegisterRequest{Username: "a", Email: "a@x.com", Password: strings.Repeat("a", 73)}, CausePasswordTooLong},
	}
	for _, tc := range cases {
		_, err := svc.Register(ctx, tc.req, auth.RoleRegular)
		if got := causeOf(t, err); got != tc.cause {
			t.Fatalf("%+v: got %q want %q", tc.req, got, tc.cause)
		}
	}
}

func TestRegister_RejectsDuplicates(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterRequest{Username: "mario", Email: "mario@x.com", Password: "p"}, auth.RoleRegular); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := svc.Register(ctx, RegisterRequest{Username: "other", Email: "mario@x.com", Password: "p"}, auth.RoleRegular)
	if causeOf(t, err) != CauseEmailInUse {
		t.Fatalf("expected email in use, got %v", err)
	}
	_, err = svc.Register(ctx, RegisterRequest{Username: "mario", Email: "other@x.com", Password: "p"}, auth.RoleRegular)
	if causeOf(t, err) != CauseUsernameInUse {
		t.Fatalf("expected username in use, got %v", err)
	}
}

func TestRegister_HashesPasswordAndSetsRole(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterRequest{Username: "admin", Email: "admin@x.com", Password: "pw"}, auth.RoleAdmin); err != nil {
		t.Fatalf("register: %v", err)
	}
	u, err := repo.ByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if u.PasswordHash == "pw" || !checkPassword(u.PasswordHash, "pw") {
		t.Fatalf("password not hashed correctly")
	}
	if u.Role != auth.RoleAdmin {
		t.Fatalf("expected admin role, got %s", u.Role)
	}

	if _, err := svc.Register(ctx, RegisterRequest{Username: "r", Email: "r@x.com", Password: "pw"}, "Superuser"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if u, _ := repo.ByUsername(ctx, "r"); u.Role != auth.RoleRegular {
		t.Fatalf("unknown roles must fall back to Regular, got %s", u.Role)
	}
}

func TestLogin_IssuesConsistentPairAndStoresRefresh(t *testing.T) {
	svc, repo, codec := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterRequest{Username: "mario", Email: "mario@x.com", Password: "pw"}, auth.RoleRegular); err != nil {
		t.Fatalf("register: %v", err)
	}

	u, pair, err := svc.Login(ctx, LoginRequest{Email: "mario@x.com", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	out := auth.NewAuthorizer(codec).Authorize(pair)
	if !out.Authorized || out.UsedRefresh || out.Claims.Username != "mario" {
		t.Fatalf("issued pair not accepted: %+v", out)
	}
	stored, _ := repo.ByUsername(ctx, "mario")
	if stored.RefreshToken != pair.RefreshToken || u.RefreshToken != pair.RefreshToken {
		t.Fatalf("refresh token not stored")
	}
}

func TestLogin_Failures(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterRequest{Username: "mario", Email: "mario@x.com", Password: "pw"}, auth.RoleRegular); err != nil {
		t.Fatalf("register: %v", err)
	}

	cases := []struct {
		req   LoginRequest
		cause string
	}{
		{LoginRequest{Email: "mario@x.com"}, CauseInvalidCredentials},
		{LoginRequest{Email: "nope", Password: "pw"}, CauseInvalidCredentials},
		{LoginRequest{Email: "luigi@x.com", Password: "pw"}, CauseUserDoesNotExist},
		{LoginRequest{Email: "mario@x.com", Password: "bad"}, CauseWrongCredentials},
	}
	for _, tc := range cases {
		_, _, err := svc.Login(ctx, tc.req)
		if got := causeOf(t, err); got != tc.cause {
			t.Fatalf("%+v: got %q want %q", tc.req, got, tc.cause)
		}
	}
}

func TestRegister_AcceptsLongestPassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	pw := strings.Repeat("a", 72)
	if _, err := svc.Register(ctx, RegisterRequest{Username: "mario", Email: "mario@x.com", Password: pw}, auth.RoleRegular); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := svc.Login(ctx, LoginRequest{Email: "mario@x.com", Password: pw}); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestLogin_TrimsEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterRequest{Username: "mario", Email: "mario@x.com", Password: "pw"}, auth.RoleRegular); err != nil {
		t.Fatalf("register: %v", err)
	}
	u, _, err := svc.Login(ctx, LoginRequest{Email: "  mario@x.com ", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.Username != "mario" {
		t.Fatalf("unexpected user %+v", u)
	}
}

func TestLogout_ClearsRefreshToken(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterRequest{Username: "mario", Email: "mario@x.com", Password: "pw"}, auth.RoleRegular); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, pair, err := svc.Login(ctx, LoginRequest{Email: "mario@x.com", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := svc.Logout(ctx, ""); causeOf(t, err) != CauseRefreshMissing {
		t.Fatalf("expected refresh missing, got %v", err)
	}
	if _, err := svc.Logout(ctx, "unknown"); causeOf(t, err) != CauseUserDoesNotExist {
		t.Fatalf("expected unknown user, got %v", err)
	}
	if _, err := svc.Logout(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if u, _ := repo.ByUsername(ctx, "mario"); u.RefreshToken != "" {
		t.Fatalf("refresh token not cleared")
	}
	if _, err := svc.Logout(ctx, pair.RefreshToken); causeOf(t, err) != CauseUserDoesNotExist {
		t.Fatalf("second logout must fail, got %v", err)
	}
}

func TestListAndGet(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	list, err := svc.List(ctx)
	if err != nil || len(list) != 0 {
		t.Fatalf("expected empty list, got %v %v", list, err)
	}
	if _, err := svc.Register(ctx, RegisterRequest{Username: "mario", Email: "mario@x.com", Password: "pw"}, auth.RoleRegular); err != nil {
		t.Fatalf("register: %v", err)
	}
	list, _ = svc.List(ctx)
	if len(list) != 1 || list[0] != (Profile{Username: "mario", Email: "mario@x.com", Role: auth.RoleRegular}) {
		t.Fatalf("unexpected list %+v", list)
	}

	p, err := svc.Get(ctx, "mario")
	if err != nil || p.Email != "mario@x.com" {
		t.Fatalf("unexpected get %+v %v", p, err)
	}
	if _, err := svc.Get(ctx, "luigi"); causeOf(t, err) != CauseUserNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

type fakePurger struct{ purged []string }

func (f *fakePurger) PurgeUser(ctx context.Context, username string) (int64, error) {
	f.purged = append(f.purged, username)
	return 3, nil
}

type fakeGroups struct {
	removed  []string
	failNext error
}

func (f *fakeGroups) RemoveMember(ctx context.Context, email string) (bool, error) {
	if err := f.failNext; err != nil {
		f.failNext = nil
		return false, err
	}
	f.removed = append(f.removed, email)
	return true, nil
}

func TestDelete(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	purger, groups := &fakePurger{}, &fakeGroups{}
	svc.WithCleanup(purger, groups)

	if _, err := svc.Register(ctx, RegisterRequest{Username: "mario", Email: "mario@x.com", Password: "pw"}, auth.RoleRegular); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, RegisterRequest{Username: "admin", Email: "admin@x.com", Password: "pw"}, auth.RoleAdmin); err != nil {
		t.Fatalf("register: %v", err)
	}

	cases := []struct {
		email string
		cause string
	}{
		{"", CauseEmailMissing},
		{"ghost@x.com", CauseUserMissing},
		{"admin@x.com", CauseAdminUndeletable},
	}
	for _, tc := range cases {
		if _, err := svc.Delete(ctx, tc.email); causeOf(t, err) != tc.cause {
			t.Fatalf("%q: expected %q, got %v", tc.email, tc.cause, err)
		}
	}
	if len(purger.purged) != 0 || len(groups.removed) != 0 {
		t.Fatalf("rejected deletes must not clean up")
	}

	res, err := svc.Delete(ctx, "mario@x.com")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if res != (DeleteResult{DeletedTransactions: 3, DeletedFromGroup: true}) {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(purger.purged) != 1 || purger.purged[0] != "mario" || len(groups.removed) != 1 || groups.removed[0] != "mario@x.com" {
		t.Fatalf("cleanup not run: %v %v", purger.purged, groups.removed)
	}
	if _, err := repo.ByEmail(ctx, "mario@x.com"); err != ErrNotFound {
		t.Fatalf("user not deleted: %v", err)
	}
}

func TestDelete_FailedCleanupKeepsAccountAndRetryCompletes(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	boom := errors.New("boom")
	purger, groups := &fakePurger{}, &fakeGroups{failNext: boom}
	svc.WithCleanup(purger, groups)

	if _, err := svc.Register(ctx, RegisterRequest{Username: "mario", Email: "mario@x.com", Password: "pw"}, auth.RoleRegular); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Delete(ctx, "mario@x.com"); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, err := repo.ByEmail(ctx, "mario@x.com"); err != nil {
		t.Fatalf("account must survive a failed delete: %v", err)
	}

	if _, err := svc.Delete(ctx, "mario@x.com"); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if _, err := repo.ByEmail(ctx, "mario@x.com"); err != ErrNotFound {
		t.Fatalf("user not deleted: %v", err)
	}
	if len(purger.purged) != 2 || len(groups.removed) != 1 {
		t.Fatalf("unexpected cleanup calls: %v %v", purger.purged, groups.removed)
	}
}
