package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Codec failure classifications. They are surfaced to callers as the
// authorization cause, so they must never include token material.
const (
	ReasonMalformed        = "malformed token"
	ReasonSignatureInvalid = "invalid signature"
	ReasonUnverifiable     = "unverifiable token"
	ReasonInvalidToken     = "invalid token"
)

var ErrSecretRequired = errors.New("auth: signing secret is required")

// Codec signs and verifies HS256 tokens with a single shared secret.
// The secret is injected at construction and never read from the environment.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewCodec(secret string, accessTTL, refreshTTL time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, ErrSecretRequired
	}
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &Codec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		clock:      time.Now,
	}, nil
}

// WithClock returns a copy of the codec that reads time from clock.
func (c *Codec) WithClock(clock func() time.Time) *Codec {
	cp := *c
	cp.clock = clock
	return &cp
}

func (c *Codec) AccessTTL() time.Duration  { return c.accessTTL }
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// TokenPair is the access/refresh couple carried in the caller's cookies.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Decoded is the result of verifying one token.
//
// A failed decode has Reason set and Expired false. An expired token whose
// signature verifies still carries its claims, because the caller needs them
// to judge the other token of the pair.
type Decoded struct {
	Claims  Claims
	Expired bool
	Reason  string
}

func (d Decoded) Failed() bool { return d.Reason != "" }

/* ===================== VERIFY TOKEN ===================== */

func (c *Codec) Decode(tokenString string) Decoded {
	var claims Claims

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.clock),
		jwt.WithExpirationRequired(),
	)

	_, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return c.secret, nil
	})
	switch {
	case err == nil:
		return Decoded{Claims: claims}
	case errors.Is(err, jwt.ErrTokenExpired):
		// jwt verifies the signature before validating time claims, so the
		// payload here is authentic.
		return Decoded{Claims: claims, Expired: true}
	default:
		return Decoded{Reason: classify(err)}
	}
}

func classify(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ReasonMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ReasonSignatureInvalid
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return ReasonUnverifiable
	default:
		return ReasonInvalidToken
	}
}

/* ===================== ISSUE TOKENS ===================== */

// IssuePair signs an access and a refresh token carrying the same identity.
func (c *Codec) IssuePair(identity Claims) (TokenPair, error) {
	access, err := c.Sign(identity, c.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := c.Sign(identity, c.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Sign issues a token for the identity fields of claims, valid for ttl.
func (c *Codec) Sign(identity Claims, ttl time.Duration) (string, error) {
	now := c.clock()
	claims := identity.Identity()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}
