package auth

// Token pair failure causes. Callers may show these to clients.
const (
	ReasonUnauthorized       = "Unauthorized"
	ReasonMissingInformation = "Token is missing information"
	ReasonMismatchedUsers    = "Mismatched users"
	ReasonLoginAgain         = "Perform login again"
)

// Outcome is the verdict on a token pair.
// When Authorized is true, Claims holds the identity to trust and
// UsedRefresh tells whether it came from the refresh token because the
// access token had expired.
type Outcome struct {
	Authorized  bool
	Claims      Claims
	UsedRefresh bool
	Reason      string
}

func unauthorized(reason string) Outcome {
	return Outcome{Reason: reason}
}

// TokenDecoder is the minimal codec surface the authorizer needs.
type TokenDecoder interface {
	Decode(token string) Decoded
}

// TokenAuthorizer validates a cookie token pair independently of any policy.
type TokenAuthorizer interface {
	Authorize(pair TokenPair) Outcome
}

type Authorizer struct {
	codec TokenDecoder
}

func NewAuthorizer(codec TokenDecoder) *Authorizer {
	return &Authorizer{codec: codec}
}

// Authorize checks the pair in a fixed order. Consistency between the two
// tokens is established before choosing whose claims to trust, so an access
// token can never outrank the refresh token stored server-side.
func (a *Authorizer) Authorize(pair TokenPair) Outcome {
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return unauthorized(ReasonUnauthorized)
	}

	access := a.codec.Decode(pair.AccessToken)
	refresh := a.codec.Decode(pair.RefreshToken)

	if access.Failed() {
		return unauthorized(access.Reason)
	}
	if refresh.Failed() {
		return unauthorized(refresh.Reason)
	}

	if IsMissingInformation(access.Claims, refresh.Claims) {
		return unauthorized(ReasonMissingInformation)
	}
	if IsMismatched(access.Claims, refresh.Claims) {
		return unauthorized(ReasonMismatchedUsers)
	}

	if !access.Expired {
		return Outcome{Authorized: true, Claims: access.Claims}
	}
	if !refresh.Expired {
		return Outcome{Authorized: true, Claims: refresh.Claims, UsedRefresh: true}
	}
	return unauthorized(ReasonLoginAgain)
}
