package auth

// Result is what request handlers see. Every denial, whatever its origin,
// has the same shape: Authorized false and a short Cause.
type Result struct {
	Authorized bool
	Cause      string
	// GrantedAs is the policy that admitted the caller.
	GrantedAs PolicyKind
	Claims    Claims
	// Refresh is set when the access token was reissued.
	Refresh *Refresh
}

func denied(cause string) Result {
	if cause == "" {
		cause = ReasonUnauthorized
	}
	return Result{Cause: cause}
}

// Guard is the authorization entry point used by request handlers.
type Guard struct {
	tokens    TokenAuthorizer
	policies  PolicyEvaluator
	refresher RefreshEmitter
}

func NewGuard(tokens TokenAuthorizer, policies PolicyEvaluator, refresher RefreshEmitter) *Guard {
	if policies == nil {
		policies = Evaluator{}
	}
	return &Guard{tokens: tokens, policies: policies, refresher: refresher}
}

// NewDefaultGuard wires the codec-backed authorizer, evaluator and refresher.
func NewDefaultGuard(codec *Codec, cookiePath string) *Guard {
	return NewGuard(NewAuthorizer(codec), Evaluator{}, NewRefresher(codec, cookiePath))
}

// Require admits the caller only if the token pair is valid and p passes.
// A refreshed access token is minted only after the policy check passed.
// The returned error is reserved for unexpected failures such as signing.
func (g *Guard) Require(pair TokenPair, p Policy) (Result, error) {
	if p == nil {
		p = SimplePolicy{}
	}

	outcome := g.tokens.Authorize(pair)
	if !outcome.Authorized {
		return denied(outcome.Reason), nil
	}

	decision := g.policies.Evaluate(outcome.Claims, p)
	if !decision.Pass {
		return denied(decision.Reason), nil
	}

	res := Result{Authorized: true, GrantedAs: p.Kind(), Claims: outcome.Claims}
	if outcome.UsedRefresh {
		refresh, err := g.refresher.Emit(outcome.Claims)
		if err != nil {
			return Result{}, err
		}
		res.Refresh = &refresh
	}
	return res, nil
}

// RequireOrAdmin admits the caller if p passes or, failing that, if the
// caller is an administrator. The admin retry validates the token pair again
// from scratch. When both fail, the cause of the first attempt is reported.
func (g *Guard) RequireOrAdmin(pair TokenPair, p Policy) (Result, error) {
	first, err := g.Require(pair, p)
	if err != nil || first.Authorized {
		return first, err
	}

	admin, err := g.Require(pair, AdminPolicy{})
	if err != nil || admin.Authorized {
		return admin, err
	}

	return denied(first.Cause), nil
}
