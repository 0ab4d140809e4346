package auth

// PolicyKind names an authorization rule. Keep these stable; handlers branch
// on the kind reported back by the shared entry point.
type PolicyKind string

const (
	PolicySimple PolicyKind = "Simple"
	PolicyUser   PolicyKind = "User"
	PolicyAdmin  PolicyKind = "Admin"
	PolicyGroup  PolicyKind = "Group"
)

// Policy denial causes.
const (
	ReasonUsernameMismatch = "Usernames mismatch"
	ReasonNotAdmin         = "Not an Admin"
	ReasonNotInGroup       = "You can't access this group"
)

// Policy is one of SimplePolicy, UserPolicy, AdminPolicy or GroupPolicy.
type Policy interface {
	Kind() PolicyKind
	policy()
}

// SimplePolicy admits any authenticated identity.
type SimplePolicy struct{}

// UserPolicy admits only the named user.
type UserPolicy struct {
	Username string
}

// AdminPolicy admits administrators.
type AdminPolicy struct{}

// GroupPolicy admits members of a group, identified by email.
// The zero value admits nobody.
type GroupPolicy struct {
	members map[string]struct{}
}

func NewGroupPolicy(emails ...string) GroupPolicy {
	members := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		members[e] = struct{}{}
	}
	return GroupPolicy{members: members}
}

func (p GroupPolicy) Has(email string) bool {
	_, ok := p.members[email]
	return ok
}

func (SimplePolicy) Kind() PolicyKind { return PolicySimple }
func (UserPolicy) Kind() PolicyKind   { return PolicyUser }
func (AdminPolicy) Kind() PolicyKind  { return PolicyAdmin }
func (GroupPolicy) Kind() PolicyKind  { return PolicyGroup }

func (SimplePolicy) policy() {}
func (UserPolicy) policy()   {}
func (AdminPolicy) policy()  {}
func (GroupPolicy) policy()  {}

// Decision is the verdict of a policy check.
type Decision struct {
	Pass   bool
	Reason string
}

// PolicyEvaluator decides whether already-authorized claims satisfy a policy.
type PolicyEvaluator interface {
	Evaluate(claims Claims, p Policy) Decision
}

// Evaluator is the default, side-effect free PolicyEvaluator.
type Evaluator struct{}

func (Evaluator) Evaluate(claims Claims, p Policy) Decision {
	switch p := p.(type) {
	case UserPolicy:
		if p.Username == "" || claims.Username != p.Username {
			return Decision{Reason: ReasonUsernameMismatch}
		}
	case AdminPolicy:
		if claims.Role != RoleAdmin {
			return Decision{Reason: ReasonNotAdmin}
		}
	case GroupPolicy:
		if !p.Has(claims.Email) {
			return Decision{Reason: ReasonNotInGroup}
		}
	}
	// SimplePolicy and a nil policy need nothing beyond valid tokens.
	return Decision{Pass: true}
}
