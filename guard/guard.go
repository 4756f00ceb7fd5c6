package guard

// DecisionKind discriminates the guard's three possible answers.
type DecisionKind uint8

const (
	// DecisionPending means the session is not resolved yet; render nothing
	// and decide again once it is.
	DecisionPending DecisionKind = iota
	// DecisionRender admits the subject to the surface.
	DecisionRender
	// DecisionRedirect sends the browser to Decision.Target instead.
	DecisionRedirect
)

// Decision is the guard's answer for one navigation attempt. Target is set
// only for redirects.
type Decision struct {
	Kind   DecisionKind
	Target string
}

// Subject is the signed-in identity the guard decides about.
type Subject struct {
	UserID string
	Role   Role
}

// Policy is the path table decisions are made against: where anonymous users
// go, and each role's home.
type Policy struct {
	LoginPath    string
	Homes        map[Role]string
	FallbackHome string
	LandingHome  string
}

// DefaultPolicy returns the platform's standard path table.
func DefaultPolicy() Policy {
	return Policy{
		LoginPath: "/login",
		Homes: map[Role]string{
			RoleJobSeeker: "/dashboard",
			RoleEmployer:  "/employer/dashboard",
			RoleAdmin:     "/admin/dashboard",
		},
		FallbackHome: "/",
		LandingHome:  "/dashboard",
	}
}

// CanonicalHome returns the role's own home, or FallbackHome for roles not in
// the table. It is the redirect target when a user reaches a surface their
// role is not allowed on.
func (p Policy) CanonicalHome(r Role) string {
	if home, ok := p.Homes[r]; ok {
		return home
	}
	return p.FallbackHome
}

// Landing returns the post-login/post-verification navigation target for a role.
// Unknown roles land on the default dashboard, not the fallback home.
func (p Policy) Landing(r Role) string {
	if home, ok := p.Homes[r]; ok {
		return home
	}
	return p.LandingHome
}

// Decide answers one navigation attempt. An unresolved session is Pending; an
// anonymous subject redirects to LoginPath; a subject whose role is outside
// the required set redirects to its own canonical home. An empty required set
// admits any signed-in subject.
func (p Policy) Decide(subject *Subject, resolved bool, required RoleSet) Decision {
	if !resolved {
		return Decision{Kind: DecisionPending}
	}
	if subject == nil {
		return Decision{Kind: DecisionRedirect, Target: p.LoginPath}
	}
	if !required.Empty() && !required.Has(subject.Role) {
		return Decision{Kind: DecisionRedirect, Target: p.CanonicalHome(subject.Role)}
	}
	return Decision{Kind: DecisionRender}
}

// CanonicalHome is [Policy.CanonicalHome] over [DefaultPolicy].
func CanonicalHome(r Role) string {
	return DefaultPolicy().CanonicalHome(r)
}

// Landing is [Policy.Landing] over [DefaultPolicy].
func Landing(r Role) string {
	return DefaultPolicy().Landing(r)
}

// Decide is [Policy.Decide] over [DefaultPolicy].
func Decide(subject *Subject, resolved bool, required RoleSet) Decision {
	return DefaultPolicy().Decide(subject, resolved, required)
}
