package guard

import "testing"

func TestDecidePendingWhileUnresolved(t *testing.T) {
	d := Decide(nil, false, Roles(RoleEmployer))
	if d.Kind != DecisionPending {
		t.Fatalf("expected pending, got %v", d.Kind)
	}
	if d.Target != "" {
		t.Fatalf("pending decision must carry no target, got %q", d.Target)
	}

	// Resolution state wins even when a subject is already known.
	d = Decide(&Subject{UserID: "u1", Role: RoleAdmin}, false, 0)
	if d.Kind != DecisionPending {
		t.Fatalf("expected pending for unresolved subject, got %v", d.Kind)
	}
}

func TestDecideRedirectsToLoginWithoutSession(t *testing.T) {
	d := Decide(nil, true, 0)
	if d.Kind != DecisionRedirect || d.Target != "/login" {
		t.Fatalf("expected redirect to /login, got kind=%v target=%q", d.Kind, d.Target)
	}

	d = Decide(nil, true, Roles(RoleJobSeeker, RoleAdmin))
	if d.Kind != DecisionRedirect || d.Target != "/login" {
		t.Fatalf("required roles must not change the no-session redirect, got %q", d.Target)
	}
}

func TestDecideRoleMembership(t *testing.T) {
	cases := []struct {
		name     string
		role     Role
		required RoleSet
		render   bool
		target   string
	}{
		{"member renders", RoleEmployer, Roles(RoleEmployer), true, ""},
		{"member of larger set renders", RoleAdmin, Roles(RoleEmployer, RoleAdmin), true, ""},
		{"job seeker on employer surface", RoleJobSeeker, Roles(RoleEmployer), false, "/dashboard"},
		{"employer on admin surface", RoleEmployer, Roles(RoleAdmin), false, "/employer/dashboard"},
		{"admin on seeker surface", RoleAdmin, Roles(RoleJobSeeker), false, "/admin/dashboard"},
		{"empty set renders any role", RoleJobSeeker, 0, true, ""},
		{"unknown role on guarded surface", Role("moderator"), Roles(RoleAdmin), false, "/"},
		{"unknown role on open surface", Role("moderator"), 0, true, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Decide(&Subject{UserID: "u1", Role: tc.role}, true, tc.required)
			if tc.render {
				if d.Kind != DecisionRender {
					t.Fatalf("expected render, got kind=%v target=%q", d.Kind, d.Target)
				}
				return
			}
			if d.Kind != DecisionRedirect {
				t.Fatalf("expected redirect, got %v", d.Kind)
			}
			if d.Target != tc.target {
				t.Fatalf("expected redirect to %q, got %q", tc.target, d.Target)
			}
		})
	}
}

func TestDecideTotalAndDeterministic(t *testing.T) {
	subjects := []*Subject{
		nil,
		{UserID: "u1", Role: RoleJobSeeker},
		{UserID: "u2", Role: RoleEmployer},
		{UserID: "u3", Role: RoleAdmin},
		{UserID: "u4", Role: Role("ghost")},
	}
	sets := []RoleSet{
		0,
		Roles(RoleJobSeeker),
		Roles(RoleEmployer),
		Roles(RoleAdmin),
		Roles(RoleJobSeeker, RoleEmployer),
		Roles(RoleJobSeeker, RoleEmployer, RoleAdmin),
	}

	for _, subject := range subjects {
		for _, resolved := range []bool{false, true} {
			for _, required := range sets {
				first := Decide(subject, resolved, required)
				second := Decide(subject, resolved, required)
				if first != second {
					t.Fatalf("decision not deterministic for subject=%v resolved=%v set=%v", subject, resolved, required)
				}
				if first.Kind != DecisionPending && first.Kind != DecisionRender && first.Kind != DecisionRedirect {
					t.Fatalf("decision kind out of range: %v", first.Kind)
				}
				if first.Kind == DecisionRedirect && first.Target == "" {
					t.Fatalf("redirect without target for subject=%v set=%v", subject, required)
				}
			}
		}
	}
}

func TestCanonicalHomeMapping(t *testing.T) {
	cases := map[Role]string{
		RoleJobSeeker:   "/dashboard",
		RoleEmployer:    "/employer/dashboard",
		RoleAdmin:       "/admin/dashboard",
		Role("unknown"): "/",
		Role(""):        "/",
	}
	for role, want := range cases {
		if got := CanonicalHome(role); got != want {
			t.Fatalf("CanonicalHome(%q) = %q, want %q", role, got, want)
		}
	}
}

func TestLandingDefaultsToDashboard(t *testing.T) {
	if got := Landing(RoleEmployer); got != "/employer/dashboard" {
		t.Fatalf("employer landing = %q", got)
	}
	if got := Landing(Role("unknown")); got != "/dashboard" {
		t.Fatalf("unknown-role landing = %q, want /dashboard", got)
	}
}

func TestRoleSet(t *testing.T) {
	s := Roles(RoleJobSeeker, RoleAdmin)
	if !s.Has(RoleJobSeeker) || !s.Has(RoleAdmin) {
		t.Fatal("expected members present")
	}
	if s.Has(RoleEmployer) {
		t.Fatal("employer must not be a member")
	}
	if s.Has(Role("unknown")) {
		t.Fatal("unknown roles are never members")
	}
	if s.Empty() {
		t.Fatal("set with members reported empty")
	}
	if got := s.List(); len(got) != 2 || got[0] != RoleJobSeeker || got[1] != RoleAdmin {
		t.Fatalf("unexpected member list %v", got)
	}
	if !Roles().Empty() {
		t.Fatal("empty construction must be empty")
	}
	if !KnownRole(RoleEmployer) || KnownRole(Role("x")) {
		t.Fatal("KnownRole misclassified")
	}
}
