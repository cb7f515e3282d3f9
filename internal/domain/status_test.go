package domain_test

import (
	"testing"

	"jobportal/board-service/internal/domain"
)

var allStatuses = []domain.Status{
	domain.StatusPending,
	domain.StatusAccepted,
	domain.StatusRejected,
}

// ── ParseStatus ────────────────────────────────────────────────────────────

func TestParseStatus_ValidValues(t *testing.T) {
	for _, s := range []string{"pending", "accepted", "rejected"} {
		got, err := domain.ParseStatus(s)
		if err != nil {
			t.Errorf("ParseStatus(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseStatus(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseStatus_Invalid(t *testing.T) {
	for _, s := range []string{"", "UNKNOWN", "Pending", "ACCEPTED", " rejected", "rejected "} {
		if _, err := domain.ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) expected error, got nil", s)
		}
	}
}

// ── IsTransitionAllowed ────────────────────────────────────────────────────

func TestIsTransitionAllowed_FromPending(t *testing.T) {
	for _, to := range []domain.Status{domain.StatusAccepted, domain.StatusRejected} {
		if !domain.IsTransitionAllowed(domain.StatusPending, to) {
			t.Errorf("IsTransitionAllowed(pending → %s) should be true", to)
		}
	}
}

func TestIsTransitionAllowed_FromTerminal(t *testing.T) {
	terminals := []domain.Status{domain.StatusAccepted, domain.StatusRejected}
	for _, from := range terminals {
		for _, to := range allStatuses {
			if domain.IsTransitionAllowed(from, to) {
				t.Errorf("IsTransitionAllowed(%s → %s) should be false (terminal state)", from, to)
			}
		}
	}
}

func TestIsTransitionAllowed_Self(t *testing.T) {
	for _, s := range allStatuses {
		if domain.IsTransitionAllowed(s, s) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be false (self)", s, s)
		}
	}
}

// pending is the mandatory initial state and is never re-entered.
func TestIsTransitionAllowed_PendingIsNeverReachable(t *testing.T) {
	for _, from := range allStatuses {
		if domain.IsTransitionAllowed(from, domain.StatusPending) {
			t.Errorf("IsTransitionAllowed(%s → pending) must be false", from)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	cases := map[domain.Status]bool{
		domain.StatusPending:  false,
		domain.StatusAccepted: true,
		domain.StatusRejected: true,
	}
	for s, want := range cases {
		if got := domain.IsTerminal(s); got != want {
			t.Errorf("IsTerminal(%s) = %v, want %v", s, got, want)
		}
	}
}

// ── Roles ──────────────────────────────────────────────────────────────────

func TestParseRole(t *testing.T) {
	cases := []struct {
		in      string
		want    domain.Role
		wantErr bool
	}{
		{"student", domain.RoleStudent, false},
		{"recruiter", domain.RoleRecruiter, false},
		{"Recruiter", "", true},
		{"admin", "", true},
		{"", "", true},
	}
	for _, c := range cases {
		got, err := domain.ParseRole(c.in)
		if (err != nil) != c.wantErr {
			t.Errorf("ParseRole(%q) err = %v, wantErr %v", c.in, err, c.wantErr)
		}
		if got != c.want {
			t.Errorf("ParseRole(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRole_CanManageJobs(t *testing.T) {
	if !domain.RoleRecruiter.CanManageJobs() {
		t.Error("recruiter must be able to manage jobs")
	}
	if domain.RoleStudent.CanManageJobs() {
		t.Error("student must not be able to manage jobs")
	}
	if domain.Role("admin").CanManageJobs() {
		t.Error("unknown role must not be able to manage jobs")
	}
}
