package company_test

import (
	"context"
	"strings"
	"testing"

	"jobportal/board-service/internal/apperr"
	"jobportal/board-service/internal/auth"
	"jobportal/board-service/internal/company"
	"jobportal/board-service/internal/domain"
	"jobportal/board-service/internal/media"
	"jobportal/board-service/internal/store/memory"
)

var gifLogo = []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")

func setup(t *testing.T) *company.Service {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	_ = st.CreateUser(ctx, &domain.User{ID: "r1", Email: "r1@x", Role: domain.RoleRecruiter})
	_ = st.CreateUser(ctx, &domain.User{ID: "r2", Email: "r2@x", Role: domain.RoleRecruiter})
	_ = st.CreateUser(ctx, &domain.User{ID: "s1", Email: "s1@x", Role: domain.RoleStudent})
	return company.NewService(st, auth.NewRoleGuard(st, true), media.NewLibrary(st, 1<<20))
}

func TestRegister(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	c, err := svc.Register(ctx, "r1", "  Acme  ")
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}
	if c.Name != "Acme" || c.UserID != "r1" {
		t.Errorf("Register() = %+v", c)
	}

	cases := []struct {
		user, name string
		want       apperr.Kind
	}{
		{"r2", "Acme", apperr.KindConflict},
		{"r1", " ", apperr.KindValidation},
		{"s1", "Student Co", apperr.KindForbidden},
	}
	for _, tc := range cases {
		if _, err := svc.Register(ctx, tc.user, tc.name); apperr.KindOf(err) != tc.want {
			t.Errorf("Register(%s, %q) kind = %s, want %s", tc.user, tc.name, apperr.KindOf(err), tc.want)
		}
	}
}

func TestMineAndGet(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	a, _ := svc.Register(ctx, "r1", "A")
	_, _ = svc.Register(ctx, "r2", "B")

	mine, err := svc.Mine(ctx, "r1")
	if err != nil || len(mine) != 1 || mine[0].ID != a.ID {
		t.Errorf("Mine(r1) = %+v, %v", mine, err)
	}
	if _, err := svc.Get(ctx, "missing"); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("Get(missing) kind = %s, want not_found", apperr.KindOf(err))
	}
}

func TestUpdate(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	c, _ := svc.Register(ctx, "r1", "Acme")

	got, err := svc.Update(ctx, "r1", c.ID, company.UpdateInput{
		Description: "Rockets",
		Website:     "https://acme.test",
		Logo:        &domain.Upload{Filename: "logo.gif", Data: gifLogo},
	})
	if err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}
	if got.Name != "Acme" || got.Description != "Rockets" || got.Website != "https://acme.test" {
		t.Errorf("Update() = %+v", got)
	}
	if !strings.HasPrefix(got.Logo, domain.MediaPathPrefix) {
		t.Errorf("Logo = %q, want media URL", got.Logo)
	}

	if _, err := svc.Update(ctx, "r2", c.ID, company.UpdateInput{Name: "Mine now"}); apperr.KindOf(err) != apperr.KindForbidden {
		t.Errorf("Update by non-owner kind = %s, want forbidden", apperr.KindOf(err))
	}
}
