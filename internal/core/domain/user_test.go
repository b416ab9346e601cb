package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"user":    RoleUser,
		"admin":   RoleAdmin,
		" Admin ": RoleAdmin,
	}
	for in, want := range cases {
		got, ok := ParseRole(in)
		if !ok || got != want {
			t.Errorf("ParseRole(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseRole("superuser"); ok {
		t.Error("unknown roles must be rejected")
	}
}

func TestRole_Satisfies(t *testing.T) {
	cases := []struct {
		have, need Role
		want       bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleUser, true},
		{RoleUser, RoleUser, true},
		{RoleUser, RoleAdmin, false},
		{Role("guest"), RoleUser, false},
		{RoleAdmin, Role("guest"), false},
	}
	for _, tc := range cases {
		if got := tc.have.Satisfies(tc.need); got != tc.want {
			t.Errorf("%q.Satisfies(%q) = %v, want %v", tc.have, tc.need, got, tc.want)
		}
	}
}

func TestUser_IsLocked(t *testing.T) {
	now := time.Now()
	u := &User{}
	if u.IsLocked(now) {
		t.Error("user without lockUntil must not be locked")
	}
	future := now.Add(time.Minute)
	u.LockUntil = &future
	if !u.IsLocked(now) {
		t.Error("lockUntil in the future must lock the account")
	}
	past := now.Add(-time.Minute)
	u.LockUntil = &past
	if u.IsLocked(now) {
		t.Error("expired lock must not lock the account")
	}
}

func TestIdentity_IsAdminNilSafe(t *testing.T) {
	var id *Identity
	if id.IsAdmin() {
		t.Error("nil identity is never admin")
	}
	if !(&Identity{Role: RoleAdmin}).IsAdmin() {
		t.Error("admin identity not recognised")
	}
}

func TestErrorFamilies(t *testing.T) {
	if !errors.Is(ErrPostNotFound, ErrNotFound) || !errors.Is(ErrUserNotFound, ErrNotFound) {
		t.Error("not-found errors must wrap ErrNotFound")
	}
	if !errors.Is(ErrSlugTaken, ErrConflict) || !errors.Is(ErrEmailTaken, ErrConflict) {
		t.Error("conflict errors must wrap ErrConflict")
	}
	if ErrPostNotFound.Error() != "blog post not found" {
		t.Errorf("unexpected message %q", ErrPostNotFound.Error())
	}
}
