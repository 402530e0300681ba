package model

import "testing"

func TestRoleValid(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleAdmin, true},
		{RoleModerator, true},
		{RoleCustomer, true},
		{Role(""), false},
		{Role("editor"), false},
		{Role("Admin"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := tt.role.Valid(); got != tt.want {
				t.Errorf("Role(%q).Valid() = %v; want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestRoleIsAdmin(t *testing.T) {
	if !RoleAdmin.IsAdmin() {
		t.Error("RoleAdmin.IsAdmin() = false; want true")
	}
	if RoleModerator.IsAdmin() {
		t.Error("RoleModerator.IsAdmin() = true; want false")
	}
	if RoleCustomer.IsAdmin() {
		t.Error("RoleCustomer.IsAdmin() = true; want false")
	}
}

func TestParseRole(t *testing.T) {
	if got := ParseRole(""); got != RoleCustomer {
		t.Errorf("ParseRole(\"\") = %q; want %q", got, RoleCustomer)
	}
	if got := ParseRole("admin"); got != RoleAdmin {
		t.Errorf("ParseRole(\"admin\") = %q; want %q", got, RoleAdmin)
	}
	if got := ParseRole("garbage"); got.Valid() {
		t.Errorf("ParseRole(\"garbage\").Valid() = true; want false")
	}
}
