// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package permissions

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/canonical/membership-service/internal/types"
)

func member(owner bool, roles ...types.Role) *types.Member {
	return &types.Member{OrganizationID: "org-1", UserID: "user-1", Roles: roles, Active: true, IsOwner: owner}
}

func TestPolicy_UserCan(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name     string
		member   *types.Member
		area     string
		action   string
		expected bool
	}{
		{"no membership", nil, AreaOrganization, ActionView, false},
		{"explicit empty membership", types.NoMembership(), AreaOrganization, ActionView, false},
		{"inactive member", &types.Member{Roles: []types.Role{types.RoleAdmin}, IsOwner: true}, AreaOrganization, ActionView, false},
		{"sole member without owner flag cannot delete", member(false), AreaOrganization, ActionDeleteOrg, false},
		{"owner role without owner flag cannot delete", member(false, types.RoleOwner, types.RoleAdmin), AreaOrganization, ActionDeleteOrg, false},
		{"owner flag without roles can delete", member(true), AreaOrganization, ActionDeleteOrg, true},
		{"owner flag can transfer", member(true), AreaOrganization, ActionTransferOwnership, true},
		{"admin can invite", member(false, types.RoleAdmin), AreaInvitation, ActionCreateInvitation, true},
		{"appraiser cannot invite", member(false, types.RoleAppraiser), AreaInvitation, ActionCreateInvitation, false},
		{"manager alone cannot sign off", member(false, types.RoleManager), AreaOrder, ActionSignOff, false},
		{"manager and appraiser can sign off", member(false, types.RoleManager, types.RoleAppraiser), AreaOrder, ActionSignOff, true},
		{"unknown action", member(true, types.Roles...), AreaOrder, "launch", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.UserCan(tt.member, tt.area, tt.action); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestPolicy_DisjointRolesAlwaysDenied(t *testing.T) {
	p := DefaultPolicy()

	for _, perm := range p.Permissions() {
		rule := p.rules[perm]
		if rule.RequiresOwner {
			continue
		}

		var disjoint []types.Role
		for _, r := range types.Roles {
			if !slices.Contains(rule.Roles, r) {
				disjoint = append(disjoint, r)
			}
		}

		if p.UserCan(member(false, disjoint...), perm.Area, perm.Action) {
			t.Errorf("%s granted to disjoint roles %v", perm, disjoint)
		}
	}
}

func TestPolicy_OwnerGatedIgnoresRoles(t *testing.T) {
	p := DefaultPolicy()

	for _, perm := range p.Permissions() {
		if !p.rules[perm].RequiresOwner {
			continue
		}

		if p.UserCan(member(false, types.Roles...), perm.Area, perm.Action) {
			t.Errorf("%s granted without owner flag", perm)
		}
		if !p.UserCan(member(true), perm.Area, perm.Action) {
			t.Errorf("%s denied to owner", perm)
		}
	}
}

func TestPolicy_GetUserPermissions(t *testing.T) {
	p := DefaultPolicy()

	if got := p.GetUserPermissions(nil); len(got) != 0 {
		t.Fatalf("expected no permissions for non member, got %v", got)
	}

	got := p.GetUserPermissions(member(false, types.RoleAppraiser))
	expected := []Permission{
		{AreaMember, ActionView},
		{AreaOrder, ActionUpdate},
		{AreaOrder, ActionView},
		{AreaOrganization, ActionView},
	}

	if !slices.Equal(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

func TestNewPolicy_Validation(t *testing.T) {
	tests := []struct {
		name    string
		rules   map[string]map[string]Rule
		wantErr bool
	}{
		{"valid", map[string]map[string]Rule{"a": {"b": {Roles: []types.Role{types.RoleAdmin}}}}, false},
		{"owner gated without roles", map[string]map[string]Rule{"a": {"b": {RequiresOwner: true}}}, false},
		{"no roles", map[string]map[string]Rule{"a": {"b": {}}}, true},
		{"unknown role", map[string]map[string]Rule{"a": {"b": {Roles: []types.Role{"janitor"}}}}, true},
		{"unknown constraint", map[string]map[string]Rule{"a": {"b": {Roles: []types.Role{types.RoleAdmin}, Constraint: "most"}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPolicy(tt.rules)
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNewPolicy_IsolatedFromInput(t *testing.T) {
	roles := []types.Role{types.RoleAdmin}
	p, err := NewPolicy(map[string]map[string]Rule{"a": {"b": {Roles: roles}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	roles[0] = types.RoleAppraiser

	if p.UserCan(member(false, types.RoleAppraiser), "a", "b") {
		t.Error("policy changed after construction")
	}
}

func TestLoadPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.json")
	doc := `{"order": {"sign_off": {"roles": ["manager", "appraiser"], "constraint": "all"}, "purge": {"requires_owner": true}}}`

	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("failed to write policy: %v", err)
	}

	p, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(p.Permissions()) != 2 {
		t.Fatalf("expected 2 permissions, got %v", p.Permissions())
	}
	if p.UserCan(member(false, types.RoleManager), AreaOrder, ActionSignOff) {
		t.Error("all constraint not honoured")
	}
	if !p.UserCan(member(true), AreaOrder, "purge") {
		t.Error("owner gated action denied to owner")
	}

	if _, err := LoadPolicy(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	def, err := LoadPolicy("")
	if err != nil || len(def.Permissions()) != len(DefaultPolicy().Permissions()) {
		t.Errorf("expected default policy, got %v", err)
	}
}
