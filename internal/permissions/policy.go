// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package permissions

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sort"

	"github.com/canonical/membership-service/internal/types"
)

const (
	AreaOrganization = "organization"
	AreaMember       = "member"
	AreaInvitation   = "invitation"
	AreaOrder        = "order"
)

const (
	ActionView              = "view"
	ActionUpdate            = "update"
	ActionDeleteOrg         = "delete_org"
	ActionTransferOwnership = "transfer_ownership"
	ActionUpdateRoles       = "update_roles"
	ActionRemove            = "remove"
	ActionCreateInvitation  = "create_invitation"
	ActionUpdateInvitation  = "update_invitation"
	ActionCancelInvitation  = "cancel_invitation"
	ActionCreate            = "create"
	ActionAssign            = "assign"
	ActionSignOff           = "sign_off"
)

type Constraint string

const (
	// ConstraintAny grants the action when the actor holds at least one allowed role.
	ConstraintAny Constraint = "any"
	// ConstraintAll grants the action only when the actor holds every allowed role.
	ConstraintAll Constraint = "all"
)

// Permission identifies an action within an area
type Permission struct {
	Area   string `json:"area"`
	Action string `json:"action"`
}

func (p Permission) String() string {
	return p.Area + ":" + p.Action
}

type Rule struct {
	Roles         []types.Role `json:"roles,omitempty"`
	RequiresOwner bool         `json:"requires_owner,omitempty"`
	Constraint    Constraint   `json:"constraint,omitempty"`
}

// Policy is the immutable (area, action) table, build it with NewPolicy,
// DefaultPolicy or LoadPolicy.
type Policy struct {
	rules map[Permission]Rule
	order []Permission
}

var defaultRules = map[string]map[string]Rule{
	AreaOrganization: {
		ActionView:              {Roles: types.Roles},
		ActionUpdate:            {Roles: []types.Role{types.RoleOwner, types.RoleAdmin}},
		ActionDeleteOrg:         {RequiresOwner: true},
		ActionTransferOwnership: {RequiresOwner: true},
	},
	AreaMember: {
		ActionView:        {Roles: types.Roles},
		ActionUpdateRoles: {Roles: []types.Role{types.RoleOwner, types.RoleAdmin}},
		ActionRemove:      {Roles: []types.Role{types.RoleOwner, types.RoleAdmin}},
	},
	AreaInvitation: {
		ActionView:             {Roles: []types.Role{types.RoleOwner, types.RoleAdmin}},
		ActionCreateInvitation: {Roles: []types.Role{types.RoleOwner, types.RoleAdmin}},
		ActionUpdateInvitation: {Roles: []types.Role{types.RoleOwner, types.RoleAdmin}},
		ActionCancelInvitation: {Roles: []types.Role{types.RoleOwner, types.RoleAdmin}},
	},
	AreaOrder: {
		ActionView:    {Roles: types.Roles},
		ActionCreate:  {Roles: []types.Role{types.RoleOwner, types.RoleAdmin, types.RoleManager}},
		ActionAssign:  {Roles: []types.Role{types.RoleOwner, types.RoleAdmin, types.RoleManager}},
		ActionUpdate:  {Roles: []types.Role{types.RoleManager, types.RoleAppraiser}},
		ActionSignOff: {Roles: []types.Role{types.RoleManager, types.RoleAppraiser}, Constraint: ConstraintAll},
	},
}

// DefaultPolicy returns the built-in table.
func DefaultPolicy() *Policy {
	p, err := NewPolicy(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in policy: %v", err))
	}
	return p
}

// LoadPolicy reads a policy table from a JSON document shaped as
// {"area": {"action": {"roles": [...], "requires_owner": bool, "constraint": "any|all"}}}.
// An empty path returns the built-in table.
func LoadPolicy(path string) (*Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	rules := make(map[string]map[string]Rule)
	if err := json.Unmarshal(raw, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}

	return NewPolicy(rules)
}

// NewPolicy validates and copies rules into a Policy.
func NewPolicy(rules map[string]map[string]Rule) (*Policy, error) {
	p := new(Policy)
	p.rules = make(map[Permission]Rule)

	for area, actions := range rules {
		for action, rule := range actions {
			if area == "" || action == "" {
				return nil, fmt.Errorf("empty area or action in policy")
			}

			perm := Permission{Area: area, Action: action}

			switch rule.Constraint {
			case "":
				rule.Constraint = ConstraintAny
			case ConstraintAny, ConstraintAll:
			default:
				return nil, fmt.Errorf("%s: unknown constraint %q", perm, rule.Constraint)
			}

			if !rule.RequiresOwner && len(rule.Roles) == 0 {
				return nil, fmt.Errorf("%s: no roles allowed", perm)
			}

			for _, r := range rule.Roles {
				if !r.Valid() {
					return nil, fmt.Errorf("%s: unknown role %q", perm, r)
				}
			}

			rule.Roles = slices.Clone(rule.Roles)
			p.rules[perm] = rule
			p.order = append(p.order, perm)
		}
	}

	sort.Slice(p.order, func(i, j int) bool {
		if p.order[i].Area != p.order[j].Area {
			return p.order[i].Area < p.order[j].Area
		}
		return p.order[i].Action < p.order[j].Action
	})

	return p, nil
}

// Permissions lists every (area, action) pair known to the policy, sorted.
func (p *Policy) Permissions() []Permission {
	return slices.Clone(p.order)
}

// UserCan evaluates a single action for the given membership. A nil or
// inactive membership is denied everything, unknown actions are denied.
func (p *Policy) UserCan(m *types.Member, area, action string) bool {
	rule, ok := p.rules[Permission{Area: area, Action: action}]
	if !ok {
		return false
	}

	if m == nil || !m.Active {
		return false
	}

	if rule.RequiresOwner {
		return m.IsOwner
	}

	matched := 0
	for _, allowed := range rule.Roles {
		if slices.Contains(m.Roles, allowed) {
			matched++
		}
	}

	if rule.Constraint == ConstraintAll {
		return matched == len(rule.Roles)
	}

	return matched > 0
}

// GetUserPermissions returns the sorted set of actions the membership grants.
func (p *Policy) GetUserPermissions(m *types.Member) []Permission {
	granted := make([]Permission, 0)

	for _, perm := range p.order {
		if p.UserCan(m, perm.Area, perm.Action) {
			granted = append(granted, perm)
		}
	}

	return granted
}
