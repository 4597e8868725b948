// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"slices"
	"time"
)

type Role string

const (
	RoleOwner     Role = "owner"
	RoleAdmin     Role = "admin"
	RoleManager   Role = "manager"
	RoleAppraiser Role = "appraiser"
)

// Roles is the fixed role enumeration
var Roles = []Role{RoleOwner, RoleAdmin, RoleManager, RoleAppraiser}

func (r Role) Valid() bool {
	return slices.Contains(Roles, r)
}

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
	InvitationExpired  InvitationStatus = "expired"
)

// Terminal reports whether no further transition is allowed out of the status.
func (s InvitationStatus) Terminal() bool {
	return s != InvitationPending
}

type Organization struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Avatar    string    `db:"avatar" json:"avatar,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Member struct {
	OrganizationID string    `db:"organization_id" json:"organization_id"`
	UserID         string    `db:"user_id" json:"user_id"`
	Roles          []Role    `db:"roles" json:"roles"`
	Active         bool      `db:"active" json:"active"`
	IsOwner        bool      `db:"is_owner" json:"is_owner"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// NoMembership stands for an actor unknown to the organization, it holds no
// roles and is inactive so every permission check denies it.
func NoMembership() *Member {
	return &Member{}
}

type Invitation struct {
	ID               string           `db:"id" json:"id"`
	OrganizationID   string           `db:"organization_id" json:"organization_id"`
	InviteeFirstName string           `db:"invitee_first_name" json:"invitee_first_name"`
	InviteeLastName  string           `db:"invitee_last_name" json:"invitee_last_name"`
	InviteeEmail     string           `db:"invitee_email" json:"invitee_email"`
	Roles            []Role           `db:"roles" json:"roles"`
	Token            *string          `db:"token" json:"-"`
	Status           InvitationStatus `db:"status" json:"status"`
	Expires          time.Time        `db:"expires" json:"expires"`
	InvitedByUserID  string           `db:"invited_by_user_id" json:"invited_by_user_id"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
}

// Invitee identifies the prospective member an invitation is addressed to
type Invitee struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
}

// Visitor is the identity provider's view of whoever is making the request
type Visitor struct {
	Authenticated   bool
	UserID          string
	Email           string
	AuthenticatedAt time.Time
	// SessionCookie is what the browser presented, it is needed to log it out
	SessionCookie string
}

// RolesToStrings converts roles to their storage representation
func RolesToStrings(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

// RolesFromStrings converts stored roles back, dropping duplicates
func RolesFromStrings(raw []string) []Role {
	out := make([]Role, 0, len(raw))
	for _, r := range raw {
		if !slices.Contains(out, Role(r)) {
			out = append(out, Role(r))
		}
	}
	return out
}

// MergeRoles returns the union of both role sets, preserving first-seen order
func MergeRoles(a, b []Role) []Role {
	out := make([]Role, 0, len(a)+len(b))
	for _, r := range append(slices.Clone(a), b...) {
		if !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}
