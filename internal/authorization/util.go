// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import "github.com/canonical/membership-service/internal/types"

const (
	OWNER_RELATION  = "owner"
	MEMBER_RELATION = "member"

	CAN_VIEW_PERMISSION   = "can_view"
	CAN_EDIT_PERMISSION   = "can_edit"
	CAN_DELETE_PERMISSION = "can_delete"
)

func UserTuple(userId string) string {
	return "user:" + userId
}

func OrganizationTuple(orgId string) string {
	return "organization:" + orgId
}

// RoleRelation maps a membership role to its relation on the organization type
func RoleRelation(role types.Role) string {
	return "role_" + string(role)
}
