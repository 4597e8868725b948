// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"go.uber.org/zap"
)

type SecurityLogger struct {
	l *zap.Logger
}

func (s *SecurityLogger) SystemStartup() {
	s.l.Info("system startup", zap.String("event", "sys_startup"))
}

func (s *SecurityLogger) SystemShutdown() {
	s.l.Info("system shutdown", zap.String("event", "sys_shutdown"))
}

func (s *SecurityLogger) AuthzFailure(userID, resource string) {
	s.l.Warn(
		"authorization failure",
		zap.String("event", "authz_fail"),
		zap.String("user_id", userID),
		zap.String("resource", resource),
	)
}

func (s *SecurityLogger) InvitationCreated(actorID, organizationID, invitationID string) {
	s.l.Info(
		"invitation created",
		zap.String("event", "invitation_created"),
		zap.String("user_id", actorID),
		zap.String("organization_id", organizationID),
		zap.String("invitation_id", invitationID),
	)
}

func (s *SecurityLogger) InvitationResolved(userID, organizationID, invitationID, status string) {
	s.l.Info(
		"invitation resolved",
		zap.String("event", "invitation_resolved"),
		zap.String("user_id", userID),
		zap.String("organization_id", organizationID),
		zap.String("invitation_id", invitationID),
		zap.String("status", status),
	)
}

func (s *SecurityLogger) OwnershipTransferred(actorID, organizationID, newOwnerID string) {
	s.l.Info(
		"organization ownership transferred",
		zap.String("event", "ownership_transferred"),
		zap.String("user_id", actorID),
		zap.String("organization_id", organizationID),
		zap.String("new_owner_id", newOwnerID),
	)
}

func (s *SecurityLogger) ForcedLogout(userID, organizationID string) {
	s.l.Info(
		"forced logout before invitation acceptance",
		zap.String("event", "forced_logout"),
		zap.String("user_id", userID),
		zap.String("organization_id", organizationID),
	)
}
