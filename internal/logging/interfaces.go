// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

type LoggerInterface interface {
	Errorf(string, ...interface{})
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	Debugf(string, ...interface{})
	Fatalf(string, ...interface{})
	Error(...interface{})
	Info(...interface{})
	Warn(...interface{})
	Debug(...interface{})
	Fatal(...interface{})
	Sync() error
	Security() SecurityLoggerInterface
}

// SecurityLoggerInterface emits audit events that must survive log level filtering.
type SecurityLoggerInterface interface {
	SystemStartup()
	SystemShutdown()
	AuthzFailure(userID, resource string)
	InvitationCreated(actorID, organizationID, invitationID string)
	InvitationResolved(userID, organizationID, invitationID, status string)
	OwnershipTransferred(actorID, organizationID, newOwnerID string)
	ForcedLogout(userID, organizationID string)
}
