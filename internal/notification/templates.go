// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package notification

import "text/template"

var inviteCreatedTemplate = template.Must(template.New("invite_created").Parse(
	`Hello {{ .Invitation.InviteeFirstName }},

You have been invited to join {{ .Organization.Name }}.

Open the link below to accept or decline the invitation, it expires on {{ .Invitation.Expires.Format "2 January 2006 15:04 MST" }}.

{{ .Link }}
`))

var inviteResolvedTemplate = template.Must(template.New("invite_resolved").Parse(
	`Hello,

{{ .Invitation.InviteeFirstName }} {{ .Invitation.InviteeLastName }} ({{ .Invitation.InviteeEmail }}) has {{ .Invitation.Status }} your invitation to join {{ .Organization.Name }}.
`))
