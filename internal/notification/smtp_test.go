// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package notification

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/canonical/membership-service/internal/logging"
	"github.com/canonical/membership-service/internal/monitoring"
	"github.com/canonical/membership-service/internal/tracing"
	"github.com/canonical/membership-service/internal/types"
)

type capture struct {
	addr string
	from string
	to   []string
	msg  string
	err  error
}

func (c *capture) send(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	c.addr, c.from, c.to, c.msg = addr, from, to, string(msg)
	return c.err
}

func newTestSender(c *capture) *SMTPSender {
	logger := logging.NewNoopLogger()
	s := NewSMTPSender(
		Config{Host: "smtp.example.com", Port: 587, From: "members@example.com"},
		tracing.NewNoopTracer(),
		monitoring.NewNoopMonitor("test", logger),
		logger,
	)
	s.send = c.send
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	return s
}

func TestSMTPSender_SendInviteCreated(t *testing.T) {
	c := new(capture)
	s := newTestSender(c)

	inv := &types.Invitation{
		ID:               "inv-1",
		InviteeFirstName: "Ada",
		InviteeLastName:  "Lovelace",
		InviteeEmail:     "ada@example.com",
		Expires:          time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC),
	}
	org := &types.Organization{ID: "org-1", Name: "Acme Appraisals"}

	if err := s.SendInviteCreated(context.Background(), inv, org, "https://members.example.com/invite/org-1?token=abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.addr != "smtp.example.com:587" || c.from != "members@example.com" {
		t.Errorf("unexpected envelope %s %s", c.addr, c.from)
	}
	if len(c.to) != 1 || c.to[0] != "ada@example.com" {
		t.Errorf("unexpected recipients %v", c.to)
	}

	for _, want := range []string{
		"Subject: You are invited to join Acme Appraisals\r\n",
		"Hello Ada,",
		"https://members.example.com/invite/org-1?token=abc",
		"8 March 2026",
	} {
		if !strings.Contains(c.msg, want) {
			t.Errorf("message missing %q:\n%s", want, c.msg)
		}
	}
}

func TestSMTPSender_SendInviteResolved(t *testing.T) {
	c := &capture{err: errors.New("connection refused")}
	s := newTestSender(c)

	inv := &types.Invitation{InviteeFirstName: "Ada", InviteeLastName: "Lovelace", InviteeEmail: "ada@example.com", Status: types.InvitationDeclined}
	org := &types.Organization{Name: "Acme"}

	err := s.SendInviteResolved(context.Background(), inv, org, "owner@example.com")
	if err == nil {
		t.Fatal("expected delivery error")
	}

	if !strings.Contains(c.msg, "has declined your invitation to join Acme") {
		t.Errorf("unexpected message:\n%s", c.msg)
	}
}

func TestSMTPSender_RejectsHeaderInjection(t *testing.T) {
	c := new(capture)
	s := newTestSender(c)

	inv := &types.Invitation{InviteeEmail: "ada@example.com\r\nBcc: everyone@example.com"}

	if err := s.SendInviteCreated(context.Background(), inv, &types.Organization{}, "link"); err == nil {
		t.Fatal("expected error for injected header")
	}
	if c.msg != "" {
		t.Error("nothing should have been sent")
	}
}
