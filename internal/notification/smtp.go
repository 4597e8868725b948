// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package notification

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/canonical/membership-service/internal/logging"
	"github.com/canonical/membership-service/internal/monitoring"
	"github.com/canonical/membership-service/internal/tracing"
	"github.com/canonical/membership-service/internal/types"
)

var _ SenderInterface = (*SMTPSender)(nil)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPSender struct {
	addr string
	auth smtp.Auth
	from string

	send sendMailFunc
	now  func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

type messageData struct {
	Invitation   *types.Invitation
	Organization *types.Organization
	Link         string
}

func (s *SMTPSender) SendInviteCreated(ctx context.Context, inv *types.Invitation, org *types.Organization, link string) error {
	_, span := s.tracer.Start(ctx, "notification.SMTPSender.SendInviteCreated")
	defer span.End()

	subject := fmt.Sprintf("You are invited to join %s", org.Name)
	return s.deliver(inv.InviteeEmail, subject, inviteCreatedTemplate, messageData{Invitation: inv, Organization: org, Link: link})
}

func (s *SMTPSender) SendInviteResolved(ctx context.Context, inv *types.Invitation, org *types.Organization, inviterEmail string) error {
	_, span := s.tracer.Start(ctx, "notification.SMTPSender.SendInviteResolved")
	defer span.End()

	subject := fmt.Sprintf("Invitation to %s %s", org.Name, inv.Status)
	return s.deliver(inviterEmail, subject, inviteResolvedTemplate, messageData{Invitation: inv, Organization: org})
}

func (s *SMTPSender) deliver(to, subject string, tmpl *template.Template, data messageData) error {
	if strings.ContainsAny(to, "\r\n") || strings.ContainsAny(subject, "\r\n") {
		return fmt.Errorf("invalid header value")
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", tmpl.Name(), err)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", s.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "Date: %s\r\n", s.now().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	msg.WriteString(strings.ReplaceAll(body.String(), "\n", "\r\n"))

	if err := s.send(s.addr, s.auth, s.from, []string{to}, msg.Bytes()); err != nil {
		s.availability(0)
		return fmt.Errorf("failed to send %s: %w", tmpl.Name(), err)
	}
	s.availability(1)

	return nil
}

func (s *SMTPSender) availability(v float64) {
	if err := s.monitor.SetDependencyAvailability(map[string]string{"component": "smtp"}, v); err != nil {
		s.logger.Debugf("failed to set dependency availability: %v", err)
	}
}

func NewSMTPSender(cfg Config, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *SMTPSender {
	s := new(SMTPSender)

	s.addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	s.from = cfg.From
	if cfg.Username != "" {
		s.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	s.send = smtp.SendMail
	s.now = time.Now

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
