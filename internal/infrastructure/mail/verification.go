package mail

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/possuite/backoffice/internal/core/ports"
)

const (
	productName         = "POS Suite"
	verificationSubject = "Verify Your Email - " + productName
)

// VerificationSender renders verification emails and queues them for
// delivery.
type VerificationSender struct {
	queue   ports.MailQueue
	baseURL string
}

// NewVerificationSender links point at the dashboard page
// dashboardURL + /verify-email?token=...
func NewVerificationSender(queue ports.MailQueue, baseURL string) *VerificationSender {
	return &VerificationSender{queue: queue, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *VerificationSender) SendVerification(_ context.Context, name, email, token string) error {
	if token == "" {
		return fmt.Errorf("send verification: empty token")
	}
	s.queue.Enqueue(verificationEmail(name, email, s.link(token), time.Now().Year()))
	return nil
}

func (s *VerificationSender) link(token string) string {
	return s.baseURL + "/verify-email?token=" + url.QueryEscape(token)
}

func verificationEmail(name, to, link string, year int) ports.Email {
	safeName := html.EscapeString(name)
	safeLink := html.EscapeString(link)

	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1 style="background: #4f46e5; color: #fff; text-align: center; padding: 20px 0;">Welcome to %[1]s!</h1>
    <h2>Hello %[2]s,</h2>
    <p>Thank you for registering with %[1]s. To complete your registration, verify your email address:</p>
    <p style="text-align: center;"><a href="%[3]s" style="padding: 12px 24px; background: #4f46e5; color: #fff; text-decoration: none;">Verify Email Address</a></p>
    <p>Or copy this URL into your browser:<br>%[3]s</p>
    <p>This verification link will expire in 24 hours.</p>
    <p>If you did not create an account, please ignore this email.</p>
    <p style="text-align: center; color: #666; font-size: 0.875rem;">&copy; %[4]d %[1]s. All rights reserved.</p>
  </div>
</body>
</html>`, productName, safeName, safeLink, year)

	text := fmt.Sprintf(`Hello %s,

Thank you for registering with %s. Verify your email address by visiting:
%s

This verification link will expire in 24 hours.
If you did not create an account, please ignore this email.
`, name, productName, link)

	return ports.Email{To: to, Subject: verificationSubject, HTML: body, Text: text}
}
