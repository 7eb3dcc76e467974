package email

import (
	"context"
	"fmt"
	"html"
	"net/url"
)

// Mailer renders and dispatches the authentication emails. Links point at
// the frontend, which forwards the embedded token back to the API.
type Mailer struct {
	sender  Sender
	baseURL string
}

// NewMailer wraps a Sender with the frontend base URL used in links.
func NewMailer(sender Sender, baseURL string) *Mailer {
	return &Mailer{sender: sender, baseURL: baseURL}
}

// SendPasswordReset emails a reset link carrying the signed reset token.
func (m *Mailer) SendPasswordReset(ctx context.Context, to, token string) error {
	link := m.link("/reset-password", token)
	return m.sender.Send(ctx, Message{
		To:      to,
		Subject: "Reset your password",
		BodyHTML: fmt.Sprintf(
			`<p>We received a request to reset your password.</p>`+
				`<p><a href="%s">Choose a new password</a></p>`+
				`<p>The link expires in one hour. If you did not request this, you can ignore this email.</p>`,
			html.EscapeString(link)),
		Tag: "password-reset",
	})
}

// SendVerification emails the opaque email-verification token.
func (m *Mailer) SendVerification(ctx context.Context, to, token string) error {
	link := m.link("/verify-email", token)
	return m.sender.Send(ctx, Message{
		To:      to,
		Subject: "Verify your email address",
		BodyHTML: fmt.Sprintf(
			`<p>Confirm this address to finish setting up your account.</p>`+
				`<p><a href="%s">Verify email</a></p>`,
			html.EscapeString(link)),
		Tag: "email-verification",
	})
}

func (m *Mailer) link(path, token string) string {
	return m.baseURL + path + "?token=" + url.QueryEscape(token)
}
