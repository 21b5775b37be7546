// Package notify tells users the outcome of their KYC application by email.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"text/template"

	"kycgate/internal/users"
	dErrors "kycgate/pkg/domain-errors"
)

// Sender delivers one plain-text email.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

var (
	successTmpl = template.Must(template.New("kyc_success").Parse(
		`Hello {{.Username}},

Your identity verification has been approved. Your wallet will be whitelisted
for the token sale shortly; no further action is needed.
`))
	failureTmpl = template.Must(template.New("kyc_failure").Parse(
		`Hello {{.Username}},

We could not verify your identity with the documents provided. Please contact
support if you believe this is a mistake.
`))
)

// Notifier renders KYC outcome emails and hands them to a Sender.
type Notifier struct {
	sender Sender
	logger *slog.Logger
}

type Option func(*Notifier)

func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) {
		n.logger = logger
	}
}

func New(sender Sender, opts ...Option) *Notifier {
	n := &Notifier{sender: sender, logger: slog.Default()}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Notifier) SendKYCSuccess(ctx context.Context, u *users.User) error {
	return n.send(ctx, u, "Your KYC application was approved", successTmpl)
}

func (n *Notifier) SendKYCFailure(ctx context.Context, u *users.User) error {
	return n.send(ctx, u, "Your KYC application was not approved", failureTmpl)
}

func (n *Notifier) send(ctx context.Context, u *users.User, subject string, tmpl *template.Template) error {
	if u == nil {
		return dErrors.New(dErrors.CodeValidation, "user is required")
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "invalid receiver email")
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, u); err != nil {
		return fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	if err := n.sender.Send(ctx, u.Email, subject, body.String()); err != nil {
		return fmt.Errorf("send %s: %w", tmpl.Name(), err)
	}
	n.logger.InfoContext(ctx, "kyc notification sent",
		"template", tmpl.Name(),
		"user_uuid", u.UUID,
	)
	return nil
}
