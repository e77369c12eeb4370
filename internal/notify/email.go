package notify

import (
	"context"
	"fmt"

	"github.com/just-nibble/git-digest/pkg/config"
	"github.com/just-nibble/git-digest/pkg/errcodes"
	"github.com/wneessen/go-mail"
)

type mailClient interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// EmailSender delivers plain text mail over SMTP. Config key "to"
// overrides the subscriber address.
type EmailSender struct {
	client  mailClient
	from    string
	subject string
}

func NewEmailSender(cfg config.SMTPConfig) (*EmailSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &EmailSender{client: client, from: cfg.From, subject: cfg.Subject}, nil
}

func (s *EmailSender) Send(ctx context.Context, content string, recipients []string, config map[string]interface{}) error {
	to := recipients
	if override := configString(config, "to"); override != "" {
		to = []string{override}
	}
	if len(to) == 0 {
		return errcodes.Validation("email channel has no recipient")
	}

	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return errcodes.Validation("invalid sender address %q", s.from)
	}
	if err := msg.To(to...); err != nil {
		return errcodes.Validation("invalid recipient address: %v", err)
	}
	msg.Subject(s.subject)
	msg.SetBodyString(mail.TypeTextPlain, content)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return errcodes.Upstream(err, "failed to send email")
	}
	return nil
}
