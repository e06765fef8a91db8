package digest

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// Sender delivers rendered digests.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

type MailConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"-"`
	From     string `json:"from"`
	FromName string `json:"from_name"`
}

func (c MailConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("smtp host is required")
	}
	if c.From == "" && c.Username == "" {
		return fmt.Errorf("sender address is required")
	}
	return nil
}

// MailSender sends digests over SMTP with STARTTLS and plain authentication.
type MailSender struct {
	client   *mail.Client
	from     string
	fromName string
}

func NewMailSender(cfg MailConfig) (*MailSender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	port := cfg.Port
	if port == 0 {
		port = 587
	}

	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTLSPolicy(mail.TLSMandatory),
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

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	fromName := cfg.FromName
	if fromName == "" {
		fromName = "Job Agent"
	}

	return &MailSender{client: client, from: from, fromName: fromName}, nil
}

func (s *MailSender) Send(ctx context.Context, msg *Message) error {
	m := mail.NewMsg()
	if err := m.FromFormat(s.fromName, s.from); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send digest to %s: %w", msg.To, err)
	}
	return nil
}
