package utils

import (
	"context"
	"log"

	"techshop_back_end/internal/config"

	"github.com/wneessen/go-mail"
)

// MailSender delivers one HTML e-mail.
type MailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Mailer sends through the configured SMTP relay. Without SMTP_HOST it
// only logs, so development setups need no relay.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	siteName string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.MailFrom,
		siteName: "TechShop",
	}
}

func (m *Mailer) Enabled() bool { return m.host != "" }

// BuildMessage assembles the message without sending it.
func (m *Mailer) BuildMessage(to, subject, htmlBody string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.siteName, m.from); err != nil {
		return nil, err
	}
	if err := msg.To(to); err != nil {
		return nil, err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)
	return msg, nil
}

func (m *Mailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg, err := m.BuildMessage(to, subject, htmlBody)
	if err != nil {
		return err
	}

	if !m.Enabled() {
		log.Printf("📭 SMTP not configured, e-mail to %s not sent: %s", to, subject)
		return nil
	}

	client, err := mail.NewClient(m.host,
		mail.WithPort(m.port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(m.username),
		mail.WithPassword(m.password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Sending e-mail to", to)
	return client.DialAndSendWithContext(ctx, msg)
}
