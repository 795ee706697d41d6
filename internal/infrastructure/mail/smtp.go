package mail

import (
	"context"
	"fmt"

	"medique-api/config"

	"github.com/go-gomail/gomail"
	"github.com/sirupsen/logrus"
)

// SMTPMailer sends mail through an authenticated SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	name   string
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.Username,
		name:   cfg.FromName,
	}
}

func (s *SMTPMailer) Send(ctx context.Context, to, subject, text, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := buildMessage(s.from, s.name, to, subject, text, html)

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail to %s: %w", to, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func buildMessage(from, name, to, subject, text, html string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", from, name)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", text)
	if html != "" {
		m.AddAlternative("text/html", html)
	}
	return m
}

// LogMailer writes mails to the log instead of sending them. Used when SMTP
// is not configured.
type LogMailer struct {
	log *logrus.Logger
}

func NewLogMailer(log *logrus.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (l *LogMailer) Send(ctx context.Context, to, subject, text, html string) error {
	l.log.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	}).Info("Mail delivery disabled, message not sent")
	return nil
}
