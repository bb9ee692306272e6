package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"github.com/jordan-wright/email"

	"linkedin-digest/internal/config"
	"linkedin-digest/internal/digest"
	"linkedin-digest/internal/observability"
)

const pngContentType = "image/png"

// Mailer отправляет дайджест по SMTP.
type Mailer struct {
	smtp   config.SMTPConfig
	addr   string
	creds  config.EmailCredentials
	logger *observability.Logger
}

func NewMailer(cfg *config.Config, logger *observability.Logger) *Mailer {
	return &Mailer{
		smtp:   cfg.SMTP,
		addr:   cfg.GetSMTPAddr(),
		creds:  cfg.Credentials.Email,
		logger: logger,
	}
}

// Compose собирает письмо: HTML-тело и скриншоты как inline-вложения,
// Content-ID каждого вложения совпадает с cid: в теле.
func (m *Mailer) Compose(d *digest.Digest, attachments []string) (*email.Email, error) {
	mail := email.NewEmail()
	if m.smtp.FromName != "" {
		mail.From = fmt.Sprintf("%s <%s>", m.smtp.FromName, m.creds.Sender)
	} else {
		mail.From = m.creds.Sender
	}
	mail.To = []string{m.creds.Receiver}
	mail.Subject = d.Subject
	mail.HTML = []byte(d.HTML)

	for _, path := range attachments {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open attachment: %w", err)
		}
		cid := digest.ContentID(path)
		a, err := mail.Attach(file, cid, pngContentType)
		_ = file.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to attach %s: %w", path, err)
		}
		a.HTMLRelated = true
		a.Header.Set("Content-ID", "<"+cid+">")
	}

	return mail, nil
}

// Send отправляет письмо. Если сервер не поддерживает AUTH, повторяет без авторизации.
func (m *Mailer) Send(ctx context.Context, d *digest.Digest, attachments []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mail, err := m.Compose(d, attachments)
	if err != nil {
		return err
	}

	auth := m.auth()
	if auth == nil {
		m.logger.Warn("Sending without SMTP AUTH: plaintext connection to a non-local relay", "host", m.smtp.Host)
	}
	err = m.deliver(mail, auth)
	if err != nil && auth != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		m.logger.Warn("SMTP server does not support AUTH, retrying without it", "host", m.smtp.Host)
		err = m.deliver(mail, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Info("Email sent",
		"to", m.creds.Receiver,
		"subject", d.Subject,
		"attachments", len(attachments),
	)
	return nil
}

// auth возвращает PLAIN-авторизацию. net/smtp не отдаёт пароль по открытому
// каналу никому, кроме localhost, поэтому при tls: none и удалённом relay
// письмо уходит без AUTH.
func (m *Mailer) auth() smtp.Auth {
	if m.smtp.TLS == config.TLSNone && !isLocalHost(m.smtp.Host) {
		return nil
	}
	return smtp.PlainAuth("", m.creds.Sender, m.creds.Password, m.smtp.Host)
}

func isLocalHost(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

func (m *Mailer) deliver(mail *email.Email, auth smtp.Auth) error {
	addr := m.addr
	tlsConfig := &tls.Config{ServerName: m.smtp.Host}

	switch m.smtp.TLS {
	case config.TLSImplicit:
		return mail.SendWithTLS(addr, auth, tlsConfig)
	case config.TLSStartTLS:
		return mail.SendWithStartTLS(addr, auth, tlsConfig)
	default:
		return mail.Send(addr, auth)
	}
}
