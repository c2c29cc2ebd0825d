package mailer

import (
	"context"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/ignatzorin/proposal-backend/internal/config"
	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/logger"
)

// sendFunc сигнатура smtp.SendMail, подменяется в тестах.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier отправляет администратору письмо о запросе доступа.
// Без SMTP_HOST письмо только пишется в лог.
type SMTPNotifier struct {
	cfg   config.SMTPConfig
	admin string
	send  sendFunc
}

func NewSMTPNotifier(cfg config.SMTPConfig, adminEmail string) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, admin: adminEmail, send: smtp.SendMail}
}

func (n *SMTPNotifier) NotifyAccessRequest(ctx context.Context, entry *entity.WaitlistEntry) error {
	if n.admin == "" {
		return nil
	}
	subject := "New access request: " + entry.Email
	body := accessRequestBody(entry)

	if !n.cfg.Enabled() {
		logger.Log.WithField("email", entry.Email).Info("[MAIL] SMTP не настроен, письмо администратору не отправлено")
		return nil
	}

	msg := buildMessage(n.cfg.From, n.admin, subject, body)
	sender := envelopeFrom(n.cfg.From)
	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	// smtp.SendMail не принимает контекст, ограничиваем его снаружи
	done := make(chan error, 1)
	go func() {
		done <- n.send(addr, auth, sender, []string{n.admin}, msg)
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("mailer: не удалось отправить письмо: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func accessRequestBody(entry *entity.WaitlistEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Email: %s\n", entry.Email)
	if entry.Name != "" {
		fmt.Fprintf(&b, "Name: %s\n", entry.Name)
	}
	if entry.Reason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", entry.Reason)
	}
	fmt.Fprintf(&b, "Requested at: %s\n", entry.RequestedAt.Format(time.RFC1123))
	b.WriteString("\nApprove with: proposalctl waitlist add " + entry.Email + "\n")
	return b.String()
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", fromHeader(from))
	fmt.Fprintf(&b, "To: %s\r\n", sanitizeHeader(to))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", sanitizeHeader(subject)))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

// fromHeader кодирует отображаемое имя отправителя по RFC 2047.
// SMTP_FROM вида "Имя <bot@example.com>" или просто адрес.
func fromHeader(from string) string {
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return sanitizeHeader(from)
	}
	return addr.String()
}

// envelopeFrom адрес для MAIL FROM, без отображаемого имени.
func envelopeFrom(from string) string {
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return from
	}
	return addr.Address
}

// sanitizeHeader убирает переводы строк, чтобы email из формы не внедрил заголовки.
func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

var _ repository.AdminNotifier = (*SMTPNotifier)(nil)
