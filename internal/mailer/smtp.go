package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/reminder-engine/internal/domain"
)

// SMTPTransport sends through the SMTP server named in the reminder
// settings. With implicitTLS the connection is TLS from the first byte
// (port 465 style); otherwise STARTTLS is used when the server offers it.
type SMTPTransport struct {
	implicitTLS bool
	dialer      *net.Dialer
}

func NewSMTPTransport(implicitTLS bool) *SMTPTransport {
	return &SMTPTransport{
		implicitTLS: implicitTLS,
		dialer:      &net.Dialer{KeepAlive: -1},
	}
}

func (t *SMTPTransport) Ready(settings *domain.ReminderSettings) bool {
	return settings.HasSMTPCredentials() && settings.SMTPHost != ""
}

func (t *SMTPTransport) Send(ctx context.Context, settings *domain.ReminderSettings, msg *Message) error {
	if err := ValidateRecipient(msg.To); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before sending email: %w", err)
	}

	payload, err := BuildMIME(msg, settings.SMTPHost, time.Now())
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}

	addr := net.JoinHostPort(settings.SMTPHost, strconv.Itoa(settings.SMTPPort))

	conn, err := t.dial(ctx, addr, settings.SMTPHost)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	client, err := smtp.NewClient(conn, settings.SMTPHost)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to start SMTP session: %w", err)
	}
	defer client.Close()

	if !t.implicitTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err = client.StartTLS(&tls.Config{ServerName: settings.SMTPHost}); err != nil {
				return fmt.Errorf("failed to start TLS: %w", err)
			}
		}
	}

	if settings.HasSMTPCredentials() {
		if ok, _ := client.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", settings.SMTPUsername, settings.SMTPPassword, settings.SMTPHost)
			if err = client.Auth(auth); err != nil {
				return fmt.Errorf("SMTP authentication failed: %w", err)
			}
		}
	}

	if err = client.Mail(settings.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	if err = client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("failed to set recipient %s: %w", msg.To, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}

	if _, err = w.Write(payload); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}

func (t *SMTPTransport) dial(ctx context.Context, addr, host string) (net.Conn, error) {
	if t.implicitTLS {
		d := &tls.Dialer{NetDialer: t.dialer, Config: &tls.Config{ServerName: host}}
		return d.DialContext(ctx, "tcp", addr)
	}
	return t.dialer.DialContext(ctx, "tcp", addr)
}

// BuildMIME renders msg as a multipart/alternative message with a plain
// text fallback and the HTML body
func BuildMIME(msg *Message, host string, now time.Time) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	parts := []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=UTF-8", msg.Text},
		{"text/html; charset=UTF-8", msg.HTML},
	}
	for _, p := range parts {
		pw, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {p.contentType},
			"Content-Transfer-Encoding": {"8bit"},
		})
		if err != nil {
			return nil, err
		}
		if _, err := pw.Write([]byte(p.content)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	from := msg.From
	if addr, err := mail.ParseAddress(msg.From); err == nil {
		from = addr.String()
	}
	fmt.Fprintf(&out, "From: %s\r\n", from)
	fmt.Fprintf(&out, "To: %s\r\n", msg.To)
	fmt.Fprintf(&out, "Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", msg.Subject))
	fmt.Fprintf(&out, "Date: %s\r\n", now.Format(time.RFC1123Z))
	fmt.Fprintf(&out, "Message-ID: <%s@%s>\r\n", uuid.NewString(), host)
	out.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&out, "Content-Type: multipart/alternative; boundary=%q\r\n", mw.Boundary())
	out.WriteString("\r\n")
	out.Write(body.Bytes())

	return out.Bytes(), nil
}
