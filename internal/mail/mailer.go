package mail

import (
	"bytes"
	"context"
	"fmt"
	"log"

	gomail "github.com/wneessen/go-mail"

	"microblog/internal/config"
)

// Attachment is a file attached to an outgoing message.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Message is an outgoing email.
type Message struct {
	To          []string
	Subject     string
	TextBody    string
	HTMLBody    string
	Attachments []Attachment
}

// Mailer sends email. The SMTP implementation is used when a mail server is
// configured; otherwise messages are logged and dropped so flows that send
// mail still work in development.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// NewMailer builds a Mailer from config. An empty MailServer selects the
// logging mailer.
func NewMailer(cfg *config.Config) (Mailer, error) {
	if cfg.MailServer == "" {
		log.Println("[Mailer] No mail server configured, outgoing mail will be logged only")
		return &logMailer{}, nil
	}
	return NewSMTPMailer(cfg)
}

// SMTPMailer sends mail through an SMTP relay using go-mail.
type SMTPMailer struct {
	client *gomail.Client
	sender string
}

func NewSMTPMailer(cfg *config.Config) (*SMTPMailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.MailPort),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	}
	if cfg.MailUseTLS {
		opts = append(opts, gomail.WithTLSPortPolicy(gomail.TLSMandatory))
	}
	if cfg.MailUsername != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.MailUsername),
			gomail.WithPassword(cfg.MailPassword),
		)
	}

	client, err := gomail.NewClient(cfg.MailServer, opts...)
	if err != nil {
		return nil, fmt.Errorf("create mail client: %w", err)
	}

	return &SMTPMailer{client: client, sender: cfg.AdminEmail}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg *Message) error {
	out := gomail.NewMsg()
	if err := out.From(m.sender); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := out.To(msg.To...); err != nil {
		return fmt.Errorf("set recipients: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(gomail.TypeTextPlain, msg.TextBody)
	if msg.HTMLBody != "" {
		out.AddAlternativeString(gomail.TypeTextHTML, msg.HTMLBody)
	}
	for _, att := range msg.Attachments {
		out.AttachReader(att.Name, bytes.NewReader(att.Data),
			gomail.WithFileContentType(gomail.ContentType(att.ContentType)))
	}

	if err := m.client.DialAndSendWithContext(ctx, out); err != nil {
		log.Printf("[Mailer] Send FAILED: to=%v subject=%q err=%v", msg.To, msg.Subject, err)
		return fmt.Errorf("send mail: %w", err)
	}

	log.Printf("[Mailer] Send OK: to=%v subject=%q", msg.To, msg.Subject)
	return nil
}

// SendAsync sends in a detached goroutine so request handlers don't block on
// the SMTP round trip. Failures are logged, not surfaced.
func SendAsync(m Mailer, msg *Message) {
	go func() {
		if err := m.Send(context.Background(), msg); err != nil {
			log.Printf("[Mailer] Async send failed: %v", err)
		}
	}()
}

// logMailer drops messages after logging them. Used when no SMTP server is
// configured.
type logMailer struct{}

func (l *logMailer) Send(ctx context.Context, msg *Message) error {
	log.Printf("[Mailer] (dropped) to=%v subject=%q body=%q attachments=%d",
		msg.To, msg.Subject, msg.TextBody, len(msg.Attachments))
	return nil
}
