package mailer

import (
	"context"
	"fmt"
	"sync"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Email is a single outgoing message with text and HTML bodies.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer delivers emails.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// SMTPConfig holds SMTP connection settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends mail through an SMTP relay.
type SMTPMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send delivers the email.
func (m *SMTPMailer) Send(ctx context.Context, email Email) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(email.To); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextPlain, email.TextBody)
	if email.HTMLBody != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, email.HTMLBody)
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// LogMailer only logs outgoing mail. Used in development when no SMTP host
// is configured.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a new log mailer
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the email including its text body.
func (m *LogMailer) Send(_ context.Context, email Email) error {
	m.logger.Info("email (not sent, smtp disabled)",
		zap.String("to", email.To),
		zap.String("subject", email.Subject),
		zap.String("body", email.TextBody),
	)
	return nil
}

// Recorder keeps sent emails in memory. Tests use it to read OTP codes and
// links back out.
type Recorder struct {
	mu   sync.Mutex
	sent []Email
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Send records the email.
func (r *Recorder) Send(_ context.Context, email Email) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, email)
	return nil
}

// Sent returns a copy of all recorded emails.
func (r *Recorder) Sent() []Email {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Email, len(r.sent))
	copy(out, r.sent)
	return out
}

// Last returns the most recent email sent to addr.
func (r *Recorder) Last(addr string) (Email, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.sent) - 1; i >= 0; i-- {
		if r.sent[i].To == addr {
			return r.sent[i], true
		}
	}
	return Email{}, false
}
