package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"

	"github.com/jordan-wright/email"

	"fintrack/internal/analytics"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/format"
	applog "fintrack/internal/log"
)

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds mail relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// SMTPConfigFrom extracts the mail settings from the application config.
func SMTPConfigFrom(cfg *config.Config) SMTPConfig {
	return SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.AlertFrom,
		To:       cfg.AlertTo,
	}
}

// EmailSender sends plain-text mail through an SMTP relay.
type EmailSender struct {
	cfg    SMTPConfig
	logger *applog.Logger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

func NewEmailSender(cfg SMTPConfig, logger *applog.Logger) *EmailSender {
	return &EmailSender{
		cfg:    cfg,
		logger: logger.WithComponent(applog.ComponentNotify),
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

func (s *EmailSender) Send(ctx context.Context, msg Message) error {
	if len(s.cfg.To) == 0 {
		return errors.New("no alert recipients configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e := email.NewEmail()
	e.From = s.cfg.From
	e.To = append([]string(nil), s.cfg.To...)
	e.Subject = msg.Subject
	e.Text = []byte(msg.Body)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	if err := s.send(e, addr, auth); err != nil {
		s.logger.ErrorContext(ctx, "Failed to send email", "subject", msg.Subject, "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	s.logger.InfoContext(ctx, "Email sent", "subject", msg.Subject, "recipients", len(e.To))
	return nil
}

// LogSender writes messages to the log instead of mailing them. It is used
// when SMTP is not configured.
type LogSender struct {
	logger *applog.Logger
}

func NewLogSender(logger *applog.Logger) *LogSender {
	return &LogSender{logger: logger.WithComponent(applog.ComponentNotify)}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "Notification (SMTP disabled)", "subject", msg.Subject, "body", msg.Body)
	return nil
}

// Notifier renders alerts and digests and hands them to a Sender.
type Notifier struct {
	sender    Sender
	formatter *format.Formatter
}

func New(sender Sender, formatter *format.Formatter) *Notifier {
	if formatter == nil {
		formatter = format.Default()
	}
	return &Notifier{sender: sender, formatter: formatter}
}

// FromConfig picks the email sender when SMTP is configured and the log
// sender otherwise.
func FromConfig(cfg *config.Config, logger *applog.Logger) *Notifier {
	f := format.New(cfg.CurrencyLocale, cfg.CurrencySymbol)
	if cfg.SMTPEnabled() {
		return New(NewEmailSender(SMTPConfigFrom(cfg), logger), f)
	}
	return New(NewLogSender(logger), f)
}

// BudgetAlert sends one message for all escalations of a month. It is a
// no-op when there are none.
func (n *Notifier) BudgetAlert(ctx context.Context, month core.Month, escalations []analytics.Escalation) error {
	if len(escalations) == 0 {
		return nil
	}
	return n.sender.Send(ctx, BudgetAlertMessage(n.formatter, month, escalations))
}

// MonthlyDigest sends the summary of res.
func (n *Notifier) MonthlyDigest(ctx context.Context, res analytics.Result) error {
	return n.sender.Send(ctx, DigestMessage(n.formatter, res))
}
