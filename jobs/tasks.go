package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-admin/internal/hr"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskLookupWarmup refreshes the cached dropdown lists.
	TaskLookupWarmup = "lookup:warmup"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	if strings.TrimSpace(payload.To) == "" {
		return nil, errors.New("jobs: send email: recipient required")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// AccountReadyEmail composes the notice sent to an employee whose staff
// record was approved.
func AccountReadyEmail(n hr.AccountNotice) SendEmailPayload {
	name := strings.TrimSpace(n.Name)
	if name == "" {
		name = n.EmpRefNo
	}
	var body strings.Builder
	fmt.Fprintf(&body, "Dear %s,\r\n\r\n", name)
	fmt.Fprintf(&body, "Your employee record %s has been approved and your account is ready.\r\n", n.EmpRefNo)
	if n.LoginID != "" {
		fmt.Fprintf(&body, "Login id: %s\r\n", n.LoginID)
	}
	body.WriteString("\r\nPlease sign in and change your password on first use.\r\n")
	return SendEmailPayload{
		To:      n.MailID,
		Subject: "Your account is ready",
		Body:    body.String(),
	}
}

// Mailer delivers one email.
type Mailer interface {
	Send(ctx context.Context, msg SendEmailPayload) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	Addr string
	From string
	Auth smtp.Auth
	now  func() time.Time
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer constructs a mailer for addr. Credentials are optional.
func NewSMTPMailer(addr, from, username, password string) *SMTPMailer {
	m := &SMTPMailer{Addr: addr, From: from, now: time.Now, send: smtp.SendMail}
	if username != "" {
		host := addr
		if idx := strings.LastIndexByte(addr, ':'); idx >= 0 {
			host = addr[:idx]
		}
		m.Auth = smtp.PlainAuth("", username, password, host)
	}
	return m
}

// Send implements Mailer.
func (m *SMTPMailer) Send(ctx context.Context, msg SendEmailPayload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.send(m.Addr, m.Auth, m.From, []string{msg.To}, m.message(msg)); err != nil {
		return fmt.Errorf("jobs: smtp send: %w", err)
	}
	return nil
}

func (m *SMTPMailer) message(msg SendEmailPayload) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", m.now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

// LogMailer only logs messages. Used when no relay is configured.
type LogMailer struct {
	Logger *slog.Logger
}

// Send implements Mailer.
func (m LogMailer) Send(_ context.Context, msg SendEmailPayload) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("mail not sent, no relay configured", slog.String("to", msg.To), slog.String("subject", msg.Subject))
	return nil
}

// SendEmailJob processes TaskTypeSendEmail tasks.
type SendEmailJob struct {
	Mailer Mailer
	Logger *slog.Logger
}

// Handle delivers the email. Malformed payloads are not retried.
func (j *SendEmailJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("jobs: decode email: %v: %w", err, asynq.SkipRetry)
	}
	if strings.TrimSpace(payload.To) == "" {
		return fmt.Errorf("jobs: email without recipient: %w", asynq.SkipRetry)
	}
	mailer := j.Mailer
	if mailer == nil {
		mailer = LogMailer{Logger: j.Logger}
	}
	return mailer.Send(ctx, payload)
}

// LookupWarmupPayload optionally drops the cache before reloading it.
type LookupWarmupPayload struct {
	Invalidate bool `json:"invalidate"`
}

// NewLookupWarmupTask constructs the lookup warmup task.
func NewLookupWarmupTask(invalidate bool) (*asynq.Task, error) {
	data, err := json.Marshal(LookupWarmupPayload{Invalidate: invalidate})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLookupWarmup, data), nil
}
