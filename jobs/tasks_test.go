package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-admin/internal/hr"
)

type recordingMailer struct {
	sent []SendEmailPayload
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg SendEmailPayload) error {
	m.sent = append(m.sent, msg)
	return m.err
}

func TestAccountReadyEmail(t *testing.T) {
	msg := AccountReadyEmail(hr.AccountNotice{EmpRefNo: "E100", Name: "John Doe", MailID: "john.doe.E100@company.com", LoginID: "john.doe"})
	assert.Equal(t, "john.doe.E100@company.com", msg.To)
	assert.Equal(t, "Your account is ready", msg.Subject)
	assert.Contains(t, msg.Body, "Dear John Doe,")
	assert.Contains(t, msg.Body, "E100")
	assert.Contains(t, msg.Body, "Login id: john.doe")

	noName := AccountReadyEmail(hr.AccountNotice{EmpRefNo: "E7", MailID: "x@company.com"})
	assert.Contains(t, noName.Body, "Dear E7,")
	assert.NotContains(t, noName.Body, "Login id")
}

func TestNewSendEmailTaskRequiresRecipient(t *testing.T) {
	_, err := NewSendEmailTask(SendEmailPayload{Subject: "x"})
	require.Error(t, err)

	task, err := NewSendEmailTask(SendEmailPayload{To: "a@b.com", Subject: "x"})
	require.NoError(t, err)
	assert.Equal(t, TaskTypeSendEmail, task.Type())
}

func TestSendEmailJobDelivers(t *testing.T) {
	mailer := &recordingMailer{}
	job := &SendEmailJob{Mailer: mailer}
	task, err := NewSendEmailTask(SendEmailPayload{To: "a@b.com", Subject: "hi", Body: "body"})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "hi", mailer.sent[0].Subject)
}

func TestSendEmailJobSkipsRetryOnBadPayload(t *testing.T) {
	job := &SendEmailJob{Mailer: &recordingMailer{}}

	err := job.Handle(context.Background(), asynq.NewTask(TaskTypeSendEmail, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	data, _ := json.Marshal(SendEmailPayload{Subject: "no one"})
	err = job.Handle(context.Background(), asynq.NewTask(TaskTypeSendEmail, data))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestSendEmailJobReturnsMailerError(t *testing.T) {
	job := &SendEmailJob{Mailer: &recordingMailer{err: errors.New("relay down")}}
	task, err := NewSendEmailTask(SendEmailPayload{To: "a@b.com"})
	require.NoError(t, err)

	err = job.Handle(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestSMTPMailerFormatsMessage(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	m := NewSMTPMailer("mail.local:25", "no-reply@company.com", "", "")
	m.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	require.NoError(t, m.Send(context.Background(), SendEmailPayload{To: "a@b.com", Subject: "hello", Body: "line"}))
	assert.Equal(t, "mail.local:25", gotAddr)
	assert.Equal(t, "no-reply@company.com", gotFrom)
	assert.Equal(t, []string{"a@b.com"}, gotTo)
	msg := string(gotMsg)
	assert.True(t, strings.HasPrefix(msg, "From: no-reply@company.com\r\nTo: a@b.com\r\nSubject: hello\r\n"))
	assert.Contains(t, msg, "Date: Mon, 06 May 2024 07:08:09 +0000\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\nline"))
	assert.Nil(t, m.Auth)
}

func TestSMTPMailerUsesPlainAuthWithCredentials(t *testing.T) {
	m := NewSMTPMailer("mail.local:587", "no-reply@company.com", "user", "secret")
	assert.NotNil(t, m.Auth)
}
