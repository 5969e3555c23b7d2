package notify

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/smtp"
	"strings"
	"testing"

	"github.com/jordan-wright/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/analytics"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/format"
	applog "fintrack/internal/log"
)

var march = core.Month{Year: 2024, Month: 3}

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Level: slog.LevelError, Output: io.Discard})
}

type captureSender struct {
	msgs []Message
	err  error
}

func (c *captureSender) Send(_ context.Context, msg Message) error {
	c.msgs = append(c.msgs, msg)
	return c.err
}

func TestBudgetAlertMessage(t *testing.T) {
	f := format.New("en-IN", "₹")
	msg := BudgetAlertMessage(f, march, []analytics.Escalation{
		{Category: core.Food, From: core.StatusWarning, To: core.StatusOver, Spent: core.MoneyFromCents(110000), Budget: core.MoneyFromCents(100000)},
		{Category: core.Rent, From: core.StatusSafe, To: core.StatusWarning, Spent: core.MoneyFromCents(85000), Budget: core.MoneyFromCents(100000)},
	})

	assert.Equal(t, "[fintrack] 1 category over budget in 2024-03", msg.Subject)
	assert.Contains(t, msg.Body, "Food: warning -> over")
	assert.Contains(t, msg.Body, "110.0%")
	assert.Contains(t, msg.Body, "Rent: safe -> warning")
	assert.Contains(t, msg.Body, "₹1,100.00")
}

func TestBudgetAlertMessageWarningOnly(t *testing.T) {
	msg := BudgetAlertMessage(format.Default(), march, []analytics.Escalation{
		{Category: core.Bills, From: core.StatusSafe, To: core.StatusWarning, Spent: core.MoneyFromCents(800), Budget: core.MoneyFromCents(1000)},
		{Category: core.Travel, From: core.StatusSafe, To: core.StatusWarning, Spent: core.MoneyFromCents(900), Budget: core.MoneyFromCents(1000)},
	})
	assert.Equal(t, "[fintrack] 2 categories nearing budget in 2024-03", msg.Subject)
}

func TestDigestMessage(t *testing.T) {
	txns := []core.Transaction{
		{ID: "1", Amount: core.MoneyFromCents(50000), Description: "groceries", Category: core.Food, Date: core.NewDate(2024, 3, 2)},
		{ID: "2", Amount: core.MoneyFromCents(30000), Description: "restaurant", Category: core.Food, Date: core.NewDate(2024, 3, 15)},
	}
	budgets := []core.Budget{{Category: core.Food, Amount: core.MoneyFromCents(100000), Month: march}}
	res := analytics.ComputeMonthlySummary(march, txns, budgets)

	msg := DigestMessage(format.Default(), res)
	assert.Equal(t, "[fintrack] Monthly digest 2024-03: 0 over, 1 warning", msg.Subject)
	assert.Contains(t, msg.Body, "80.0%")
	assert.Contains(t, msg.Body, "15/03/2024")
	assert.Contains(t, msg.Body, "restaurant")
	assert.NotContains(t, msg.Body, "Travel", "categories with no spend and no budget are omitted")
}

func TestNotifierSkipsEmptyAlerts(t *testing.T) {
	s := &captureSender{}
	n := New(s, nil)
	require.NoError(t, n.BudgetAlert(context.Background(), march, nil))
	assert.Empty(t, s.msgs)

	require.NoError(t, n.BudgetAlert(context.Background(), march, []analytics.Escalation{{Category: core.Food, From: core.StatusSafe, To: core.StatusOver}}))
	assert.Len(t, s.msgs, 1)
}

func TestEmailSender(t *testing.T) {
	sender := NewEmailSender(SMTPConfig{
		Host: "smtp.example.com", Port: 587,
		Username: "bot", Password: "secret",
		From: "fintrack@example.com", To: []string{"me@example.com"},
	}, quietLogger())

	var gotAddr string
	var gotMail *email.Email
	var gotAuth smtp.Auth
	sender.send = func(e *email.Email, addr string, auth smtp.Auth) error {
		gotMail, gotAddr, gotAuth = e, addr, auth
		return nil
	}

	require.NoError(t, sender.Send(context.Background(), Message{Subject: "hi", Body: "body"}))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.NotNil(t, gotAuth)
	assert.Equal(t, "fintrack@example.com", gotMail.From)
	assert.Equal(t, []string{"me@example.com"}, gotMail.To)
	assert.Equal(t, "hi", gotMail.Subject)
	assert.Equal(t, []byte("body"), gotMail.Text)

	sender.send = func(*email.Email, string, smtp.Auth) error { return errors.New("550 relay denied") }
	err := sender.Send(context.Background(), Message{Subject: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send email")
}

func TestEmailSenderWithoutAuthOrRecipients(t *testing.T) {
	sender := NewEmailSender(SMTPConfig{Host: "localhost", Port: 25, To: []string{"a@example.com"}}, quietLogger())
	var gotAuth smtp.Auth
	called := false
	sender.send = func(_ *email.Email, _ string, auth smtp.Auth) error {
		called, gotAuth = true, auth
		return nil
	}
	require.NoError(t, sender.Send(context.Background(), Message{}))
	assert.True(t, called)
	assert.Nil(t, gotAuth)

	empty := NewEmailSender(SMTPConfig{Host: "localhost", Port: 25}, quietLogger())
	assert.Error(t, empty.Send(context.Background(), Message{}))
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Level: slog.LevelInfo, Output: &buf})
	require.NoError(t, NewLogSender(logger).Send(context.Background(), Message{Subject: "digest"}))
	assert.True(t, strings.Contains(buf.String(), "digest"))
	assert.Contains(t, buf.String(), "component=notify")
}

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{CurrencyLocale: "en-IN", CurrencySymbol: "₹"}
	n := FromConfig(cfg, quietLogger())
	_, isLog := n.sender.(*LogSender)
	assert.True(t, isLog)

	cfg.SMTPHost = "smtp.example.com"
	cfg.SMTPPort = 587
	cfg.AlertTo = []string{"me@example.com"}
	n = FromConfig(cfg, quietLogger())
	_, isEmail := n.sender.(*EmailSender)
	assert.True(t, isEmail)
}
