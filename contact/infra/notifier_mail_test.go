package infra

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"toolkit-gateway/contact/domain"
)

type captureSender struct {
	sent []*gomail.Message
	err  error
}

func (c *captureSender) DialAndSend(m ...*gomail.Message) error {
	c.sent = append(c.sent, m...)
	return c.err
}

func sample() domain.Submission {
	return domain.Submission{
		ID:        "id-1",
		Email:     "a@example.com",
		Subject:   "hello\nthere",
		Message:   "<script>alert(1)</script>line1\nline2",
		Language:  "en",
		Identity:  "1_2_3_4",
		CreatedAt: time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC),
		Status:    domain.StatusNew,
	}
}

func TestMailNotifier_HTMLBodySanitized(t *testing.T) {
	n := NewMailNotifier(MailConfig{Host: "smtp", From: "x@y", To: []string{"ops@y"}})
	body := n.HTMLBody(sample())

	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "line1<br>line2")
	assert.Contains(t, body, "a@example.com")
}

func TestMailNotifier_Notify(t *testing.T) {
	sender := &captureSender{}
	n := NewMailNotifier(MailConfig{Host: "smtp", From: "x@y", To: []string{"ops@y"}})
	n.sender = sender

	require.NoError(t, n.Notify(context.Background(), sample()))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"[contact] hello there"}, sender.sent[0].GetHeader("Subject"))
	assert.Equal(t, []string{"a@example.com"}, sender.sent[0].GetHeader("Reply-To"))
}

func TestMailNotifier_SendError(t *testing.T) {
	n := NewMailNotifier(MailConfig{Host: "smtp", From: "x@y", To: []string{"ops@y"}})
	n.sender = &captureSender{err: errors.New("refused")}
	err := n.Notify(context.Background(), sample())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id-1")
}

func TestMailConfig_Enabled(t *testing.T) {
	assert.False(t, MailConfig{}.Enabled())
	assert.True(t, MailConfig{Host: "h", From: "f", To: []string{"t"}}.Enabled())
}

func TestPlainBody(t *testing.T) {
	body := PlainBody(sample())
	assert.Contains(t, body, "ID: id-1")
	assert.Contains(t, body, "Created: 2026-03-09 12:00:00 UTC")
}
