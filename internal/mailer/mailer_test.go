package mailer

import (
	"errors"
	"testing"

	"github.com/jon4hz/bookshelf/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	to, subject, body string
}

func newTestMailer(cfg *config.EmailConfig) (*SMTPMailer, *[]sent) {
	var outbox []sent
	m := New(cfg)
	m.send = func(to, subject, body string) error {
		outbox = append(outbox, sent{to, subject, body})
		return nil
	}
	return m, &outbox
}

func TestSendRegistration_Disabled(t *testing.T) {
	m, outbox := newTestMailer(&config.EmailConfig{Enabled: false})

	require.NoError(t, m.SendRegistration(Registration{Email: "a@example.com", AppName: "Bookshelf"}))
	assert.Empty(t, *outbox)

	require.NoError(t, New(nil).SendRegistration(Registration{Email: "a@example.com"}))
}

func TestSendRegistration_EmptyEmail(t *testing.T) {
	m, outbox := newTestMailer(&config.EmailConfig{Enabled: true})

	require.NoError(t, m.SendRegistration(Registration{AppName: "Bookshelf"}))
	assert.Empty(t, *outbox)
}

func TestSendRegistration(t *testing.T) {
	m, outbox := newTestMailer(&config.EmailConfig{Enabled: true, SMTPHost: "localhost"})

	err := m.SendRegistration(Registration{
		Email:     "reader@example.com",
		FirstName: "Ada",
		AppName:   "Bookshelf",
		SignInURL: "https://books.example.com/user/sign-in",
	})
	require.NoError(t, err)
	require.Len(t, *outbox, 1)

	msg := (*outbox)[0]
	assert.Equal(t, "reader@example.com", msg.to)
	assert.Equal(t, "[Bookshelf] Welcome!", msg.subject)
	assert.Contains(t, msg.body, "Welcome to Bookshelf, Ada!")
	assert.Contains(t, msg.body, "reader@example.com")
	assert.Contains(t, msg.body, "https://books.example.com/user/sign-in")
}

func TestSendRegistration_SendError(t *testing.T) {
	m := New(&config.EmailConfig{Enabled: true})
	m.send = func(string, string, string) error { return errors.New("connection refused") }

	err := m.SendRegistration(Registration{Email: "a@example.com", AppName: "Bookshelf"})
	assert.EqualError(t, err, "connection refused")
}
