package mailer

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/bookshelf/internal/config"
	mail "github.com/xhit/go-simple-mail/v2"
)

// Mailer sends account emails.
type Mailer interface {
	SendRegistration(msg Registration) error
}

// Registration contains the data for the welcome email sent after signing up.
type Registration struct {
	Email     string
	FirstName string
	AppName   string
	SignInURL string
}

// SMTPMailer sends emails through an SMTP server.
type SMTPMailer struct {
	config *config.EmailConfig
	// send is replaced in tests.
	send func(to, subject, body string) error
}

var _ Mailer = (*SMTPMailer)(nil)

// New creates a new SMTP mailer.
func New(cfg *config.EmailConfig) *SMTPMailer {
	m := &SMTPMailer{
		config: cfg,
	}
	m.send = m.sendEmail
	return m
}

// SendRegistration sends the welcome email to a freshly registered user.
func (m *SMTPMailer) SendRegistration(msg Registration) error {
	if m.config == nil || !m.config.Enabled {
		log.Debug("Email is disabled, skipping registration email")
		return nil
	}

	if msg.Email == "" {
		log.Warn("User email is empty, skipping registration email")
		return nil
	}

	subject := fmt.Sprintf("[%s] Welcome!", msg.AppName)

	body, err := generateBody("registered.html", msg)
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}

	return m.send(msg.Email, subject, body)
}

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.New("").ParseFS(templatesFS, "templates/*.html"))

func generateBody(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// sendEmail sends an email using go-simple-mail library.
func (m *SMTPMailer) sendEmail(to, subject, body string) error {
	server := mail.NewSMTPClient()
	server.Host = m.config.SMTPHost
	server.Port = m.config.SMTPPort
	server.Username = m.config.Username
	server.Password = m.config.Password

	// Configure encryption
	if m.config.UseSSL {
		server.Encryption = mail.EncryptionSSLTLS
	} else if m.config.UseTLS {
		server.Encryption = mail.EncryptionSTARTTLS
	} else {
		server.Encryption = mail.EncryptionNone
	}

	if m.config.InsecureSkipVerify {
		server.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	server.KeepAlive = false
	server.ConnectTimeout = 10 * time.Second
	server.SendTimeout = 10 * time.Second

	smtpClient, err := server.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() {
		if closeErr := smtpClient.Close(); closeErr != nil {
			log.Warn("Failed to close SMTP client", "error", closeErr)
		}
	}()

	email := mail.NewMSG()

	fromName := m.config.FromName
	if fromName == "" {
		fromName = "Bookshelf"
	}
	email.SetFrom(fmt.Sprintf("%s <%s>", fromName, m.config.FromEmail))
	email.AddTo(to)
	email.SetSubject(subject)
	email.SetBody(mail.TextHTML, body)

	if email.Error != nil {
		return fmt.Errorf("failed to build email: %w", email.Error)
	}

	if err := email.Send(smtpClient); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Info("Email sent successfully", "to", to, "subject", subject)
	return nil
}
