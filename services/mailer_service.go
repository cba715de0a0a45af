package services

import (
	"fmt"
	"log"
	"net/smtp"
	"sync"

	"github.com/pathcare/pathlab-api/config"
)

// Mailer defines the interface for outbound email delivery
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer delivers mail through a configured SMTP relay. When the relay
// is not configured the mailer is disabled and sends become logged no-ops,
// so local development works without mail credentials.
type SMTPMailer struct {
	host     string
	port     string
	user     string
	password string
	from     string
	enabled  bool
}

var mailerInstance Mailer

// InitMailer initializes the mailer from configuration
func InitMailer(cfg *config.Config) Mailer {
	mailerInstance = NewSMTPMailer(cfg)
	return mailerInstance
}

// GetMailer returns the initialized mailer instance
func GetMailer() Mailer {
	return mailerInstance
}

// SetMailer sets the mailer instance (primarily for testing)
func SetMailer(m Mailer) {
	mailerInstance = m
}

// NewSMTPMailer creates an SMTP mailer from configuration
func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.MailFrom,
		enabled:  cfg.SMTPHost != "" && cfg.MailFrom != "",
	}
}

// IsEnabled checks if mail delivery is configured
func (m *SMTPMailer) IsEnabled() bool {
	return m.enabled
}

// Send delivers a plain-text message to a single recipient
func (m *SMTPMailer) Send(to, subject, body string) error {
	if !m.enabled {
		log.Printf("Mailer disabled, skipping email to %s (subject: %s)", to, subject)
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.from, to, subject, body)

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}

	addr := m.host + ":" + m.port
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// MockMailer records sent messages for test assertions
type MockMailer struct {
	mu       sync.Mutex
	messages []MockMessage
	// FailNext makes the next Send return an error
	FailNext bool
}

// MockMessage is a recorded outbound message
type MockMessage struct {
	To      string
	Subject string
	Body    string
}

// NewMockMailer creates a new mock mailer
func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

// Send records the message instead of delivering it
func (m *MockMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNext {
		m.FailNext = false
		return fmt.Errorf("mock mailer failure")
	}
	m.messages = append(m.messages, MockMessage{To: to, Subject: subject, Body: body})
	return nil
}

// Messages returns a copy of all recorded messages
func (m *MockMailer) Messages() []MockMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockMessage, len(m.messages))
	copy(out, m.messages)
	return out
}
