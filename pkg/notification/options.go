package notification

import (
	"embed"
	"log/slog"
)

//go:embed templates/*
var templateFiles embed.FS

func loadTemplate(filename string) string {
	content, err := templateFiles.ReadFile(filename)
	if err != nil {
		slog.Error("Error reading template file", "err", err, "filename", filename)
		return ""
	}
	return string(content)
}

// ManagerOption is a function that configures a Manager
type ManagerOption func(*Manager) error

// WithSMTP adds an email notifier with the provided SMTP configuration
func WithSMTP(config SMTPConfig) ManagerOption {
	return func(m *Manager) error {
		emailNotifier, err := NewEmailNotifier(config)
		if err != nil {
			return err
		}
		m.RegisterNotifier(EmailSystem, emailNotifier)
		return nil
	}
}

// WithSMS adds an SMS notifier with the provided provider configuration
func WithSMS(config SMSConfig) ManagerOption {
	return func(m *Manager) error {
		m.RegisterNotifier(SMSSystem, NewSMSNotifier(config))
		return nil
	}
}

// WithPasswordResetTemplate registers the password reset template
func WithPasswordResetTemplate() ManagerOption {
	return func(m *Manager) error {
		return m.RegisterNotification(PasswordResetInit, EmailSystem, NoticeTemplate{
			Subject: "Password Reset Request",
			Html:    loadTemplate("templates/email/password_reset.html"),
		})
	}
}

// WithTwofaCodeEmailTemplate registers the 2FA code email template
func WithTwofaCodeEmailTemplate() ManagerOption {
	return func(m *Manager) error {
		return m.RegisterNotification(TwofaCodeEmail, EmailSystem, NoticeTemplate{
			Subject: "Your Verification Code",
			Html:    loadTemplate("templates/email/twofa_code.html"),
		})
	}
}

// WithTwofaCodeSmsTemplate registers the 2FA code SMS template
func WithTwofaCodeSmsTemplate() ManagerOption {
	return func(m *Manager) error {
		return m.RegisterNotification(TwofaCodeSms, SMSSystem, NoticeTemplate{
			Subject: "Your Verification Code",
			Text:    "Your verification code is: {{.Passcode}}",
		})
	}
}

// WithEmailVerificationTemplate registers the email verification template
func WithEmailVerificationTemplate() ManagerOption {
	return func(m *Manager) error {
		return m.RegisterNotification(EmailVerification, EmailSystem, NoticeTemplate{
			Subject: "Verify Your Email Address",
			Html:    loadTemplate("templates/email/email_verification.html"),
		})
	}
}

// WithDefaultTemplates registers all default notice templates
func WithDefaultTemplates() ManagerOption {
	return func(m *Manager) error {
		options := []ManagerOption{
			WithPasswordResetTemplate(),
			WithTwofaCodeEmailTemplate(),
			WithTwofaCodeSmsTemplate(),
			WithEmailVerificationTemplate(),
		}

		for _, opt := range options {
			if err := opt(m); err != nil {
				return err
			}
		}
		return nil
	}
}

// NewManagerWithOptions creates a new notification manager with the provided options
func NewManagerWithOptions(baseUrl string, opts ...ManagerOption) (*Manager, error) {
	manager := NewManager(baseUrl)

	for _, opt := range opts {
		if err := opt(manager); err != nil {
			return nil, err
		}
	}
	return manager, nil
}
