package notification

import (
	"fmt"
	"log/slog"
	"net/smtp"
)

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

// EmailService sends verification codes and invitation links over SMTP.
// It satisfies verify.Sender.
type EmailService struct {
	config EmailConfig
}

func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{config: config}
}

func (s *EmailService) SendVerificationCode(to, code string) error {
	subject := "Your Verification Code"
	body := fmt.Sprintf(`<html><body>
		<h2>Your Verification Code</h2>
		<p>Enter this code to verify your email address:</p>
		<p style="font-size: 24px; letter-spacing: 4px;"><strong>%s</strong></p>
		<p>This code will expire in 15 minutes.</p>
		<p>If you did not request this code, please ignore this email.</p>
	</body></html>`, code)
	return s.sendEmail(to, subject, body)
}

func (s *EmailService) SendInvitation(to, companyName, inviteURL string) error {
	subject := fmt.Sprintf("You've been invited to %s", companyName)
	body := fmt.Sprintf(`<html><body>
		<h2>You've been invited to %s</h2>
		<p><a href="%s">Click here to accept the invitation</a></p>
		<p>Or copy this link to your browser: %s</p>
		<p>This invitation will expire in 7 days.</p>
	</body></html>`, companyName, inviteURL, inviteURL)
	return s.sendEmail(to, subject, body)
}

func (s *EmailService) sendEmail(to, subject, body string) error {
	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		from, to, subject, body)

	auth := smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	return smtp.SendMail(addr, auth, s.config.From, []string{to}, []byte(msg))
}

// LogService writes what would have been emailed to the structured log.
// Used in development when no SMTP host is configured.
type LogService struct {
	logger *slog.Logger
}

func NewLogService(logger *slog.Logger) *LogService {
	return &LogService{logger: logger}
}

func (s *LogService) SendVerificationCode(to, code string) error {
	s.logger.Info("verification code (email not configured)", "to", to, "code", code)
	return nil
}

func (s *LogService) SendInvitation(to, companyName, inviteURL string) error {
	s.logger.Info("invitation link (email not configured)", "to", to, "company", companyName, "url", inviteURL)
	return nil
}
