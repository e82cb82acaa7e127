package service

import (
	"context"
	"fmt"

	"munlink-backend/internal/config"
	"munlink-backend/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"gopkg.in/gomail.v2"
)

type smtpEmailSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
}

func NewSMTPEmailSender(host string, port int, username, password, from, fromName string) EmailSender {
	return &smtpEmailSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		fromName: fromName,
	}
}

func (s *smtpEmailSender) Send(ctx context.Context, to, toName, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.from, s.fromName))
	if toName != "" {
		m.SetHeader("To", m.FormatAddress(to, toName))
	} else {
		m.SetHeader("To", to)
	}
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)

	logger.ExternalServiceCall("smtp", "DialAndSend", "to", to)
	err := d.DialAndSend(m)
	logger.ExternalServiceResult("smtp", "DialAndSend", err)
	if err != nil {
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}
	return nil
}

type sendgridEmailSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewSendGridEmailSender(apiKey, fromEmail, fromName string) EmailSender {
	return &sendgridEmailSender{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendgridEmailSender) Send(ctx context.Context, to, toName, subject, body string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, subject, recipient, body, "")

	logger.ExternalServiceCall("sendgrid", "Send", "to", to)
	response, err := s.client.SendWithContext(ctx, message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "Send", err)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

type noopEmailSender struct{}

func (noopEmailSender) Send(ctx context.Context, to, toName, subject, body string) error {
	logger.DebugContext(ctx, "Email delivery disabled", "to", to, "subject", subject)
	return nil
}

// NewEmailSender picks the provider named in the configuration.
func NewEmailSender(smtp config.SMTPConfig, email config.EmailConfig) (EmailSender, error) {
	switch email.Provider {
	case "smtp":
		return NewSMTPEmailSender(smtp.Host, smtp.Port, smtp.User, smtp.Password, smtp.From, email.FromName), nil
	case "sendgrid":
		if email.SendGridAPIKey == "" {
			return nil, fmt.Errorf("sendgrid provider needs an API key")
		}
		return NewSendGridEmailSender(email.SendGridAPIKey, smtp.From, email.FromName), nil
	case "none", "":
		return noopEmailSender{}, nil
	}
	return nil, fmt.Errorf("unknown email provider %q", email.Provider)
}
