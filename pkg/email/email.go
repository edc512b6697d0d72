package email

import (
	"bytes"
	"cactus_village_backend/internal/config"
	"fmt"
	"net/smtp"
	"text/template"
)

// templates maps a template name to its mail body. Variables are filled in
// with text/template.
var templates = map[string]string{
	"recovery": "Hello {{.username}},\r\n" +
		"\r\n" +
		"Your temporary password is: {{.tempPassword}}\r\n" +
		"Please log in and change it right away.\r\n" +
		"\r\n" +
		"- Cactus Village",
}

type Sender struct {
	cfg config.SMTPConfig
}

func NewSender(cfg config.SMTPConfig) *Sender {
	return &Sender{cfg: cfg}
}

// Send renders the named template with vars and mails it over SMTP.
func (s *Sender) Send(to, subject, templateName string, vars map[string]string) error {
	body, ok := templates[templateName]
	if !ok {
		return fmt.Errorf("unknown mail template %q", templateName)
	}

	tmpl, err := template.New(templateName).Parse(body)
	if err != nil {
		return err
	}

	var rendered bytes.Buffer
	if err := tmpl.Execute(&rendered, vars); err != nil {
		return err
	}

	msg := []byte("To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + rendered.String() + "\r\n")

	auth := smtp.PlainAuth("", s.cfg.Sender, s.cfg.Password, s.cfg.Host)
	address := s.cfg.Host + ":" + s.cfg.Port

	if err := smtp.SendMail(address, auth, s.cfg.Sender, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
