package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

//go:embed templates/call_outcome.html
var templateFS embed.FS

var callOutcomeTemplate = template.Must(template.ParseFS(templateFS, "templates/call_outcome.html"))

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	From   string
	dialer dialer
}

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		From:   from,
		dialer: gomail.NewDialer(host, port, user, password),
	}
}

func (s *EmailSender) SendCallOutcome(to string, data CallOutcomeEmailData) error {
	body, err := renderCallOutcome(data)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", callOutcomeSubject(data))
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("mail: send smtp: %w", err)
	}
	return nil
}

func callOutcomeSubject(data CallOutcomeEmailData) string {
	who := data.Name
	if who == "" {
		who = data.Phone
	}
	return fmt.Sprintf("Call %s: %s", data.Outcome, who)
}

func renderCallOutcome(data CallOutcomeEmailData) (string, error) {
	var body bytes.Buffer
	if err := callOutcomeTemplate.Execute(&body, data); err != nil {
		return "", fmt.Errorf("mail: render template: %w", err)
	}
	return body.String(), nil
}
