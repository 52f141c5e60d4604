package alerting

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/nightkernel/sentinel/pkg/config"
)

type EmailSender struct {
	cfg  config.AlertsConfig
	send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailSender(cfg config.AlertsConfig) *EmailSender {
	return &EmailSender{cfg: cfg, send: smtp.SendMail}
}

func (e *EmailSender) Name() string {
	return "email"
}

func (e *EmailSender) Send(_ context.Context, event Event) error {
	if e.cfg.SMTPHost == "" || e.cfg.EmailTo == "" {
		return fmt.Errorf("email channel not configured")
	}

	subject := fmt.Sprintf("[sentinel] %s event for %s", event.EventType, shortHash(event.HashedIP))
	body := fmt.Sprintf(
		"Event: %s\r\nIdentity: %s\r\nThreat level: %s\r\nThreat score: %d\r\nIncident: %s\r\nAt: %s\r\n",
		event.EventType, event.HashedIP, event.ThreatLevel, event.ThreatScore, event.Incident,
		event.Timestamp.Format("2006-01-02 15:04:05 UTC"),
	)
	message := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		e.cfg.EmailFrom, e.cfg.EmailTo, subject, body)

	var auth smtp.Auth
	if e.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", e.cfg.SMTPUser, e.cfg.SMTPPass, e.cfg.SMTPHost)
	}

	addr := fmt.Sprintf("%s:%d", e.cfg.SMTPHost, e.cfg.SMTPPort)
	if err := e.send(addr, auth, e.cfg.EmailFrom, []string{e.cfg.EmailTo}, []byte(message)); err != nil {
		return fmt.Errorf("smtp delivery failed: %w", err)
	}
	return nil
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
