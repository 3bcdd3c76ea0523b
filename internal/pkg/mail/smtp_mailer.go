package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/escolafin/EscolaFin/internal/pkg/env"
)

// SendMail sends an email via SMTP
func SendMail(to string, subject string, body string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")

	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", "localhost")
		log.Printf("SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	err := smtp.SendMail(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Printf("SMTP send error: %v", err)
	} else {
		log.Printf("Email sent to %s via %s", to, addr)
	}
	return err
}

// SendSweepSummary notifies an institution's billing contact about the
// outcome of an overdue sweep.
func SendSweepSummary(to, institutionName string, examined, updated int) error {
	subject := fmt.Sprintf("Overdue sweep for %s: %d installment(s) updated", institutionName, updated)
	body := fmt.Sprintf(
		"<p>The overdue sweep for <strong>%s</strong> just finished.</p>"+
			"<p>Installments examined: %d<br>Installments updated: %d</p>"+
			"<p>Updated installments were marked late and, depending on your fine policy, charged a late fee.</p>",
		institutionName, examined, updated,
	)
	return SendMail(to, subject, body)
}
