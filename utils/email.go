package utils

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"github.com/jordan-wright/email"
)

// ErrSMTPNotConfigured reports that mail notifications are disabled.
var ErrSMTPNotConfigured = errors.New("smtp config missing")

// SendApprovalMail notifies the administrator by email about a new
// pending access request. Mail is optional; without SMTP settings the
// call returns ErrSMTPNotConfigured.
func SendApprovalMail(fullName string, telegramID int64) error {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	from := os.Getenv("SMTP_FROM")
	to := os.Getenv("ADMIN_EMAIL")
	if host == "" || port == "" || user == "" || pass == "" || from == "" || to == "" {
		return ErrSMTPNotConfigured
	}

	e := email.NewEmail()
	e.From = from
	e.To = []string{to}
	e.Subject = "New access request"
	e.HTML = []byte(fmt.Sprintf(`
		<h2>Access request</h2>
		<p>User <b>%s</b> (ID: <code>%d</code>) requests access to the bot.</p>
		<p>Open the bot chat to approve or deny the request.</p>
	`, fullName, telegramID))

	addr := host + ":" + port
	auth := smtp.PlainAuth("", user, pass, host)
	tlsConfig := &tls.Config{ServerName: host}
	useTLS := strings.EqualFold(os.Getenv("SMTP_TLS"), "true") ||
		os.Getenv("SMTP_TLS") == "1" ||
		port == "465"
	useStartTLS := strings.EqualFold(os.Getenv("SMTP_STARTTLS"), "true") ||
		os.Getenv("SMTP_STARTTLS") == "1"

	if useTLS {
		return e.SendWithTLS(addr, auth, tlsConfig)
	}
	if useStartTLS {
		return e.SendWithStartTLS(addr, auth, tlsConfig)
	}
	return e.Send(addr, auth)
}
