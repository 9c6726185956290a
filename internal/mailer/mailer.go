package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPMailer sends transactional mail through an authenticated SMTP relay.
type SMTPMailer struct {
	from   string
	dialer *gomail.Dialer
}

func NewSMTPMailer(host string, port int, from, password string) *SMTPMailer {
	return &SMTPMailer{from: from, dialer: gomail.NewDialer(host, port, from, password)}
}

func (m *SMTPMailer) SendListingCreatedEmail(toEmail, listingTitle string) error {
	return m.dialer.DialAndSend(listingCreatedMessage(m.from, toEmail, listingTitle))
}

func listingCreatedMessage(from, to, title string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "New Listing Created")
	msg.SetBody("text/plain", fmt.Sprintf("Your listing '%s' has been created successfully.", title))
	return msg
}
