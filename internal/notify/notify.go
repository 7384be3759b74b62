// Package notify sends invitation emails through SendGrid. Delivery is
// best effort and asynchronous: a lost email never fails the transition
// that triggered it.
package notify

import (
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type Mailer struct {
	client  *sendgrid.Client
	from    string
	appName string
}

// New returns nil when no API key is configured; a nil Mailer skips
// sending silently.
func New(apiKey, from, appName string) *Mailer {
	if apiKey == "" {
		return nil
	}
	return &Mailer{client: sendgrid.NewSendClient(apiKey), from: from, appName: appName}
}

// InvitationCreated mails the invited user. Fire and forget.
func (m *Mailer) InvitationCreated(toEmail, toName, organizerName, title string) {
	if m == nil || toEmail == "" {
		return
	}
	go func() {
		subject := fmt.Sprintf("%s invited you to %q on %s", organizerName, title, m.appName)
		body := fmt.Sprintf("%s invited you to the appointment %q. Open %s to accept or decline.",
			organizerName, title, m.appName)
		msg := mail.NewSingleEmail(
			mail.NewEmail(m.appName, m.from),
			subject,
			mail.NewEmail(toName, toEmail),
			body,
			"",
		)
		if _, err := m.client.Send(msg); err != nil {
			log.Printf("notify: invitation email to %s: %v", toEmail, err)
		}
	}()
}

// RequestApproved mails the requester after the organizer approves.
func (m *Mailer) RequestApproved(toEmail, toName, title string) {
	if m == nil || toEmail == "" {
		return
	}
	go func() {
		subject := fmt.Sprintf("Your request to join %q was approved", title)
		body := fmt.Sprintf("You are now an attendee of %q.", title)
		msg := mail.NewSingleEmail(
			mail.NewEmail(m.appName, m.from),
			subject,
			mail.NewEmail(toName, toEmail),
			body,
			"",
		)
		if _, err := m.client.Send(msg); err != nil {
			log.Printf("notify: approval email to %s: %v", toEmail, err)
		}
	}()
}
