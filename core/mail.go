package core

import "net/mail"

type (
	// EmailMessage is a simple text email. No templating; review
	// notifications are short one-liners.
	EmailMessage struct {
		To          []mail.Address
		Subject     string
		TextContent string
	}

	// EmailService is any service that can send emails.
	EmailService interface {
		// SendMessages sends messages; implementations may do so concurrently.
		SendMessages(messages ...*EmailMessage)
	}
)

func (msg EmailMessage) HasRecipients() bool {
	return len(msg.To) > 0
}

func (msg EmailMessage) HasContent() bool {
	return msg.TextContent != ""
}
