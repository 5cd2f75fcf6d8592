package mail

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrNoRecipients is returned when To/Cc/Bcc are all empty.
	ErrNoRecipients = errors.New("mail: no recipients provided")
	// ErrNoSender is returned when both Message.From and the configured default From are empty.
	ErrNoSender = errors.New("mail: no sender provided")
)

// Message represents an email payload.
type Message struct {
	// From is an optional explicit sender; the configured default is used otherwise.
	From string
	// To lists required recipients.
	To []string
	// Cc lists carbon copy recipients.
	Cc []string
	// Bcc lists blind carbon copy recipients.
	Bcc []string
	// Subject is the email subject line.
	Subject string
	// TextBody is the plain-text body.
	TextBody string
	// HTMLBody is the optional HTML alternative.
	HTMLBody string
}

// Mail abstracts an email provider.
type Mail interface {
	io.Closer
	// Send dispatches the given message using the underlying provider.
	Send(ctx context.Context, msg Message) error
}

func (m Message) validate(defaultFrom string) (string, error) {
	if len(m.To)+len(m.Cc)+len(m.Bcc) == 0 {
		return "", ErrNoRecipients
	}

	from := m.From
	if from == "" {
		from = defaultFrom
	}
	if from == "" {
		return "", ErrNoSender
	}

	return from, nil
}
