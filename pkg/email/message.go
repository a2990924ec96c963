package email

import (
	"context"
	"fmt"
	"net/mail"
)

// Message is a single outbound email with both an HTML and a plain-text body.
type Message struct {
	FromName  string
	FromEmail string
	To        []string
	ReplyTo   string
	Subject   string
	HTML      string
	Text      string
}

// Sender delivers a Message through one provider.
type Sender interface {
	Send(ctx context.Context, msg Message) error
	Name() string
}

// From formats the sender as an RFC 5322 address.
func (m Message) From() string {
	addr := mail.Address{Name: m.FromName, Address: m.FromEmail}
	return addr.String()
}

// Check rejects a message no provider could deliver.
func (m Message) Check() error {
	if m.FromEmail == "" {
		return fmt.Errorf("message has no sender")
	}
	if len(m.To) == 0 {
		return fmt.Errorf("message has no recipients")
	}
	if m.Subject == "" {
		return fmt.Errorf("message has no subject")
	}
	return nil
}
