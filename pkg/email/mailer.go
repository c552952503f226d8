// Package email sends transactional email through Postmark, or writes it to
// disk in development.
package email

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

var (
	ErrFailedToSendEmail = errors.New("failed to send email")
	ErrInvalidConfig     = errors.New("invalid email configuration")
	ErrInvalidMessage    = errors.New("invalid email message")
)

// Sender delivers a rendered message.
type Sender interface {
	SendEmail(ctx context.Context, msg Message) error
}

// Message is a rendered email ready to be delivered.
type Message struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	BodyHTML string `json:"-"`
	Tag      string `json:"tag,omitempty"`
}

// Validate checks that the message can be delivered.
func (m Message) Validate() error {
	switch {
	case !ValidAddress(m.To):
		return fmt.Errorf("%w: invalid recipient %q", ErrInvalidMessage, m.To)
	case strings.TrimSpace(m.Subject) == "":
		return fmt.Errorf("%w: subject is required", ErrInvalidMessage)
	case strings.TrimSpace(m.BodyHTML) == "":
		return fmt.Errorf("%w: body is required", ErrInvalidMessage)
	}
	return nil
}

// ValidAddress reports whether s is a bare address like "ana@school.cl".
// Display-name forms such as "Ana <ana@school.cl>" are rejected.
func ValidAddress(s string) bool {
	if s == "" || strings.TrimSpace(s) != s {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	_, domain, _ := strings.Cut(s, "@")
	return strings.Contains(domain, ".")
}
