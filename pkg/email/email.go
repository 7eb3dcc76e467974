// Package email delivers transactional mail for the authentication flows.
// Delivery failures are the sender's concern; callers treat dispatch as
// fire-and-forget.
package email

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrSendFailed    = errors.New("email: failed to send")
	ErrInvalidConfig = errors.New("email: invalid config")
	ErrInvalidParams = errors.New("email: invalid send params")
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Sender sends a single transactional email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a fully rendered outbound email.
type Message struct {
	To       string
	Subject  string
	BodyHTML string
	Tag      string
}

// Validate checks the message is deliverable before handing it to a backend.
func (m Message) Validate() error {
	if !emailRegex.MatchString(m.To) {
		return fmt.Errorf("%w: recipient %q", ErrInvalidParams, m.To)
	}
	if m.Subject == "" {
		return fmt.Errorf("%w: empty subject", ErrInvalidParams)
	}
	if m.BodyHTML == "" {
		return fmt.Errorf("%w: empty body", ErrInvalidParams)
	}
	return nil
}
