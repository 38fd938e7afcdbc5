package email

import (
	"context"
)

// Message is one transactional email ready for delivery.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Service delivers transactional email. The outbox worker is the only
// caller; handlers never send mail in-request.
type Service interface {
	Send(ctx context.Context, msg Message) error
}
