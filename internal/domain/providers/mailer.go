package providers

import "context"

type Email struct {
	To      string
	Subject string
	Text    string
}

// Mailer delivers transactional mail.
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}
