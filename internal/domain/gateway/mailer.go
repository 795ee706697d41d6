package gateway

import "context"

// Mailer delivers a single email. html may be empty.
type Mailer interface {
	Send(ctx context.Context, to, subject, text, html string) error
}
