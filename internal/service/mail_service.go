package service

import "context"

// MailService is the narrow contract to the transactional email provider.
// Callers only learn success or failure; delivery status is not inspected.
type MailService interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
