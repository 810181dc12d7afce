package ports

import (
	"SahayCare/internal/core/domain"
	"context"
)

// Notifier is the outbound port for citizen/officer messaging. All sends are
// best-effort: failures are logged by the adapter and must never fail or roll
// back the primary operation. SendSMS/SendEmail report delivery acceptance;
// the templated helpers are fire-and-forget.
type Notifier interface {
	SendSMS(ctx context.Context, phone, message string) bool
	SendEmail(ctx context.Context, to, subject, body string) bool

	SendSOSAlert(ctx context.Context, alert *domain.SOSAlert, officerPhone, contactPhone string)
	SendVisitScheduled(ctx context.Context, visit *domain.Visit, citizenPhone string)
	SendVerificationRequested(ctx context.Context, req *domain.VerificationRequest, citizenPhone string)
	SendVerificationOutcome(ctx context.Context, req *domain.VerificationRequest, citizenPhone string)
}
