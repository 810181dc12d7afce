package notifier

import (
	"context"
	"fmt"
	"time"

	"SahayCare/internal/core/domain"
	"SahayCare/internal/core/ports"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// smsGateway implements ports.Notifier against an HTTP messaging gateway.
// Every send is best-effort: a gateway outage is logged and swallowed so a
// failed SMS can never roll back the case-management operation behind it.
type smsGateway struct {
	client *resty.Client
	sender string
	log    zerolog.Logger
}

var _ ports.Notifier = (*smsGateway)(nil) // Ensure compliance

type smsRequest struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Message string `json:"message"`
}

type emailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSMSGateway creates a notifier that talks to the configured gateway.
func NewSMSGateway(baseURL, apiKey, sender string, baseLogger *zerolog.Logger) ports.Notifier {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Authorization", "Bearer "+apiKey).
		SetTimeout(10 * time.Second).
		SetRetryCount(2)

	return &smsGateway{
		client: client,
		sender: sender,
		log:    baseLogger.With().Str("component", "sms_gateway").Logger(),
	}
}

// SendSMS posts one message and reports whether the gateway accepted it.
func (g *smsGateway) SendSMS(ctx context.Context, phone, message string) bool {
	if phone == "" {
		return false
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(smsRequest{To: phone, From: g.sender, Message: message}).
		Post("/v1/sms")
	if err != nil {
		g.log.Error().Err(err).Msg("Failed to reach SMS gateway")
		return false
	}
	if resp.IsError() {
		g.log.Error().Int("status", resp.StatusCode()).Msg("SMS gateway rejected message")
		return false
	}
	return true
}

func (g *smsGateway) SendEmail(ctx context.Context, to, subject, body string) bool {
	if to == "" {
		return false
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(emailRequest{To: to, Subject: subject, Body: body}).
		Post("/v1/email")
	if err != nil {
		g.log.Error().Err(err).Msg("Failed to reach email gateway")
		return false
	}
	if resp.IsError() {
		g.log.Error().Int("status", resp.StatusCode()).Msg("Email gateway rejected message")
		return false
	}
	return true
}

// SendSOSAlert notifies the responding officer and the citizen's emergency
// contact that an alert was raised.
func (g *smsGateway) SendSOSAlert(ctx context.Context, alert *domain.SOSAlert, officerPhone, contactPhone string) {
	location := "last known address"
	if alert.Latitude != nil && alert.Longitude != nil {
		location = fmt.Sprintf("%.5f,%.5f", *alert.Latitude, *alert.Longitude)
	}

	g.SendSMS(ctx, officerPhone, fmt.Sprintf(
		"SOS alert %s raised. Respond immediately. Location: %s", alert.ID, location))
	g.SendSMS(ctx, contactPhone, fmt.Sprintf(
		"An SOS alert was raised by your registered senior citizen at %s. An officer has been notified.",
		alert.CreatedAt.Format("15:04 on 02 Jan")))
}

func (g *smsGateway) SendVisitScheduled(ctx context.Context, visit *domain.Visit, citizenPhone string) {
	g.SendSMS(ctx, citizenPhone, fmt.Sprintf(
		"A %s visit by your beat officer is scheduled for %s.",
		visit.VisitType, visit.ScheduledDate.Format("02 Jan 2006 at 15:04")))
}

func (g *smsGateway) SendVerificationRequested(ctx context.Context, req *domain.VerificationRequest, citizenPhone string) {
	g.SendSMS(ctx, citizenPhone, fmt.Sprintf(
		"A verification request (%s) has been registered. An officer will visit to complete it.",
		req.EntityType))
}

func (g *smsGateway) SendVerificationOutcome(ctx context.Context, req *domain.VerificationRequest, citizenPhone string) {
	switch req.Status {
	case domain.VerificationApproved:
		g.SendSMS(ctx, citizenPhone, fmt.Sprintf(
			"Your verification request (%s) has been approved.", req.EntityType))
	case domain.VerificationRejected:
		reason := "not specified"
		if req.RejectionReason != nil {
			reason = *req.RejectionReason
		}
		g.SendSMS(ctx, citizenPhone, fmt.Sprintf(
			"Your verification request (%s) was rejected. Reason: %s", req.EntityType, reason))
	}
}
