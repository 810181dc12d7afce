package telegram

import (
	"context"
	"encoding/json"
	"fmt"

	"SahayCare/internal/core/ports"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// sender is the slice of the bot API the ops channel needs.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

var _ sender = (*tgbotapi.BotAPI)(nil)

// OpsChannel forwards operational events to a Telegram group so the control
// room sees SOS activity, SLA breaches and transfer fallout without opening
// the dashboard. It is a pure event-bus subscriber; nothing in the core knows
// it exists.
type OpsChannel struct {
	api    sender
	chatID int64
	log    zerolog.Logger
}

// NewOpsChannel creates the channel and subscribes it to the operational
// topics.
func NewOpsChannel(api sender, chatID int64, bus ports.EventBus, baseLogger *zerolog.Logger) *OpsChannel {
	c := &OpsChannel{
		api:    api,
		chatID: chatID,
		log:    baseLogger.With().Str("component", "ops_channel").Logger(),
	}

	bus.Subscribe(ports.TopicSOSCreated, c.HandleSOSCreated)
	bus.Subscribe(ports.TopicSOSSLABreach, c.HandleSLABreach)
	bus.Subscribe(ports.TopicTransferCompleted, c.HandleTransferCompleted)
	bus.Subscribe(ports.TopicPendingManualAssign, c.HandlePendingManualAssign)
	bus.Subscribe(ports.TopicDailyReport, c.HandleDailyReport)

	return c
}

// post sends one message to the ops group.
func (c *OpsChannel) post(text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	if _, err := c.api.Send(msg); err != nil {
		c.log.Error().Err(err).Msg("Failed to post to ops channel")
		return err
	}
	return nil
}

// describe renders an event payload for the channel. Payloads are plain
// structs, so JSON is readable enough for an ops group.
func describe(data interface{}) string {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Sprintf("%+v", data)
	}
	return string(raw)
}

func (c *OpsChannel) HandleSOSCreated(ctx context.Context, event ports.Event) error {
	return c.post("🚨 SOS alert raised\n" + describe(event.Data))
}

func (c *OpsChannel) HandleSLABreach(ctx context.Context, event ports.Event) error {
	return c.post("⏰ SOS SLA breach\n" + describe(event.Data))
}

func (c *OpsChannel) HandleTransferCompleted(ctx context.Context, event ports.Event) error {
	return c.post("🔁 Officer transfer completed\n" + describe(event.Data))
}

func (c *OpsChannel) HandlePendingManualAssign(ctx context.Context, event ports.Event) error {
	return c.post("⚠️ Citizens pending manual assignment\n" + describe(event.Data))
}

func (c *OpsChannel) HandleDailyReport(ctx context.Context, event ports.Event) error {
	return c.post("📋 Daily report\n" + describe(event.Data))
}
