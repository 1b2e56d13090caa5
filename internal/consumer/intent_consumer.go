package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/kisimediaDE/capacitor-live-activity-relay/internal/models"
	"github.com/kisimediaDE/capacitor-live-activity-relay/internal/services"
)

// IntentConsumer feeds queued lifecycle intents through the same relay
// pipeline as the HTTP layer. An intent is the request body plus an "event"
// discriminator. Delivery is at-most-once: failures are dead-lettered, never
// requeued.
type IntentConsumer struct {
	base   *BaseConsumer
	relay  *services.Relay
	logger *slog.Logger
}

func NewIntentConsumer(base *BaseConsumer, relay *services.Relay, logger *slog.Logger) *IntentConsumer {
	return &IntentConsumer{
		base:   base,
		relay:  relay,
		logger: logger,
	}
}

func (c *IntentConsumer) Start(ctx context.Context) error {
	return c.base.Start(ctx, c.handleDelivery)
}

func (c *IntentConsumer) handleDelivery(ctx context.Context, msg amqp.Delivery) error {
	id, err := c.process(ctx, msg.Body)
	if err != nil {
		c.logger.Error("intent dead-lettered", slog.Any("error", err))
		_ = msg.Nack(false, false)
		return err
	}
	c.logger.Info("intent dispatched", slog.String("message_id", id))
	return msg.Ack(false)
}

func (c *IntentConsumer) process(ctx context.Context, body []byte) (string, error) {
	event, err := intentEvent(body)
	if err != nil {
		return "", fmt.Errorf("decode intent: %w", err)
	}

	switch event {
	case models.EventStart:
		var req models.StartRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return "", fmt.Errorf("decode start intent: %w", err)
		}
		return c.relay.Start(ctx, &req)
	case models.EventUpdate:
		var req models.UpdateRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return "", fmt.Errorf("decode update intent: %w", err)
		}
		return c.relay.Update(ctx, &req)
	case models.EventEnd:
		var req models.EndRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return "", fmt.Errorf("decode end intent: %w", err)
		}
		return c.relay.End(ctx, &req)
	case models.EventPing:
		var req models.PingRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return "", fmt.Errorf("decode ping intent: %w", err)
		}
		return c.relay.Ping(ctx, &req)
	default:
		return "", fmt.Errorf("unknown intent event %q", event)
	}
}

func intentEvent(body []byte) (models.LifecycleEvent, error) {
	var head struct {
		Event models.LifecycleEvent `json:"event"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return "", err
	}
	return head.Event, nil
}
