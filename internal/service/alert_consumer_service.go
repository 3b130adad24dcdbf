package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-caresupervisor-be/internal/pkg/logger"
	"ai-caresupervisor-be/pkg/events"
	pktNats "ai-caresupervisor-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IAlertConsumerService drains critical-alert events from the in-process bus
// and forwards them to the external alerting collaborator over NATS. Run as
// a background service from main.
type IAlertConsumerService interface {
	Consume(ctx context.Context) error
}

type alertConsumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	natsPub   *pktNats.Publisher // nil when NATS is not configured
	logger    logger.ILogger
}

func NewAlertConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	natsPub *pktNats.Publisher,
	log logger.ILogger,
) IAlertConsumerService {
	return &alertConsumerService{
		pubSub:    pubSub,
		topicName: topicName,
		natsPub:   natsPub,
		logger:    log,
	}
}

func (cs *alertConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *alertConsumerService) processMessage(msg *message.Message) {
	var payload map[string]interface{}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("alert", "Failed to unmarshal alert message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if cs.natsPub != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		event := events.BaseEvent{
			Type:       events.TypeCriticalAlert,
			Data:       payload,
			OccurredAt: time.Now(),
		}
		if err := cs.natsPub.Publish(ctx, event); err != nil {
			// Alert delivery failures are isolated: log and move on.
			cs.logger.Error("alert", "Failed to forward alert to NATS", map[string]interface{}{
				"error": err.Error(),
			})
			msg.Ack()
			return
		}
	} else {
		cs.logger.Warn("alert", "No alert transport configured, alert logged only", map[string]interface{}{
			"session_id": payload["session_id"],
		})
	}

	msg.Ack()
}
