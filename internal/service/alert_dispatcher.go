package service

import (
	"encoding/json"

	"ai-caresupervisor-be/internal/pkg/logger"
	"ai-caresupervisor-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IAlertDispatcher raises critical alerts off the hot path. RaiseCriticalAlert
// is fire-and-forget: it returns immediately, and a dispatch failure is
// logged in isolation without ever touching the response path.
type IAlertDispatcher interface {
	RaiseCriticalAlert(userID, sessionID string, ruleIDs []string)
}

type alertDispatcher struct {
	pubSub *gochannel.GoChannel
	topic  string
	logger logger.ILogger
}

func NewAlertDispatcher(pubSub *gochannel.GoChannel, topic string, log logger.ILogger) IAlertDispatcher {
	return &alertDispatcher{
		pubSub: pubSub,
		topic:  topic,
		logger: log,
	}
}

func (d *alertDispatcher) RaiseCriticalAlert(userID, sessionID string, ruleIDs []string) {
	event := events.NewCriticalAlert(userID, sessionID, ruleIDs)

	go func() {
		payload, err := json.Marshal(event.Payload())
		if err != nil {
			d.logger.Error("alert", "Failed to marshal critical alert", map[string]interface{}{
				"error": err.Error(), "session_id": sessionID,
			})
			return
		}

		msg := message.NewMessage(watermill.NewUUID(), payload)
		if err := d.pubSub.Publish(d.topic, msg); err != nil {
			d.logger.Error("alert", "Failed to publish critical alert", map[string]interface{}{
				"error": err.Error(), "session_id": sessionID,
			})
			return
		}

		d.logger.Info("alert", "Critical alert raised", map[string]interface{}{
			"session_id": sessionID, "rule_ids": ruleIDs,
		})
	}()
}
