package queue

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/seu-repo/sigem-energia/pkg/config"
)

// MessageQueue is the event bus port. Sync cycle reports are its only
// producer today; subjects are flat strings like "sync.completed".
type MessageQueue interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte) error) error
	Close() error
}

// New builds the queue adapter selected by configuration.
func New(cfg config.QueueConfig, log *zap.Logger) (MessageQueue, error) {
	switch cfg.Driver {
	case "", "nats":
		return NewNATSQueue(cfg.URL, log)
	case "rabbitmq":
		return NewRabbitMQQueue(cfg.URL, log)
	default:
		return nil, fmt.Errorf("unknown queue driver %q", cfg.Driver)
	}
}

// PublishJSON marshals v and publishes it on subject.
func PublishJSON(q MessageQueue, subject string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", subject, err)
	}
	return q.Publish(subject, data)
}
