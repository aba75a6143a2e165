package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"ishemalink/pkg/requestcontext"
)

// SMSRecord is the payload produced for the SMS gateway consumer.
type SMSRecord struct {
	To        string    `json:"to"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
	SentAt    time.Time `json:"sent_at"`
}

// KafkaNotifier hands SMS messages to a gateway consumer through a Kafka topic.
// Send returns once the broker has acknowledged the record.
type KafkaNotifier struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaNotifier connects a producer to brokers for topic.
func NewKafkaNotifier(brokers []string, topic string, logger *slog.Logger) (*KafkaNotifier, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(5*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaNotifier{client: client, topic: topic, logger: logger}, nil
}

// EnsureTopic creates the SMS topic when it does not exist yet.
func (n *KafkaNotifier) EnsureTopic(ctx context.Context, partitions int32, replicationFactor int16) error {
	admin := kadm.NewClient(n.client)
	resp, err := admin.CreateTopics(ctx, partitions, replicationFactor, nil, n.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", n.topic, err)
	}
	for _, t := range resp {
		if t.Err != nil && !errors.Is(t.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", t.Topic, t.Err)
		}
	}
	return nil
}

func (n *KafkaNotifier) Send(ctx context.Context, destination, message string) error {
	payload, err := json.Marshal(SMSRecord{
		To:        destination,
		Message:   message,
		RequestID: requestcontext.RequestID(ctx),
		SentAt:    requestcontext.Now(ctx).UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal sms record: %w", err)
	}
	record := &kgo.Record{
		Topic: n.topic,
		Key:   []byte(destination),
		Value: payload,
	}
	if err := n.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce sms record: %w", err)
	}
	n.logger.DebugContext(ctx, "sms queued",
		"request_id", requestcontext.RequestID(ctx),
		"to", MaskDestination(destination),
		"partition", record.Partition,
		"offset", record.Offset,
	)
	return nil
}

// Ping checks broker reachability.
func (n *KafkaNotifier) Ping(ctx context.Context) error {
	return n.client.Ping(ctx)
}

func (n *KafkaNotifier) Close() {
	n.client.Close()
}
