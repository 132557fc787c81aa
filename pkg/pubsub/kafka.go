package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/google/uuid"

	pkglog "github.com/weiawesome/openjob/pkg/log"
)

// headerEventType carries Event.Type so consumers can route without
// decoding the value.
const headerEventType = "event-type"

const (
	pollTimeoutMs  = 500
	flushTimeoutMs = 5000
	eventBuffer    = 100
)

type kafkaSubscription struct {
	consumer *kafka.Consumer
	cancel   context.CancelFunc
	done     chan struct{}
}

// KafkaPubSub implements PubSub on Kafka. All index event channels of an
// application share one topic and the alias is the message key, so events
// for one alias stay ordered within a partition.
type KafkaPubSub struct {
	producer *kafka.Producer
	admin    *kafka.AdminClient
	config   KafkaConfig

	mu            sync.Mutex
	subscriptions map[string]*kafkaSubscription
	topics        map[string]bool
}

// NewKafkaPubSub creates a new Kafka-based PubSub instance.
func NewKafkaPubSub(cfg KafkaConfig) (*KafkaPubSub, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":  cfg.Brokers,
		"acks":               "all",
		"enable.idempotence": true,
		"linger.ms":          5,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	admin, err := kafka.NewAdminClientFromProducer(p)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to create kafka admin client: %w", err)
	}

	return &KafkaPubSub{
		producer:      p,
		admin:         admin,
		config:        cfg,
		subscriptions: make(map[string]*kafkaSubscription),
		topics:        make(map[string]bool),
	}, nil
}

// Publish produces event and waits for the broker to acknowledge it.
func (k *KafkaPubSub) Publish(ctx context.Context, channel string, event *Event) error {
	topic, key, err := channelToTopicAndKey(channel)
	if err != nil {
		return err
	}

	msg, err := encodeMessage(topic, key, event)
	if err != nil {
		return err
	}

	delivery := make(chan kafka.Event, 1)
	if err := k.producer.Produce(msg, delivery); err != nil {
		return fmt.Errorf("failed to produce %s: %w", event.Type, err)
	}

	select {
	case e := <-delivery:
		if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			return fmt.Errorf("failed to deliver %s: %w", event.Type, m.TopicPartition.Error)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe consumes the channel's topic and forwards events keyed by the
// channel's alias. Each subscription uses its own consumer group so every
// process instance sees every event.
func (k *KafkaPubSub) Subscribe(ctx context.Context, channel string) (<-chan *Event, error) {
	topic, key, err := channelToTopicAndKey(channel)
	if err != nil {
		return nil, err
	}

	if err := k.ensureTopic(ctx, topic); err != nil {
		l := pkglog.L()
		l.Warn().Err(err).Str("topic", topic).Msg("kafka topic not ensured")
	}

	groupID := k.config.GroupID
	if groupID == "" {
		groupID = "openjob"
	}
	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  k.config.Brokers,
		"group.id":           fmt.Sprintf("%s-%s-%s", groupID, sanitizeGroupID(channel), uuid.NewString()),
		"auto.offset.reset":  "latest",
		"enable.auto.commit": true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}
	if err := c.Subscribe(topic, nil); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &kafkaSubscription{consumer: c, cancel: cancel, done: make(chan struct{})}

	k.mu.Lock()
	previous := k.subscriptions[channel]
	k.subscriptions[channel] = sub
	k.mu.Unlock()
	previous.close()

	events := make(chan *Event, eventBuffer)
	go k.consume(subCtx, sub, events, key)

	return events, nil
}

func (k *KafkaPubSub) consume(ctx context.Context, sub *kafkaSubscription, events chan<- *Event, key string) {
	defer close(sub.done)
	defer close(events)

	l := pkglog.L()
	for ctx.Err() == nil {
		switch e := sub.consumer.Poll(pollTimeoutMs).(type) {
		case *kafka.Message:
			event, err := decodeMessage(e, key)
			if err != nil {
				l.Warn().Err(err).Msg("kafka pubsub: dropping malformed event")
				continue
			}
			if event == nil {
				continue
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		case kafka.Error:
			l.Error().Err(e).Bool("fatal", e.IsFatal()).Msg("kafka pubsub error")
			if e.IsFatal() {
				return
			}
		}
	}
}

// Unsubscribe removes a channel subscription.
func (k *KafkaPubSub) Unsubscribe(ctx context.Context, channel string) error {
	k.mu.Lock()
	sub := k.subscriptions[channel]
	delete(k.subscriptions, channel)
	k.mu.Unlock()

	return sub.close()
}

// Close closes all subscriptions and flushes the producer.
func (k *KafkaPubSub) Close() error {
	k.mu.Lock()
	subs := k.subscriptions
	k.subscriptions = make(map[string]*kafkaSubscription)
	k.mu.Unlock()

	for _, sub := range subs {
		sub.close()
	}

	if remaining := k.producer.Flush(flushTimeoutMs); remaining > 0 {
		l := pkglog.L()
		l.Warn().Int("remaining", remaining).Msg("kafka pubsub closed with undelivered events")
	}
	k.admin.Close()
	k.producer.Close()
	return nil
}

func (k *KafkaPubSub) ensureTopic(ctx context.Context, topic string) error {
	k.mu.Lock()
	known := k.topics[topic]
	k.mu.Unlock()
	if known {
		return nil
	}

	partitions := k.config.Partitions
	if partitions <= 0 {
		partitions = 1
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	results, err := k.admin.CreateTopics(ctx, []kafka.TopicSpecification{{
		Topic:             topic,
		NumPartitions:     partitions,
		ReplicationFactor: 1,
	}})
	if err != nil {
		return fmt.Errorf("failed to create topic %s: %w", topic, err)
	}
	for _, r := range results {
		if code := r.Error.Code(); code != kafka.ErrNoError && code != kafka.ErrTopicAlreadyExists {
			return fmt.Errorf("failed to create topic %s: %v", r.Topic, r.Error)
		}
	}

	k.mu.Lock()
	k.topics[topic] = true
	k.mu.Unlock()
	return nil
}

// close stops the consumer loop before closing the consumer; Poll and
// Close must not run concurrently.
func (s *kafkaSubscription) close() error {
	if s == nil {
		return nil
	}
	s.cancel()
	<-s.done
	if err := s.consumer.Close(); err != nil {
		return fmt.Errorf("failed to close consumer: %w", err)
	}
	return nil
}

func encodeMessage(topic, key string, event *Event) (*kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(key),
		Value:          data,
		Headers:        []kafka.Header{{Key: headerEventType, Value: []byte(event.Type)}},
	}, nil
}

// decodeMessage returns nil without error for messages keyed to another alias.
func decodeMessage(msg *kafka.Message, key string) (*Event, error) {
	if string(msg.Key) != key {
		return nil, nil
	}
	var event Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return nil, err
	}
	if event.Type == "" {
		for _, h := range msg.Headers {
			if h.Key == headerEventType {
				event.Type = string(h.Value)
			}
		}
	}
	return &event, nil
}

var groupIDRegexp = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

func sanitizeGroupID(s string) string {
	return groupIDRegexp.ReplaceAllString(s, "-")
}
