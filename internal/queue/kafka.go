package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"

	"betterme/backend/internal/model"
)

type KafkaConfig struct {
	Brokers   []string
	TopicHigh string
	TopicLow  string
	GroupID   string
	Logger    zerolog.Logger
}

func (c KafkaConfig) validate() error {
	if len(c.Brokers) == 0 {
		return fmt.Errorf("brokers list is empty")
	}
	if c.TopicHigh == "" || c.TopicLow == "" {
		return fmt.Errorf("both priority topics are required")
	}
	return nil
}

// KafkaProducer writes jobs to the high or low priority topic.
type KafkaProducer struct {
	high   *kafkago.Writer
	low    *kafkago.Writer
	logger zerolog.Logger
}

func NewKafkaProducer(cfg KafkaConfig) (*KafkaProducer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	newWriter := func(topic string) *kafkago.Writer {
		return &kafkago.Writer{
			Addr:     kafkago.TCP(cfg.Brokers...),
			Topic:    topic,
			Balancer: &kafkago.LeastBytes{},
		}
	}

	return &KafkaProducer{
		high:   newWriter(cfg.TopicHigh),
		low:    newWriter(cfg.TopicLow),
		logger: cfg.Logger.With().Str("component", "audio_queue").Logger(),
	}, nil
}

func (p *KafkaProducer) Enqueue(ctx context.Context, priority Priority, job model.AudioJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal audio job: %w", err)
	}

	writer := p.high
	if priority == PriorityLow {
		writer = p.low
	}

	if err := writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(job.SourceURL),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("kafka enqueue: %w", err)
	}

	p.logger.Debug().
		Str("source_url", job.SourceURL).
		Str("priority", string(priority)).
		Msg("job enqueued")
	return nil
}

func (p *KafkaProducer) Close() error {
	if err := p.high.Close(); err != nil {
		_ = p.low.Close()
		return err
	}
	return p.low.Close()
}

// KafkaConsumer reads both priority topics through one consumer group.
type KafkaConsumer struct {
	reader *kafkago.Reader
}

func NewKafkaConsumer(cfg KafkaConfig) (*KafkaConsumer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.GroupID == "" {
		return nil, fmt.Errorf("group id is required")
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: []string{cfg.TopicHigh, cfg.TopicLow},
	})
	return &KafkaConsumer{reader: reader}, nil
}

func (c *KafkaConsumer) Fetch(ctx context.Context) (Message, error) {
	raw, err := c.reader.FetchMessage(ctx)
	if err != nil {
		return Message{}, fmt.Errorf("kafka fetch: %w", err)
	}

	var job model.AudioJob
	if err := json.Unmarshal(raw.Value, &job); err != nil {
		// Poison message: commit it so the group does not wedge.
		_ = c.reader.CommitMessages(ctx, raw)
		return Message{}, fmt.Errorf("unmarshal audio job: %w", err)
	}

	return Message{Job: job, raw: raw}, nil
}

func (c *KafkaConsumer) Commit(ctx context.Context, msg Message) error {
	raw, ok := msg.raw.(kafkago.Message)
	if !ok {
		return fmt.Errorf("message was not fetched from kafka")
	}
	if err := c.reader.CommitMessages(ctx, raw); err != nil {
		return fmt.Errorf("kafka commit: %w", err)
	}
	return nil
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
