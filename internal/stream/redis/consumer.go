package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/povarna/generative-ai-agents/arc-agent/internal/executor"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// PayloadField is the stream entry field holding the JSON document.
const PayloadField = "payload"

// Client is the subset of go-redis used by the consumer.
type Client interface {
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	Close() error
}

// Rewriter runs one request through the pipeline.
type Rewriter interface {
	Rewrite(ctx context.Context, req models.RewriteRequest) (*models.RewriteEnvelope, error)
}

// ResultMessage is published for every consumed request. Exactly one of
// Envelope and Error is set.
type ResultMessage struct {
	MessageID string                  `json:"message_id"`
	RequestID string                  `json:"request_id,omitempty"`
	Envelope  *models.RewriteEnvelope `json:"envelope,omitempty"`
	Error     string                  `json:"error,omitempty"`
	Kind      string                  `json:"kind,omitempty"`
}

type Consumer struct {
	client       Client
	stream       string
	resultStream string
	groupID      string
	consumerName string
	rewriter     Rewriter
	logger       *zerolog.Logger
}

func NewConsumer(client Client, cfg *RedisStreamConfig, rewriter Rewriter, logger *zerolog.Logger) *Consumer {
	return &Consumer{
		client:       client,
		stream:       cfg.Stream,
		resultStream: cfg.ResultStream,
		groupID:      cfg.Group,
		consumerName: cfg.ConsumerName,
		rewriter:     rewriter,
		logger:       logger,
	}
}

func (c *Consumer) Setup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.groupID, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info().
		Str("stream", c.stream).
		Str("group", c.groupID).
		Str("consumer", c.consumerName).
		Msg("Consumer started")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		msgs, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.groupID,
			Consumer: c.consumerName,
			Streams:  []string{c.stream, ">"},
			Count:    1,
			Block:    2 * time.Second,
		}).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}

			c.logger.Error().Err(err).Msg("Failed to read from stream")
			continue
		}

		for _, s := range msgs {
			for _, msg := range s.Messages {
				c.process(ctx, msg)
			}
		}
	}
}

func (c *Consumer) Stop() error {
	return c.client.Close()
}

// process runs one entry. Undecodable entries are acked and reported;
// cancelled requests stay pending so another consumer can claim them.
func (c *Consumer) process(ctx context.Context, msg redis.XMessage) {
	c.logger.Info().Str("id", msg.ID).Msg("Message received")

	payload, ok := msg.Values[PayloadField].(string)
	if !ok {
		c.logger.Error().Str("id", msg.ID).Msg("Missing payload field")
		c.publish(ctx, ResultMessage{MessageID: msg.ID, Error: "missing payload field", Kind: executor.KindInvalidRequest})
		c.ack(ctx, msg.ID)
		return
	}

	var req models.RewriteRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		c.logger.Error().Err(err).Str("id", msg.ID).Msg("Failed to decode message")
		c.publish(ctx, ResultMessage{MessageID: msg.ID, Error: err.Error(), Kind: executor.KindInvalidRequest})
		c.ack(ctx, msg.ID)
		return
	}

	envelope, err := c.rewriter.Rewrite(ctx, req)
	if err != nil {
		var pe *executor.PipelineError
		if errors.As(err, &pe) && pe.Kind == executor.KindCancelled {
			c.logger.Warn().Str("id", msg.ID).Msg("Rewrite cancelled, leaving message pending")
			return
		}

		result := ResultMessage{MessageID: msg.ID, RequestID: req.RequestID, Error: err.Error()}
		if pe != nil {
			result.RequestID = pe.RequestID
			result.Kind = pe.Kind
		}
		c.logger.Error().Err(err).Str("id", msg.ID).Msg("Rewrite failed")
		c.publish(ctx, result)
		c.ack(ctx, msg.ID)
		return
	}

	c.logger.Info().
		Str("id", msg.ID).
		Str("request_id", envelope.RequestID).
		Str("finding_type", string(envelope.DominantFindingType)).
		Bool("rewritten", envelope.Rewritten).
		Msg("Rewrite complete")

	c.publish(ctx, ResultMessage{MessageID: msg.ID, RequestID: envelope.RequestID, Envelope: envelope})
	c.ack(ctx, msg.ID)
}

func (c *Consumer) publish(ctx context.Context, result ResultMessage) {
	if c.resultStream == "" {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error().Err(err).Str("id", result.MessageID).Msg("Failed to encode result")
		return
	}

	if err := c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: c.resultStream,
		Values: map[string]any{PayloadField: string(data)},
	}).Err(); err != nil {
		c.logger.Error().Err(err).Str("id", result.MessageID).Msg("Failed to publish result")
	}
}

func (c *Consumer) ack(ctx context.Context, msgID string) {
	if err := c.client.XAck(ctx, c.stream, c.groupID, msgID).Err(); err != nil {
		c.logger.Error().Err(err).Str("id", msgID).Msg("Failed to ACK message")
	}
}
