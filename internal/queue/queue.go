package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/emrgen/headline/internal/compress"
	"github.com/google/uuid"
)

const (
	HeadlineCreated = "headline.created"
	HeadlineUpdated = "headline.updated"
	HeadlineDeleted = "headline.deleted"
)

// HeadlineEvent describes a committed headline change.
type HeadlineEvent struct {
	ID             uuid.UUID `json:"id"`
	Type           string    `json:"type"`
	HeadlineID     uint      `json:"headline_id"`
	ForwardRefIDs  []uint    `json:"forward_ref_ids"`
	BackwardRefIDs []uint    `json:"backward_ref_ids"`
	OccurredAt     time.Time `json:"occurred_at"`
}

func NewHeadlineEvent(kind string, headlineID uint, forward, backward []uint) *HeadlineEvent {
	if forward == nil {
		forward = make([]uint, 0)
	}
	if backward == nil {
		backward = make([]uint, 0)
	}

	return &HeadlineEvent{
		ID:             uuid.New(),
		Type:           kind,
		HeadlineID:     headlineID,
		ForwardRefIDs:  forward,
		BackwardRefIDs: backward,
		OccurredAt:     time.Now().UTC(),
	}
}

type HeadlineQueue interface {
	// PublishChange appends a headline change to the queue.
	PublishChange(ctx context.Context, event *HeadlineEvent) error
	// Close flushes pending changes and releases the connection.
	Close() error
}

// Options selects and configures a queue backend.
type Options struct {
	Driver      string
	Topic       string
	Compression string
	RedisAddr   string
	KafkaBroker string
}

// New returns the queue backend named by opts.Driver.
func New(opts Options) (HeadlineQueue, error) {
	encoder, err := compress.New(opts.Compression)
	if err != nil {
		return nil, err
	}

	switch opts.Driver {
	case "", "none":
		return NewNop(), nil
	case "redis":
		return NewRedis(opts.RedisAddr, opts.Topic, encoder), nil
	case "kafka":
		return NewKafka(opts.KafkaBroker, opts.Topic, encoder)
	default:
		return nil, fmt.Errorf("unknown queue driver: %q", opts.Driver)
	}
}

// Encode serializes an event and compresses it with encoder.
func Encode(encoder compress.Compress, event *HeadlineEvent) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	return encoder.Encode(data)
}

// Decode reverses Encode.
func Decode(encoder compress.Compress, data []byte) (*HeadlineEvent, error) {
	raw, err := encoder.Decode(data)
	if err != nil {
		return nil, err
	}

	event := &HeadlineEvent{}
	if err = json.Unmarshal(raw, event); err != nil {
		return nil, err
	}

	return event, nil
}
