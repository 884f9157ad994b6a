package queue

import (
	"context"

	"github.com/emrgen/headline/internal/compress"
	redis "github.com/redis/go-redis/v9"
)

var _ HeadlineQueue = (*Redis)(nil)

// Redis publishes changes on a redis pub/sub channel.
type Redis struct {
	client  *redis.Client
	channel string
	encoder compress.Compress
}

func NewRedis(addr, channel string, encoder compress.Compress) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "", // No password set
		DB:       0,  // Use default DB
		Protocol: 2,  // Connection protocol
	})

	return &Redis{client: client, channel: channel, encoder: encoder}
}

func (r *Redis) PublishChange(ctx context.Context, event *HeadlineEvent) error {
	payload, err := Encode(r.encoder, event)
	if err != nil {
		return err
	}

	return r.client.Publish(ctx, r.channel, payload).Err()
}

// Subscribe streams the changes published on the channel until ctx is done.
func (r *Redis) Subscribe(ctx context.Context) (<-chan *HeadlineEvent, error) {
	sub := r.client.Subscribe(ctx, r.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	events := make(chan *HeadlineEvent)
	go func() {
		defer close(events)
		defer sub.Close()

		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				event, err := Decode(r.encoder, []byte(msg.Payload))
				if err != nil {
					continue
				}
				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
