package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/dailyskills/marketplace/internal/core/domain"
)

const changeBuffer = 64

// ChangeFeed carries row-change notifications over Redis pub/sub.
// Channel format: changes:<table>
type ChangeFeed struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewChangeFeed(client *redis.Client, log zerolog.Logger) *ChangeFeed {
	return &ChangeFeed{client: client, log: log.With().Str("component", "change_feed").Logger()}
}

// Publish announces change to every subscriber of its table.
func (f *ChangeFeed) Publish(ctx context.Context, change domain.Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("encode change: %w", err)
	}
	if err := f.client.Publish(ctx, channel(change.Table), payload).Err(); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

// Subscribe returns changes for table until ctx is cancelled, then closes
// the channel. The subscription is active when Subscribe returns.
func (f *ChangeFeed) Subscribe(ctx context.Context, table string) (<-chan domain.Change, error) {
	sub := f.client.Subscribe(ctx, channel(table))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", table, err)
	}

	out := make(chan domain.Change, changeBuffer)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var change domain.Change
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					f.log.Warn().Err(err).Str("channel", msg.Channel).Msg("dropping malformed change")
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func channel(table string) string {
	return "changes:" + table
}
