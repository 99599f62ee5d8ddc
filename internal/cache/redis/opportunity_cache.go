package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"solsniper/internal/domain"
)

const (
	// opportunitySetKey holds the latest full opportunity set as JSON.
	opportunitySetKey = "solsniper:opportunities"
	// opportunityChannel receives a pub/sub notification per detection cycle.
	opportunityChannel = "solsniper:opportunities:events"
	// opportunityTTL bounds staleness if the bot dies between cycles.
	opportunityTTL = 5 * time.Minute
)

// OpportunityCache implements domain.OpportunityPublisher on Redis. Each
// cycle's set overwrites the previous one under a fixed key, and subscribers
// on the pub/sub channel receive the same payload for push consumption.
type OpportunityCache struct {
	rdb *redis.Client
}

// NewOpportunityCache creates an OpportunityCache backed by the given Client.
func NewOpportunityCache(c *Client) *OpportunityCache {
	return &OpportunityCache{rdb: c.Underlying()}
}

// Publish stores the opportunity set and notifies subscribers. An empty set
// is published too: consumers must see opportunities disappear.
func (oc *OpportunityCache) Publish(ctx context.Context, opps []domain.TradeOpportunity) error {
	payload, err := json.Marshal(opps)
	if err != nil {
		return fmt.Errorf("redis: encode opportunities: %w", err)
	}

	if err := oc.rdb.Set(ctx, opportunitySetKey, payload, opportunityTTL).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", opportunitySetKey, err)
	}
	if err := oc.rdb.Publish(ctx, opportunityChannel, payload).Err(); err != nil {
		return fmt.Errorf("redis: publish %s: %w", opportunityChannel, err)
	}
	return nil
}

// Latest returns the most recently published opportunity set, or an empty
// slice when none has been published within the TTL.
func (oc *OpportunityCache) Latest(ctx context.Context) ([]domain.TradeOpportunity, error) {
	payload, err := oc.rdb.Get(ctx, opportunitySetKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis: get %s: %w", opportunitySetKey, err)
	}

	var opps []domain.TradeOpportunity
	if err := json.Unmarshal(payload, &opps); err != nil {
		return nil, fmt.Errorf("redis: decode opportunities: %w", err)
	}
	return opps, nil
}

// Subscribe returns a channel that emits each published opportunity set until
// the context is cancelled.
func (oc *OpportunityCache) Subscribe(ctx context.Context) (<-chan []domain.TradeOpportunity, error) {
	pubsub := oc.rdb.Subscribe(ctx, opportunityChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis: subscribe %s: %w", opportunityChannel, err)
	}

	out := make(chan []domain.TradeOpportunity, 16)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var opps []domain.TradeOpportunity
				if err := json.Unmarshal([]byte(msg.Payload), &opps); err != nil {
					continue
				}
				select {
				case out <- opps:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Compile-time interface check.
var _ domain.OpportunityPublisher = (*OpportunityCache)(nil)
