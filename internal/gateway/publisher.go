package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"tradesimv1/internal/execution"
	"tradesimv1/internal/portfolio"
)

// Redis PubSub channels for downstream consumers (dashboards, recorders).
const (
	channelFill      = "pub:fill"
	channelLTPPrefix = "pub:ltp:"
)

// RedisPublisher mirrors simulator events onto Redis PubSub. Publishes are
// best-effort: a Redis outage is logged and never fails a trade.
type RedisPublisher struct {
	rdb *goredis.Client
	log *slog.Logger
}

// NewRedisPublisher wraps a connected Redis client.
func NewRedisPublisher(rdb *goredis.Client, log *slog.Logger) *RedisPublisher {
	if log == nil {
		log = slog.Default()
	}
	return &RedisPublisher{rdb: rdb, log: log}
}

// PublishFill publishes a committed trade on pub:fill.
func (p *RedisPublisher) PublishFill(tx portfolio.Transaction) {
	payload, err := json.Marshal(tx)
	if err != nil {
		return
	}
	p.publish(channelFill, payload)
}

// PublishLTP publishes a price tick on pub:ltp:<symbol>.
func (p *RedisPublisher) PublishLTP(symbol string, price float64) {
	payload, _ := json.Marshal(map[string]any{
		"symbol": symbol,
		"ltp":    price,
		"ts":     time.Now().UnixMilli(),
	})
	p.publish(channelLTPPrefix+symbol, payload)
}

func (p *RedisPublisher) publish(channel string, payload []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		p.log.Warn("redis publish failed",
			slog.String("channel", channel), slog.String("err", err.Error()))
	}
}

// FanoutSink delivers each event to every underlying sink.
type FanoutSink []execution.EventSink

func (f FanoutSink) PublishFill(tx portfolio.Transaction) {
	for _, s := range f {
		s.PublishFill(tx)
	}
}

func (f FanoutSink) PublishLTP(symbol string, price float64) {
	for _, s := range f {
		s.PublishLTP(symbol, price)
	}
}
