package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/solforge-games/solforge-backend/internal/platform/logger"
)

// LevelUpEvent is the fan-out payload game servers subscribe to so they
// can toast the player the moment a level lands.
type LevelUpEvent struct {
	AssetID     string    `json:"asset_id"`
	Skill       string    `json:"skill"`
	OldLevel    int       `json:"old_level"`
	NewLevel    int       `json:"new_level"`
	CombatLevel int       `json:"combat_level"`
	TotalLevel  int       `json:"total_level"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type LevelUpBus interface {
	Publish(ctx context.Context, ev LevelUpEvent) error
	Close() error
}

type levelUpBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewLevelUpBus(log *logger.Logger) (LevelUpBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(os.Getenv("REDIS_LEVELUP_CHANNEL"))
	if ch == "" {
		ch = "levelups"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &levelUpBus{
		log:     log.With("client", "RedisLevelUpBus"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (b *levelUpBus) Publish(ctx context.Context, ev LevelUpEvent) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("level-up bus not initialized")
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *levelUpBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
