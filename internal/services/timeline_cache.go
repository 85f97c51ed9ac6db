package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/classtrack/classtrack-backend/internal/logger"
	"github.com/classtrack/classtrack-backend/internal/utils"
)

// TimelineCache keeps a short-lived per-user copy of the partitioned
// timeline. It is strictly an accelerator: every failure is logged and
// treated as a miss, and writers invalidate on any mutation that can move an
// assignment between buckets (due-date choice, completion, course follow).
type TimelineCache interface {
	Get(ctx context.Context, userID uuid.UUID, day string) (*Timeline, bool)
	Set(ctx context.Context, userID uuid.UUID, day string, timeline *Timeline)
	Invalidate(ctx context.Context, userID uuid.UUID)
}

type timelineCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

type cachedTimeline struct {
	Day      string   `json:"day"`
	Timeline Timeline `json:"timeline"`
}

func NewTimelineCache(log *logger.Logger) (TimelineCache, error) {
	addr := strings.TrimSpace(utils.GetEnv("REDIS_ADDR", "", log))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ttlSeconds := utils.GetEnvAsInt("TIMELINE_CACHE_TTL_SECONDS", 60, log)

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

	return &timelineCache{
		log: log.With("service", "TimelineCache"),
		rdb: rdb,
		ttl: time.Duration(ttlSeconds) * time.Second,
	}, nil
}

func timelineCacheKey(userID uuid.UUID) string {
	return "timeline:" + userID.String()
}

func (c *timelineCache) Get(ctx context.Context, userID uuid.UUID, day string) (*Timeline, bool) {
	raw, err := c.rdb.Get(ctx, timelineCacheKey(userID)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("Timeline cache read failed", "error", err, "user_id", userID)
		}
		return nil, false
	}
	var cached cachedTimeline
	if err := json.Unmarshal(raw, &cached); err != nil {
		c.log.Warn("Timeline cache entry corrupt, dropping", "error", err, "user_id", userID)
		c.Invalidate(ctx, userID)
		return nil, false
	}
	// A cached partition from yesterday is stale even inside the TTL window;
	// the past/current boundary moved.
	if cached.Day != day {
		return nil, false
	}
	return &cached.Timeline, true
}

func (c *timelineCache) Set(ctx context.Context, userID uuid.UUID, day string, timeline *Timeline) {
	if timeline == nil {
		return
	}
	raw, err := json.Marshal(cachedTimeline{Day: day, Timeline: *timeline})
	if err != nil {
		c.log.Warn("Timeline cache marshal failed", "error", err, "user_id", userID)
		return
	}
	if err := c.rdb.Set(ctx, timelineCacheKey(userID), raw, c.ttl).Err(); err != nil {
		c.log.Warn("Timeline cache write failed", "error", err, "user_id", userID)
	}
}

func (c *timelineCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if err := c.rdb.Del(ctx, timelineCacheKey(userID)).Err(); err != nil {
		c.log.Warn("Timeline cache invalidate failed", "error", err, "user_id", userID)
	}
}
