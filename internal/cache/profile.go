// Package cache keeps the profile set in redis so the bridge does not hit
// postgres for display data on every change event. Profiles change rarely
// and are read-only to the core, so a short TTL is enough.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"team-scheduler/internal/model"
)

const (
	profilesKey = "profiles:all"
	profilesTTL = time.Minute
)

// ProfileCache wraps a profile reader with a redis layer. A nil cache (no
// redis configured or unreachable) falls straight through to the source.
type ProfileCache struct {
	rdb *redis.Client
}

// Connect returns nil when url is empty or redis does not answer; callers
// run without caching in that case.
func Connect(url string) *ProfileCache {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("cache: bad redis url, running without cache: %v", err)
		return nil
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Printf("cache: redis not available, running without cache: %v", err)
		return nil
	}
	log.Println("connected to redis")
	return &ProfileCache{rdb: rdb}
}

type profileReader interface {
	Profiles(ctx context.Context) ([]model.Profile, error)
}

// Profiles returns the cached set when present, otherwise reads through
// and repopulates.
func (c *ProfileCache) Profiles(ctx context.Context, src profileReader) ([]model.Profile, error) {
	if c == nil {
		return src.Profiles(ctx)
	}

	if raw, err := c.rdb.Get(ctx, profilesKey).Bytes(); err == nil {
		var out []model.Profile
		if json.Unmarshal(raw, &out) == nil {
			return out, nil
		}
	}

	out, err := src.Profiles(ctx)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, profilesKey, raw, profilesTTL).Err(); err != nil {
			log.Printf("cache: set profiles: %v", err)
		}
	}
	return out, nil
}

// Invalidate drops the cached set; called after registration adds a profile.
func (c *ProfileCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.rdb.Del(ctx, profilesKey).Err(); err != nil {
		log.Printf("cache: invalidate: %v", err)
	}
}
