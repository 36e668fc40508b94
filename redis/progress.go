// Package redis stores campaign progress in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/revise"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by ProgressService.
const DefaultPrefix = "revise:"

// Open connects to the server at url, a redis:// URL, and verifies the
// connection.
func Open(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, revise.Errorf(revise.EINVALID, "invalid redis URL: %v", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// Compile-time interface verification.
var _ revise.ProgressService = (*ProgressService)(nil)

// ProgressService implements revise.ProgressService using Redis.
// Each campaign is a JSON string key; a sorted set scored by update time
// indexes them.
type ProgressService struct {
	client *redis.Client
	prefix string
}

// NewProgressService creates a new ProgressService. An empty prefix uses
// DefaultPrefix.
func NewProgressService(client *redis.Client, prefix string) *ProgressService {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &ProgressService{client: client, prefix: prefix}
}

func (s *ProgressService) key(campaignID string) string {
	return s.prefix + "campaign:" + campaignID
}

func (s *ProgressService) indexKey() string {
	return s.prefix + "campaigns"
}

// FindProgress retrieves a campaign by ID.
func (s *ProgressService) FindProgress(ctx context.Context, campaignID string) (*revise.BatchProgress, error) {
	data, err := s.client.Get(ctx, s.key(campaignID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, revise.Errorf(revise.ENOTFOUND, "campaign not found")
	}
	if err != nil {
		return nil, err
	}
	return decodeProgress(data)
}

// FindProgresses retrieves campaigns, most recently updated first.
// Index entries whose campaign key has disappeared are skipped.
func (s *ProgressService) FindProgresses(ctx context.Context, filter revise.ProgressFilter) ([]*revise.BatchProgress, error) {
	start := int64(filter.Offset)
	stop := int64(-1)
	if filter.Limit > 0 {
		stop = start + int64(filter.Limit) - 1
	}

	ids, err := s.client.ZRevRange(ctx, s.indexKey(), start, stop).Result()
	if err != nil {
		return nil, err
	}
	progresses := make([]*revise.BatchProgress, 0, len(ids))
	if len(ids) == 0 {
		return progresses, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		p, err := decodeProgress([]byte(str))
		if err != nil {
			return nil, err
		}
		progresses = append(progresses, p)
	}
	return progresses, nil
}

// SaveProgress creates or replaces a campaign. UpdatedAt is set to the
// current time when zero.
func (s *ProgressService) SaveProgress(ctx context.Context, p *revise.BatchProgress) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}

	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(p.CampaignID), data, 0)
		pipe.ZAdd(ctx, s.indexKey(), redis.Z{
			Score:  float64(p.UpdatedAt.UnixMilli()),
			Member: p.CampaignID,
		})
		return nil
	})
	return err
}

// DeleteProgress removes a campaign.
func (s *ProgressService) DeleteProgress(ctx context.Context, campaignID string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.key(campaignID))
		pipe.ZRem(ctx, s.indexKey(), campaignID)
		return nil
	})
	if err != nil {
		return err
	}
	if del.Val() == 0 {
		return revise.Errorf(revise.ENOTFOUND, "campaign not found")
	}
	return nil
}

func decodeProgress(data []byte) (*revise.BatchProgress, error) {
	var p revise.BatchProgress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode campaign: %w", err)
	}
	return &p, nil
}
