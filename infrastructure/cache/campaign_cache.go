package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"clipcast/domain/dto"
	"clipcast/domain/repository"
	"clipcast/infrastructure/logger"

	"github.com/redis/go-redis/v9"
)

const campaignKeyPrefix = "clipcast:campaign:"

// CampaignCache keeps campaign details in Redis as JSON.
// Cache failures are logged and treated as misses.
type CampaignCache struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewCampaignCache(redisClient *redis.Client, ttl time.Duration) repository.ICampaignCache {
	return &CampaignCache{redisClient: redisClient, ttl: ttl}
}

func campaignKey(id string) string { return campaignKeyPrefix + id }

func (c *CampaignCache) GetDetail(ctx context.Context, campaignID string) (*dto.CampaignDetail, bool) {
	if c.redisClient == nil {
		return nil, false
	}
	raw, err := c.redisClient.Get(ctx, campaignKey(campaignID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.GetLogger().WithField("error", err).WithField("campaignId", campaignID).Warn("Campaign cache read failed")
		}
		return nil, false
	}
	var detail dto.CampaignDetail
	if err := json.Unmarshal(raw, &detail); err != nil {
		logger.GetLogger().WithField("error", err).WithField("campaignId", campaignID).Warn("Dropping undecodable campaign cache entry")
		c.Invalidate(ctx, campaignID)
		return nil, false
	}
	return &detail, true
}

func (c *CampaignCache) SetDetail(ctx context.Context, detail *dto.CampaignDetail) {
	if c.redisClient == nil || detail == nil || detail.Campaign == nil {
		return
	}
	raw, err := json.Marshal(detail)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while encoding campaign detail")
		return
	}
	if err := c.redisClient.Set(ctx, campaignKey(detail.Campaign.ID), raw, c.ttl).Err(); err != nil {
		logger.GetLogger().WithField("error", err).WithField("campaignId", detail.Campaign.ID).Warn("Campaign cache write failed")
	}
}

func (c *CampaignCache) Invalidate(ctx context.Context, campaignIDs ...string) {
	if c.redisClient == nil || len(campaignIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(campaignIDs))
	for _, id := range campaignIDs {
		keys = append(keys, campaignKey(id))
	}
	if err := c.redisClient.Del(ctx, keys...).Err(); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Campaign cache invalidation failed")
	}
}

func (c *CampaignCache) Ping(ctx context.Context) error {
	if c.redisClient == nil {
		return errors.New("redis not configured")
	}
	return c.redisClient.Ping(ctx).Err()
}
