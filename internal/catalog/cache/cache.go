// Package cache is a best-effort redis read-through cache for latest
// template versions. Cache failures degrade to store reads; they are never
// surfaced to callers.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"vigil/internal/catalog/models"
	id "vigil/pkg/domain"
)

// DefaultTTL bounds how stale a resolved template snapshot may be.
const DefaultTTL = 5 * time.Minute

type TemplateCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func New(client *redis.Client, ttl time.Duration, logger *slog.Logger) *TemplateCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TemplateCache{client: client, ttl: ttl, logger: logger}
}

func templateKey(templateID id.TemplateID) string {
	return "catalog:template:latest:" + templateID.String()
}

func (c *TemplateCache) GetLatestTemplateVersion(ctx context.Context, templateID id.TemplateID) (*models.TemplateVersion, bool) {
	payload, err := c.client.Get(ctx, templateKey(templateID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.DebugContext(ctx, "template cache read failed", "template_id", templateID, "error", err)
		}
		return nil, false
	}

	var version models.TemplateVersion
	if err := json.Unmarshal(payload, &version); err != nil {
		// Corrupt entry: drop it and fall back to the store.
		c.client.Del(ctx, templateKey(templateID))
		return nil, false
	}
	return &version, true
}

func (c *TemplateCache) SetLatestTemplateVersion(ctx context.Context, version *models.TemplateVersion) {
	payload, err := json.Marshal(version)
	if err != nil {
		c.logger.DebugContext(ctx, "template cache marshal failed", "template_id", version.TemplateID, "error", err)
		return
	}
	if err := c.client.Set(ctx, templateKey(version.TemplateID), payload, c.ttl).Err(); err != nil {
		c.logger.DebugContext(ctx, "template cache write failed", "template_id", version.TemplateID, "error", err)
	}
}

func (c *TemplateCache) InvalidateTemplate(ctx context.Context, templateID id.TemplateID) {
	if err := c.client.Del(ctx, templateKey(templateID)).Err(); err != nil {
		c.logger.DebugContext(ctx, "template cache invalidation failed", "template_id", templateID, "error", err)
	}
}
