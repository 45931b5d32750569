package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"evalforge/internal/model"
)

// ReportCache holds computed template reports until a new response arrives
type ReportCache interface {
	Get(ctx context.Context, templateID string) (*model.TemplateReport, error)
	Set(ctx context.Context, report *model.TemplateReport) error
	Invalidate(ctx context.Context, templateID string) error
}

type reportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache creates a new report cache
func NewReportCache(client *redis.Client) ReportCache {
	return &reportCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (c *reportCache) key(templateID string) string {
	return fmt.Sprintf("template:%s:report", templateID)
}

func (c *reportCache) Get(ctx context.Context, templateID string) (*model.TemplateReport, error) {
	data, err := c.client.Get(ctx, c.key(templateID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var report model.TemplateReport
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *reportCache) Set(ctx context.Context, report *model.TemplateReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(report.TemplateID), data, c.ttl).Err()
}

func (c *reportCache) Invalidate(ctx context.Context, templateID string) error {
	return c.client.Del(ctx, c.key(templateID)).Err()
}
