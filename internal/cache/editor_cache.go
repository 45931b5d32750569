package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"evalforge/internal/model"
)

// EditorCache persists open editor sessions in Redis
type EditorCache interface {
	Set(ctx context.Context, session *model.EditorSession) error
	Get(ctx context.Context, id string) (*model.EditorSession, error)
	Delete(ctx context.Context, session *model.EditorSession) error
	ListByHost(ctx context.Context, hostID string) ([]string, error)
}

type editorCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewEditorCache creates a new editor session cache; idle sessions expire after ttl
func NewEditorCache(client *redis.Client, ttl time.Duration) EditorCache {
	return &editorCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *editorCache) key(id string) string {
	return fmt.Sprintf("editor:%s", id)
}

func (c *editorCache) hostKey(hostID string) string {
	return fmt.Sprintf("editor:host:%s", hostID)
}

// Set stores the session and refreshes its expiry
func (c *editorCache) Set(ctx context.Context, session *model.EditorSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, c.key(session.ID), data, c.ttl)
	pipe.SAdd(ctx, c.hostKey(session.HostID), session.ID)
	pipe.Expire(ctx, c.hostKey(session.HostID), c.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// Get returns nil, nil for an unknown or expired session
func (c *editorCache) Get(ctx context.Context, id string) (*model.EditorSession, error) {
	data, err := c.client.Get(ctx, c.key(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session model.EditorSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *editorCache) Delete(ctx context.Context, session *model.EditorSession) error {
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, c.key(session.ID))
	pipe.SRem(ctx, c.hostKey(session.HostID), session.ID)
	_, err := pipe.Exec(ctx)
	return err
}

// ListByHost returns the ids of the host's sessions that have not expired yet
func (c *editorCache) ListByHost(ctx context.Context, hostID string) ([]string, error) {
	ids, err := c.client.SMembers(ctx, c.hostKey(hostID)).Result()
	if err != nil {
		return nil, err
	}

	live := make([]string, 0, len(ids))
	for _, id := range ids {
		n, err := c.client.Exists(ctx, c.key(id)).Result()
		if err != nil {
			return nil, err
		}
		if n > 0 {
			live = append(live, id)
			continue
		}
		c.client.SRem(ctx, c.hostKey(hostID), id)
	}
	return live, nil
}
