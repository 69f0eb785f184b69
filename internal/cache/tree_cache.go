// Package cache keeps rendered project trees so listing does not rebuild the
// forest on every request. Entries are best effort: a miss or a backend error
// falls back to the database.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fabtrack/internal/domain/projects"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type TreeCache interface {
	Get(ctx context.Context, workspaceID string, depth int) ([]projects.Node, bool)
	Set(ctx context.Context, workspaceID string, depth int, nodes []projects.Node)
	Invalidate(ctx context.Context, workspaceIDs ...string)
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string, int) ([]projects.Node, bool) { return nil, false }
func (Noop) Set(context.Context, string, int, []projects.Node) {}
func (Noop) Invalidate(context.Context, ...string) {}

// Redis stores one hash per workspace, one field per traversal depth, so a
// single DEL drops every cached depth of that workspace.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(url string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Redis{client: redis.NewClient(opts), ttl: ttl}, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func treeKey(workspaceID string) string {
	return "fabtrack:tree:" + workspaceID
}

func (r *Redis) Get(ctx context.Context, workspaceID string, depth int) ([]projects.Node, bool) {
	raw, err := r.client.HGet(ctx, treeKey(workspaceID), fmt.Sprint(depth)).Bytes()
	if err != nil {
		return nil, false
	}
	var nodes []projects.Node
	if err := json.Unmarshal(raw, &nodes); err != nil {
		return nil, false
	}
	return nodes, true
}

func (r *Redis) Set(ctx context.Context, workspaceID string, depth int, nodes []projects.Node) {
	raw, err := json.Marshal(nodes)
	if err != nil {
		return
	}
	key := treeKey(workspaceID)
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, fmt.Sprint(depth), raw)
	pipe.Expire(ctx, key, r.ttl)
	_, _ = pipe.Exec(ctx)
}

func (r *Redis) Invalidate(ctx context.Context, workspaceIDs ...string) {
	if len(workspaceIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(workspaceIDs))
	for _, id := range workspaceIDs {
		keys = append(keys, treeKey(id))
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		log.Ctx(ctx).Warn().Err(err).Strs("workspaces", workspaceIDs).Msg("tree cache invalidation failed")
	}
}
