package cache

import (
	"context"
	"testing"
	"time"

	"fabtrack/internal/domain/projects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoop(t *testing.T) {
	var c TreeCache = Noop{}
	ctx := context.Background()
	c.Set(ctx, "ws", 2, []projects.Node{{Project: projects.Project{ID: "p"}}})
	_, ok := c.Get(ctx, "ws", 2)
	assert.False(t, ok)
	c.Invalidate(ctx, "ws")
}

func TestRedis_UnreachableServerIsAMiss(t *testing.T) {
	c, err := NewRedis("redis://127.0.0.1:1/0", time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.Error(t, c.Ping(ctx))
	c.Set(ctx, "ws", 2, nil)
	_, ok := c.Get(ctx, "ws", 2)
	assert.False(t, ok)
	c.Invalidate(ctx, "ws")
}

func TestNewRedis_RejectsBadURL(t *testing.T) {
	_, err := NewRedis("not a url", time.Minute)
	assert.Error(t, err)
}

func TestTreeKey(t *testing.T) {
	assert.Equal(t, "fabtrack:tree:abc", treeKey("abc"))
}
