package sharding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShardRouter_Stable(t *testing.T) {
	r := NewShardRouter(4)

	first := r.GetShard("cart-abc")
	assert.Equal(t, first, r.GetShard("cart-abc"), "same key maps to same shard")
}

func TestShardRouter_InRange(t *testing.T) {
	r := NewShardRouter(3)

	for _, key := range []string{"a", "b", "cart-1", "cart-2", "0d4f", ""} {
		shard := r.GetShard(key)
		assert.GreaterOrEqual(t, shard, 0)
		assert.Less(t, shard, 3)
	}
}
