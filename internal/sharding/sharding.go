package sharding

import "hash/fnv"

type ShardRouter struct {
	ShardCount int // Number of shards
}

func NewShardRouter(shardCount int) *ShardRouter {
	return &ShardRouter{ShardCount: shardCount}
}

// GetShard maps a string key (e.g. a cart id) to a shard index.
func (r *ShardRouter) GetShard(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32()) % r.ShardCount
}
