package config

import "fmt"

// CacheKeyStruct builds Redis key names. The prefix namespaces one install so
// several can share a Redis database.
type CacheKeyStruct struct {
	prefix string
}

func NewCacheKeyStruct(prefix string) *CacheKeyStruct {
	return &CacheKeyStruct{prefix: prefix}
}

// CheckpointKey returns the key of the single active-session checkpoint slot.
func (r *CacheKeyStruct) CheckpointKey() string {
	return fmt.Sprintf("%s:session:checkpoint", r.prefix)
}

// HistoryKey returns the key of the append-only history list.
func (r *CacheKeyStruct) HistoryKey() string {
	return fmt.Sprintf("%s:session:history", r.prefix)
}

var CacheKey = NewCacheKeyStruct("exstem-prep")
