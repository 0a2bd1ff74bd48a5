package vkcore

import "github.com/NOT-REAL-GAMES/vkcore/internal/vk"

// CreateTimestampQueryPool creates a pool of GPU timestamp queries,
// for use with Recorder.Timestamp. Ownership is the caller's: pair
// every CreateTimestampQueryPool with a DestroyQueryPool once the GPU
// work that wrote the last timestamp in it has retired.
func (ctx *Context) CreateTimestampQueryPool(queryCount uint32) (vk.QueryPool, error) {
	pool, err := ctx.device.CreateQueryPool(&vk.QueryPoolCreateInfo{
		QueryType:  vk.QUERY_TYPE_TIMESTAMP,
		QueryCount: queryCount,
	})
	if err != nil {
		ctx.log.Error("CreateQueryPool failed", "err", err)
		return vk.QueryPool{}, err
	}
	return pool, nil
}

// DestroyQueryPool frees a query pool created by CreateTimestampQueryPool.
func (ctx *Context) DestroyQueryPool(pool vk.QueryPool) {
	ctx.device.DestroyQueryPool(pool)
}
