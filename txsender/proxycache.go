package txsender

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mantlenetworkio/l2-tx-admission/rolluptypes"
)

// defaultProxyCacheSize bounds the proxy forwarding cache so a caller that
// never calls forget_tx (e.g. because the upstream connection died after
// submit but before the follow-up evict) cannot leak memory unbounded.
const defaultProxyCacheSize = 4096

// proxyTxCache is the fire-and-forget (hash -> tx) cache submit_tx uses
// between forwarding a transaction upstream and evicting it once the
// upstream call returns. Modeled on the teacher's FIFOTxSet
// (preconf/fifo_tx_set.go) for the add/contains/remove shape, but backed
// by a real bounded LRU rather than an unbounded map+slice, since unlike
// FIFOTxSet this cache has no reconciliation loop to clean it up.
type proxyTxCache struct {
	cache *lru.Cache[common.Hash, *rolluptypes.Transaction]
}

func newProxyTxCache() *proxyTxCache {
	cache, err := lru.New[common.Hash, *rolluptypes.Transaction](defaultProxyCacheSize)
	if err != nil {
		// Only returns an error for a non-positive size, which is a
		// programming error, not a runtime condition.
		panic(err)
	}
	return &proxyTxCache{cache: cache}
}

func (c *proxyTxCache) add(hash common.Hash, tx *rolluptypes.Transaction) {
	if evicted := c.cache.Add(hash, tx); evicted {
		log.Debug("proxy tx cache evicted an entry under pressure")
	}
}

func (c *proxyTxCache) forget(hash common.Hash) {
	c.cache.Remove(hash)
}

func (c *proxyTxCache) get(hash common.Hash) (*rolluptypes.Transaction, bool) {
	return c.cache.Get(hash)
}
