package cache

import (
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"
)

var DefaultNotFoundTTL = 1 * time.Hour

type Cache struct {
	NotFound NotFoundCache
}

func New() *Cache {
	notFoundCache := ccache.New(
		ccache.Configure[struct{}]().
			MaxSize(10000).
			GetsPerPromote(3).
			ItemsToPrune(100),
	)

	return &Cache{
		NotFound: NotFoundCache{
			c:   notFoundCache,
			mux: sync.Mutex{},
			ttl: DefaultNotFoundTTL,
		},
	}
}

// NotFoundCache remembers request URLs the API answered with 404 so the same
// resource is not requested again during a run.
type NotFoundCache struct {
	c   *ccache.Cache[struct{}]
	mux sync.Mutex
	ttl time.Duration
}

func (c *NotFoundCache) Mark(k string) {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.c.Set(k, struct{}{}, c.ttl)
}

func (c *NotFoundCache) Has(k string) bool {
	c.mux.Lock()
	defer c.mux.Unlock()
	item := c.c.Get(k)
	return nil != item && !item.Expired()
}

func (c *NotFoundCache) Len() int {
	return c.c.ItemCount()
}
