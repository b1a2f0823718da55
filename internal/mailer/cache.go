package mailer

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/unclebandit/campaign-mailer/internal/model"
)

// CachedFactory reuses transports per configuration. The key includes
// updated_at, so editing a configuration yields a new transport on the
// next send.
type CachedFactory struct {
	next  Factory
	cache *gocache.Cache
}

func NewCachedFactory(next Factory, ttl time.Duration) *CachedFactory {
	return &CachedFactory{next: next, cache: gocache.New(ttl, time.Minute)}
}

func cacheKey(cfg *model.EmailConfig) string {
	return fmt.Sprintf("%s@%d", cfg.ID, cfg.UpdatedAt.UnixNano())
}

func (f *CachedFactory) Transport(cfg *model.EmailConfig) (Transport, error) {
	key := cacheKey(cfg)
	if v, ok := f.cache.Get(key); ok {
		if t, ok := v.(Transport); ok {
			return t, nil
		}
	}
	t, err := f.next.Transport(cfg)
	if err != nil {
		return nil, err
	}
	f.cache.SetDefault(key, t)
	return t, nil
}

var _ Factory = (*CachedFactory)(nil)
