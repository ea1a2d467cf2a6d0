package apiclient

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/expense-portal/internal/core/datamodel/user"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// UserFetcher is the single call CachedUsers decorates.
type UserFetcher interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
}

// CachedUsers memoizes user lookups for ttl. Concurrent misses for the same
// id share one upstream call; failures are never cached.
type CachedUsers struct {
	next   UserFetcher
	cache  *cache.Cache
	group  singleflight.Group
	logger *slog.Logger
}

func NewCachedUsers(next UserFetcher, ttl time.Duration, logger *slog.Logger) *CachedUsers {
	return &CachedUsers{
		next:   next,
		cache:  cache.New(ttl, 2*ttl),
		logger: logger,
	}
}

func (c *CachedUsers) GetUser(ctx context.Context, id string) (*user.User, error) {
	if cached, ok := c.cache.Get(id); ok {
		u := *cached.(*user.User)
		return &u, nil
	}

	v, err, shared := c.group.Do(id, func() (interface{}, error) {
		u, err := c.next.GetUser(ctx, id)
		if err != nil {
			return nil, err
		}
		c.cache.SetDefault(id, u)
		return u, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("user lookup shared", "user_id", id)
	}

	u := *v.(*user.User)
	return &u, nil
}

// CachedClient is a Client whose user lookups go through CachedUsers.
type CachedClient struct {
	*Client
	users *CachedUsers
}

// WithUserCache wraps client; a non-positive ttl returns a cache-less wrapper.
func WithUserCache(client *Client, ttl time.Duration) *CachedClient {
	cc := &CachedClient{Client: client}
	if ttl > 0 {
		cc.users = NewCachedUsers(client, ttl, client.logger)
	}
	return cc
}

func (c *CachedClient) GetUser(ctx context.Context, id string) (*user.User, error) {
	if c.users == nil {
		return c.Client.GetUser(ctx, id)
	}
	return c.users.GetUser(ctx, id)
}
