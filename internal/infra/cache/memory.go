package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"

	appscans "github.com/bryanwahyu/leakbridge/internal/application/scans"
)

// DefaultCapacity bounds the number of results the server keeps.
const DefaultCapacity = 512

// Memory is a ResultStore that forgets results after a TTL. Everything
// stored is masked first.
type Memory struct {
	items *ttlcache.Cache[string, *appscans.Result]

	mu   sync.Mutex
	last string
}

var _ appscans.ResultStore = (*Memory)(nil)

func NewMemory(ttl time.Duration) *Memory {
	c := ttlcache.New[string, *appscans.Result](
		ttlcache.WithTTL[string, *appscans.Result](ttl),
		ttlcache.WithCapacity[string, *appscans.Result](DefaultCapacity),
		ttlcache.WithDisableTouchOnHit[string, *appscans.Result](),
	)
	return &Memory{items: c}
}

// Start runs expiry cleanup until Stop is called.
func (m *Memory) Start() { go m.items.Start() }

func (m *Memory) Stop() { m.items.Stop() }

func (m *Memory) Put(_ context.Context, r *appscans.Result) error {
	m.items.Set(r.ID, r.Masked(), ttlcache.DefaultTTL)
	m.mu.Lock()
	m.last = r.ID
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*appscans.Result, error) {
	item := m.items.Get(id)
	if item == nil || item.IsExpired() {
		return nil, appscans.ErrNoResult
	}
	return item.Value(), nil
}

func (m *Memory) Last(ctx context.Context) (*appscans.Result, error) {
	m.mu.Lock()
	id := m.last
	m.mu.Unlock()
	if id == "" {
		return nil, appscans.ErrNoResult
	}
	return m.Get(ctx, id)
}
