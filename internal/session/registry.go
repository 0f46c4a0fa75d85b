package session

import (
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/ragvision/ragvision/internal/config"
	"github.com/ragvision/ragvision/internal/index"
	"github.com/ragvision/ragvision/internal/models"
)

// Registry maps session ids to live sessions. Entries expire after the
// configured idle TTL and are swept periodically, so the store cannot grow
// without bound across the process lifetime.
type Registry struct {
	cache    *gocache.Cache
	maxTurns int
}

// NewRegistry creates a registry with the given TTL/eviction settings.
func NewRegistry(cfg *config.SessionsConfig) *Registry {
	ttl := cfg.TTL()
	if ttl <= 0 {
		ttl = time.Hour
	}
	sweep := cfg.SweepInterval()
	if sweep <= 0 {
		sweep = 10 * time.Minute
	}
	c := gocache.New(ttl, sweep)
	// Expired and explicitly evicted sessions release their index resources.
	c.OnEvicted(func(_ string, x interface{}) {
		if idx := x.(*Session).Index(); idx != nil {
			_ = idx.Close()
		}
	})
	return &Registry{
		cache:    c,
		maxTurns: cfg.MaxHistoryTurns,
	}
}

// Session returns the session for id, creating it if absent. Idempotent per
// id: concurrent callers for the same id all receive the same session. Each
// call refreshes the session's idle expiry.
func (r *Registry) Session(id string) *Session {
	for {
		if x, ok := r.cache.Get(id); ok {
			s := x.(*Session)
			r.cache.SetDefault(id, s)
			return s
		}
		s := newSession(id, r.maxTurns)
		// Add is create-if-absent; on a lost race, loop and fetch the winner.
		if err := r.cache.Add(id, s, gocache.DefaultExpiration); err == nil {
			return s
		}
	}
}

// HasIndex reports whether id has a built document index. Does not create the session.
func (r *Registry) HasIndex(id string) bool {
	_, ok := r.Index(id)
	return ok
}

// Index returns the document index for id, if any. Does not create the session.
func (r *Registry) Index(id string) (*index.Index, bool) {
	x, ok := r.cache.Get(id)
	if !ok {
		return nil, false
	}
	idx := x.(*Session).Index()
	return idx, idx != nil
}

// SetIndex replaces the document index for id wholesale, creating the session
// if needed.
func (r *Registry) SetIndex(id string, idx *index.Index) {
	r.Session(id).SetIndex(idx)
}

// Evict removes the session for id, if present.
func (r *Registry) Evict(id string) {
	r.cache.Delete(id)
}

// Len returns the number of live sessions (including not-yet-swept expired entries).
func (r *Registry) Len() int {
	return r.cache.ItemCount()
}

// Sessions returns a point-in-time view of live sessions, ordered by id.
func (r *Registry) Sessions() []models.SessionInfo {
	items := r.cache.Items()
	infos := make([]models.SessionInfo, 0, len(items))
	for _, item := range items {
		s := item.Object.(*Session)
		info := models.SessionInfo{
			ID:        s.ID,
			Turns:     s.Turns(),
			CreatedAt: s.CreatedAt,
		}
		if idx := s.Index(); idx != nil {
			info.HasIndex = true
			info.Documents = idx.DocumentCount()
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Close evicts every session, releasing index resources through the eviction
// hook. The registry must not be used afterwards.
func (r *Registry) Close() {
	for id := range r.cache.Items() {
		r.cache.Delete(id)
	}
}
