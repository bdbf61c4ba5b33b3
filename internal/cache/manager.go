// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"medaudio/internal/models"
	"medaudio/internal/taxonomy"
)

// Cache names as reported by Stats and Health.
const (
	NameList   = "list"
	NameTree   = "tree"
	NameStats  = "stats"
	NameSingle = "single"
)

const statsKey = "all"

// Operation names a write that requires cache invalidation.
type Operation string

const (
	OpCreate  Operation = "create"
	OpUpdate  Operation = "update"
	OpDelete  Operation = "delete"
	OpReorder Operation = "reorder"
)

// Loader reads categories from the source of truth. The category store
// satisfies it.
type Loader interface {
	List(ctx context.Context, p models.ListParams) ([]models.Category, error)
	FindByID(ctx context.Context, id string) (*models.Category, error)
	Stats(ctx context.Context) (*models.CategoryStats, error)
}

// Recorder receives cache events for metrics.
type Recorder interface {
	CacheHit(cache string)
	CacheMiss(cache string)
	CacheInvalidated(op string)
}

// Publisher forwards invalidations to other instances.
type Publisher interface {
	Publish(ctx context.Context, op Operation, id string) error
}

type nopRecorder struct{}

func (nopRecorder) CacheHit(string)         {}
func (nopRecorder) CacheMiss(string)        {}
func (nopRecorder) CacheInvalidated(string) {}

// Limits sets the capacity and TTL of one cache.
type Limits struct {
	Capacity int           `koanf:"capacity"`
	TTL      time.Duration `koanf:"ttl"`
}

// Config sizes the four caches. StatsDelay is how long a create waits
// before dropping the stats cache; zero clears it immediately.
type Config struct {
	List       Limits        `koanf:"list"`
	Tree       Limits        `koanf:"tree"`
	Stats      Limits        `koanf:"stats"`
	Single     Limits        `koanf:"single"`
	StatsDelay time.Duration `koanf:"stats_delay"`
}

// DefaultConfig returns the production cache sizes.
func DefaultConfig() Config {
	return Config{
		List:       Limits{Capacity: 100, TTL: 5 * time.Minute},
		Tree:       Limits{Capacity: 10, TTL: 5 * time.Minute},
		Stats:      Limits{Capacity: 5, TTL: 10 * time.Minute},
		Single:     Limits{Capacity: 500, TTL: 10 * time.Minute},
		StatsDelay: time.Second,
	}
}

// Option configures a Manager.
type Option func(*Manager)

// WithRecorder reports hits, misses and invalidations to r.
func WithRecorder(r Recorder) Option {
	return func(m *Manager) { m.rec = r }
}

// WithPublisher forwards every invalidation to p after applying it locally.
func WithPublisher(p Publisher) Option {
	return func(m *Manager) { m.pub = p }
}

// WithLRUOptions passes options such as WithClock to every cache.
func WithLRUOptions(opts ...LRUOption) Option {
	return func(m *Manager) { m.lruOpts = append(m.lruOpts, opts...) }
}

// Manager is a read-through cache in front of the category loader.
//
// Values handed out by the Manager are shared with the cache and must not
// be modified by callers.
type Manager struct {
	loader  Loader
	rec     Recorder
	pub     Publisher
	lruOpts []LRUOption
	delay   time.Duration

	list   *LRU[[]models.Category]
	tree   *LRU[[]models.TreeNode]
	stats  *LRU[models.CategoryStats]
	single *LRU[models.Category]

	group singleflight.Group

	mu         sync.Mutex
	statsTimer *time.Timer
}

// NewManager creates a Manager over loader.
func NewManager(loader Loader, cfg Config, opts ...Option) *Manager {
	m := &Manager{
		loader: loader,
		rec:    nopRecorder{},
		delay:  cfg.StatsDelay,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.list = NewLRU[[]models.Category](cfg.List.Capacity, cfg.List.TTL, m.lruOpts...)
	m.tree = NewLRU[[]models.TreeNode](cfg.Tree.Capacity, cfg.Tree.TTL, m.lruOpts...)
	m.stats = NewLRU[models.CategoryStats](cfg.Stats.Capacity, cfg.Stats.TTL, m.lruOpts...)
	m.single = NewLRU[models.Category](cfg.Single.Capacity, cfg.Single.TTL, m.lruOpts...)
	return m
}

// readThrough returns the cached value for key or loads and stores it.
// Concurrent misses for the same key share one load.
func readThrough[V any](ctx context.Context, m *Manager, name string, c *LRU[V], key string, load func(context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		m.rec.CacheHit(name)
		return v, nil
	}
	m.rec.CacheMiss(name)

	res, err, _ := m.group.Do(name+"/"+key, func() (any, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// Categories returns the category list for p.
func (m *Manager) Categories(ctx context.Context, p models.ListParams) ([]models.Category, error) {
	key := Key(p.CacheParams())
	return readThrough(ctx, m, NameList, m.list, key, func(ctx context.Context) ([]models.Category, error) {
		cats, err := m.loader.List(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("load categories: %w", err)
		}
		if cats == nil {
			cats = []models.Category{}
		}
		return cats, nil
	})
}

// Tree returns the active category tree.
func (m *Manager) Tree(ctx context.Context, includeCount bool) ([]models.TreeNode, error) {
	key := Key(map[string]string{"includeCount": strconv.FormatBool(includeCount)})
	return readThrough(ctx, m, NameTree, m.tree, key, func(ctx context.Context) ([]models.TreeNode, error) {
		cats, err := m.loader.List(ctx, models.ListParams{IncludeCount: includeCount})
		if err != nil {
			return nil, fmt.Errorf("load category tree: %w", err)
		}
		return taxonomy.BuildTree(cats), nil
	})
}

// Stats returns the aggregate category statistics.
func (m *Manager) Stats(ctx context.Context) (models.CategoryStats, error) {
	return readThrough(ctx, m, NameStats, m.stats, statsKey, func(ctx context.Context) (models.CategoryStats, error) {
		s, err := m.loader.Stats(ctx)
		if err != nil {
			return models.CategoryStats{}, fmt.Errorf("load category stats: %w", err)
		}
		if s == nil {
			return models.CategoryStats{}, nil
		}
		return *s, nil
	})
}

// errNotFound is used internally so a missing category is not cached.
var errNotFound = errors.New("category not found")

// Category returns a single category, or nil if it does not exist.
// Missing ids are not cached.
func (m *Manager) Category(ctx context.Context, id string) (*models.Category, error) {
	c, err := readThrough(ctx, m, NameSingle, m.single, id, func(ctx context.Context) (models.Category, error) {
		c, err := m.loader.FindByID(ctx, id)
		if err != nil {
			return models.Category{}, fmt.Errorf("load category %s: %w", id, err)
		}
		if c == nil {
			return models.Category{}, errNotFound
		}
		return *c, nil
	})
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Invalidate drops the caches affected by op and forwards the event to the
// publisher, if one is configured. Publish failures are logged.
func (m *Manager) Invalidate(ctx context.Context, op Operation, id string) {
	m.Apply(op, id)
	if m.pub == nil {
		return
	}
	if err := m.pub.Publish(ctx, op, id); err != nil {
		slog.Warn("publish cache invalidation", "op", op, "id", id, "error", err)
	}
}

// Apply drops the caches affected by op without publishing. It is called
// for events received from other instances.
//
//	create   list, tree; stats after the configured delay
//	update   list, tree, the single entry for id
//	delete   everything
//	reorder  list, tree
//
// Unknown operations clear everything.
func (m *Manager) Apply(op Operation, id string) {
	m.rec.CacheInvalidated(string(op))

	switch op {
	case OpCreate:
		m.list.Clear()
		m.tree.Clear()
		m.clearStatsLater()
	case OpUpdate:
		m.list.Clear()
		m.tree.Clear()
		if id != "" {
			m.single.Delete(id)
		}
	case OpReorder:
		m.list.Clear()
		m.tree.Clear()
	default:
		m.Clear()
	}
	slog.Debug("category cache invalidated", "op", op, "id", id)
}

func (m *Manager) clearStatsLater() {
	if m.delay <= 0 {
		m.stats.Clear()
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statsTimer != nil {
		m.statsTimer.Stop()
	}
	m.statsTimer = time.AfterFunc(m.delay, m.stats.Clear)
}

// Clear drops every cached entry.
func (m *Manager) Clear() {
	m.list.Clear()
	m.tree.Clear()
	m.stats.Clear()
	m.single.Clear()
}

// Close stops a pending delayed stats invalidation.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statsTimer != nil {
		m.statsTimer.Stop()
		m.statsTimer = nil
	}
}

// Warmup loads the list and tree (both with audio counts) and the stats.
func (m *Manager) Warmup(ctx context.Context) error {
	start := time.Now()
	if _, err := m.Categories(ctx, models.ListParams{IncludeCount: true}); err != nil {
		return fmt.Errorf("warm category list: %w", err)
	}
	if _, err := m.Tree(ctx, true); err != nil {
		return fmt.Errorf("warm category tree: %w", err)
	}
	if _, err := m.Stats(ctx); err != nil {
		return fmt.Errorf("warm category stats: %w", err)
	}
	slog.Info("category cache warmed", "duration", time.Since(start))
	return nil
}

// CleanupExpired drops expired entries from every cache.
func (m *Manager) CleanupExpired() int {
	return m.list.CleanupExpired() +
		m.tree.CleanupExpired() +
		m.stats.CleanupExpired() +
		m.single.CleanupExpired()
}

// CacheStats returns per-cache statistics in a fixed order.
func (m *Manager) CacheStats() []Stats {
	named := func(name string, s Stats) Stats {
		s.Name = name
		return s
	}
	return []Stats{
		named(NameList, m.list.Stats()),
		named(NameTree, m.tree.Stats()),
		named(NameStats, m.stats.Stats()),
		named(NameSingle, m.single.Stats()),
	}
}

// utilizationLimit is the fill ratio above which a cache is reported.
const utilizationLimit = 0.9

// Health is the result of a cache health check.
type Health struct {
	IsHealthy       bool     `json:"isHealthy"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
	Caches          []Stats  `json:"caches"`
}

// Health reports caches that are nearly full and flags a fully empty cache
// set, which usually means warmup did not run.
func (m *Manager) Health() Health {
	h := Health{
		Issues:          []string{},
		Recommendations: []string{},
		Caches:          m.CacheStats(),
	}

	empty := true
	for _, s := range h.Caches {
		if s.Size > 0 {
			empty = false
		}
		if s.Utilization() > utilizationLimit {
			h.Issues = append(h.Issues, fmt.Sprintf("%s cache is %.0f%% full (%d/%d)", s.Name, s.Utilization()*100, s.Size, s.Capacity))
			h.Recommendations = append(h.Recommendations, fmt.Sprintf("increase the %s cache capacity", s.Name))
		}
	}
	if empty {
		h.Issues = append(h.Issues, "all category caches are empty")
		h.Recommendations = append(h.Recommendations, "run cache warmup at startup")
	}
	h.IsHealthy = len(h.Issues) == 0
	return h
}
