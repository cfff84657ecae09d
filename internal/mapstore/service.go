// Package mapstore owns the map codec, the projection geometry and a cache
// of loaded maps. Commands receive a Service instead of reaching for
// package level state.
package mapstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Faultbox/illarion-mapkit/internal/config"
	"github.com/Faultbox/illarion-mapkit/pkg/coord"
	"github.com/Faultbox/illarion-mapkit/pkg/encoding"
	"github.com/Faultbox/illarion-mapkit/pkg/mapfile"
)

// ErrNoMap is returned when a map name has no tiles file in the root.
var ErrNoMap = errors.New("map not found")

// Options configures a Service.
type Options struct {
	Root         string
	Charset      encoding.Charset
	Geometry     coord.Geometry
	DefaultLevel int32
	// CacheMaxCost is the cache budget in map cells. Zero disables caching.
	CacheMaxCost int64
	// CacheTTL of zero keeps maps until they are evicted by cost.
	CacheTTL time.Duration
	Logger   *zap.Logger
}

// Service loads and saves the maps of one directory.
type Service struct {
	root  string
	geo   coord.Geometry
	codec *mapfile.Codec
	log   *zap.Logger
	ttl   time.Duration
	cache *ristretto.Cache[string, *entry]
	group singleflight.Group

	// load reads a map from disk; tests replace it.
	load func(ctx context.Context, dir, name string) (*mapfile.Map, *mapfile.LoadReport, error)
}

type entry struct {
	m      *mapfile.Map
	report *mapfile.LoadReport
}

// New creates a Service.
func New(opts Options) (*Service, error) {
	if opts.Root == "" {
		return nil, errors.New("map root must not be empty")
	}
	if err := opts.Geometry.Validate(); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Charset == "" {
		opts.Charset = encoding.UTF8
	}

	s := &Service{
		root: opts.Root,
		geo:  opts.Geometry,
		log:  log,
		ttl:  opts.CacheTTL,
		codec: mapfile.NewCodec(
			mapfile.WithLogger(log.Named("mapfile")),
			mapfile.WithCharset(opts.Charset),
			mapfile.WithLegacyLevel(opts.DefaultLevel),
		),
	}

	s.load = s.codec.Load

	if opts.CacheMaxCost > 0 {
		cache, err := ristretto.NewCache(&ristretto.Config[string, *entry]{
			NumCounters:        10000,
			MaxCost:            opts.CacheMaxCost,
			BufferItems:        64,
			IgnoreInternalCost: true,
		})
		if err != nil {
			return nil, fmt.Errorf("creating map cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// FromConfig creates a Service from the application configuration.
func FromConfig(cfg *config.Config, log *zap.Logger) (*Service, error) {
	cs, err := cfg.Maps.CharsetValue()
	if err != nil {
		return nil, err
	}
	geo, err := cfg.Geometry.Build()
	if err != nil {
		return nil, err
	}
	return New(Options{
		Root:         cfg.Maps.Root,
		Charset:      cs,
		Geometry:     geo,
		DefaultLevel: cfg.Maps.DefaultLevel,
		CacheMaxCost: cfg.Maps.CacheMaxCost,
		CacheTTL:     cfg.Maps.CacheTTL,
		Logger:       log,
	})
}

// Root returns the map directory.
func (s *Service) Root() string { return s.root }

// Geometry returns the projection geometry.
func (s *Service) Geometry() coord.Geometry { return s.geo }

// Codec returns the codec used for all map files.
func (s *Service) Codec() *mapfile.Codec { return s.codec }

// Load returns map name, from the cache when possible. Concurrent loads of
// the same map share one read. The returned map is shared between callers.
//
// Cancelling ctx only abandons this caller's wait; the shared read runs to
// completion for the other callers and fills the cache.
func (s *Service) Load(ctx context.Context, name string) (*mapfile.Map, *mapfile.LoadReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if e, ok := s.cached(name); ok {
		s.log.Debug("map cache hit", zap.String("map", name))
		return e.m, e.report, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(name, func() (any, error) {
		m, report, err := s.load(loadCtx, s.root, name)
		if err != nil {
			if errors.Is(err, mapfile.ErrMissingTiles) {
				return nil, fmt.Errorf("%w: %s: %w", ErrNoMap, name, err)
			}
			return nil, err
		}
		e := &entry{m: m, report: report}
		s.store(name, e)
		return e, nil
	})

	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, nil, res.Err
		}
		e := res.Val.(*entry)
		return e.m, e.report, nil
	}
}

// Save writes m into the root directory and drops the cached copy.
func (s *Service) Save(ctx context.Context, m *mapfile.Map) error {
	if err := s.codec.SaveTo(ctx, m, s.root); err != nil {
		return err
	}
	m.Dir = s.root
	s.Invalidate(m.Name)
	s.log.Info("map saved", zap.String("map", m.Name), zap.String("dir", s.root))
	return nil
}

// Invalidate drops map name from the cache.
func (s *Service) Invalidate(name string) {
	if s.cache == nil {
		return
	}
	s.cache.Del(name)
	s.cache.Wait()
}

// List returns the names of all maps in the root directory, sorted.
func (s *Service) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("listing maps: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name, ok := strings.CutSuffix(e.Name(), mapfile.TilesSuffix); ok && name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Close releases the cache.
func (s *Service) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}

func (s *Service) cached(name string) (*entry, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(name)
}

func (s *Service) store(name string, e *entry) {
	if s.cache == nil {
		return
	}
	cost := int64(e.m.Width) * int64(e.m.Height)
	if !s.cache.SetWithTTL(name, e, cost, s.ttl) {
		s.log.Debug("map not cached", zap.String("map", name), zap.Int64("cost", cost))
		return
	}
	s.cache.Wait()
}
