package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/JonMunkholm/cardex/internal/card"
	"github.com/JonMunkholm/cardex/internal/codec"
	"github.com/JonMunkholm/cardex/internal/logging"
)

const (
	// DefaultMaxFileSize is the import ceiling when none is configured.
	DefaultMaxFileSize = 10 << 20

	// DefaultMaxImageSize bounds QR images and photos.
	DefaultMaxImageSize = 1 << 20

	// DefaultWorkers is the number of records validated and stored at once.
	DefaultWorkers = 4

	// DefaultImportTimeout bounds a single import.
	DefaultImportTimeout = 5 * time.Minute

	// DefaultCacheTTL is how long a card stays cached after a read or write.
	DefaultCacheTTL = 10 * time.Minute
)

// Options tunes a Service. Zero values take the defaults above.
type Options struct {
	MaxFileSize   int64
	MaxImageSize  int64
	Workers       int
	ImportTimeout time.Duration
	CacheTTL      time.Duration

	// Tracer receives a span per import, export and QR operation. The
	// global OpenTelemetry provider is used when nil.
	Tracer trace.Tracer
}

func (o Options) withDefaults() Options {
	if o.MaxFileSize <= 0 {
		o.MaxFileSize = DefaultMaxFileSize
	}
	if o.MaxImageSize <= 0 {
		o.MaxImageSize = DefaultMaxImageSize
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.ImportTimeout <= 0 {
		o.ImportTimeout = DefaultImportTimeout
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	if o.Tracer == nil {
		o.Tracer = defaultTracer()
	}
	return o
}

// Service provides the business card exchange operations.
type Service struct {
	repo    Repository
	cache   Cache
	limiter *UploadLimiter
	qr      *codec.QR
	tracer  trace.Tracer
	opts    Options
	now     func() time.Time
}

// NewService creates a Service. cache and limiter may be nil.
func NewService(repo Repository, cache Cache, limiter *UploadLimiter, opts Options) *Service {
	if cache == nil {
		cache = noopCache{}
	}
	if limiter == nil {
		limiter = NewUploadLimiter(DefaultMaxConcurrentUploads, DefaultMaxWaitTime)
	}
	opts = opts.withDefaults()
	return &Service{
		repo:    repo,
		cache:   cache,
		limiter: limiter,
		qr:      codec.NewQR(),
		tracer:  opts.Tracer,
		opts:    opts,
		now:     time.Now,
	}
}

// Limiter returns the import limiter, for draining on shutdown.
func (s *Service) Limiter() *UploadLimiter {
	return s.limiter
}

// Options returns the effective options.
func (s *Service) Options() Options {
	return s.opts
}

func (s *Service) cacheGet(ctx context.Context, id uuid.UUID) (card.Card, bool) {
	c, ok, err := s.cache.Get(ctx, id)
	if err != nil {
		logging.FromContext(ctx).Warn("cache read failed", "card_id", id, "error", err)
		return card.Card{}, false
	}
	if ok {
		cacheLookups.WithLabelValues("hit").Inc()
	} else {
		cacheLookups.WithLabelValues("miss").Inc()
	}
	return c, ok
}

func (s *Service) cacheSet(ctx context.Context, c card.Card) {
	if err := s.cache.Set(ctx, c, s.opts.CacheTTL); err != nil {
		logging.FromContext(ctx).Warn("cache write failed", "card_id", c.ID, "error", err)
	}
}

func (s *Service) cacheDelete(ctx context.Context, ids ...uuid.UUID) {
	if err := s.cache.Delete(ctx, ids...); err != nil {
		logging.FromContext(ctx).Warn("cache eviction failed", slog.Int("ids", len(ids)), "error", err)
	}
}
