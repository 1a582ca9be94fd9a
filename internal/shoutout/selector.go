package shoutout

import (
	"context"
	"daily-shoutout/internal/metrics"
	"daily-shoutout/internal/types"
	"time"

	"github.com/davecgh/go-spew/spew"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const dateLayout = "2006-01-02"

const (
	DefaultMaxAttempts = 100
	DefaultBatchSize   = 10
)

// Fallback is cached when no person could be found for the day
var Fallback = types.Shoutout{
	Name:        "Unknown",
	Description: "Couldn't find a person with an image today",
	Image:       nil,
}

// Source is the encyclopedia the selector draws candidates from
type Source interface {
	RandomTitles(ctx context.Context, limit int) ([]string, error)
	PageDetails(ctx context.Context, title string) (*types.Page, error)
	Entity(ctx context.Context, id string) (*types.Entity, error)
}

// Config tunes the selection loop
type Config struct {
	MaxAttempts int
	BatchSize   int
}

// Selector picks the person of the day
type Selector struct {
	source  Source
	cache   *Cache
	config  Config
	metrics *metrics.Metrics
	group   singleflight.Group

	// Now is the clock; tests replace it
	Now func() time.Time
}

// NewSelector creates a selector backed by source and cache. m may be nil.
func NewSelector(source Source, cache *Cache, c Config, m *metrics.Metrics) *Selector {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if cache == nil {
		cache = NewCache()
	}
	return &Selector{
		source:  source,
		cache:   cache,
		config:  c,
		metrics: m,
		Now:     time.Now,
	}
}

// Cache exposes the slot the selector writes to
func (s *Selector) Cache() *Cache {
	return s.cache
}

// Today returns the current UTC date as YYYY-MM-DD
func (s *Selector) Today() string {
	return s.Now().UTC().Format(dateLayout)
}

// DailyShoutout returns today's shoutout, computing and caching it on the first call of the day.
// Concurrent callers on a cold cache share one computation.
func (s *Selector) DailyShoutout(ctx context.Context) types.Shoutout {
	today := s.Today()

	if record, ok := s.cache.Get(today); ok {
		s.metrics.ObserveRequest(metrics.ResultCacheHit)
		return record
	}

	v, _, _ := s.group.Do(today, func() (interface{}, error) {
		return s.loadOrCompute(ctx, today), nil
	})
	return v.(types.Shoutout)
}

// loadOrCompute runs inside the singleflight group. A caller that lost the race
// may find the slot already filled.
func (s *Selector) loadOrCompute(ctx context.Context, today string) types.Shoutout {
	if record, ok := s.cache.Get(today); ok {
		s.metrics.ObserveRequest(metrics.ResultCacheHit)
		return record
	}
	return s.compute(context.WithoutCancel(ctx), today)
}

func (s *Selector) compute(ctx context.Context, today string) types.Shoutout {
	start := time.Now()
	defer func() {
		s.metrics.ObserveSelection(time.Since(start).Seconds())
	}()

	record, found := s.selectPerson(ctx, today)
	if !found {
		log.Warnf("no person found for %s after %d attempts, caching fallback", today, s.config.MaxAttempts)
		s.metrics.ObserveRequest(metrics.ResultFallback)
		record = Fallback
	} else {
		log.Infof("shoutout for %s: %s", today, record.Name)
		s.metrics.ObserveRequest(metrics.ResultComputed)
	}

	s.cache.Set(today, record, s.Now())
	return record
}

// selectPerson runs the bounded attempt loop. found is false when every attempt was rejected.
func (s *Selector) selectPerson(ctx context.Context, today string) (record types.Shoutout, found bool) {
	for attempt := 1; attempt <= s.config.MaxAttempts; attempt++ {
		s.metrics.ObserveAttempt()

		page, reason := s.tryCandidate(ctx, today)
		if reason != "" {
			s.metrics.ObserveRejection(reason)
			log.Debugf("attempt %d/%d rejected: %s", attempt, s.config.MaxAttempts, reason)
			continue
		}

		image := page.Thumbnail.Source
		return types.Shoutout{
			Name:        page.Title,
			Description: page.Extract,
			Image:       &image,
		}, true
	}
	return types.Shoutout{}, false
}

// tryCandidate evaluates one batch. It returns the accepted page, or the rejection reason.
func (s *Selector) tryCandidate(ctx context.Context, today string) (*types.Page, string) {
	titles, err := s.source.RandomTitles(ctx, s.config.BatchSize)
	if err != nil {
		log.Errorf("Error fetching random pages: %v", err)
		return nil, metrics.RejectNoBatch
	}
	if len(titles) == 0 {
		return nil, metrics.RejectNoBatch
	}

	title := titles[DayIndex(today, len(titles))]

	page, err := s.source.PageDetails(ctx, title)
	if err != nil {
		log.Errorf("Error fetching page details: %v", err)
		return nil, metrics.RejectDetailsError
	}
	if page.WikidataID == "" {
		return nil, metrics.RejectNoWikidata
	}

	entity, err := s.source.Entity(ctx, page.WikidataID)
	if err != nil {
		log.Errorf("Error fetching entity %s: %v", page.WikidataID, err)
		return nil, metrics.RejectEntityError
	}
	if !IsHuman(entity) {
		return nil, metrics.RejectNotHuman
	}

	if !LooksLikeBiography(page) {
		if log.IsLevelEnabled(log.DebugLevel) {
			log.Debugf("rejected candidate without biography signals: %s", spew.Sdump(page))
		}
		return nil, metrics.RejectQuality
	}

	return page, ""
}
