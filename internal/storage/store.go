package storage

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dosewatch/dosewatch/internal/api"
	"github.com/dosewatch/dosewatch/internal/model"
)

// Remote is the backend surface the caching store wraps.
type Remote interface {
	ListSupplements(ctx context.Context) ([]model.Supplement, error)
	ListTodayLogs(ctx context.Context) ([]model.DoseLog, error)
	UpdateReminder(ctx context.Context, supplementID string, remind bool) error
	CreateLog(ctx context.Context, in api.CreateLogInput) (model.DoseLog, error)
	UpdateLog(ctx context.Context, id string, in api.UpdateLogInput) (model.DoseLog, error)
}

// CachedStore passes every call through to the remote backend and snapshots
// the two list responses into SQLite, so the app can render yesterday's data
// when it starts without a network. Snapshot write failures are logged and
// swallowed: caching must never break an online session.
type CachedStore struct {
	remote Remote
	cache  *SQLiteCache
	log    *zap.Logger
	now    func() time.Time

	mu          sync.Mutex
	supplements []model.Supplement
	haveSupps   bool
}

func NewCachedStore(remote Remote, cache *SQLiteCache, log *zap.Logger) *CachedStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedStore{
		remote: remote,
		cache:  cache,
		log:    log,
		now:    time.Now,
	}
}

func (s *CachedStore) ListSupplements(ctx context.Context) ([]model.Supplement, error) {
	supplements, err := s.remote.ListSupplements(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.supplements = supplements
	s.haveSupps = true
	s.mu.Unlock()
	return supplements, nil
}

// ListTodayLogs completes the supplement/log pair, so a successful call here
// is the point where the snapshot gets written.
func (s *CachedStore) ListTodayLogs(ctx context.Context) ([]model.DoseLog, error) {
	logs, err := s.remote.ListTodayLogs(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	supplements := s.supplements
	have := s.haveSupps
	s.mu.Unlock()

	if have && s.cache != nil {
		now := s.now()
		snap := Snapshot{
			Day:         time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
			FetchedAt:   now,
			Supplements: supplements,
			Logs:        logs,
		}
		if err := s.cache.SaveSnapshot(ctx, snap); err != nil {
			s.log.Warn("snapshot save failed", zap.Error(err))
		}
	}
	return logs, nil
}

func (s *CachedStore) UpdateReminder(ctx context.Context, supplementID string, remind bool) error {
	return s.remote.UpdateReminder(ctx, supplementID, remind)
}

func (s *CachedStore) CreateLog(ctx context.Context, in api.CreateLogInput) (model.DoseLog, error) {
	return s.remote.CreateLog(ctx, in)
}

func (s *CachedStore) UpdateLog(ctx context.Context, id string, in api.UpdateLogInput) (model.DoseLog, error) {
	return s.remote.UpdateLog(ctx, id, in)
}
