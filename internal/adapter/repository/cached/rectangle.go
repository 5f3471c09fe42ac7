package cached

import (
	"context"
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"rectangle-service/internal/adapter/cache"
	domain "rectangle-service/internal/domain/rectangle"
	"rectangle-service/internal/usecase/rectangle"
)

// RectangleRepository decorates a persistent rectangle.Repository with a read-through cache.
// A nil cache turns it into a pass-through.
type RectangleRepository struct {
	dbRepo rectangle.Repository
	cache  cache.RectangleCache
	log    *zap.Logger
	group  singleflight.Group

	// deletes counts completed deletes; a read that overlaps one does not populate the cache.
	deletes atomic.Uint64
}

var _ rectangle.Repository = (*RectangleRepository)(nil)

// NewRectangleRepository creates a new cached repository.
func NewRectangleRepository(dbRepo rectangle.Repository, c cache.RectangleCache, log *zap.Logger) *RectangleRepository {
	return &RectangleRepository{
		dbRepo: dbRepo,
		cache:  c,
		log:    log,
	}
}

// Create delegates to the DB repository.
func (r *RectangleRepository) Create(ctx context.Context, rec *domain.Record) (int64, error) {
	return r.dbRepo.Create(ctx, rec)
}

// GetByID reads through the cache. Concurrent misses for one ID share a single DB query.
func (r *RectangleRepository) GetByID(ctx context.Context, id int64) (*domain.Record, error) {
	if r.cache != nil {
		cached, err := r.cache.Get(ctx, id)
		if err != nil {
			r.log.Warn("cache get error, falling back to database", zap.Int64("id", id), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	result, err, shared := r.group.Do(flightKey(id), func() (any, error) {
		seen := r.deletes.Load()

		rec, err := r.dbRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if r.cache != nil {
			r.fill(ctx, rec, seen)
		}

		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		r.log.Debug("shared database lookup", zap.Int64("id", id))
	}

	// Callers get their own copy; the shared result is read by every waiter
	rec := *result.(*domain.Record)
	return &rec, nil
}

// fill caches rec unless a delete completed after the read began at generation seen.
// The second check covers a delete that lands between the first check and the write.
func (r *RectangleRepository) fill(ctx context.Context, rec *domain.Record, seen uint64) {
	if r.deletes.Load() != seen {
		r.log.Debug("skipping cache fill, delete raced the read", zap.Int64("id", rec.ID))
		return
	}

	if err := r.cache.Set(ctx, rec); err != nil {
		r.log.Warn("failed to cache rectangle", zap.Int64("id", rec.ID), zap.Error(err))
		return
	}

	if r.deletes.Load() != seen {
		if err := r.cache.Delete(ctx, rec.ID); err != nil {
			r.log.Warn("failed to drop raced cache entry", zap.Int64("id", rec.ID), zap.Error(err))
		}
	}
}

// Delete deletes the record from the DB and invalidates the cache.
// Reads already in flight for the ID are detached so later callers query the DB again.
func (r *RectangleRepository) Delete(ctx context.Context, id int64) (int64, error) {
	deletedID, err := r.dbRepo.Delete(ctx, id)
	if err != nil {
		return 0, err
	}

	r.deletes.Add(1)
	r.group.Forget(flightKey(id))

	if r.cache != nil {
		if err := r.cache.Delete(ctx, id); err != nil {
			r.log.Warn("failed to invalidate cache after delete", zap.Int64("id", id), zap.Error(err))
		}
	}

	return deletedID, nil
}

// List delegates to the DB repository.
func (r *RectangleRepository) List(ctx context.Context, query string, page, limit int64) ([]domain.Record, int64, error) {
	return r.dbRepo.List(ctx, query, page, limit)
}

func flightKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
