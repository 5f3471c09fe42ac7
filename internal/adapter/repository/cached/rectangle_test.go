package cached

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"rectangle-service/internal/adapter/cache"
	domain "rectangle-service/internal/domain/rectangle"
	pkgerrors "rectangle-service/pkg/errors"
)

// MockRepository is a mock implementation of rectangle.Repository
type MockRepository struct {
	mock.Mock
	getCalls atomic.Int32
}

func (m *MockRepository) Create(ctx context.Context, r *domain.Record) (int64, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*domain.Record, error) {
	m.getCalls.Add(1)
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Record), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, query string, page, limit int64) ([]domain.Record, int64, error) {
	args := m.Called(ctx, query, page, limit)
	return args.Get(0).([]domain.Record), args.Get(1).(int64), args.Error(2)
}

func setup(t *testing.T) (*RectangleRepository, *MockRepository, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := zaptest.NewLogger(t)
	dbRepo := new(MockRepository)
	c := cache.NewRedisRectangleCache(client, time.Minute, log)

	return NewRectangleRepository(dbRepo, c, log), dbRepo, mr
}

func TestGetByID_CachesAfterFirstRead(t *testing.T) {
	repo, dbRepo, mr := setup(t)
	ctx := context.Background()

	dbRepo.On("GetByID", mock.Anything, int64(1)).
		Return(&domain.Record{ID: 1, Label: "door", Rectangle: domain.New(10, 5)}, nil).Once()

	first, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.CacheKey(1)))

	second, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, first.Rectangle, second.Rectangle)
	assert.Equal(t, int32(1), dbRepo.getCalls.Load())
	dbRepo.AssertExpectations(t)
}

func TestGetByID_NotFoundIsNotCached(t *testing.T) {
	repo, dbRepo, mr := setup(t)

	dbRepo.On("GetByID", mock.Anything, int64(9)).
		Return(nil, pkgerrors.NewNotFoundError("rectangle", "rectangle not found: id=9"))

	_, err := repo.GetByID(context.Background(), 9)

	var notFound *pkgerrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.False(t, mr.Exists(cache.CacheKey(9)))
}

func TestGetByID_RedisDownFallsBackToDatabase(t *testing.T) {
	repo, dbRepo, mr := setup(t)
	mr.Close()

	dbRepo.On("GetByID", mock.Anything, int64(2)).
		Return(&domain.Record{ID: 2, Rectangle: domain.New(3, 4)}, nil)

	got, err := repo.GetByID(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, uint32(12), got.Rectangle.Area())
}

func TestGetByID_ConcurrentMissesShareLookup(t *testing.T) {
	repo, dbRepo, _ := setup(t)

	release := make(chan struct{})
	dbRepo.On("GetByID", mock.Anything, int64(5)).
		Run(func(mock.Arguments) { <-release }).
		Return(&domain.Record{ID: 5, Rectangle: domain.New(2, 2)}, nil)

	const callers = 8
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			got, err := repo.GetByID(context.Background(), 5)
			assert.NoError(t, err)
			assert.Equal(t, uint32(4), got.Rectangle.Area())
		}()
	}

	// Let the callers pile up behind the first lookup
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, dbRepo.getCalls.Load(), int32(callers))
	assert.GreaterOrEqual(t, dbRepo.getCalls.Load(), int32(1))
}

func TestDelete_InvalidatesCache(t *testing.T) {
	repo, dbRepo, mr := setup(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(cache.CacheKey(3), `{"id":3,"width":1,"height":1}`))
	dbRepo.On("Delete", ctx, int64(3)).Return(int64(3), nil)

	id, err := repo.Delete(ctx, 3)

	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
	assert.False(t, mr.Exists(cache.CacheKey(3)))
}

func TestDelete_DuringInFlightReadLeavesNoStaleEntry(t *testing.T) {
	repo, dbRepo, mr := setup(t)
	ctx := context.Background()

	reading := make(chan struct{})
	release := make(chan struct{})
	dbRepo.On("GetByID", mock.Anything, int64(7)).
		Run(func(mock.Arguments) {
			close(reading)
			<-release
		}).
		Return(&domain.Record{ID: 7, Rectangle: domain.New(10, 5)}, nil).Once()
	dbRepo.On("GetByID", mock.Anything, int64(7)).
		Return(nil, pkgerrors.NewNotFoundError("rectangle", "rectangle not found: id=7"))
	dbRepo.On("Delete", mock.Anything, int64(7)).Return(int64(7), nil).Once()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := repo.GetByID(ctx, 7)
		assert.NoError(t, err)
	}()

	<-reading
	_, err := repo.Delete(ctx, 7)
	require.NoError(t, err)

	// A read after the delete must not join the stale lookup
	_, err = repo.GetByID(ctx, 7)
	var notFound *pkgerrors.NotFoundError
	require.ErrorAs(t, err, &notFound)

	close(release)
	<-done

	assert.False(t, mr.Exists(cache.CacheKey(7)))
	_, err = repo.GetByID(ctx, 7)
	require.ErrorAs(t, err, &notFound)
}

func TestNilCache_PassesThrough(t *testing.T) {
	dbRepo := new(MockRepository)
	repo := NewRectangleRepository(dbRepo, nil, zaptest.NewLogger(t))
	ctx := context.Background()

	dbRepo.On("GetByID", ctx, int64(1)).Return(&domain.Record{ID: 1}, nil).Twice()
	dbRepo.On("List", ctx, "q", int64(1), int64(10)).Return([]domain.Record{}, int64(0), nil)
	dbRepo.On("Create", ctx, mock.Anything).Return(int64(2), nil)

	_, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	_, err = repo.GetByID(ctx, 1)
	require.NoError(t, err)
	_, _, err = repo.List(ctx, "q", 1, 10)
	require.NoError(t, err)
	id, err := repo.Create(ctx, &domain.Record{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)

	dbRepo.AssertExpectations(t)
}
