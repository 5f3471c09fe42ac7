package gormstore

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"rectangle-service/internal/domain/rectangle"
	pkgerrors "rectangle-service/pkg/errors"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// Every pooled connection would otherwise get its own empty in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func setupTestRepo(t *testing.T) *RectangleRepo {
	return NewRectangleRepo(setupTestDB(t), zaptest.NewLogger(t))
}

func seed(t *testing.T, repo *RectangleRepo, records ...rectangle.Record) []int64 {
	ids := make([]int64, 0, len(records))
	for i := range records {
		id, err := repo.Create(context.Background(), &records[i])
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestRectangleRepo_CreateAndGet(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, &rectangle.Record{Label: "door", Rectangle: rectangle.New(10, 5)})
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "door", got.Label)
	assert.Equal(t, rectangle.New(10, 5), got.Rectangle)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestRectangleRepo_FullUint32Range(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, &rectangle.Record{Rectangle: rectangle.New(math.MaxUint32, math.MaxUint32)})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), got.Rectangle.Width)
	assert.Equal(t, uint32(math.MaxUint32), got.Rectangle.Height)
}

func TestRectangleRepo_CreateNil(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.Create(context.Background(), nil)
	assert.Error(t, err)
}

func TestRectangleRepo_GetNotFound(t *testing.T) {
	repo := setupTestRepo(t)

	got, err := repo.GetByID(context.Background(), 42)

	assert.Nil(t, got)
	var notFound *pkgerrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "rectangle not found: id=42", err.Error())
}

func TestRectangleRepo_Delete(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	ids := seed(t, repo, rectangle.Record{Label: "a", Rectangle: rectangle.New(1, 2)})

	deleted, err := repo.Delete(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, ids[0], deleted)

	_, err = repo.GetByID(ctx, ids[0])
	var notFound *pkgerrors.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	_, err = repo.Delete(ctx, ids[0])
	assert.ErrorAs(t, err, &notFound)

	_, err = repo.Delete(ctx, 0)
	var validationErr *pkgerrors.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestRectangleRepo_List(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	seed(t, repo,
		rectangle.Record{Label: "front door", Rectangle: rectangle.New(90, 210)},
		rectangle.Record{Label: "back door", Rectangle: rectangle.New(80, 200)},
		rectangle.Record{Label: "window", Rectangle: rectangle.New(120, 100)},
		rectangle.Record{Label: "tile_a", Rectangle: rectangle.New(30, 30)},
		rectangle.Record{Label: "tileXa", Rectangle: rectangle.New(30, 30)},
	)

	tests := []struct {
		name          string
		query         string
		page, limit   int64
		expectTotal   int64
		expectLabels  []string
		expectInvalid bool
	}{
		{name: "all, newest first", query: "", page: 1, limit: 10, expectTotal: 5,
			expectLabels: []string{"tileXa", "tile_a", "window", "back door", "front door"}},
		{name: "match label", query: "door", page: 1, limit: 10, expectTotal: 2,
			expectLabels: []string{"back door", "front door"}},
		{name: "second page", query: "", page: 2, limit: 2, expectTotal: 5,
			expectLabels: []string{"window", "back door"}},
		{name: "underscore is literal", query: "tile_a", page: 1, limit: 10, expectTotal: 1,
			expectLabels: []string{"tile_a"}},
		{name: "no match", query: "roof", page: 1, limit: 10, expectTotal: 0, expectLabels: []string{}},
		{name: "sql text is matched literally", query: "door UNION SELECT * FROM rectangles", page: 1, limit: 10,
			expectTotal: 0, expectLabels: []string{}},
		{name: "page beyond offset range", query: "", page: math.MaxInt64, limit: 10, expectTotal: 5,
			expectLabels: []string{}},
		{name: "too long", query: strings.Repeat("a", 101), page: 1, limit: 10, expectInvalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, total, err := repo.List(ctx, tt.query, tt.page, tt.limit)

			if tt.expectInvalid {
				var validationErr *pkgerrors.ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Contains(t, err.Error(), "invalid search query")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectTotal, total)

			labels := make([]string, 0, len(records))
			for _, r := range records {
				labels = append(labels, r.Label)
			}
			assert.Equal(t, tt.expectLabels, labels, fmt.Sprintf("query=%q", tt.query))
		})
	}

	// Table must survive the literal SQL search
	_, total, err := repo.List(ctx, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
}

func TestRectangleRepo_ListFindsLabelsBySubstring(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	labels := map[string]string{
		"Select room":     "select",
		"Kitchen (north)": "(north)",
		"O'Brien lot":     "O'Brien",
		"Room 1 + 2":      "1 + 2",
		"update plan":     "update",
	}
	for label := range labels {
		seed(t, repo, rectangle.Record{Label: label, Rectangle: rectangle.New(1, 1)})
	}

	for label, query := range labels {
		records, total, err := repo.List(ctx, query, 1, 10)
		require.NoError(t, err, "query=%q", query)
		require.Equal(t, int64(1), total, "query=%q", query)
		assert.Equal(t, label, records[0].Label)
	}
}
