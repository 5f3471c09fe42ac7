package gormstore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"rectangle-service/internal/domain/rectangle"
	pkgerrors "rectangle-service/pkg/errors"
	"rectangle-service/pkg/security"
)

// RectangleRepo implements the rectangle Repository on top of GORM.
// It works with any dialector the application opens (PostgreSQL in production, SQLite locally and in tests).
type RectangleRepo struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewRectangleRepo creates a new instance of RectangleRepo.
func NewRectangleRepo(db *gorm.DB, log *zap.Logger) *RectangleRepo {
	return &RectangleRepo{db: db, log: log}
}

// RectangleSchema represents the database schema for the rectangles table.
// Dimensions are stored as int64 so the full uint32 range fits on every driver.
type RectangleSchema struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Label     string    `gorm:"size:100;not null;default:'';index"`
	Width     int64     `gorm:"not null"`
	Height    int64     `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for the RectangleSchema model.
func (RectangleSchema) TableName() string {
	return "rectangles"
}

// Migrate creates or updates the rectangles table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&RectangleSchema{})
}

func (m RectangleSchema) toDomain() (*rectangle.Record, error) {
	if m.Width < 0 || m.Width > math.MaxUint32 || m.Height < 0 || m.Height > math.MaxUint32 {
		return nil, fmt.Errorf("stored dimensions out of range: id=%d width=%d height=%d", m.ID, m.Width, m.Height)
	}
	return &rectangle.Record{
		ID:        m.ID,
		Label:     m.Label,
		Rectangle: rectangle.New(uint32(m.Width), uint32(m.Height)),
		CreatedAt: m.CreatedAt,
	}, nil
}

// Create inserts a new rectangle into the database.
func (r *RectangleRepo) Create(ctx context.Context, rec *rectangle.Record) (int64, error) {
	if rec == nil {
		return 0, errors.New("rectangle record cannot be nil")
	}

	model := RectangleSchema{
		Label:  rec.Label,
		Width:  int64(rec.Rectangle.Width),
		Height: int64(rec.Rectangle.Height),
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.log.Error("failed to create rectangle in db", zap.Error(err), zap.String("label", rec.Label))
		return 0, fmt.Errorf("failed to create rectangle: %w", err)
	}

	r.log.Info("rectangle created in db", zap.Int64("id", model.ID))
	return model.ID, nil
}

// GetByID retrieves a rectangle from the database by its ID.
func (r *RectangleRepo) GetByID(ctx context.Context, id int64) (*rectangle.Record, error) {
	var model RectangleSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("rectangle not found", zap.Int64("id", id))
			return nil, pkgerrors.NewNotFoundError("rectangle", fmt.Sprintf("rectangle not found: id=%d", id))
		}
		r.log.Error("failed to get rectangle from db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get rectangle: %w", err)
	}

	return model.toDomain()
}

// Delete removes a rectangle from the database by ID.
func (r *RectangleRepo) Delete(ctx context.Context, id int64) (int64, error) {
	if id <= 0 {
		return 0, pkgerrors.NewValidationError("id", "invalid rectangle id")
	}

	result := r.db.WithContext(ctx).Delete(&RectangleSchema{}, id)
	if result.Error != nil {
		r.log.Error("failed to delete rectangle in db", zap.Error(result.Error), zap.Int64("id", id))
		return 0, fmt.Errorf("failed to delete rectangle: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, pkgerrors.NewNotFoundError("rectangle", fmt.Sprintf("rectangle not found: id=%d", id))
	}

	r.log.Info("rectangle deleted in db", zap.Int64("id", id))
	return id, nil
}

// List retrieves a page of rectangles whose label contains query, newest first.
func (r *RectangleRepo) List(ctx context.Context, query string, page, limit int64) ([]rectangle.Record, int64, error) {
	query, err := security.ValidateSearchQuery(query)
	if err != nil {
		return nil, 0, pkgerrors.NewValidationError("query", fmt.Sprintf("invalid search query: %v", err))
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		return nil, 0, pkgerrors.NewValidationError("limit", "must be positive")
	}

	filtered := func() *gorm.DB {
		tx := r.db.WithContext(ctx).Model(&RectangleSchema{})
		if query != "" {
			tx = tx.Where(`label LIKE ? ESCAPE '\'`, "%"+security.SanitizeSearchString(query)+"%")
		}
		return tx
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		r.log.Error("failed to count rectangles", zap.Error(err), zap.String("query", query))
		return nil, 0, fmt.Errorf("failed to count rectangles: %w", err)
	}

	// pages past the last representable offset are empty
	if page-1 > math.MaxInt64/limit {
		return []rectangle.Record{}, total, nil
	}

	var models []RectangleSchema
	err = filtered().
		Order("id DESC").
		Offset(int((page - 1) * limit)).
		Limit(int(limit)).
		Find(&models).Error
	if err != nil {
		r.log.Error("failed to list rectangles from db", zap.Error(err),
			zap.String("query", query), zap.Int64("page", page), zap.Int64("limit", limit))
		return nil, 0, fmt.Errorf("failed to list rectangles: %w", err)
	}

	records := make([]rectangle.Record, 0, len(models))
	for _, m := range models {
		rec, err := m.toDomain()
		if err != nil {
			return nil, 0, err
		}
		records = append(records, *rec)
	}

	return records, total, nil
}
