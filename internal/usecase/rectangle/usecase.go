package rectangle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"

	domain "rectangle-service/internal/domain/rectangle"
	pkgerrors "rectangle-service/pkg/errors"
	"rectangle-service/pkg/logger"
	"rectangle-service/pkg/security"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// Repository defines the interface for saved rectangle data access.
// Implementations return *pkgerrors.NotFoundError for unknown IDs.
type Repository interface {
	Create(ctx context.Context, r *domain.Record) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Record, error)
	Delete(ctx context.Context, id int64) (int64, error)
	// List returns one page of records whose label contains query, plus the total match count.
	List(ctx context.Context, query string, page, limit int64) ([]domain.Record, int64, error)
}

// Service implements the rectangle business logic.
type Service struct {
	repo     Repository          // Repository for saved rectangles
	log      *zap.Logger         // Logger for structured logging
	validate *validator.Validate // Validator for request validation
}

var _ Usecase = (*Service)(nil)

// New creates a new Service with the provided repository and logger.
func New(r Repository, log *zap.Logger) *Service {
	return &Service{repo: r, log: log, validate: validator.New()}
}

// formatValidationError converts validator.ValidationErrors into a ValidationError with a readable message.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
		case "gt":
			messages = append(messages, fmt.Sprintf("%s must be greater than %s", e.Field(), e.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}
	return pkgerrors.NewValidationError("", strings.Join(messages, ", "))
}

// toDTO converts a saved record into its response form.
func toDTO(r domain.Record) Rectangle {
	area, fits := r.Rectangle.AreaChecked()
	return Rectangle{
		ID:        r.ID,
		Label:     r.Label,
		Width:     r.Rectangle.Width,
		Height:    r.Rectangle.Height,
		Area:      area,
		Overflow:  !fits,
		Text:      r.Rectangle.String(),
		CreatedAt: r.CreatedAt,
	}
}

// storageError keeps typed errors from the repository and wraps anything else as internal.
func storageError(message string, err error) error {
	var (
		notFound   *pkgerrors.NotFoundError
		validation *pkgerrors.ValidationError
	)
	if errors.As(err, &notFound) || errors.As(err, &validation) {
		return err
	}
	return pkgerrors.NewInternalError(message, err)
}

// Describe computes the area and display text of a rectangle. Nothing is stored.
func (s *Service) Describe(ctx context.Context, in DescribeRequest) (*DescribeResponse, error) {
	r := domain.New(in.Width, in.Height)
	area, fits := r.AreaChecked()

	log := logger.WithContext(ctx, s.log)
	if !fits {
		log.Warn("area overflowed 32 bits",
			zap.Uint32("width", in.Width), zap.Uint32("height", in.Height), zap.Uint32("wrapped_area", area))
	} else {
		log.Debug("described rectangle", zap.Uint32("width", in.Width), zap.Uint32("height", in.Height))
	}

	return &DescribeResponse{
		Width:    r.Width,
		Height:   r.Height,
		Area:     area,
		Overflow: !fits,
		Text:     r.String(),
	}, nil
}

// CreateRectangle validates and saves a rectangle.
func (s *Service) CreateRectangle(ctx context.Context, in CreateRectangleRequest) (*CreateRectangleResponse, error) {
	in.Label = strings.TrimSpace(in.Label)

	log := logger.WithContext(ctx, s.log)
	log.Info("creating rectangle",
		zap.String("label", in.Label), zap.Uint32("width", in.Width), zap.Uint32("height", in.Height))

	if err := s.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	id, err := s.repo.Create(ctx, &domain.Record{
		Label:     in.Label,
		Rectangle: domain.New(in.Width, in.Height),
	})
	if err != nil {
		log.Error("failed to create rectangle", zap.Error(err))
		return nil, storageError("failed to create rectangle", err)
	}

	return &CreateRectangleResponse{ID: id}, nil
}

// GetRectangle retrieves a saved rectangle by ID.
func (s *Service) GetRectangle(ctx context.Context, in GetRectangleRequest) (*GetRectangleResponse, error) {
	log := logger.WithContext(ctx, s.log)

	if err := s.validate.Struct(in); err != nil {
		log.Warn("get rectangle validation failed", zap.Int64("id", in.ID))
		return nil, pkgerrors.NewValidationError("id", "invalid rectangle id")
	}

	r, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		log.Warn("failed to get rectangle", zap.Int64("id", in.ID), zap.Error(err))
		return nil, storageError("failed to get rectangle", err)
	}

	return &GetRectangleResponse{Rectangle: toDTO(*r)}, nil
}

// ListRectangles retrieves a page of saved rectangles whose label matches the query.
func (s *Service) ListRectangles(ctx context.Context, in ListRectanglesRequest) (*ListRectanglesResponse, error) {
	if in.Page <= 0 {
		in.Page = 1
	}
	if in.Limit <= 0 {
		in.Limit = defaultPageLimit
	}
	if in.Limit > maxPageLimit {
		in.Limit = maxPageLimit
	}

	log := logger.WithContext(ctx, s.log)

	query, err := security.ValidateSearchQuery(in.Query)
	if err != nil {
		log.Warn("invalid search query", zap.String("query", in.Query), zap.Error(err))
		return nil, pkgerrors.NewValidationError("query", fmt.Sprintf("invalid search query: %v", err))
	}

	log.Info("listing rectangles", zap.String("query", query), zap.Int64("page", in.Page), zap.Int64("limit", in.Limit))

	records, total, err := s.repo.List(ctx, query, in.Page, in.Limit)
	if err != nil {
		log.Error("failed to list rectangles", zap.String("query", query), zap.Error(err))
		return nil, storageError("failed to list rectangles", err)
	}

	p := domain.NewPagination(total, in.Page, in.Limit)

	return &ListRectanglesResponse{
		Rectangles: lo.Map(records, func(r domain.Record, _ int) Rectangle { return toDTO(r) }),
		Pagination: &Pagination{
			Total:      p.Total,
			Page:       p.Page,
			Limit:      p.Limit,
			TotalPages: p.TotalPages,
		},
	}, nil
}

// DeleteRectangle deletes a saved rectangle by ID.
func (s *Service) DeleteRectangle(ctx context.Context, in DeleteRectangleRequest) (*DeleteRectangleResponse, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("deleting rectangle", zap.Int64("id", in.ID))

	if err := s.validate.Struct(in); err != nil {
		log.Warn("delete rectangle validation failed", zap.Int64("id", in.ID))
		return nil, pkgerrors.NewValidationError("id", "invalid rectangle id")
	}

	id, err := s.repo.Delete(ctx, in.ID)
	if err != nil {
		log.Error("failed to delete rectangle", zap.Int64("id", in.ID), zap.Error(err))
		return nil, storageError("failed to delete rectangle", err)
	}

	return &DeleteRectangleResponse{ID: id}, nil
}
