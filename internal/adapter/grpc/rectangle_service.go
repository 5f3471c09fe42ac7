package grpcadapter

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"

	"rectangle-service/internal/usecase/rectangle"
	pkgerrors "rectangle-service/pkg/errors"
	"rectangle-service/pkg/logger"
)

// RectangleServer implements RectangleServiceServer on top of the rectangle usecase.
type RectangleServer struct {
	uc  rectangle.Usecase
	log *zap.Logger
}

var _ RectangleServiceServer = (*RectangleServer)(nil)

// NewRectangleServer creates a new gRPC rectangle service server
func NewRectangleServer(uc rectangle.Usecase, log *zap.Logger) *RectangleServer {
	return &RectangleServer{uc: uc, log: log}
}

// Describe handles {width, height} and answers {width, height, area, overflow, text}.
func (s *RectangleServer) Describe(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	width, err := uint32Field(req, "width")
	if err != nil {
		return nil, err
	}
	height, err := uint32Field(req, "height")
	if err != nil {
		return nil, err
	}

	resp, err := s.uc.Describe(ctx, rectangle.DescribeRequest{Width: width, Height: height})
	if err != nil {
		return nil, s.fail(ctx, "Describe", err)
	}

	return structpb.NewStruct(map[string]any{
		"width":    resp.Width,
		"height":   resp.Height,
		"area":     resp.Area,
		"overflow": resp.Overflow,
		"text":     resp.Text,
	})
}

// CreateRectangle handles {label?, width, height} and answers {id}.
func (s *RectangleServer) CreateRectangle(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	width, err := uint32Field(req, "width")
	if err != nil {
		return nil, err
	}
	height, err := uint32Field(req, "height")
	if err != nil {
		return nil, err
	}

	resp, err := s.uc.CreateRectangle(ctx, rectangle.CreateRectangleRequest{
		Label:  req.GetFields()["label"].GetStringValue(),
		Width:  width,
		Height: height,
	})
	if err != nil {
		return nil, s.fail(ctx, "CreateRectangle", err)
	}

	return structpb.NewStruct(map[string]any{"id": resp.ID})
}

// GetRectangle handles {id} and answers the saved rectangle.
func (s *RectangleServer) GetRectangle(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := int64Field(req, "id", true)
	if err != nil {
		return nil, err
	}

	resp, err := s.uc.GetRectangle(ctx, rectangle.GetRectangleRequest{ID: id})
	if err != nil {
		return nil, s.fail(ctx, "GetRectangle", err)
	}

	return structpb.NewStruct(rectangleFields(resp.Rectangle))
}

// ListRectangles handles {query?, page?, limit?} and answers {rectangles, pagination}.
func (s *RectangleServer) ListRectangles(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	page, err := int64Field(req, "page", false)
	if err != nil {
		return nil, err
	}
	limit, err := int64Field(req, "limit", false)
	if err != nil {
		return nil, err
	}

	resp, err := s.uc.ListRectangles(ctx, rectangle.ListRectanglesRequest{
		Query: req.GetFields()["query"].GetStringValue(),
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		return nil, s.fail(ctx, "ListRectangles", err)
	}

	items := make([]any, len(resp.Rectangles))
	for i, r := range resp.Rectangles {
		items[i] = rectangleFields(r)
	}

	out := map[string]any{"rectangles": items}
	if p := resp.Pagination; p != nil {
		out["pagination"] = map[string]any{
			"total":       p.Total,
			"page":        p.Page,
			"limit":       p.Limit,
			"total_pages": p.TotalPages,
		}
	}
	return structpb.NewStruct(out)
}

// DeleteRectangle handles {id} and answers {id}.
func (s *RectangleServer) DeleteRectangle(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := int64Field(req, "id", true)
	if err != nil {
		return nil, err
	}

	resp, err := s.uc.DeleteRectangle(ctx, rectangle.DeleteRectangleRequest{ID: id})
	if err != nil {
		return nil, s.fail(ctx, "DeleteRectangle", err)
	}

	return structpb.NewStruct(map[string]any{"id": resp.ID})
}

// fail logs err and makes sure it carries a gRPC status.
func (s *RectangleServer) fail(ctx context.Context, method string, err error) error {
	logger.WithContext(ctx, s.log).Warn("grpc call failed", zap.String("method", method), zap.Error(err))
	if _, ok := err.(pkgerrors.GRPCStatuser); ok {
		return err
	}
	return pkgerrors.NewInternalError("internal server error", err)
}

func rectangleFields(r rectangle.Rectangle) map[string]any {
	return map[string]any{
		"id":         r.ID,
		"label":      r.Label,
		"width":      r.Width,
		"height":     r.Height,
		"area":       r.Area,
		"overflow":   r.Overflow,
		"text":       r.Text,
		"created_at": r.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// wholeNumber extracts an integral number field. Struct numbers are doubles, so anything above 2^53 is rejected.
func wholeNumber(req *structpb.Struct, name string) (float64, bool, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return 0, false, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, false, pkgerrors.NewValidationError(name, "must be a number")
	}
	f := n.NumberValue
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false, pkgerrors.NewValidationError(name, "must be a whole number")
	}
	return f, true, nil
}

func uint32Field(req *structpb.Struct, name string) (uint32, error) {
	f, ok, err := wholeNumber(req, name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, pkgerrors.NewValidationError(name, "is required")
	}
	if f < 0 || f > math.MaxUint32 {
		return 0, pkgerrors.NewValidationError(name, fmt.Sprintf("must be between 0 and %d", uint32(math.MaxUint32)))
	}
	return uint32(f), nil
}

func int64Field(req *structpb.Struct, name string, required bool) (int64, error) {
	f, ok, err := wholeNumber(req, name)
	if err != nil {
		return 0, err
	}
	if !ok && required {
		return 0, pkgerrors.NewValidationError(name, "is required")
	}
	return int64(f), nil
}
