package rectangle

import "context"

// Usecase defines the interface for rectangle business logic operations.
type Usecase interface {
	Describe(ctx context.Context, in DescribeRequest) (*DescribeResponse, error)
	CreateRectangle(ctx context.Context, in CreateRectangleRequest) (*CreateRectangleResponse, error)
	GetRectangle(ctx context.Context, in GetRectangleRequest) (*GetRectangleResponse, error)
	ListRectangles(ctx context.Context, in ListRectanglesRequest) (*ListRectanglesResponse, error)
	DeleteRectangle(ctx context.Context, in DeleteRectangleRequest) (*DeleteRectangleResponse, error)
}
