package rectangle

import "time"

// DescribeRequest asks for the area and display text of a rectangle without saving it.
type DescribeRequest struct {
	Width  uint32
	Height uint32
}

// DescribeResponse carries the computed attributes of a rectangle.
type DescribeResponse struct {
	Width    uint32
	Height   uint32
	Area     uint32
	Overflow bool   // Overflow is set when Width × Height did not fit in 32 bits and Area wrapped
	Text     string // Text holds the two display lines
}

// CreateRectangleRequest represents the request payload for saving a rectangle.
type CreateRectangleRequest struct {
	Label  string `validate:"omitempty,max=100"`
	Width  uint32
	Height uint32
}

// CreateRectangleResponse represents the response payload after saving a rectangle.
type CreateRectangleResponse struct {
	ID int64
}

// GetRectangleRequest represents the request payload for retrieving a saved rectangle.
type GetRectangleRequest struct {
	ID int64 `validate:"gt=0"`
}

// GetRectangleResponse represents a saved rectangle with its computed attributes.
type GetRectangleResponse struct {
	Rectangle
}

// DeleteRectangleRequest represents the request payload for deleting a saved rectangle.
type DeleteRectangleRequest struct {
	ID int64 `validate:"gt=0"`
}

// DeleteRectangleResponse represents the response payload after deleting a rectangle.
type DeleteRectangleResponse struct {
	ID int64
}

// ListRectanglesRequest represents the request payload for listing saved rectangles.
// Query is matched against labels.
type ListRectanglesRequest struct {
	Query string
	Page  int64
	Limit int64
}

// ListRectanglesResponse represents the response payload for rectangle listing.
type ListRectanglesResponse struct {
	Rectangles []Rectangle
	Pagination *Pagination
}

// Pagination represents pagination information for list responses.
type Pagination struct {
	Total      int64
	Page       int64
	Limit      int64
	TotalPages int64
}

// Rectangle represents a saved rectangle DTO for API responses.
type Rectangle struct {
	ID        int64
	Label     string
	Width     uint32
	Height    uint32
	Area      uint32
	Overflow  bool
	Text      string
	CreatedAt time.Time
}
