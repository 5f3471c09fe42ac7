package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"rectangle-service/internal/usecase/rectangle"
	pkgerrors "rectangle-service/pkg/errors"
	"rectangle-service/pkg/logger"
)

// RectangleHandler handles HTTP requests for rectangle operations
type RectangleHandler struct {
	uc  rectangle.Usecase
	log *zap.Logger
}

// NewRectangleHandler creates a new RectangleHandler instance
func NewRectangleHandler(uc rectangle.Usecase, log *zap.Logger) *RectangleHandler {
	return &RectangleHandler{
		uc:  uc,
		log: log,
	}
}

// AreaQuery represents the query string of GET /v1/area
type AreaQuery struct {
	Width  *uint32 `form:"width" binding:"required"`
	Height *uint32 `form:"height" binding:"required"`
}

// CreateRectangleRequest represents the HTTP request body for saving a rectangle
type CreateRectangleRequest struct {
	Label  string  `json:"label"`
	Width  *uint32 `json:"width" binding:"required"`
	Height *uint32 `json:"height" binding:"required"`
}

// AreaResponse represents the HTTP response of GET /v1/area
type AreaResponse struct {
	Width    uint32 `json:"width"`
	Height   uint32 `json:"height"`
	Area     uint32 `json:"area"`
	Overflow bool   `json:"overflow"`
	Text     string `json:"text"`
}

// RectangleResponse represents the HTTP response for a saved rectangle
type RectangleResponse struct {
	ID        int64     `json:"id"`
	Label     string    `json:"label"`
	Width     uint32    `json:"width"`
	Height    uint32    `json:"height"`
	Area      uint32    `json:"area"`
	Overflow  bool      `json:"overflow"`
	CreatedAt time.Time `json:"created_at"`
}

// ListRectanglesResponse represents the HTTP response for listing rectangles
type ListRectanglesResponse struct {
	Rectangles []RectangleResponse `json:"rectangles"`
	Pagination *Pagination         `json:"pagination,omitempty"`
}

// Pagination represents pagination information
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	TotalPages int64 `json:"total_pages"`
}

// IDResponse carries the ID affected by a write
type IDResponse struct {
	ID int64 `json:"id"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func toResponse(r rectangle.Rectangle) RectangleResponse {
	return RectangleResponse{
		ID:        r.ID,
		Label:     r.Label,
		Width:     r.Width,
		Height:    r.Height,
		Area:      r.Area,
		Overflow:  r.Overflow,
		CreatedAt: r.CreatedAt,
	}
}

// Area handles GET /v1/area
func (h *RectangleHandler) Area(c *gin.Context) {
	var q AreaQuery
	err := c.ShouldBindQuery(&q)
	if err == nil && (strings.TrimSpace(c.Query("width")) == "" || strings.TrimSpace(c.Query("height")) == "") {
		// form binding turns "width=" into 0
		err = errors.New("width and height must not be empty")
	}
	if err != nil {
		h.log.Warn("invalid area query", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "width and height must be integers between 0 and 4294967295",
		})
		return
	}

	resp, err := h.uc.Describe(c.Request.Context(), rectangle.DescribeRequest{Width: *q.Width, Height: *q.Height})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, AreaResponse{
		Width:    resp.Width,
		Height:   resp.Height,
		Area:     resp.Area,
		Overflow: resp.Overflow,
		Text:     resp.Text,
	})
}

// CreateRectangle handles POST /v1/rectangles
func (h *RectangleHandler) CreateRectangle(c *gin.Context) {
	var req CreateRectangleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid create rectangle request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	resp, err := h.uc.CreateRectangle(c.Request.Context(), rectangle.CreateRectangleRequest{
		Label:  req.Label,
		Width:  *req.Width,
		Height: *req.Height,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, IDResponse{ID: resp.ID})
}

// GetRectangle handles GET /v1/rectangles/:id
func (h *RectangleHandler) GetRectangle(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	resp, err := h.uc.GetRectangle(c.Request.Context(), rectangle.GetRectangleRequest{ID: id})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toResponse(resp.Rectangle))
}

// DisplayRectangle handles GET /v1/rectangles/:id/display and answers with the two display lines
func (h *RectangleHandler) DisplayRectangle(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	resp, err := h.uc.GetRectangle(c.Request.Context(), rectangle.GetRectangleRequest{ID: id})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.String(http.StatusOK, "%s", resp.Text)
}

// ListRectangles handles GET /v1/rectangles
func (h *RectangleHandler) ListRectangles(c *gin.Context) {
	page, err := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)
	if err != nil || limit < 1 {
		limit = 10
	}

	resp, err := h.uc.ListRectangles(c.Request.Context(), rectangle.ListRectanglesRequest{
		Query: c.Query("query"),
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	var pagination *Pagination
	if resp.Pagination != nil {
		pagination = &Pagination{
			Total:      resp.Pagination.Total,
			Page:       resp.Pagination.Page,
			Limit:      resp.Pagination.Limit,
			TotalPages: resp.Pagination.TotalPages,
		}
	}

	c.JSON(http.StatusOK, ListRectanglesResponse{
		Rectangles: lo.Map(resp.Rectangles, func(r rectangle.Rectangle, _ int) RectangleResponse { return toResponse(r) }),
		Pagination: pagination,
	})
}

// DeleteRectangle handles DELETE /v1/rectangles/:id
func (h *RectangleHandler) DeleteRectangle(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	resp, err := h.uc.DeleteRectangle(c.Request.Context(), rectangle.DeleteRectangleRequest{ID: id})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, IDResponse{ID: resp.ID})
}

// parseID reads the :id path parameter, answering 400 itself when it is not a number.
func (h *RectangleHandler) parseID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.log.Warn("invalid rectangle id", zap.String("id", idStr), zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Rectangle ID must be a valid number",
		})
		return 0, false
	}
	return id, true
}

// handleError converts usecase errors to HTTP responses. Internal details are never sent to the client.
func (h *RectangleHandler) handleError(c *gin.Context, err error) {
	code := pkgerrors.HTTPStatus(err)
	log := logger.WithContext(c.Request.Context(), h.log)

	if code >= http.StatusInternalServerError {
		log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(code, ErrorResponse{
			Error:   pkgerrors.Code(err),
			Message: "An internal error occurred",
		})
		return
	}

	log.Warn("request rejected", zap.String("path", c.FullPath()), zap.Int("status", code), zap.Error(err))
	c.JSON(code, ErrorResponse{
		Error:   pkgerrors.Code(err),
		Message: err.Error(),
	})
}
