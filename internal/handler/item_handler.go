package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stockroom-api/internal/middleware"
	"github.com/stockroom-api/internal/repository"
	"github.com/stockroom-api/internal/service"
	"github.com/stockroom-api/pkg/response"
)

// ItemHandler handles item API requests
type ItemHandler struct {
	itemService *service.ItemService
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(itemService *service.ItemService) *ItemHandler {
	return &ItemHandler{
		itemService: itemService,
	}
}

// ListItems handles listing the owner's items
// GET /api/items
func (h *ItemHandler) ListItems(c *gin.Context) {
	owner := middleware.GetCurrentUser(c)

	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil {
		skip = 0
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil {
		limit = 10
	}

	opts := repository.ListOptions{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		SortBy:   c.DefaultQuery("sort_by", "created_at"),
		Order:    c.DefaultQuery("order", "desc"),
		Skip:     skip,
		Limit:    limit,
	}
	if raw, ok := c.GetQuery("is_active"); ok {
		if isActive, err := strconv.ParseBool(raw); err == nil {
			opts.IsActive = &isActive
		}
	}

	resp, err := h.itemService.List(owner, opts)
	if err != nil {
		response.InternalError(c, "Could not list items")
		return
	}

	response.OK(c, resp)
}

// GetStats handles the owner's inventory summary
// GET /api/items/stats
func (h *ItemHandler) GetStats(c *gin.Context) {
	owner := middleware.GetCurrentUser(c)

	stats, err := h.itemService.Stats(owner)
	if err != nil {
		response.InternalError(c, "Could not compute stats")
		return
	}

	response.OK(c, stats)
}

// GetItem handles getting a single item
// GET /api/items/:id
func (h *ItemHandler) GetItem(c *gin.Context) {
	owner := middleware.GetCurrentUser(c)

	itemID, ok := parseItemID(c)
	if !ok {
		return
	}

	item, err := h.itemService.Get(owner, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			response.NotFound(c, "Item not found")
			return
		}
		response.InternalError(c, "Could not load item")
		return
	}

	response.OK(c, item)
}

// CreateItem handles item creation
// POST /api/items
func (h *ItemHandler) CreateItem(c *gin.Context) {
	owner := middleware.GetCurrentUser(c)

	var req service.ItemCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := h.itemService.Create(owner, &req)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			response.BadRequest(c, verr.Message)
			return
		}
		response.InternalError(c, "Could not create item")
		return
	}

	response.Created(c, item)
}

// ReplaceItem handles full item replacement
// PUT /api/items/:id
func (h *ItemHandler) ReplaceItem(c *gin.Context) {
	owner := middleware.GetCurrentUser(c)

	itemID, ok := parseItemID(c)
	if !ok {
		return
	}

	var req service.ItemCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := h.itemService.Replace(owner, itemID, &req)
	if err != nil {
		h.renderItemError(c, err)
		return
	}

	response.OK(c, item)
}

// PatchItem handles partial item updates
// PATCH /api/items/:id
func (h *ItemHandler) PatchItem(c *gin.Context) {
	owner := middleware.GetCurrentUser(c)

	itemID, ok := parseItemID(c)
	if !ok {
		return
	}

	var req service.ItemPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := h.itemService.Patch(owner, itemID, &req)
	if err != nil {
		h.renderItemError(c, err)
		return
	}

	response.OK(c, item)
}

// DeleteItem handles item deletion
// DELETE /api/items/:id
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	owner := middleware.GetCurrentUser(c)

	itemID, ok := parseItemID(c)
	if !ok {
		return
	}

	if err := h.itemService.Delete(owner, itemID); err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			response.NotFound(c, "Item not found")
			return
		}
		response.InternalError(c, "Could not delete item")
		return
	}

	response.NoContent(c)
}

// renderItemError maps service errors of mutating item calls to responses
func (h *ItemHandler) renderItemError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.Is(err, repository.ErrItemNotFound):
		response.NotFound(c, "Item not found")
	case errors.As(err, &verr):
		response.BadRequest(c, verr.Message)
	default:
		response.InternalError(c, "Could not update item")
	}
}

// parseItemID reads the :id path parameter. A non-numeric ID cannot refer to
// any item, so it renders as not found rather than a malformed request.
func parseItemID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.NotFound(c, "Item not found")
		return 0, false
	}
	return uint(id), true
}

// RegisterRoutes registers item routes. The static stats route is declared
// before the :id routes so it is never captured as an ID.
func (h *ItemHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	items := rg.Group("/items")
	items.Use(authMiddleware)
	{
		items.GET("", h.ListItems)
		items.GET("/stats", h.GetStats)
		items.GET("/:id", h.GetItem)
		items.POST("", h.CreateItem)
		items.PUT("/:id", h.ReplaceItem)
		items.PATCH("/:id", h.PatchItem)
		items.DELETE("/:id", h.DeleteItem)
	}
}
