package handler

import (
	catalogapp "github.com/erp/backoffice/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// UomHandler serves units of measure
type UomHandler struct {
	BaseHandler
	uomService *catalogapp.UomService
}

func NewUomHandler(uomService *catalogapp.UomService) *UomHandler {
	return &UomHandler{uomService: uomService}
}

// RegisterRoutes mounts /uoms
func (h *UomHandler) RegisterRoutes(rg *gin.RouterGroup) {
	uoms := rg.Group("/uoms")
	uoms.POST("", h.Create)
	uoms.GET("", h.List)
	uoms.GET("/active", h.ListActive)
	uoms.GET("/:id", h.GetByID)
	uoms.PUT("/:id", h.Update)
	uoms.POST("/:id/deactivate", h.Deactivate)
	uoms.POST("/:id/activate", h.Activate)
	uoms.DELETE("/:id", h.Delete)
}

func (h *UomHandler) Create(c *gin.Context) {
	var req catalogapp.CreateUomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	uom, err := h.uomService.Create(c.Request.Context(), req, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, uom)
}

func (h *UomHandler) List(c *gin.Context) {
	var filter catalogapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	uoms, total, err := h.uomService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, uoms, total, filter.Page, filter.PageSize)
}

// ListActive handles GET /uoms/active, the picker list ordered by name
func (h *UomHandler) ListActive(c *gin.Context) {
	uoms, err := h.uomService.ListActive(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, uoms)
}

func (h *UomHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "UOM")
	if !ok {
		return
	}
	uom, err := h.uomService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, uom)
}

func (h *UomHandler) Update(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "UOM")
	if !ok {
		return
	}
	var req catalogapp.UpdateUomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	uom, err := h.uomService.Update(c.Request.Context(), id, req, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, uom)
}

// Deactivate handles POST /uoms/:id/deactivate. It is refused while active
// items still use the unit.
func (h *UomHandler) Deactivate(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "UOM")
	if !ok {
		return
	}
	uom, err := h.uomService.Deactivate(c.Request.Context(), id, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, uom)
}

func (h *UomHandler) Activate(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "UOM")
	if !ok {
		return
	}
	uom, err := h.uomService.Activate(c.Request.Context(), id, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, uom)
}

func (h *UomHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "UOM")
	if !ok {
		return
	}
	if err := h.uomService.Delete(c.Request.Context(), id, actor(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ItemHandler serves stock-keeping items
type ItemHandler struct {
	BaseHandler
	itemService *catalogapp.ItemService
}

func NewItemHandler(itemService *catalogapp.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

// RegisterRoutes mounts /items
func (h *ItemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	items := rg.Group("/items")
	items.POST("", h.Create)
	items.GET("", h.List)
	items.GET("/by-sku/:sku", h.GetBySKU)
	items.GET("/:id", h.GetByID)
	items.PUT("/:id", h.Update)
	items.DELETE("/:id", h.Delete)
}

// Create handles POST /items. Without a sku one is derived from the name.
func (h *ItemHandler) Create(c *gin.Context) {
	var req catalogapp.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	item, err := h.itemService.Create(c.Request.Context(), req, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

func (h *ItemHandler) List(c *gin.Context) {
	var filter catalogapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	items, total, err := h.itemService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

func (h *ItemHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "item")
	if !ok {
		return
	}
	item, err := h.itemService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

func (h *ItemHandler) GetBySKU(c *gin.Context) {
	item, err := h.itemService.GetBySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

func (h *ItemHandler) Update(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "item")
	if !ok {
		return
	}
	var req catalogapp.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	item, err := h.itemService.Update(c.Request.Context(), id, req, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

func (h *ItemHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "item")
	if !ok {
		return
	}
	if err := h.itemService.Delete(c.Request.Context(), id, actor(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
