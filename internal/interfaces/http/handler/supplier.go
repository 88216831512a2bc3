package handler

import (
	partnerapp "github.com/erp/backoffice/internal/application/partner"
	"github.com/gin-gonic/gin"
)

// SupplierHandler handles supplier-related API endpoints
type SupplierHandler struct {
	BaseHandler
	supplierService *partnerapp.SupplierService
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(supplierService *partnerapp.SupplierService) *SupplierHandler {
	return &SupplierHandler{supplierService: supplierService}
}

// RegisterRoutes mounts /suppliers
func (h *SupplierHandler) RegisterRoutes(rg *gin.RouterGroup) {
	suppliers := rg.Group("/suppliers")
	suppliers.POST("", h.Create)
	suppliers.GET("", h.List)
	suppliers.GET("/by-supp-id/:suppId", h.GetBySuppID)
	suppliers.GET("/:id", h.GetByID)
	suppliers.PUT("/:id", h.Update)
	suppliers.DELETE("/:id", h.Delete)
}

// Create handles POST /suppliers
func (h *SupplierHandler) Create(c *gin.Context) {
	var req partnerapp.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	supplier, err := h.supplierService.Create(c.Request.Context(), req, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, supplier)
}

// List handles GET /suppliers, newest first. search covers suppId, name
// and picName.
func (h *SupplierHandler) List(c *gin.Context) {
	var filter partnerapp.SupplierListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	suppliers, total, err := h.supplierService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, suppliers, total, filter.Page, filter.PageSize)
}

// GetByID handles GET /suppliers/:id
func (h *SupplierHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "supplier")
	if !ok {
		return
	}
	supplier, err := h.supplierService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// GetBySuppID handles GET /suppliers/by-supp-id/:suppId
func (h *SupplierHandler) GetBySuppID(c *gin.Context) {
	supplier, err := h.supplierService.GetBySuppID(c.Request.Context(), c.Param("suppId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// Update handles PUT /suppliers/:id
func (h *SupplierHandler) Update(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "supplier")
	if !ok {
		return
	}
	var req partnerapp.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	supplier, err := h.supplierService.Update(c.Request.Context(), id, req, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// Delete handles DELETE /suppliers/:id
func (h *SupplierHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "supplier")
	if !ok {
		return
	}
	if err := h.supplierService.Delete(c.Request.Context(), id, actor(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
