package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	procurementapp "github.com/erp/backoffice/internal/application/procurement"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PurchaseOrderHandler handles purchase orders and their line items
type PurchaseOrderHandler struct {
	BaseHandler
	orderService *procurementapp.PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orderService *procurementapp.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orderService: orderService}
}

// RegisterRoutes mounts /purchase-orders and the nested line items
func (h *PurchaseOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/purchase-orders")
	orders.POST("", h.Create)
	orders.GET("", h.List)
	orders.GET("/export", h.Export)
	orders.GET("/by-po-id/:poId", h.GetByPoID)
	orders.GET("/:id", h.GetByID)
	orders.PUT("/:id", h.Update)
	orders.DELETE("/:id", h.Delete)

	orders.GET("/:id/items", h.ListItems)
	orders.PUT("/:id/items", h.ReplaceItems)
	orders.POST("/:id/items", h.AddItem)
	orders.PUT("/:id/items/:lineId", h.UpdateItem)
	orders.DELETE("/:id/items/:lineId", h.DeleteItem)
}

// Create handles POST /purchase-orders. The order starts in DRAFT; an
// omitted poId is minted from the node and PO date.
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req procurementapp.CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	po, err := h.orderService.Create(c.Request.Context(), req, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, po)
}

// List handles GET /purchase-orders. search matches poId or supplier name.
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	var filter procurementapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	orders, total, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// Export handles GET /purchase-orders/export. It takes the list filters and
// answers with an XLSX register.
func (h *PurchaseOrderHandler) Export(c *gin.Context) {
	var filter procurementapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := h.orderService.ExportRegister(c.Request.Context(), &buf, filter); err != nil {
		h.HandleError(c, err)
		return
	}
	filename := fmt.Sprintf("purchase-orders-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *PurchaseOrderHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "purchase order")
	if !ok {
		return
	}
	po, err := h.orderService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, po)
}

func (h *PurchaseOrderHandler) GetByPoID(c *gin.Context) {
	po, err := h.orderService.GetByPoID(c.Request.Context(), c.Param("poId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, po)
}

// Update handles PUT /purchase-orders/:id. Status moves through here too;
// after submission only status and notes may change.
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "purchase order")
	if !ok {
		return
	}
	var req procurementapp.UpdatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	po, err := h.orderService.Update(c.Request.Context(), id, req, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, po)
}

func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "purchase order")
	if !ok {
		return
	}
	if err := h.orderService.Delete(c.Request.Context(), id, actor(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *PurchaseOrderHandler) ListItems(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "purchase order")
	if !ok {
		return
	}
	items, err := h.orderService.ListLineItems(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// ReplaceItems handles PUT /purchase-orders/:id/items and returns the order
// with its recomputed totals.
func (h *PurchaseOrderHandler) ReplaceItems(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "purchase order")
	if !ok {
		return
	}
	var req procurementapp.ReplaceItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	po, err := h.orderService.ReplaceItems(c.Request.Context(), id, req, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, po)
}

func (h *PurchaseOrderHandler) AddItem(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "purchase order")
	if !ok {
		return
	}
	var req procurementapp.LineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	item, err := h.orderService.AddLineItem(c.Request.Context(), id, req, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

func (h *PurchaseOrderHandler) UpdateItem(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "purchase order")
	if !ok {
		return
	}
	lineID, ok := h.pathUUID(c, "lineId", "line item")
	if !ok {
		return
	}
	var req procurementapp.UpdateLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	item, err := h.orderService.UpdateLineItem(c.Request.Context(), id, lineID, req, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// DeleteItem handles DELETE /purchase-orders/:id/items/:lineId. The last
// item may go; the order then totals 0 and cannot be submitted.
func (h *PurchaseOrderHandler) DeleteItem(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "purchase order")
	if !ok {
		return
	}
	lineID, ok := h.pathUUID(c, "lineId", "line item")
	if !ok {
		return
	}
	po, err := h.orderService.DeleteLineItem(c.Request.Context(), id, lineID, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, po)
}
