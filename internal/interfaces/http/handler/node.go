package handler

import (
	"strconv"

	warehouseapp "github.com/erp/backoffice/internal/application/warehouse"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// NodeHandler serves the warehouse hierarchy
type NodeHandler struct {
	BaseHandler
	nodeService *warehouseapp.NodeService
}

// NewNodeHandler creates a new NodeHandler
func NewNodeHandler(nodeService *warehouseapp.NodeService) *NodeHandler {
	return &NodeHandler{nodeService: nodeService}
}

// RegisterRoutes mounts /warehouse/nodes
func (h *NodeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	nodes := rg.Group("/warehouse/nodes")
	nodes.POST("", h.Create)
	nodes.GET("", h.List)
	nodes.GET("/tree", h.Tree)
	nodes.GET("/by-node-id/:nodeId", h.GetByNodeID)
	nodes.GET("/:id", h.GetByID)
	nodes.PUT("/:id", h.Update)
	nodes.DELETE("/:id", h.Delete)
}

// Create handles POST /warehouse/nodes
func (h *NodeHandler) Create(c *gin.Context) {
	var req warehouseapp.CreateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	node, err := h.nodeService.Create(c.Request.Context(), req, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, node)
}

// List handles GET /warehouse/nodes. search matches names and loosely
// typed identifiers, so "wh01" finds WH0001.
func (h *NodeHandler) List(c *gin.Context) {
	var filter warehouseapp.NodeListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	nodes, total, err := h.nodeService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, nodes, total, filter.Page, filter.PageSize)
}

// Tree handles GET /warehouse/nodes/tree?rootId=&rootType=
func (h *NodeHandler) Tree(c *gin.Context) {
	var filter warehouseapp.TreeFilter
	if raw := c.Query("rootId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid root ID format")
			return
		}
		filter.RootID = &id
	}
	filter.RootType = c.Query("rootType")

	forest, err := h.nodeService.ListTree(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, forest)
}

func (h *NodeHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "node")
	if !ok {
		return
	}
	node, err := h.nodeService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, node)
}

func (h *NodeHandler) GetByNodeID(c *gin.Context) {
	node, err := h.nodeService.GetByNodeID(c.Request.Context(), c.Param("nodeId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, node)
}

func (h *NodeHandler) Update(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "node")
	if !ok {
		return
	}
	var req warehouseapp.UpdateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	node, err := h.nodeService.Update(c.Request.Context(), id, req, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, node)
}

// Delete handles DELETE /warehouse/nodes/:id. With cascade=true every live
// descendant goes too; otherwise children are left in place as roots.
func (h *NodeHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "node")
	if !ok {
		return
	}
	cascade, _ := strconv.ParseBool(c.DefaultQuery("cascade", "false"))
	if !cascade {
		if err := h.nodeService.Delete(c.Request.Context(), id, actor(c)); err != nil {
			h.HandleError(c, err)
			return
		}
		h.NoContent(c)
		return
	}

	n, err := h.nodeService.DeleteSubtree(c.Request.Context(), id, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"deleted": n})
}
