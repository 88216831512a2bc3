package handler

import (
	"net/http"
	"testing"

	warehouseapp "github.com/erp/backoffice/internal/application/warehouse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeHandler_CreateAndGet(t *testing.T) {
	api := newTestAPI(t)

	res := api.do(http.MethodPost, "/warehouse/nodes", map[string]any{
		"name": "Gudang Utama", "nodeType": "Warehouse", "address": "Jl. Industri 1",
	})
	require.Equal(t, http.StatusCreated, res.Status, string(res.Body))

	var node warehouseapp.NodeResponse
	api.decode(res, &node)
	assert.Equal(t, "WH0001", node.NodeID)
	assert.Equal(t, "FIFO", node.Method)
	assert.Equal(t, "Active", node.Status)
	assert.Equal(t, "tester", node.CreatedBy)

	var byCode warehouseapp.NodeResponse
	api.decode(api.do(http.MethodGet, "/warehouse/nodes/by-node-id/wh0001", nil), &byCode)
	assert.Equal(t, node.ID, byCode.ID)
}

func TestNodeHandler_CreateValidation(t *testing.T) {
	api := newTestAPI(t)

	t.Run("warehouse without address", func(t *testing.T) {
		res := api.do(http.MethodPost, "/warehouse/nodes", map[string]any{"name": "No Address", "nodeType": "Warehouse"})
		assert.Equal(t, http.StatusBadRequest, res.Status)
		require.NotNil(t, res.Error)
		assert.Equal(t, "VALIDATION_FAILED", res.Error.Code)
		assert.True(t, res.hasIssue("address"))
		assert.NotEmpty(t, res.Error.RequestID)
	})

	t.Run("binding failure uses the same code", func(t *testing.T) {
		res := api.do(http.MethodPost, "/warehouse/nodes", map[string]any{"nodeType": "Warehouse"})
		assert.Equal(t, http.StatusBadRequest, res.Status)
		assert.Equal(t, "VALIDATION_FAILED", res.Error.Code)
		assert.True(t, res.hasIssue("name"))
	})

	t.Run("malformed manual id", func(t *testing.T) {
		res := api.do(http.MethodPost, "/warehouse/nodes", map[string]any{
			"nodeId": "W1", "name": "Bad", "nodeType": "Warehouse", "address": "x",
		})
		assert.Equal(t, http.StatusBadRequest, res.Status)
		assert.True(t, res.hasIssue("nodeId"))
	})

	t.Run("duplicate manual id", func(t *testing.T) {
		body := map[string]any{"nodeId": "WH0100", "name": "A", "nodeType": "Warehouse", "address": "x"}
		require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/warehouse/nodes", body).Status)

		res := api.do(http.MethodPost, "/warehouse/nodes", body)
		assert.Equal(t, http.StatusConflict, res.Status)
		assert.Equal(t, "CONFLICT", res.Error.Code)
	})
}

func TestNodeHandler_GetErrors(t *testing.T) {
	api := newTestAPI(t)

	res := api.do(http.MethodGet, "/warehouse/nodes/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "BAD_REQUEST", res.Error.Code)

	res = api.do(http.MethodGet, "/warehouse/nodes/7f6c2a4e-2d7b-4c55-9a55-3f1c8e2f9b10", nil)
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Equal(t, "NOT_FOUND", res.Error.Code)
}

func TestNodeHandler_TreeSearchAndDelete(t *testing.T) {
	api := newTestAPI(t)

	var wh, aisle warehouseapp.NodeResponse
	api.decode(api.do(http.MethodPost, "/warehouse/nodes", map[string]any{
		"name": "Gudang Utama", "nodeType": "Warehouse", "address": "Jl. Industri 1",
	}), &wh)
	api.decode(api.do(http.MethodPost, "/warehouse/nodes", map[string]any{
		"name": "Lorong A", "nodeType": "Aisle", "parentId": wh.ID,
	}), &aisle)
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/warehouse/nodes", map[string]any{
		"name": "Rak 1", "nodeType": "Rack", "parentId": aisle.ID,
	}).Status)

	var forest []*warehouseapp.TreeNodeResponse
	api.decode(api.do(http.MethodGet, "/warehouse/nodes/tree", nil), &forest)
	require.Len(t, forest, 1)
	require.Len(t, forest[0].Children, 1)
	assert.Equal(t, "Lorong A", forest[0].Children[0].Name)
	assert.Len(t, forest[0].Children[0].Children, 1)

	search := api.do(http.MethodGet, "/warehouse/nodes?search=wh01", nil)
	require.Equal(t, http.StatusOK, search.Status)
	require.NotNil(t, search.Meta)
	assert.Equal(t, int64(1), search.Meta.Total)

	t.Run("cycle is rejected", func(t *testing.T) {
		res := api.do(http.MethodPut, "/warehouse/nodes/"+wh.ID.String(), map[string]any{"parentId": aisle.ID})
		assert.Equal(t, http.StatusBadRequest, res.Status)
		assert.True(t, res.hasIssue("parentId"))
	})

	t.Run("cascade delete", func(t *testing.T) {
		var out struct {
			Deleted int `json:"deleted"`
		}
		api.decode(api.do(http.MethodDelete, "/warehouse/nodes/"+wh.ID.String()+"?cascade=true", nil), &out)
		assert.Equal(t, 3, out.Deleted)

		var after []*warehouseapp.TreeNodeResponse
		api.decode(api.do(http.MethodGet, "/warehouse/nodes/tree", nil), &after)
		assert.Empty(t, after)
	})
}

func TestNodeHandler_PlainDeleteKeepsChildren(t *testing.T) {
	api := newTestAPI(t)

	var wh warehouseapp.NodeResponse
	api.decode(api.do(http.MethodPost, "/warehouse/nodes", map[string]any{
		"name": "Gudang", "nodeType": "Warehouse", "address": "x",
	}), &wh)
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/warehouse/nodes", map[string]any{
		"name": "Lorong", "nodeType": "Aisle", "parentId": wh.ID,
	}).Status)

	res := api.do(http.MethodDelete, "/warehouse/nodes/"+wh.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, res.Status)

	var forest []*warehouseapp.TreeNodeResponse
	api.decode(api.do(http.MethodGet, "/warehouse/nodes/tree", nil), &forest)
	require.Len(t, forest, 1)
	assert.Equal(t, "Lorong", forest[0].Name)
}
