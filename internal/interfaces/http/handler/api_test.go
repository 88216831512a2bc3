package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	catalogapp "github.com/erp/backoffice/internal/application/catalog"
	partnerapp "github.com/erp/backoffice/internal/application/partner"
	procurementapp "github.com/erp/backoffice/internal/application/procurement"
	warehouseapp "github.com/erp/backoffice/internal/application/warehouse"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/lock"
	"github.com/erp/backoffice/internal/infrastructure/persistence"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/erp/backoffice/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testAPI drives the full HTTP stack over an in-memory sqlite database
type testAPI struct {
	t      *testing.T
	engine *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })

	seq := persistence.NewSequencer(lock.NewLocalGuard(), 1)
	nodeRepo := persistence.NewGormNodeRepository(db.DB, seq)
	uomRepo := persistence.NewGormUomRepository(db.DB, seq)
	itemRepo := persistence.NewGormItemRepository(db.DB, seq)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB, seq)

	engine, err := router.NewEngine(router.EngineConfig{
		Mode: gin.TestMode,
		CORS: middleware.DefaultCORSConfig(),
	}, zap.NewNop())
	require.NoError(t, err)

	router.NewRouter(engine).Register(
		NewNodeHandler(warehouseapp.NewNodeService(nodeRepo)),
		NewUomHandler(catalogapp.NewUomService(uomRepo)),
		NewItemHandler(catalogapp.NewItemService(itemRepo)),
		NewSupplierHandler(partnerapp.NewSupplierService(supplierRepo)),
		NewPurchaseOrderHandler(procurementapp.NewPurchaseOrderService(orderRepo, nodeRepo, supplierRepo, itemRepo)),
	).Setup()

	return &testAPI{t: t, engine: engine}
}

// apiResult is the decoded response envelope
type apiResult struct {
	Status  int             `json:"-"`
	Header  http.Header     `json:"-"`
	Body    []byte          `json:"-"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"requestId"`
		Field     string `json:"field"`
		Issues    []struct {
			Path    string `json:"path"`
			Message string `json:"message"`
		} `json:"issues"`
	} `json:"error"`
	Meta *struct {
		Total    int64 `json:"total"`
		Page     int   `json:"page"`
		PageSize int   `json:"pageSize"`
	} `json:"meta"`
}

func (r *apiResult) hasIssue(path string) bool {
	if r.Error == nil {
		return false
	}
	for _, is := range r.Error.Issues {
		if is.Path == path {
			return true
		}
	}
	return false
}

func (a *testAPI) do(method, path string, body any) *apiResult {
	a.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderActorID, "tester")
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	res := &apiResult{Status: w.Code, Header: w.Header(), Body: w.Body.Bytes()}
	if w.Code != http.StatusNoContent && json.Valid(res.Body) {
		require.NoError(a.t, json.Unmarshal(res.Body, res))
	}
	return res
}

// decode unmarshals the data field of a successful response into out
func (a *testAPI) decode(res *apiResult, out any) {
	a.t.Helper()
	require.True(a.t, res.Success, "status %d: %s", res.Status, res.Body)
	require.NoError(a.t, json.Unmarshal(res.Data, out))
}

// seed creates one warehouse, unit, item and supplier for order tests
type seed struct {
	nodeID     string
	nodeUUID   string
	uomID      string
	itemID     string
	supplierID string
}

func (a *testAPI) seed() seed {
	a.t.Helper()
	var s seed

	var node warehouseapp.NodeResponse
	a.decode(a.do(http.MethodPost, "/warehouse/nodes", map[string]any{
		"name": "Gudang Utama", "nodeType": "Warehouse", "address": "Jl. Industri 1",
	}), &node)
	s.nodeID, s.nodeUUID = node.NodeID, node.ID.String()

	var uom catalogapp.UomResponse
	a.decode(a.do(http.MethodPost, "/uoms", map[string]any{"code": "PCS", "name": "Pieces"}), &uom)
	s.uomID = uom.ID.String()

	var item catalogapp.ItemResponse
	a.decode(a.do(http.MethodPost, "/items", map[string]any{"name": "Kemeja Flanel", "uomId": s.uomID}), &item)
	s.itemID = item.ID.String()

	var supplier partnerapp.SupplierResponse
	a.decode(a.do(http.MethodPost, "/suppliers", map[string]any{
		"suppId": "SUP-001", "name": "PT Tekstil Jaya", "picName": "Budi",
		"address": "Bandung", "phone": "0221234567",
	}), &supplier)
	s.supplierID = supplier.ID.String()

	return s
}

func (a *testAPI) createOrder(s seed, overrides map[string]any) *apiResult {
	a.t.Helper()
	body := map[string]any{
		"nodeId":       s.nodeID,
		"poDate":       "2026-01-15",
		"requiredDate": "2026-01-20",
		"supplierId":   s.supplierID,
		"paymentType":  "PAYMENT_AFTER_DELIVERY",
		"items": []map[string]any{
			{"itemId": s.itemID, "quantity": "10", "unitPrice": "100"},
		},
	}
	for k, v := range overrides {
		body[k] = v
	}
	return a.do(http.MethodPost, "/purchase-orders", body)
}
