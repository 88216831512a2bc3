package handler

import (
	"net/http"
	"testing"

	partnerapp "github.com/erp/backoffice/internal/application/partner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSupplierBody(suppID, name string) map[string]any {
	return map[string]any{
		"suppId": suppID, "name": name, "picName": "Sari",
		"address": "Jl. Asia Afrika 8, Bandung", "phone": "0227654321",
	}
}

func TestSupplierHandler_CRUD(t *testing.T) {
	api := newTestAPI(t)

	res := api.do(http.MethodPost, "/suppliers", newSupplierBody(" sup-010 ", "CV Benang Emas"))
	require.Equal(t, http.StatusCreated, res.Status, string(res.Body))

	var created partnerapp.SupplierResponse
	api.decode(res, &created)
	assert.Equal(t, "SUP-010", created.SuppID)
	assert.Equal(t, "Active", created.Status)
	assert.Equal(t, "tester", created.CreatedBy)

	var found partnerapp.SupplierResponse
	api.decode(api.do(http.MethodGet, "/suppliers/by-supp-id/sup-010", nil), &found)
	assert.Equal(t, created.ID, found.ID)

	path := "/suppliers/" + created.ID.String()
	var updated partnerapp.SupplierResponse
	api.decode(api.do(http.MethodPut, path, map[string]any{"phone": "0811", "status": "Inactive"}), &updated)
	assert.Equal(t, "0811", updated.Phone)
	assert.Equal(t, "Inactive", updated.Status)
	assert.Equal(t, created.Name, updated.Name)
	assert.Greater(t, updated.Version, created.Version)

	t.Run("blank required field on update", func(t *testing.T) {
		res := api.do(http.MethodPut, path, map[string]any{"name": "   "})
		assert.Equal(t, http.StatusBadRequest, res.Status)
		assert.True(t, res.hasIssue("name"))
	})

	t.Run("delete", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, path, nil).Status)
		assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, path, nil).Status)
		assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, path, nil).Status)
	})
}

func TestSupplierHandler_CreateValidation(t *testing.T) {
	api := newTestAPI(t)

	t.Run("missing fields", func(t *testing.T) {
		res := api.do(http.MethodPost, "/suppliers", map[string]any{"suppId": "SUP-1"})
		assert.Equal(t, http.StatusBadRequest, res.Status)
		require.NotNil(t, res.Error)
		assert.Equal(t, "VALIDATION_FAILED", res.Error.Code)
		for _, path := range []string{"name", "picName", "address", "phone"} {
			assert.True(t, res.hasIssue(path), path)
		}
	})

	t.Run("duplicate code ignores case", func(t *testing.T) {
		require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/suppliers", newSupplierBody("SUP-020", "PT A")).Status)

		res := api.do(http.MethodPost, "/suppliers", newSupplierBody("sup-020", "PT B"))
		assert.Equal(t, http.StatusConflict, res.Status)
		assert.Equal(t, "CONFLICT", res.Error.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		res := api.do(http.MethodPost, "/suppliers", `{"suppId":`)
		assert.Equal(t, http.StatusBadRequest, res.Status)
		assert.Equal(t, "VALIDATION_FAILED", res.Error.Code)
	})
}

func TestSupplierHandler_ListSearch(t *testing.T) {
	api := newTestAPI(t)
	for _, b := range []map[string]any{
		newSupplierBody("SUP-001", "PT Tekstil Jaya"),
		newSupplierBody("SUP-002", "CV Kancing Makmur"),
		newSupplierBody("SUP-003", "UD Tekstil Abadi"),
	} {
		require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/suppliers", b).Status)
	}

	var list []partnerapp.SupplierResponse
	res := api.do(http.MethodGet, "/suppliers?search=TEKSTIL&page_size=1", nil)
	api.decode(res, &list)
	assert.Len(t, list, 1)
	assert.Equal(t, int64(2), res.Meta.Total)
	assert.Equal(t, 1, res.Meta.PageSize)

	res = api.do(http.MethodGet, "/suppliers?status=Archived", nil)
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.True(t, res.hasIssue("status"))
}
