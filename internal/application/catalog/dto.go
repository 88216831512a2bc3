package catalog

import (
	"time"

	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// CreateUomRequest creates a unit of measure; an empty uomId is minted
type CreateUomRequest struct {
	UomID  string `json:"uomId" binding:"omitempty,max=10"`
	Code   string `json:"code" binding:"required,max=20"`
	Name   string `json:"name" binding:"required,max=100"`
	Status string `json:"status" binding:"omitempty,oneof=Active Inactive"`
}

// UpdateUomRequest patches code and name. Status has its own endpoints.
type UpdateUomRequest struct {
	Code *string `json:"code" binding:"omitempty,max=20"`
	Name *string `json:"name" binding:"omitempty,max=100"`
}

// ListFilter is the catalog list query shared by units and items
type ListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status"`
	UomID    string `form:"uomId" binding:"omitempty,uuid"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f ListFilter) toFilter(defaultOrder string) shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
	}
	if filter.OrderBy == "" {
		filter.OrderBy = defaultOrder
		filter.OrderDir = "asc"
	}
	filter = filter.Normalize()
	if f.Status != "" {
		filter.Filters[catalog.FilterStatus] = f.Status
	}
	if f.UomID != "" {
		filter.Filters[catalog.FilterUomID] = f.UomID
	}
	return filter
}

type UomResponse struct {
	ID        uuid.UUID `json:"id"`
	UomID     string    `json:"uomId"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Version   int       `json:"version"`
	CreatedBy string    `json:"createdBy"`
	UpdatedBy string    `json:"updatedBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func ToUomResponse(u *catalog.Uom) UomResponse {
	return UomResponse{
		ID:        u.ID,
		UomID:     u.UomID,
		Code:      u.Code,
		Name:      u.Name,
		Status:    string(u.Status),
		Version:   u.Version,
		CreatedBy: u.CreatedBy,
		UpdatedBy: u.UpdatedBy,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func ToUomResponses(units []*catalog.Uom) []UomResponse {
	out := make([]UomResponse, len(units))
	for i, u := range units {
		out[i] = ToUomResponse(u)
	}
	return out
}

// CreateItemRequest creates an item. Without a sku one is derived from the
// consonants of the name.
type CreateItemRequest struct {
	SKU    string    `json:"sku" binding:"omitempty,max=10"`
	Name   string    `json:"name" binding:"required,max=200"`
	Brand  string    `json:"brand" binding:"max=100"`
	UomID  uuid.UUID `json:"uomId" binding:"required"`
	Status string    `json:"status" binding:"omitempty,oneof=Active Inactive Archived"`
}

type UpdateItemRequest struct {
	SKU    *string    `json:"sku" binding:"omitempty,max=10"`
	Name   *string    `json:"name" binding:"omitempty,max=200"`
	Brand  *string    `json:"brand" binding:"omitempty,max=100"`
	UomID  *uuid.UUID `json:"uomId"`
	Status *string    `json:"status" binding:"omitempty,oneof=Active Inactive Archived"`
}

type ItemResponse struct {
	ID        uuid.UUID `json:"id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Brand     string    `json:"brand"`
	UomID     uuid.UUID `json:"uomId"`
	Status    string    `json:"status"`
	Version   int       `json:"version"`
	CreatedBy string    `json:"createdBy"`
	UpdatedBy string    `json:"updatedBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func ToItemResponse(i *catalog.Item) ItemResponse {
	return ItemResponse{
		ID:        i.ID,
		SKU:       i.SKU,
		Name:      i.Name,
		Brand:     i.Brand,
		UomID:     i.UomID,
		Status:    string(i.Status),
		Version:   i.Version,
		CreatedBy: i.CreatedBy,
		UpdatedBy: i.UpdatedBy,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

func ToItemResponses(items []*catalog.Item) []ItemResponse {
	out := make([]ItemResponse, len(items))
	for i, it := range items {
		out[i] = ToItemResponse(it)
	}
	return out
}
