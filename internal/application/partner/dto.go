package partner

import (
	"time"

	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/google/uuid"
)

// CreateSupplierRequest represents a request to create a new supplier
type CreateSupplierRequest struct {
	SuppID  string `json:"suppId" binding:"required,max=50"`
	Name    string `json:"name" binding:"required,max=200"`
	PICName string `json:"picName" binding:"required,max=100"`
	Address string `json:"address" binding:"required,max=500"`
	Phone   string `json:"phone" binding:"required,max=50"`
	Status  string `json:"status" binding:"omitempty,oneof=Active Inactive"`
}

// UpdateSupplierRequest represents a request to update a supplier
type UpdateSupplierRequest struct {
	SuppID  *string `json:"suppId" binding:"omitempty,max=50"`
	Name    *string `json:"name" binding:"omitempty,max=200"`
	PICName *string `json:"picName" binding:"omitempty,max=100"`
	Address *string `json:"address" binding:"omitempty,max=500"`
	Phone   *string `json:"phone" binding:"omitempty,max=50"`
	Status  *string `json:"status" binding:"omitempty,oneof=Active Inactive"`
}

// SupplierListFilter represents filter options for the supplier list
type SupplierListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=Active Inactive"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SupplierResponse represents a supplier in API responses
type SupplierResponse struct {
	ID        uuid.UUID `json:"id"`
	SuppID    string    `json:"suppId"`
	Name      string    `json:"name"`
	PICName   string    `json:"picName"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Status    string    `json:"status"`
	Version   int       `json:"version"`
	CreatedBy string    `json:"createdBy"`
	UpdatedBy string    `json:"updatedBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToSupplierResponse converts a domain Supplier to SupplierResponse
func ToSupplierResponse(s *partner.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:        s.ID,
		SuppID:    s.SuppID,
		Name:      s.Name,
		PICName:   s.PICName,
		Address:   s.Address,
		Phone:     s.Phone,
		Status:    string(s.Status),
		Version:   s.Version,
		CreatedBy: s.CreatedBy,
		UpdatedBy: s.UpdatedBy,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// ToSupplierResponses converts a slice of domain Suppliers to SupplierResponses
func ToSupplierResponses(suppliers []*partner.Supplier) []SupplierResponse {
	out := make([]SupplierResponse, len(suppliers))
	for i, s := range suppliers {
		out[i] = ToSupplierResponse(s)
	}
	return out
}
