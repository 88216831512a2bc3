package procurement

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/erp/backoffice/internal/domain/procurement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Date is a calendar day. It accepts "2006-01-02" or a full RFC 3339
// timestamp and always renders as "2006-01-02".
type Date struct {
	time.Time
}

// NewDate wraps t as a Date
func NewDate(t time.Time) Date {
	return Date{Time: t}
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

// LineItemRequest is one ordered item
type LineItemRequest struct {
	ItemID    uuid.UUID       `json:"itemId" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

func (r LineItemRequest) toInput() procurement.LineItemInput {
	return procurement.LineItemInput{ItemID: r.ItemID, Quantity: r.Quantity, UnitPrice: r.UnitPrice}
}

func toInputs(reqs []LineItemRequest) []procurement.LineItemInput {
	out := make([]procurement.LineItemInput, len(reqs))
	for i, r := range reqs {
		out[i] = r.toInput()
	}
	return out
}

// CreatePurchaseOrderRequest creates a DRAFT purchase order with its items.
// An empty poId is minted as NODEID-PO-YYMM-NNNN.
type CreatePurchaseOrderRequest struct {
	PoID         string            `json:"poId" binding:"omitempty,max=30"`
	NodeID       string            `json:"nodeId" binding:"required"`
	PoDate       Date              `json:"poDate"`
	RequiredDate Date              `json:"requiredDate"`
	SupplierID   uuid.UUID         `json:"supplierId" binding:"required"`
	PaymentType  string            `json:"paymentType" binding:"required"`
	PaidAmount   decimal.Decimal   `json:"paidAmount"`
	DPPercentage *decimal.Decimal  `json:"dpPercentage"`
	DPAmount     *decimal.Decimal  `json:"dpAmount"`
	Notes        string            `json:"notes" binding:"max=1000"`
	Items        []LineItemRequest `json:"items" binding:"dive"`
}

// UpdatePurchaseOrderRequest patches a purchase order. Outside DRAFT only
// status and notes may change.
type UpdatePurchaseOrderRequest struct {
	PoID         *string          `json:"poId" binding:"omitempty,max=30"`
	NodeID       *string          `json:"nodeId"`
	PoDate       *Date            `json:"poDate"`
	RequiredDate *Date            `json:"requiredDate"`
	SupplierID   *uuid.UUID       `json:"supplierId"`
	PaymentType  *string          `json:"paymentType"`
	PaidAmount   *decimal.Decimal `json:"paidAmount"`
	DPPercentage *decimal.Decimal `json:"dpPercentage"`
	DPAmount     *decimal.Decimal `json:"dpAmount"`
	Status       *string          `json:"status"`
	Notes        *string          `json:"notes" binding:"omitempty,max=1000"`
}

func (r UpdatePurchaseOrderRequest) toPatch() procurement.Patch {
	p := procurement.Patch{
		PoID:         r.PoID,
		NodeID:       r.NodeID,
		SupplierID:   r.SupplierID,
		PaidAmount:   r.PaidAmount,
		DPPercentage: r.DPPercentage,
		DPAmount:     r.DPAmount,
		Notes:        r.Notes,
	}
	if r.PoDate != nil {
		t := r.PoDate.Time
		p.PoDate = &t
	}
	if r.RequiredDate != nil {
		t := r.RequiredDate.Time
		p.RequiredDate = &t
	}
	if r.PaymentType != nil {
		pt := procurement.PaymentType(*r.PaymentType)
		p.PaymentType = &pt
	}
	if r.Status != nil {
		st := procurement.Status(*r.Status)
		p.Status = &st
	}
	return p
}

// ReplaceItemsRequest swaps the full line-item set of a DRAFT order
type ReplaceItemsRequest struct {
	Items []LineItemRequest `json:"items" binding:"dive"`
}

// UpdateLineItemRequest changes quantity and price of one line item
type UpdateLineItemRequest struct {
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// ListFilter is bound from the purchase order list query string
type ListFilter struct {
	Search     string `form:"search"`
	Status     string `form:"status"`
	NodeID     string `form:"nodeId"`
	SupplierID string `form:"supplierId" binding:"omitempty,uuid"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

type LineItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	PurchaseOrderID uuid.UUID       `json:"purchaseOrderId"`
	ItemID          uuid.UUID       `json:"itemId"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type PurchaseOrderResponse struct {
	ID           uuid.UUID          `json:"id"`
	PoID         string             `json:"poId"`
	NodeID       string             `json:"nodeId"`
	PoDate       Date               `json:"poDate"`
	RequiredDate Date               `json:"requiredDate"`
	SupplierID   uuid.UUID          `json:"supplierId"`
	SupplierName string             `json:"supplierName,omitempty"`
	Status       string             `json:"status"`
	PaymentType  string             `json:"paymentType"`
	GrandTotal   decimal.Decimal    `json:"grandTotal"`
	PaidAmount   decimal.Decimal    `json:"paidAmount"`
	DPPercentage *decimal.Decimal   `json:"dpPercentage"`
	DPAmount     *decimal.Decimal   `json:"dpAmount"`
	Notes        string             `json:"notes"`
	Items        []LineItemResponse `json:"items,omitempty"`
	Version      int                `json:"version"`
	CreatedBy    string             `json:"createdBy"`
	UpdatedBy    string             `json:"updatedBy"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

func ToLineItemResponse(li *procurement.LineItem) LineItemResponse {
	return LineItemResponse{
		ID:              li.ID,
		PurchaseOrderID: li.PurchaseOrderID,
		ItemID:          li.ItemID,
		Quantity:        li.Quantity,
		UnitPrice:       li.UnitPrice,
		TotalAmount:     li.TotalAmount,
		CreatedAt:       li.CreatedAt,
		UpdatedAt:       li.UpdatedAt,
	}
}

func ToLineItemResponses(items []*procurement.LineItem) []LineItemResponse {
	out := make([]LineItemResponse, len(items))
	for i, li := range items {
		out[i] = ToLineItemResponse(li)
	}
	return out
}

func ToPurchaseOrderResponse(po *procurement.PurchaseOrder) PurchaseOrderResponse {
	resp := PurchaseOrderResponse{
		ID:           po.ID,
		PoID:         po.PoID,
		NodeID:       po.NodeID,
		PoDate:       NewDate(po.PoDate),
		RequiredDate: NewDate(po.RequiredDate),
		SupplierID:   po.SupplierID,
		Status:       string(po.Status),
		PaymentType:  string(po.PaymentType),
		GrandTotal:   po.GrandTotal,
		PaidAmount:   po.PaidAmount,
		DPPercentage: po.DPPercentage,
		DPAmount:     po.DPAmount,
		Notes:        po.Notes,
		Version:      po.Version,
		CreatedBy:    po.CreatedBy,
		UpdatedBy:    po.UpdatedBy,
		CreatedAt:    po.CreatedAt,
		UpdatedAt:    po.UpdatedAt,
	}
	if len(po.Items) > 0 {
		resp.Items = ToLineItemResponses(po.Items)
	}
	return resp
}
