package persistence

import (
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// NodeSortFields contains allowed sort fields for warehouse nodes
var NodeSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"node_id":    true,
	"name":       true,
	"node_type":  true,
	"status":     true,
}

// UomSortFields contains allowed sort fields for units of measure
var UomSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"uom_id":     true,
	"code":       true,
	"name":       true,
	"status":     true,
}

// ItemSortFields contains allowed sort fields for items
var ItemSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"sku":        true,
	"name":       true,
	"brand":      true,
	"status":     true,
}

// SupplierSortFields contains allowed sort fields for suppliers
var SupplierSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"supp_id":    true,
	"name":       true,
	"pic_name":   true,
	"status":     true,
}

// PurchaseOrderSortFields contains allowed sort fields for purchase orders
var PurchaseOrderSortFields = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"po_id":         true,
	"po_date":       true,
	"required_date": true,
	"status":        true,
	"grand_total":   true,
}

// paginate applies validated ordering plus limit/offset for filter
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool, table string) *gorm.DB {
	filter = filter.Normalize()
	field := ValidateSortField(filter.OrderBy, allowed, "created_at")
	return query.
		Order(table + "." + field + " " + ValidateSortOrder(filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.PageSize)
}

// likePattern builds a case-insensitive substring pattern for UPPER(col) LIKE ?
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToUpper(r.Replace(strings.TrimSpace(s))) + "%"
}

// filterString reads a string entry from filter.Filters
func filterString(filter shared.Filter, key string) string {
	if filter.Filters == nil {
		return ""
	}
	switch v := filter.Filters[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case interface{ String() string }:
		return v.String()
	}
	return ""
}
