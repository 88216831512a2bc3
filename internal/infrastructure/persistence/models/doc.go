// Package models contains the GORM persistence models behind the domain
// aggregates. Domain types stay free of ORM tags; each model converts with
// ToDomain and a FromDomain constructor.
//
// Every human identifier column (node_id, uom_id, sku, supp_id, po_id) carries
// a partial unique index restricted to rows where deleted_at IS NULL, so a
// soft-deleted record frees its identifier.
package models
