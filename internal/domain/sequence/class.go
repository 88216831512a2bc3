// Package sequence mints and validates the bounded, zero-padded identifiers
// used for warehouse nodes, units of measure, SKUs and purchase orders.
package sequence

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Class describes one identifier family: its ceiling, padding and shape.
type Class struct {
	Name       string
	Ceiling    int
	Width      int
	MinOrdinal int
	Separator  string
	FormatHint string

	scopePattern  string
	digitsPattern string
	re            *regexp.Regexp
	scopeRe       *regexp.Regexp
}

func newClass(c Class) Class {
	c.re = regexp.MustCompile(`^(` + c.scopePattern + `)` + regexp.QuoteMeta(c.Separator) + `(` + c.digitsPattern + `)$`)
	c.scopeRe = regexp.MustCompile(`^` + c.scopePattern + `$`)
	return c
}

// Identifier classes
var (
	Node = newClass(Class{
		Name:          "NODE",
		Ceiling:       9999,
		Width:         4,
		MinOrdinal:    1,
		FormatHint:    "Node ID must follow pattern (e.g., WH0001)",
		scopePattern:  `[A-Z]{2,4}`,
		digitsPattern: `\d{4,6}`,
	})
	Uom = newClass(Class{
		Name:          "UOM",
		Ceiling:       999,
		Width:         3,
		MinOrdinal:    1,
		FormatHint:    "UOM ID must be uppercase letters followed by digits (e.g., UOM001)",
		scopePattern:  `[A-Z]+`,
		digitsPattern: `\d+`,
	})
	SKU = newClass(Class{
		Name:          "SKU",
		Ceiling:       9999,
		Width:         4,
		MinOrdinal:    0,
		Separator:     "-",
		FormatHint:    "SKU must follow the format: 3 uppercase consonants followed by a hyphen and 4 digits (e.g., KMN-0001)",
		scopePattern:  `[BCDFGHJKLMNPQRSTVWXYZ]{3}`,
		digitsPattern: `\d{4}`,
	})
	PurchaseOrder = newClass(Class{
		Name:          "PO",
		Ceiling:       999,
		Width:         4,
		MinOrdinal:    1,
		Separator:     "-",
		FormatHint:    "PO ID must follow the format NODEID-PO-YYMM-NNNN (e.g., WH0001-PO-2601-0001)",
		scopePattern:  `[A-Z]{2,4}\d{4,6}-PO-\d{4}`,
		digitsPattern: `\d{4}`,
	})
)

// Classes lists every identifier family
func Classes() []Class {
	return []Class{Node, Uom, SKU, PurchaseOrder}
}

// String returns the class name
func (c Class) String() string {
	return c.Name
}

// ValidScope reports whether scope is a well-formed prefix for this class
func (c Class) ValidScope(scope string) bool {
	return c.scopeRe.MatchString(scope)
}

// UomScope is the single prefix used for minted UOM identifiers
const UomScope = "UOM"

// POScope returns the partition a purchase order number is counted in:
// the issuing node plus the two-digit year and month of the PO date.
func POScope(nodeID string, poDate time.Time) string {
	return fmt.Sprintf("%s-PO-%02d%02d", nodeID, poDate.Year()%100, int(poDate.Month()))
}

const consonants = "BCDFGHJKLMNPQRSTVWXYZ"

// SKUScope derives the three-consonant SKU prefix from an item name.
// Missing consonants are padded with X.
func SKUScope(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(name) {
		if b.Len() == 3 {
			break
		}
		if strings.ContainsRune(consonants, r) {
			b.WriteRune(r)
		}
	}
	for b.Len() < 3 {
		b.WriteByte('X')
	}
	return b.String()
}
