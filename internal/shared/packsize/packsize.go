// Package packsize parses material master pack-size descriptors and
// derives per-unit prices. Descriptors come from SAP material data in
// forms like "10x10's", "100's" or "10 X 10 S".
package packsize

import (
	"strconv"
	"strings"

	"github.com/najmulislamnajim/expire-product-api/internal/shared/apperr"
	"github.com/shopspring/decimal"
)

// Units resolves a pack-size descriptor to units per pack. The
// descriptor is normalized (apostrophes, the trailing unit marker "s"
// and whitespace stripped, lower-cased); what remains must be a single
// integer or two integers joined by one "x".
func Units(descriptor string) (int64, error) {
	norm := strings.ToLower(descriptor)
	norm = strings.NewReplacer("'", "", "s", "", " ", "", "\t", "").Replace(norm)
	if norm == "" {
		return 0, apperr.Validationf("empty pack size %q", descriptor)
	}

	parts := strings.Split(norm, "x")
	switch len(parts) {
	case 1:
		units, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return 0, apperr.Validationf("invalid pack size %q", descriptor)
		}
		return units, nil
	case 2:
		packs, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return 0, apperr.Validationf("invalid pack size %q", descriptor)
		}
		perPack, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return 0, apperr.Validationf("invalid pack size %q", descriptor)
		}
		return packs * perPack, nil
	default:
		return 0, apperr.Validationf("invalid pack size %q", descriptor)
	}
}

// UnitPrice derives the per-unit price from the pack trade price and
// VAT components. Fails when the descriptor cannot be parsed or
// resolves to zero units.
func UnitPrice(descriptor string, unitTP, unitVAT decimal.Decimal) (decimal.Decimal, error) {
	units, err := Units(descriptor)
	if err != nil {
		return decimal.Zero, err
	}
	if units <= 0 {
		return decimal.Zero, apperr.Validationf("pack size %q resolves to %d units", descriptor, units)
	}
	return unitTP.Add(unitVAT).Div(decimal.NewFromInt(units)).Round(2), nil
}
