// Package pricing computes live price estimates for the booking form
// and the calculator page. Pure computation over catalog data, safe
// for concurrent use.
package pricing

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"seknuto-api/internal/catalog"
)

var (
	// ErrUnknownService is returned for a service id not present in
	// the catalog. Callers should disable submission rather than
	// substitute a price.
	ErrUnknownService = errors.New("unknown service")

	// ErrInvalidArea is returned while the entered area is not yet a
	// positive number. An expected transient state, not a fault.
	ErrInvalidArea = errors.New("invalid area")
)

// TierInfo records which area band produced the per-unit price, so
// the UI can show the customer why.
type TierInfo struct {
	Tier         string  `json:"tier"`
	MinArea      float64 `json:"min_area"`
	MaxArea      float64 `json:"max_area,omitempty"`
	PricePerUnit float64 `json:"price_per_unit"`
}

// Quote is one computed estimate. Created fresh per calculation and
// never mutated; a new quote replaces the old one.
type Quote struct {
	ServiceID           string            `json:"service"`
	Unit                catalog.Unit      `json:"unit"`
	Area                float64           `json:"property_size"`
	Condition           catalog.Condition `json:"condition"`
	ConditionMultiplier float64           `json:"condition_multiplier"`
	AdditionalServices  []string          `json:"additional_services"`
	PricePerUnit        float64           `json:"base_price_per_unit"`
	Tier                *TierInfo         `json:"tier_info,omitempty"`
	BasePrice           int               `json:"base_price"`
	AddOnCost           int               `json:"additional_services_cost"`
	EstimatedPrice      int               `json:"estimated_price"`
	PriceOnRequest      bool              `json:"price_on_request"`
	MinHourlyRate       float64           `json:"min_hourly_rate,omitempty"`
	MaxHourlyRate       float64           `json:"max_hourly_rate,omitempty"`
}

// Calculator maps (service, area, condition, add-ons) to a Quote.
type Calculator struct {
	catalog *catalog.Catalog
}

func NewCalculator(cat *catalog.Catalog) *Calculator {
	return &Calculator{catalog: cat}
}

// Calculate produces a quote. Deterministic and side-effect-free.
// Unknown add-on ids contribute nothing; duplicate add-on ids are
// charged once. The condition multiplier only applies to offerings
// that opt into it.
func (c *Calculator) Calculate(serviceID string, area float64, cond catalog.Condition, addOnIDs []string) (Quote, error) {
	svc, ok := c.catalog.Service(serviceID)
	if !ok {
		return Quote{}, fmt.Errorf("%w: %q", ErrUnknownService, serviceID)
	}

	if cond == "" {
		cond = catalog.ConditionNormal
	}

	q := Quote{
		ServiceID:           svc.ID,
		Unit:                svc.Unit,
		Area:                area,
		Condition:           cond,
		ConditionMultiplier: 1.0,
		AdditionalServices:  dedupe(addOnIDs),
	}

	// Effort-billed work has no computable estimate. The caller shows
	// the hourly range and "price on request" instead of a figure.
	if svc.PriceOnRequest() {
		q.PriceOnRequest = true
		q.MinHourlyRate = svc.MinHourlyRate
		q.MaxHourlyRate = svc.MaxHourlyRate
		return q, nil
	}

	if svc.Unit == catalog.UnitFlatAnnual {
		q.PricePerUnit = svc.BasePricePerUnit
		q.BasePrice = roundHalfUp(svc.BasePricePerUnit)
		q.EstimatedPrice = q.BasePrice
		return q, nil
	}

	if area <= 0 {
		return Quote{}, fmt.Errorf("%w: %v", ErrInvalidArea, area)
	}

	pricePerUnit := svc.BasePricePerUnit
	if svc.Tiered() {
		tier := matchTier(svc.Tiers, area)
		pricePerUnit = tier.PricePerUnit
		q.Tier = &TierInfo{
			Tier:         tier.Name,
			MinArea:      tier.MinArea,
			MaxArea:      tier.MaxArea,
			PricePerUnit: tier.PricePerUnit,
		}
	}
	q.PricePerUnit = pricePerUnit

	base := pricePerUnit * area
	if svc.AppliesCondition {
		q.ConditionMultiplier = catalog.MultiplierFor(cond)
		base *= q.ConditionMultiplier
	}
	q.BasePrice = roundHalfUp(base)

	addOnCost := 0.0
	for _, id := range q.AdditionalServices {
		if a, ok := c.catalog.AddOn(id); ok {
			addOnCost += a.Cost(area)
		}
	}
	q.AddOnCost = roundHalfUp(addOnCost)
	q.EstimatedPrice = roundHalfUp(base + addOnCost)

	return q, nil
}

// matchTier finds the band containing area. Tiers partition [0, ∞),
// so a match always exists; should a gap ever slip into the data, the
// highest band is used rather than failing the quote.
func matchTier(tiers []catalog.AreaTier, area float64) catalog.AreaTier {
	for _, t := range tiers {
		if t.Contains(area) {
			return t
		}
	}
	return tiers[len(tiers)-1]
}

// dedupe collapses repeated add-on ids so each surcharge is billed at
// most once. Order is normalized for stable output.
func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// roundHalfUp rounds to the nearest whole Kč, halves away from zero.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
