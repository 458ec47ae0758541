package catalog

import "testing"

func TestConditionMultipliersMonotonic(t *testing.T) {
	normal := MultiplierFor(ConditionNormal)
	overgrown := MultiplierFor(ConditionOvergrown)
	neglected := MultiplierFor(ConditionVeryNeglected)

	if !(normal < overgrown && overgrown < neglected) {
		t.Errorf("multipliers not increasing with severity: %v %v %v",
			normal, overgrown, neglected)
	}
}

func TestMultiplierForUnknownDefaultsToNormal(t *testing.T) {
	if got := MultiplierFor("trampled"); got != 1.0 {
		t.Errorf("unknown condition multiplier = %v, want 1.0", got)
	}
	if got := MultiplierFor(""); got != 1.0 {
		t.Errorf("empty condition multiplier = %v, want 1.0", got)
	}
}

// Tiered offerings must partition [0, ∞): every area hits exactly one
// band, and larger bands never cost more per unit.
func TestTiersPartitionAndVolumeDiscount(t *testing.T) {
	cat := Default()

	probes := []float64{0, 1, 50, 199, 199.99, 200, 201, 350, 499, 500, 501, 1000, 100000}

	for _, svc := range cat.Services() {
		if !svc.Tiered() {
			continue
		}

		for _, area := range probes {
			matches := 0
			for _, tier := range svc.Tiers {
				if tier.Contains(area) {
					matches++
				}
			}
			if matches != 1 {
				t.Errorf("%s: area %v matched %d tiers, want exactly 1",
					svc.ID, area, matches)
			}
		}

		for i := 1; i < len(svc.Tiers); i++ {
			prev, cur := svc.Tiers[i-1], svc.Tiers[i]
			if cur.MinArea != prev.MaxArea {
				t.Errorf("%s: gap between tier %q (max %v) and %q (min %v)",
					svc.ID, prev.Name, prev.MaxArea, cur.Name, cur.MinArea)
			}
			if cur.PricePerUnit > prev.PricePerUnit {
				t.Errorf("%s: tier %q costs more per unit (%v) than smaller tier %q (%v)",
					svc.ID, cur.Name, cur.PricePerUnit, prev.Name, prev.PricePerUnit)
			}
		}

		last := svc.Tiers[len(svc.Tiers)-1]
		if last.MaxArea != 0 {
			t.Errorf("%s: last tier %q is bounded at %v, want unbounded",
				svc.ID, last.Name, last.MaxArea)
		}
	}
}

func TestTierBoundaryBelongsToHigherTier(t *testing.T) {
	tier := AreaTier{Name: "small", MinArea: 0, MaxArea: 200, PricePerUnit: 12}
	next := AreaTier{Name: "medium", MinArea: 200, MaxArea: 500, PricePerUnit: 10}

	if tier.Contains(200) {
		t.Error("area 200 must not belong to the [0,200) tier")
	}
	if !next.Contains(200) {
		t.Error("area 200 must belong to the tier starting at 200")
	}
}

func TestAddOnCost(t *testing.T) {
	flat := AddOn{ID: "vertikutace", FlatFee: 500}
	perArea := AddOn{ID: "mulching", PerAreaRate: 0.5}

	if got := flat.Cost(100); got != 500 {
		t.Errorf("flat add-on cost = %v, want 500", got)
	}
	if got := perArea.Cost(100); got != 50 {
		t.Errorf("per-area add-on cost = %v, want 50", got)
	}
}

func TestDefaultCatalogLookups(t *testing.T) {
	cat := Default()

	svc, ok := cat.Service("lawn_mowing")
	if !ok {
		t.Fatal("lawn_mowing missing from catalog")
	}
	if svc.BasePricePerUnit != 2 {
		t.Errorf("lawn_mowing base price = %v, want 2", svc.BasePricePerUnit)
	}
	if !svc.AppliesCondition {
		t.Error("lawn_mowing should scale with lawn condition")
	}

	if _, ok := cat.Service("pool_cleaning"); ok {
		t.Error("unknown service id resolved")
	}

	hourly, ok := cat.Service("garden_work")
	if !ok {
		t.Fatal("garden_work missing from catalog")
	}
	if !hourly.PriceOnRequest() {
		t.Error("garden_work should be priced on request")
	}

	if _, ok := cat.AddOn("mulching"); !ok {
		t.Error("mulching add-on missing")
	}
}
