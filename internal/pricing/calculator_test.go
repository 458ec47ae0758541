package pricing

import (
	"errors"
	"testing"

	"seknuto-api/internal/catalog"
)

func newCalc() *Calculator {
	return NewCalculator(catalog.Default())
}

func TestCalculateBasicMowing(t *testing.T) {
	q, err := newCalc().Calculate("lawn_mowing", 100, catalog.ConditionNormal, nil)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if q.EstimatedPrice != 200 {
		t.Errorf("estimated price = %d, want 200", q.EstimatedPrice)
	}
	if q.BasePrice != 200 {
		t.Errorf("base price = %d, want 200", q.BasePrice)
	}
	if q.PricePerUnit != 2 {
		t.Errorf("price per unit = %v, want 2", q.PricePerUnit)
	}
}

func TestCalculateConditionMultipliers(t *testing.T) {
	calc := newCalc()

	cases := []struct {
		condition catalog.Condition
		want      int
	}{
		{catalog.ConditionNormal, 200},
		{catalog.ConditionOvergrown, 300},
		{catalog.ConditionVeryNeglected, 400},
	}

	for _, tc := range cases {
		q, err := calc.Calculate("lawn_mowing", 100, tc.condition, nil)
		if err != nil {
			t.Fatalf("Calculate(%s) failed: %v", tc.condition, err)
		}
		if q.EstimatedPrice != tc.want {
			t.Errorf("condition %s: estimated price = %d, want %d",
				tc.condition, q.EstimatedPrice, tc.want)
		}
	}
}

// The multiplier only applies to the base, so overgrown must be
// exactly 1.5x the normal base price before add-ons.
func TestConditionScalesBasePrice(t *testing.T) {
	calc := newCalc()

	for _, svc := range catalog.Default().Services() {
		if !svc.AppliesCondition {
			continue
		}

		normal, err := calc.Calculate(svc.ID, 80, catalog.ConditionNormal, nil)
		if err != nil {
			t.Fatalf("Calculate(%s, normal) failed: %v", svc.ID, err)
		}
		overgrown, err := calc.Calculate(svc.ID, 80, catalog.ConditionOvergrown, nil)
		if err != nil {
			t.Fatalf("Calculate(%s, overgrown) failed: %v", svc.ID, err)
		}

		want := roundHalfUp(1.5 * svc.BasePricePerUnit * 80)
		if overgrown.BasePrice != want {
			t.Errorf("%s: overgrown base = %d, want %d (1.5x of normal %d)",
				svc.ID, overgrown.BasePrice, want, normal.BasePrice)
		}
	}
}

func TestConditionIgnoredForPackages(t *testing.T) {
	calc := newCalc()

	normal, _ := calc.Calculate("spring_package", 300, catalog.ConditionNormal, nil)
	neglected, err := calc.Calculate("spring_package", 300, catalog.ConditionVeryNeglected, nil)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if normal.EstimatedPrice != neglected.EstimatedPrice {
		t.Errorf("package price changed with condition: %d vs %d",
			normal.EstimatedPrice, neglected.EstimatedPrice)
	}
	if neglected.ConditionMultiplier != 1.0 {
		t.Errorf("reported multiplier = %v, want 1.0", neglected.ConditionMultiplier)
	}
}

func TestCalculateDefaultsConditionToNormal(t *testing.T) {
	q, err := newCalc().Calculate("lawn_mowing", 100, "", nil)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if q.EstimatedPrice != 200 {
		t.Errorf("estimated price = %d, want 200", q.EstimatedPrice)
	}
	if q.Condition != catalog.ConditionNormal {
		t.Errorf("condition = %q, want normal", q.Condition)
	}
}

func TestCalculateTieredPackage(t *testing.T) {
	calc := newCalc()

	cases := []struct {
		area      float64
		wantTier  string
		wantPrice int
	}{
		{150, "small", 1800},
		{300, "medium", 3000},
		{600, "large", 5100},
		// Boundary areas belong to the tier starting there.
		{200, "medium", 2000},
		{500, "large", 4250},
	}

	for _, tc := range cases {
		q, err := calc.Calculate("spring_package", tc.area, catalog.ConditionNormal, nil)
		if err != nil {
			t.Fatalf("Calculate(area=%v) failed: %v", tc.area, err)
		}
		if q.Tier == nil {
			t.Fatalf("area %v: no tier info", tc.area)
		}
		if q.Tier.Tier != tc.wantTier {
			t.Errorf("area %v: tier = %q, want %q", tc.area, q.Tier.Tier, tc.wantTier)
		}
		if q.EstimatedPrice != tc.wantPrice {
			t.Errorf("area %v: price = %d, want %d", tc.area, q.EstimatedPrice, tc.wantPrice)
		}
	}
}

func TestCalculateAddOns(t *testing.T) {
	calc := newCalc()

	q, err := calc.Calculate("lawn_mowing", 100, catalog.ConditionNormal, []string{"mulching"})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if q.AddOnCost != 50 {
		t.Errorf("mulching cost = %d, want 50", q.AddOnCost)
	}
	if q.EstimatedPrice != 250 {
		t.Errorf("estimated price = %d, want 250", q.EstimatedPrice)
	}

	q, err = calc.Calculate("lawn_mowing", 100, catalog.ConditionNormal, []string{"debris_removal"})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if q.EstimatedPrice != 600 {
		t.Errorf("estimated price with debris removal = %d, want 600", q.EstimatedPrice)
	}
}

func TestCalculateAddOnsDuplicatesAndUnknown(t *testing.T) {
	calc := newCalc()

	q, err := calc.Calculate("lawn_mowing", 100, catalog.ConditionNormal,
		[]string{"mulching", "mulching", "gold_plating"})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	// Duplicates billed once, unknown ids contribute nothing.
	if q.AddOnCost != 50 {
		t.Errorf("add-on cost = %d, want 50", q.AddOnCost)
	}
	if len(q.AdditionalServices) != 2 {
		t.Errorf("additional services = %v, want deduped pair", q.AdditionalServices)
	}
}

func TestCalculateRounding(t *testing.T) {
	// 3.33 * 100 = 333, no rounding drama
	q, err := newCalc().Calculate("lawn_with_fertilizer", 100, catalog.ConditionNormal, nil)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if q.EstimatedPrice != 333 {
		t.Errorf("estimated price = %d, want 333", q.EstimatedPrice)
	}

	// 3.33 * 50 = 166.5 rounds half-up to 167
	q, err = newCalc().Calculate("lawn_with_fertilizer", 50, catalog.ConditionNormal, nil)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if q.EstimatedPrice != 167 {
		t.Errorf("estimated price = %d, want 167 (half-up)", q.EstimatedPrice)
	}
}

func TestCalculateUnknownService(t *testing.T) {
	_, err := newCalc().Calculate("pool_cleaning", 100, catalog.ConditionNormal, nil)
	if !errors.Is(err, ErrUnknownService) {
		t.Errorf("err = %v, want ErrUnknownService", err)
	}
}

func TestCalculateInvalidArea(t *testing.T) {
	calc := newCalc()

	for _, area := range []float64{0, -10} {
		_, err := calc.Calculate("lawn_mowing", area, catalog.ConditionNormal, nil)
		if !errors.Is(err, ErrInvalidArea) {
			t.Errorf("area %v: err = %v, want ErrInvalidArea", area, err)
		}
	}
}

func TestCalculateHourlyPriceOnRequest(t *testing.T) {
	q, err := newCalc().Calculate("garden_work", 0, catalog.ConditionNormal, nil)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if !q.PriceOnRequest {
		t.Error("garden_work should be price-on-request")
	}
	if q.EstimatedPrice != 0 {
		t.Errorf("hourly work got a computed price: %d", q.EstimatedPrice)
	}
	if q.MinHourlyRate != 300 || q.MaxHourlyRate != 450 {
		t.Errorf("hourly range = %v-%v, want 300-450", q.MinHourlyRate, q.MaxHourlyRate)
	}
}

func TestCalculateFlatAnnual(t *testing.T) {
	// The VIP package ignores area entirely.
	q, err := newCalc().Calculate("vip_annual", 0, catalog.ConditionNormal, nil)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if q.EstimatedPrice != 6900 {
		t.Errorf("estimated price = %d, want 6900", q.EstimatedPrice)
	}
}

func TestCalculateLinearService(t *testing.T) {
	q, err := newCalc().Calculate("hedge_trimming", 20, catalog.ConditionNormal, nil)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if q.EstimatedPrice != 1000 {
		t.Errorf("estimated price = %d, want 1000 (20 bm x 50)", q.EstimatedPrice)
	}
}

// Package rates drop per unit at each tier boundary, so the total is
// allowed to dip when the area crosses into a cheaper band. Within a
// band the price must never decrease, and every decrease must line up
// with a band change.
func TestCalculateMonotonicWithinTier(t *testing.T) {
	calc := newCalc()

	for _, svcID := range []string{"lawn_mowing", "spring_package", "summer_package"} {
		prev := -1
		prevTier := ""
		for area := 10.0; area <= 1200; area += 10 {
			q, err := calc.Calculate(svcID, area, catalog.ConditionNormal, nil)
			if err != nil {
				t.Fatalf("Calculate(%s, %v) failed: %v", svcID, area, err)
			}
			tier := ""
			if q.Tier != nil {
				tier = q.Tier.Tier
			}
			if q.EstimatedPrice < prev && tier == prevTier {
				t.Errorf("%s: price dropped from %d to %d at area %v inside tier %q",
					svcID, prev, q.EstimatedPrice, area, tier)
			}
			prev = q.EstimatedPrice
			prevTier = tier
		}
	}
}

// Just below a boundary the old rate applies to the full area, so the
// cheaper band's entry price can undercut it. 190 m2 of spring at
// 12 Kc beats 200 m2 at 10 Kc.
func TestCalculateTierBoundaryDip(t *testing.T) {
	calc := newCalc()

	cases := []struct {
		service   string
		below, at float64
		wantBelow int
		wantAt    int
	}{
		{"spring_package", 190, 200, 2280, 2000},
		{"spring_package", 490, 500, 4900, 4250},
		{"summer_package", 190, 200, 570, 500},
		{"summer_package", 490, 500, 1225, 1000},
	}
	for _, tc := range cases {
		qBelow, err := calc.Calculate(tc.service, tc.below, catalog.ConditionNormal, nil)
		if err != nil {
			t.Fatalf("Calculate(%s, %v) failed: %v", tc.service, tc.below, err)
		}
		qAt, err := calc.Calculate(tc.service, tc.at, catalog.ConditionNormal, nil)
		if err != nil {
			t.Fatalf("Calculate(%s, %v) failed: %v", tc.service, tc.at, err)
		}
		if qBelow.EstimatedPrice != tc.wantBelow || qAt.EstimatedPrice != tc.wantAt {
			t.Errorf("%s: got %d at %v m2 and %d at %v m2, want %d and %d",
				tc.service, qBelow.EstimatedPrice, tc.below,
				qAt.EstimatedPrice, tc.at, tc.wantBelow, tc.wantAt)
		}
		if qAt.EstimatedPrice >= qBelow.EstimatedPrice {
			t.Errorf("%s: expected a dip across the %v m2 boundary, got %d -> %d",
				tc.service, tc.at, qBelow.EstimatedPrice, qAt.EstimatedPrice)
		}
	}
}

func TestCalculateIsPure(t *testing.T) {
	calc := newCalc()

	first, err := calc.Calculate("spring_package", 300, catalog.ConditionNormal, []string{"mulching"})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := calc.Calculate("spring_package", 300, catalog.ConditionNormal, []string{"mulching"})
		if err != nil {
			t.Fatalf("Calculate failed: %v", err)
		}
		if again.EstimatedPrice != first.EstimatedPrice {
			t.Fatalf("repeated call changed result: %d vs %d",
				again.EstimatedPrice, first.EstimatedPrice)
		}
	}
}
