// Package catalog holds the canonical price list for every offered
// service. Display pages and the price calculator both read from this
// one structure, so the advertised and the charged numbers cannot
// drift apart.
package catalog

// Unit says how an offering is billed.
type Unit string

const (
	UnitArea       Unit = "area"        // Kč per m²
	UnitLinear     Unit = "linear"      // Kč per running meter
	UnitHour       Unit = "hour"        // Kč per hour, quoted on request
	UnitFlatAnnual Unit = "flat_annual" // fixed yearly price
)

// Condition describes the state of the lawn.
type Condition string

const (
	ConditionNormal        Condition = "normal"
	ConditionOvergrown     Condition = "overgrown"
	ConditionVeryNeglected Condition = "very_neglected"
)

// ConditionMultipliers scales the base price by lawn state. Factors
// grow with severity.
var ConditionMultipliers = map[Condition]float64{
	ConditionNormal:        1.0,
	ConditionOvergrown:     1.5,
	ConditionVeryNeglected: 2.0,
}

// MultiplierFor returns the factor for cond, defaulting to normal for
// unset or unknown values.
func MultiplierFor(cond Condition) float64 {
	if m, ok := ConditionMultipliers[cond]; ok {
		return m
	}
	return ConditionMultipliers[ConditionNormal]
}

// AreaTier is one price band of a tiered offering. MinArea is
// inclusive, MaxArea exclusive; MaxArea = 0 means unbounded.
type AreaTier struct {
	Name         string  `json:"tier"`
	MinArea      float64 `json:"min_area"`
	MaxArea      float64 `json:"max_area,omitempty"`
	PricePerUnit float64 `json:"price_per_unit"`
}

// Contains reports whether area falls inside the band. A boundary
// area belongs to the tier that starts at it.
func (t AreaTier) Contains(area float64) bool {
	if area < t.MinArea {
		return false
	}
	return t.MaxArea == 0 || area < t.MaxArea
}

// ServiceOffering is a catalog entry. Immutable reference data.
type ServiceOffering struct {
	ID               string     `json:"id"`
	NameCZ           string     `json:"name_cz"`
	Unit             Unit       `json:"unit"`
	BasePricePerUnit float64    `json:"base_price_per_unit,omitempty"`
	Tiers            []AreaTier `json:"tiers,omitempty"`
	AppliesCondition bool       `json:"applies_condition_multiplier"`
	MinHourlyRate    float64    `json:"min_hourly_rate,omitempty"`
	MaxHourlyRate    float64    `json:"max_hourly_rate,omitempty"`
}

// Tiered reports whether the offering uses area bands.
func (s ServiceOffering) Tiered() bool {
	return len(s.Tiers) > 0
}

// PriceOnRequest reports whether the offering has no computable
// estimate. Hourly work is billed by effort; showing a computed figure
// would be false precision.
func (s ServiceOffering) PriceOnRequest() bool {
	return s.Unit == UnitHour
}

// AddOn is an optional surcharge on top of the base service. Either a
// flat fee or a per-area rate, never both.
type AddOn struct {
	ID          string  `json:"id"`
	NameCZ      string  `json:"name_cz"`
	FlatFee     float64 `json:"flat_fee,omitempty"`
	PerAreaRate float64 `json:"per_area_rate,omitempty"`
}

// Cost returns the surcharge for the given area.
func (a AddOn) Cost(area float64) float64 {
	if a.PerAreaRate > 0 {
		return a.PerAreaRate * area
	}
	return a.FlatFee
}

// Catalog is the read-only mapping the calculator and the display
// pages work from.
type Catalog struct {
	services map[string]ServiceOffering
	order    []string
	addOns   map[string]AddOn
	addOrder []string
}

// New builds a catalog from offerings and add-ons, preserving order
// for display.
func New(services []ServiceOffering, addOns []AddOn) *Catalog {
	c := &Catalog{
		services: make(map[string]ServiceOffering, len(services)),
		addOns:   make(map[string]AddOn, len(addOns)),
	}
	for _, s := range services {
		c.services[s.ID] = s
		c.order = append(c.order, s.ID)
	}
	for _, a := range addOns {
		c.addOns[a.ID] = a
		c.addOrder = append(c.addOrder, a.ID)
	}
	return c
}

// Service resolves an offering by id.
func (c *Catalog) Service(id string) (ServiceOffering, bool) {
	s, ok := c.services[id]
	return s, ok
}

// AddOn resolves a surcharge by id.
func (c *Catalog) AddOn(id string) (AddOn, bool) {
	a, ok := c.addOns[id]
	return a, ok
}

// Services returns all offerings in display order.
func (c *Catalog) Services() []ServiceOffering {
	out := make([]ServiceOffering, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.services[id])
	}
	return out
}

// AddOns returns all surcharges in display order.
func (c *Catalog) AddOns() []AddOn {
	out := make([]AddOn, 0, len(c.addOrder))
	for _, id := range c.addOrder {
		out = append(out, c.addOns[id])
	}
	return out
}

// packageTiers builds the standard three-band volume pricing used by
// the seasonal packages: small up to 200 m², medium up to 500 m²,
// large above that.
func packageTiers(small, medium, large float64) []AreaTier {
	return []AreaTier{
		{Name: "small", MinArea: 0, MaxArea: 200, PricePerUnit: small},
		{Name: "medium", MinArea: 200, MaxArea: 500, PricePerUnit: medium},
		{Name: "large", MinArea: 500, PricePerUnit: large},
	}
}

// Default returns the authoritative price list. Prices in Kč.
func Default() *Catalog {
	services := []ServiceOffering{
		{ID: "lawn_mowing", NameCZ: "Běžné sekání", Unit: UnitArea, BasePricePerUnit: 2, AppliesCondition: true},
		{ID: "lawn_with_fertilizer", NameCZ: "Sekání s hnojením", Unit: UnitArea, BasePricePerUnit: 3.33, AppliesCondition: true},
		{ID: "overgrown", NameCZ: "Hrubé sekání (přerostlá)", Unit: UnitArea, BasePricePerUnit: 3.5, AppliesCondition: true},
		{ID: "spring_package", NameCZ: "Jarní balíček", Unit: UnitArea, Tiers: packageTiers(12, 10, 8.5)},
		{ID: "summer_package", NameCZ: "Letní balíček", Unit: UnitArea, Tiers: packageTiers(3, 2.5, 2)},
		{ID: "autumn_package", NameCZ: "Podzimní balíček", Unit: UnitArea, Tiers: packageTiers(14, 12, 10)},
		{ID: "winter_snow", NameCZ: "Zimní úklid sněhu", Unit: UnitArea, Tiers: packageTiers(8, 7, 6)},
		{ID: "hedge_trimming", NameCZ: "Údržba živých plotů", Unit: UnitLinear, BasePricePerUnit: 50},
		{ID: "vip_annual", NameCZ: "Celoroční VIP servis", Unit: UnitFlatAnnual, BasePricePerUnit: 6900},
		{ID: "garden_work", NameCZ: "Zahradnické práce", Unit: UnitHour, MinHourlyRate: 300, MaxHourlyRate: 450},
		{ID: "other", NameCZ: "Jiná služba", Unit: UnitHour},
	}

	addOns := []AddOn{
		{ID: "mulching", NameCZ: "Mulčování", PerAreaRate: 0.5},
		{ID: "debris_removal", NameCZ: "Odvoz odpadu", FlatFee: 400},
		{ID: "vertikutace", NameCZ: "Vertikutace", FlatFee: 500},
		{ID: "salting", NameCZ: "Solení/posyp", PerAreaRate: 0.5},
	}

	return New(services, addOns)
}
