package entitlements

// catalogue is ordered for display: cheapest first within each tier
var catalogue = []Product{
	{ID: "racer_monthly", Tier: TierRacer, Period: PeriodMonthly, PriceMicros: 9_990_000, Currency: "USD", TrialDays: 7},
	{ID: "racer_yearly", Tier: TierRacer, Period: PeriodYearly, PriceMicros: 89_990_000, Currency: "USD", TrialDays: 7},
	{ID: "pro_monthly", Tier: TierPro, Period: PeriodMonthly, PriceMicros: 19_990_000, Currency: "USD", TrialDays: 14},
	{ID: "pro_yearly", Tier: TierPro, Period: PeriodYearly, PriceMicros: 179_990_000, Currency: "USD", TrialDays: 14},
}

// ListProducts returns the purchasable products
func ListProducts() []Product {
	out := make([]Product, len(catalogue))
	copy(out, catalogue)
	return out
}

// LookupProduct finds a product by id
func LookupProduct(id string) (Product, bool) {
	for _, p := range catalogue {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
