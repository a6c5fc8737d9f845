package core

import "time"

// Stats is the five-metric snapshot over a single owner's vehicle set. It is
// recomputed from the full set on every call; nothing is cached.
type Stats struct {
	TotalVehicles     int   `json:"totalVehicles"`
	AvailableVehicles int   `json:"availableVehicles"`
	SoldThisMonth     int   `json:"soldThisMonth"`
	TotalRevenue      Money `json:"totalRevenue"`
	AverageProfit     Money `json:"averageProfit"`
}

// ComputeStats derives the reporting metrics from a vehicle set.
//
// SoldThisMonth counts sold vehicles whose soldAt falls in [first instant of
// the current calendar month, now) in now's location. Revenue and profit sum
// over sold vehicles that have a sold price; a missing purchase price counts
// as zero cost, so such a sale contributes its full sold price as profit
// (preserved from the original behavior). Average profit is integer cent
// division, guarded against an empty sold set.
func ComputeStats(vehicles []Vehicle, now time.Time) Stats {
	stats := Stats{TotalVehicles: len(vehicles)}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var revenueCents, profitCents int64
	soldWithPrice := 0
	for _, v := range vehicles {
		if v.Status == StatusAvailable {
			stats.AvailableVehicles++
		}
		if v.Status != StatusSold {
			continue
		}
		if v.SoldAt != nil && !v.SoldAt.Before(monthStart) && v.SoldAt.Before(now) {
			stats.SoldThisMonth++
		}
		if v.SoldPrice != nil {
			soldWithPrice++
			revenueCents += v.SoldPrice.Cents
			var purchaseCents int64
			if v.PurchasePrice != nil {
				purchaseCents = v.PurchasePrice.Cents
			}
			profitCents += v.SoldPrice.Cents - purchaseCents
		}
	}

	stats.TotalRevenue = Money{Cents: revenueCents}
	if soldWithPrice > 0 {
		stats.AverageProfit = Money{Cents: profitCents / int64(soldWithPrice)}
	}
	return stats
}
