package service

import "github.com/Reshigan/SalesSync-sub016/module/core/domain"

// CalculateCommission sums the payout over completed activities only:
// per-unit rules multiply by the distributed quantity, fixed rules pay
// their amount once. Deterministic and idempotent, which is what the
// commission audit trail depends on.
func CalculateCommission(v *domain.Visit) float64 {
	var total float64
	for i := range v.Activities {
		a := &v.Activities[i]
		if a.Status != domain.ActivityCompleted {
			continue
		}
		if a.Commission.Kind == domain.CommissionPerUnit {
			if a.Data != nil && a.Data.ProductDistribution != nil {
				total += float64(a.Data.ProductDistribution.Quantity) * a.Commission.Amount
			}
			continue
		}
		total += a.Commission.Amount
	}
	return round2(total)
}
