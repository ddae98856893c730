package service

import (
	"testing"

	"github.com/Reshigan/SalesSync-sub016/module/core/domain"
)

func completedActivity(kind domain.CommissionKind, amount float64, data *domain.ActivityData) domain.Activity {
	a := domain.Activity{
		Type:       domain.ActivitySurvey,
		Status:     domain.ActivityCompleted,
		Commission: domain.CommissionRule{Kind: kind, Amount: amount},
		Data:       data,
	}
	if kind == domain.CommissionPerUnit {
		a.Type = domain.ActivityProductDistribution
	}
	return a
}

func TestCalculateCommission_FixedRules(t *testing.T) {
	v := &domain.Visit{Activities: []domain.Activity{
		completedActivity(domain.CommissionFixed, 5.00, nil),
		completedActivity(domain.CommissionFixed, 10.00, nil),
		completedActivity(domain.CommissionFixed, 2.00, nil),
	}}

	if got := CalculateCommission(v); got != 17.00 {
		t.Errorf("expected 17.00, got %f", got)
	}
}

func TestCalculateCommission_PerUnit(t *testing.T) {
	v := &domain.Visit{Activities: []domain.Activity{
		completedActivity(domain.CommissionPerUnit, 0.50, &domain.ActivityData{
			ProductDistribution: &domain.ProductDistributionData{Quantity: 12, Products: []string{"SKU-1"}},
		}),
	}}

	if got := CalculateCommission(v); got != 6.00 {
		t.Errorf("expected 6.00, got %f", got)
	}
}

func TestCalculateCommission_SkipsNonCompleted(t *testing.T) {
	pending := completedActivity(domain.CommissionFixed, 100.00, nil)
	pending.Status = domain.ActivityPending
	skipped := completedActivity(domain.CommissionFixed, 100.00, nil)
	skipped.Status = domain.ActivitySkipped

	v := &domain.Visit{Activities: []domain.Activity{
		pending,
		skipped,
		completedActivity(domain.CommissionFixed, 5.00, nil),
	}}

	if got := CalculateCommission(v); got != 5.00 {
		t.Errorf("expected 5.00, got %f", got)
	}
}

func TestCalculateCommission_PerUnitWithoutDataPaysNothing(t *testing.T) {
	v := &domain.Visit{Activities: []domain.Activity{
		completedActivity(domain.CommissionPerUnit, 0.50, nil),
	}}

	if got := CalculateCommission(v); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
}

func TestCalculateCommission_Deterministic(t *testing.T) {
	v := &domain.Visit{Activities: []domain.Activity{
		completedActivity(domain.CommissionFixed, 5.00, nil),
		completedActivity(domain.CommissionPerUnit, 0.50, &domain.ActivityData{
			ProductDistribution: &domain.ProductDistributionData{Quantity: 7, Products: []string{"SKU-1"}},
		}),
	}}

	first := CalculateCommission(v)
	second := CalculateCommission(v)
	if first != second {
		t.Errorf("recomputation differs: %f vs %f", first, second)
	}
	if first != 8.50 {
		t.Errorf("expected 8.50, got %f", first)
	}
}

func TestCalculateCommission_RoundsToCents(t *testing.T) {
	v := &domain.Visit{Activities: []domain.Activity{
		completedActivity(domain.CommissionPerUnit, 0.333, &domain.ActivityData{
			ProductDistribution: &domain.ProductDistributionData{Quantity: 2, Products: []string{"SKU-1"}},
		}),
	}}

	if got := CalculateCommission(v); got != 0.67 {
		t.Errorf("expected 0.67, got %f", got)
	}
}
