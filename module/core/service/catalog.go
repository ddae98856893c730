package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Reshigan/SalesSync-sub016/module/core/domain"
)

// Default commissions and durations for generated activities.
const (
	surveyCommission       = 5.00
	boardCommission        = 10.00
	distributionPerUnit    = 0.50
	photoCommission        = 2.00
	surveyMinutes          = 10
	boardMinutes           = 15
	distributionMinutes    = 5
	photoMinutes           = 3
	defaultTemplateMinutes = 5
)

// BuildActivities generates the ordered activity list for a visit:
// caller-supplied mandatory templates first, then per-brand survey,
// board placement and product distribution activities as the visit
// type calls for, then a general storefront photo capture. Identical
// inputs produce activities in the same order. Inputs are not mutated;
// activities are only ever mutated through workflow transitions and
// never removed (skip is a terminal status, not a deletion).
func BuildActivities(brands []domain.Brand, visitType string, templates []domain.ActivityTemplate) []domain.Activity {
	var activities []domain.Activity

	for _, tpl := range templates {
		minutes := tpl.EstimatedMinutes
		if minutes <= 0 {
			minutes = defaultTemplateMinutes
		}
		activities = append(activities, domain.Activity{
			ID:               uuid.NewString(),
			Type:             tpl.Type,
			BrandID:          tpl.BrandID,
			Title:            tpl.Title,
			Description:      tpl.Description,
			Mandatory:        true,
			Status:           domain.ActivityPending,
			EstimatedMinutes: minutes,
			Commission:       tpl.Commission,
			Requirements:     append([]domain.Requirement(nil), tpl.Requirements...),
		})
	}

	for _, brand := range brands {
		activities = append(activities, domain.Activity{
			ID:               uuid.NewString(),
			Type:             domain.ActivitySurvey,
			BrandID:          brand.ID,
			Title:            fmt.Sprintf("%s Brand Survey", brand.Name),
			Description:      fmt.Sprintf("Complete customer survey for %s", brand.Name),
			Mandatory:        true,
			Status:           domain.ActivityPending,
			EstimatedMinutes: surveyMinutes,
			Commission:       domain.CommissionRule{Kind: domain.CommissionFixed, Amount: surveyCommission},
			Requirements:     []domain.Requirement{domain.ReqCustomerConsent},
		})

		if visitType == domain.VisitTypeBoardPlacement || visitType == domain.VisitTypeFullActivation {
			activities = append(activities, domain.Activity{
				ID:               uuid.NewString(),
				Type:             domain.ActivityBoardPlacement,
				BrandID:          brand.ID,
				Title:            fmt.Sprintf("%s Board Placement", brand.Name),
				Description:      fmt.Sprintf("Install and photograph %s promotional board", brand.Name),
				Mandatory:        true,
				Status:           domain.ActivityPending,
				EstimatedMinutes: boardMinutes,
				Commission:       domain.CommissionRule{Kind: domain.CommissionFixed, Amount: boardCommission},
				Requirements: []domain.Requirement{
					domain.ReqBoardAvailable,
					domain.ReqCustomerPermission,
					domain.ReqPhotoRequired,
				},
			})
		}

		if visitType == domain.VisitTypeProductDistribution || visitType == domain.VisitTypeFullActivation {
			activities = append(activities, domain.Activity{
				ID:               uuid.NewString(),
				Type:             domain.ActivityProductDistribution,
				BrandID:          brand.ID,
				Title:            fmt.Sprintf("%s Product Distribution", brand.Name),
				Description:      fmt.Sprintf("Distribute %s products/samples", brand.Name),
				Mandatory:        false,
				Status:           domain.ActivityPending,
				EstimatedMinutes: distributionMinutes,
				Commission:       domain.CommissionRule{Kind: domain.CommissionPerUnit, Amount: distributionPerUnit},
				Requirements: []domain.Requirement{
					domain.ReqProductsAvailable,
					domain.ReqCustomerConsent,
				},
			})
		}
	}

	activities = append(activities, domain.Activity{
		ID:               uuid.NewString(),
		Type:             domain.ActivityPhotoCapture,
		Title:            "Store Front Photo",
		Description:      "Capture store front and interior photos",
		Mandatory:        true,
		Status:           domain.ActivityPending,
		EstimatedMinutes: photoMinutes,
		Commission:       domain.CommissionRule{Kind: domain.CommissionFixed, Amount: photoCommission},
		Requirements:     []domain.Requirement{domain.ReqCameraAvailable},
	})

	return activities
}
