package publisher

import (
	"context"

	"github.com/Reshigan/SalesSync-sub016/module/core/domain"
)

type VisitEventPublisher interface {
	PublishVisitEvent(ctx context.Context, event *domain.VisitEvent) error
}
