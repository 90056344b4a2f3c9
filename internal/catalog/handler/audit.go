package handler

import (
	"context"

	"github.com/itsTranT1706/movie-prenium-sub001/internal/catalog/domain"
	"github.com/itsTranT1706/movie-prenium-sub001/pkg/events"
	"github.com/itsTranT1706/movie-prenium-sub001/pkg/interfaces"
)

// ResolutionAuditHandler subscribes to resolution events and writes an audit
// log line for every resolved title.
type ResolutionAuditHandler struct {
	logger interfaces.Logger
}

var _ interfaces.EventHandler = (*ResolutionAuditHandler)(nil)

// NewResolutionAuditHandler creates a new resolution audit handler.
func NewResolutionAuditHandler(logger interfaces.Logger) *ResolutionAuditHandler {
	return &ResolutionAuditHandler{logger: logger}
}

// Handle logs the resolved title. It never fails; a malformed event is
// dropped silently so the bus keeps dispatching to other handlers.
func (h *ResolutionAuditHandler) Handle(ctx context.Context, event interfaces.Event) error {
	base, ok := event.(*events.BaseEvent)
	if !ok {
		return nil
	}

	externalID, _ := base.Data["external_id"].(string)
	slug, _ := base.Data["slug"].(string)
	provider, _ := base.Data["provider"].(string)
	sourceCount, _ := base.Data["source_count"].(int)

	h.logger.Info("Title resolved",
		interfaces.String("title_id", base.AggregateID()),
		interfaces.String("external_id", externalID),
		interfaces.String("slug", slug),
		interfaces.String("provider", provider),
		interfaces.Int("source_count", sourceCount))
	return nil
}

// EventType returns the event type this handler processes.
func (h *ResolutionAuditHandler) EventType() string {
	return domain.EventTitleResolved
}
