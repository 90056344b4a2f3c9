package domain

import (
	"github.com/itsTranT1706/movie-prenium-sub001/pkg/events"
	"github.com/itsTranT1706/movie-prenium-sub001/pkg/models"
)

// Event types published by the catalog context.
const (
	EventTitleResolved = "catalog.title.resolved"
)

// NewTitleResolvedEvent creates an event for a completed title resolution.
func NewTitleResolvedEvent(title *models.Title, sourceCount int) *events.BaseEvent {
	return events.NewAggregateEvent(EventTitleResolved, title.ID.String(), map[string]interface{}{
		"external_id":  title.ExternalID,
		"slug":         title.Slug,
		"media_type":   string(title.MediaType),
		"provider":     title.Provider,
		"source_count": sourceCount,
	})
}
