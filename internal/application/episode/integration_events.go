package episode

import (
	"github.com/narwhalmedia/episodes/internal/domain/episode"
	"github.com/narwhalmedia/episodes/internal/domain/events"
)

// Integration event type tags
const (
	EpisodeCreated         = "EpisodeCreated"
	EpisodeUpdated         = "EpisodeUpdated"
	EpisodeStatusChanged   = "EpisodeStatusChanged"
	EpisodeBlobPathUpdated = "EpisodeBlobPathUpdated"
	EpisodeImportRequested = "EpisodeImportRequested"
	EpisodeDeleted         = "EpisodeDeleted"
)

var integrationTags = map[string]string{
	episode.EventTypeCreated:         EpisodeCreated,
	episode.EventTypeMetadataUpdated: EpisodeUpdated,
	episode.EventTypeStatusChanged:   EpisodeStatusChanged,
	episode.EventTypeBlobPathUpdated: EpisodeBlobPathUpdated,
	episode.EventTypeImportInitiated: EpisodeImportRequested,
	episode.EventTypeDeleted:         EpisodeDeleted,
}

// ToIntegrationEvent wraps a domain event for other services. The domain
// event itself is the payload, so consumers never re-query the episode.
// It reports false for events without an integration tag.
func ToIntegrationEvent(evt events.Event) (*events.IntegrationEvent, bool) {
	tag, ok := integrationTags[evt.EventType()]
	if !ok {
		return nil, false
	}
	return events.NewIntegrationEvent(tag, evt, evt), true
}
