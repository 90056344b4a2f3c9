package service

import (
	"context"
	"fmt"
	"regexp"

	"github.com/itsTranT1706/movie-prenium-sub001/internal/catalog/domain"
	"github.com/itsTranT1706/movie-prenium-sub001/internal/catalog/repository"
	"github.com/itsTranT1706/movie-prenium-sub001/internal/provider"
	pkgerrors "github.com/itsTranT1706/movie-prenium-sub001/pkg/errors"
	"github.com/itsTranT1706/movie-prenium-sub001/pkg/interfaces"
	"github.com/itsTranT1706/movie-prenium-sub001/pkg/models"
)

// canonicalIDPattern decides the whole resolution strategy: identifiers made
// of digits only originate from the canonical metadata source, everything
// else is a streaming-source slug.
var canonicalIDPattern = regexp.MustCompile(`^\d+$`)

// IsCanonicalID reports whether an identifier is a canonical numeric ID.
func IsCanonicalID(identifier string) bool {
	return canonicalIDPattern.MatchString(identifier)
}

// MetadataClient is the orchestrator's view of the canonical metadata source.
type MetadataClient interface {
	GetMovieDetails(ctx context.Context, id string) (*models.Title, error)
	GetTVDetails(ctx context.Context, id string) (*models.Title, error)
	GetTrailerURL(ctx context.Context, id string) (string, error)
	GetTVTrailerURL(ctx context.Context, id string) (string, error)
}

// ProviderRegistry exposes streaming adapters by name.
type ProviderRegistry interface {
	Get(name string) (provider.StreamProvider, bool)
}

// ResolverService is the movie-detail resolution orchestrator. Given a
// loosely-typed identifier it decides which sources to query, in what order,
// merges conflicting fields and persists the result. It favors availability:
// a failure only surfaces when no source leaves a usable title at all.
type ResolverService struct {
	repo            repository.TitleRepository
	registry        ProviderRegistry
	metadata        MetadataClient
	eventBus        interfaces.EventBus
	logger          interfaces.Logger
	primaryProvider string
}

// NewResolverService creates a new resolver service.
func NewResolverService(
	repo repository.TitleRepository,
	registry ProviderRegistry,
	metadata MetadataClient,
	eventBus interfaces.EventBus,
	logger interfaces.Logger,
	primaryProvider string,
) *ResolverService {
	return &ResolverService{
		repo:            repo,
		registry:        registry,
		metadata:        metadata,
		eventBus:        eventBus,
		logger:          logger,
		primaryProvider: primaryProvider,
	}
}

// Resolve classifies the identifier and runs the matching resolution path.
func (s *ResolverService) Resolve(ctx context.Context, identifier string) (*models.MovieDetail, error) {
	if IsCanonicalID(identifier) {
		return s.resolveByCanonicalID(ctx, identifier)
	}
	return s.resolveBySlug(ctx, identifier)
}

// resolveBySlug is the streaming-source-first path. The metadata source is
// only consulted for a best-effort trailer backfill.
func (s *ResolverService) resolveBySlug(ctx context.Context, slug string) (*models.MovieDetail, error) {
	primary, ok := s.registry.Get(s.primaryProvider)
	if !ok {
		return nil, pkgerrors.Internal(fmt.Sprintf("primary provider %q is not registered", s.primaryProvider))
	}

	detail, err := primary.GetMovieWithEpisodes(ctx, slug)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, pkgerrors.NotFound(fmt.Sprintf("movie %q not found", slug))
		}
		return nil, err
	}

	title := detail.Title
	if title.TrailerURL == "" && title.ExternalID != "" {
		s.backfillTrailer(ctx, title)
	}

	if err := s.repo.Save(ctx, title); err != nil {
		return nil, err
	}

	s.logger.Info("Resolved title by slug",
		interfaces.String("slug", slug),
		interfaces.String("provider", title.Provider),
		interfaces.Int("sources", len(detail.Sources)))
	s.eventBus.PublishAsync(ctx, domain.NewTitleResolvedEvent(title, len(detail.Sources)))

	return &models.MovieDetail{Title: title, Sources: detail.Sources}, nil
}

// backfillTrailer enriches a streaming-source title with a trailer from the
// metadata source. Failures are logged and swallowed.
func (s *ResolverService) backfillTrailer(ctx context.Context, title *models.Title) {
	var (
		trailerURL string
		err        error
	)
	if title.MediaType == models.MediaTypeSeries {
		trailerURL, err = s.metadata.GetTVTrailerURL(ctx, title.ExternalID)
	} else {
		trailerURL, err = s.metadata.GetTrailerURL(ctx, title.ExternalID)
	}
	if err != nil {
		s.logger.Warn("Trailer backfill failed",
			interfaces.String("external_id", title.ExternalID),
			interfaces.Error(err))
		return
	}
	if trailerURL != "" {
		title.TrailerURL = trailerURL
	}
}

// resolveByCanonicalID is the metadata-source-first path. The streaming
// source is probed first because, when it already carries a trailer, the
// rate-limited metadata source does not need to be called at all.
func (s *ResolverService) resolveByCanonicalID(ctx context.Context, id string) (*models.MovieDetail, error) {
	// The previously known media type guides which metadata endpoint to try
	// first later on.
	mediaType := models.MediaTypeMovie
	if cached, err := s.repo.FindByExternalIDWithCache(ctx, id); err == nil && cached.MediaType != "" {
		mediaType = cached.MediaType
	}

	streamTitle, sources := s.probeStreamingSource(ctx, id)
	if streamTitle != nil {
		mediaType = streamTitle.MediaType
		streamTitle.ExternalID = id
	}

	title := streamTitle
	persist := true

	if streamTitle == nil || streamTitle.TrailerURL == "" {
		metaTitle, err := s.fetchMetadataTitle(ctx, id, mediaType)
		switch {
		case err == nil:
			if streamTitle != nil {
				title = mergeTitles(streamTitle, metaTitle)
			} else {
				title = metaTitle
			}
		case pkgerrors.IsNotFound(err):
			if streamTitle == nil {
				return nil, pkgerrors.NotFound(fmt.Sprintf("movie %s not found", id))
			}
			// The metadata source has never heard of this title; the
			// streaming-source record stands on its own.
		default:
			recovered, fromCache := s.recoverTitle(ctx, id, streamTitle, err)
			if recovered == nil {
				return nil, s.surfaceUpstreamFailure(id, err)
			}
			title = recovered
			persist = !fromCache
		}
	}

	if persist {
		if err := s.repo.Save(ctx, title); err != nil {
			return nil, err
		}
	}

	if len(sources) == 0 {
		sources = s.fetchSourcesLate(ctx, id, title.MediaType)
	}

	s.logger.Info("Resolved title by canonical id",
		interfaces.String("external_id", id),
		interfaces.String("provider", title.Provider),
		interfaces.Int("sources", len(sources)))
	s.eventBus.PublishAsync(ctx, domain.NewTitleResolvedEvent(title, len(sources)))

	return &models.MovieDetail{Title: title, Sources: sources}, nil
}

// probeStreamingSource asks the primary adapter for a canonical-ID lookup,
// first as a movie, then as a series if the movie variant yields no stream
// sources. The first variant with at least one source fixes the media type
// for the rest of the resolution. All failures here are non-fatal.
func (s *ResolverService) probeStreamingSource(ctx context.Context, id string) (*models.Title, []models.StreamSource) {
	primary, ok := s.registry.Get(s.primaryProvider)
	if !ok {
		return nil, nil
	}
	lookup, ok := primary.(provider.CanonicalIDLookup)
	if !ok {
		return nil, nil
	}

	for _, mediaType := range []models.MediaType{models.MediaTypeMovie, models.MediaTypeSeries} {
		detail, err := lookup.GetDetailsByCanonicalID(ctx, id, mediaType)
		if err != nil {
			if !pkgerrors.IsNotFound(err) {
				s.logger.Warn("Streaming source probe failed",
					interfaces.String("external_id", id),
					interfaces.String("media_type", string(mediaType)),
					interfaces.Error(err))
			}
			continue
		}
		if detail == nil || detail.Title == nil || len(detail.Sources) == 0 {
			continue
		}
		detail.Title.MediaType = mediaType
		return detail.Title, detail.Sources
	}
	return nil, nil
}

// fetchMetadataTitle fetches details from the metadata source, trying the
// endpoint for the assumed media type first and the other one when the
// title turns out to be misclassified.
func (s *ResolverService) fetchMetadataTitle(ctx context.Context, id string, mediaType models.MediaType) (*models.Title, error) {
	title, err := s.metadataDetails(ctx, id, mediaType)
	if pkgerrors.IsNotFound(err) {
		title, err = s.metadataDetails(ctx, id, otherMediaType(mediaType))
	}
	if err != nil {
		return nil, err
	}

	if title.TrailerURL == "" {
		s.attachMetadataTrailer(ctx, title)
	}
	return title, nil
}

func (s *ResolverService) metadataDetails(ctx context.Context, id string, mediaType models.MediaType) (*models.Title, error) {
	if mediaType == models.MediaTypeSeries {
		return s.metadata.GetTVDetails(ctx, id)
	}
	return s.metadata.GetMovieDetails(ctx, id)
}

// attachMetadataTrailer is best-effort enrichment; failures are logged only.
func (s *ResolverService) attachMetadataTrailer(ctx context.Context, title *models.Title) {
	var (
		trailerURL string
		err        error
	)
	if title.MediaType == models.MediaTypeSeries {
		trailerURL, err = s.metadata.GetTVTrailerURL(ctx, title.ExternalID)
	} else {
		trailerURL, err = s.metadata.GetTrailerURL(ctx, title.ExternalID)
	}
	if err != nil {
		s.logger.Warn("Metadata trailer fetch failed",
			interfaces.String("external_id", title.ExternalID),
			interfaces.Error(err))
		return
	}
	title.TrailerURL = trailerURL
}

// recoverTitle runs the fallback chain for throttled or failing metadata
// fetches: last-known-good cached title first, then any streaming-source
// title already obtained. The second return value reports whether the title
// came from the stale cache, in which case it is served as-is without a
// fresh persist.
func (s *ResolverService) recoverTitle(ctx context.Context, id string, streamTitle *models.Title, cause error) (*models.Title, bool) {
	if stale, err := s.repo.FindByExternalID(ctx, id); err == nil {
		s.logger.Warn("Serving stale title after metadata failure",
			interfaces.String("external_id", id),
			interfaces.Error(cause))
		return stale, true
	}
	if streamTitle != nil {
		s.logger.Warn("Falling back to streaming-source title after metadata failure",
			interfaces.String("external_id", id),
			interfaces.Error(cause))
		return streamTitle, false
	}
	return nil, false
}

func (s *ResolverService) surfaceUpstreamFailure(id string, err error) error {
	if pkgerrors.IsRateLimited(err) {
		return pkgerrors.RateLimited("Too many requests, please try again later", pkgerrors.RetryAfterOf(err))
	}
	return err
}

// fetchSourcesLate makes one more attempt to obtain stream sources once the
// media type is settled. A failure leaves sources empty and is logged only.
func (s *ResolverService) fetchSourcesLate(ctx context.Context, id string, mediaType models.MediaType) []models.StreamSource {
	primary, ok := s.registry.Get(s.primaryProvider)
	if !ok {
		return nil
	}

	sources, err := primary.GetStreamSources(ctx, id, mediaType)
	if err != nil {
		if !pkgerrors.IsNotFound(err) {
			s.logger.Warn("Stream source fetch failed",
				interfaces.String("external_id", id),
				interfaces.Error(err))
		}
		return nil
	}
	return sources
}

func otherMediaType(mediaType models.MediaType) models.MediaType {
	if mediaType == models.MediaTypeMovie {
		return models.MediaTypeSeries
	}
	return models.MediaTypeMovie
}
