package provider

import (
	"context"
	"sync"

	"github.com/itsTranT1706/movie-prenium-sub001/pkg/interfaces"
	"github.com/itsTranT1706/movie-prenium-sub001/pkg/models"
)

// StreamProvider is the interface every streaming source adapter implements.
type StreamProvider interface {
	// Name returns the provider name used for registry lookup and
	// provenance tagging.
	Name() string

	// GetMovieWithEpisodes looks up a title with its stream sources by slug.
	GetMovieWithEpisodes(ctx context.Context, slug string) (*models.MovieDetail, error)

	// GetStreamSources returns the stream sources for a canonical metadata ID.
	GetStreamSources(ctx context.Context, canonicalID string, mediaType models.MediaType) ([]models.StreamSource, error)
}

// CanonicalIDLookup is an optional capability for adapters that can resolve
// a full title directly by canonical metadata ID. Callers assert for it
// instead of probing method names at runtime.
type CanonicalIDLookup interface {
	GetDetailsByCanonicalID(ctx context.Context, canonicalID string, mediaType models.MediaType) (*models.MovieDetail, error)
}

// Registry holds the registered streaming source adapters and exposes
// lookup by name.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]StreamProvider
	logger    interfaces.Logger
}

// NewRegistry creates a new provider registry.
func NewRegistry(logger interfaces.Logger) *Registry {
	return &Registry{
		providers: make(map[string]StreamProvider),
		logger:    logger,
	}
}

// Register registers a streaming provider, replacing any provider already
// registered under the same name.
func (r *Registry) Register(provider StreamProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[provider.Name()] = provider
	r.logger.Info("Registered streaming provider",
		interfaces.String("provider", provider.Name()))
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (StreamProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, ok := r.providers[name]
	return provider, ok
}

// Names returns the names of all registered providers.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
