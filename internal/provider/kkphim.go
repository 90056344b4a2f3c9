package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/itsTranT1706/movie-prenium-sub001/internal/config"
	pkgerrors "github.com/itsTranT1706/movie-prenium-sub001/pkg/errors"
	"github.com/itsTranT1706/movie-prenium-sub001/pkg/interfaces"
	"github.com/itsTranT1706/movie-prenium-sub001/pkg/models"
)

// ProviderKKPhim is the registry name of the KKPhim adapter.
const ProviderKKPhim = "kkphim"

var numericIDPattern = regexp.MustCompile(`^\d+$`)

// KKPhimProvider adapts the KKPhim API. It supports slug lookups and direct
// canonical-ID lookups through the source's tmdb endpoints.
type KKPhimProvider struct {
	baseURL    string
	cdnBaseURL string
	httpc      *http.Client
	logger     interfaces.Logger
}

// Compile-time capability checks.
var (
	_ StreamProvider    = (*KKPhimProvider)(nil)
	_ CanonicalIDLookup = (*KKPhimProvider)(nil)
)

// NewKKPhimProvider creates a new KKPhim adapter.
func NewKKPhimProvider(cfg config.ProviderConfig, logger interfaces.Logger) *KKPhimProvider {
	return &KKPhimProvider{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		cdnBaseURL: cfg.CDNBaseURL,
		httpc:      &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// Name returns the provider name.
func (p *KKPhimProvider) Name() string {
	return ProviderKKPhim
}

type kkphimDetailResponse struct {
	Status   bool                 `json:"status"`
	Msg      string               `json:"msg"`
	Movie    kkphimMovie          `json:"movie"`
	Episodes []kkphimEpisodeGroup `json:"episodes"`
}

type kkphimMovie struct {
	Name           string  `json:"name"`
	Slug           string  `json:"slug"`
	OriginName     string  `json:"origin_name"`
	Content        string  `json:"content"`
	Type           string  `json:"type"`
	PosterURL      string  `json:"poster_url"`
	ThumbURL       string  `json:"thumb_url"`
	TrailerURL     string  `json:"trailer_url"`
	Time           string  `json:"time"`
	EpisodeCurrent string  `json:"episode_current"`
	Quality        string  `json:"quality"`
	Lang           string  `json:"lang"`
	Year           int     `json:"year"`
	Actor          []string `json:"actor"`
	Director       []string `json:"director"`
	Category       []named  `json:"category"`
	Country        []named  `json:"country"`
	TMDB           struct {
		Type        string  `json:"type"`
		ID          string  `json:"id"`
		VoteAverage float64 `json:"vote_average"`
	} `json:"tmdb"`
}

type kkphimEpisodeGroup struct {
	ServerName string `json:"server_name"`
	ServerData []struct {
		Name      string `json:"name"`
		Slug      string `json:"slug"`
		Filename  string `json:"filename"`
		LinkEmbed string `json:"link_embed"`
		LinkM3U8  string `json:"link_m3u8"`
	} `json:"server_data"`
}

// GetMovieWithEpisodes looks up a title with its stream sources by slug.
func (p *KKPhimProvider) GetMovieWithEpisodes(ctx context.Context, slug string) (*models.MovieDetail, error) {
	return p.fetchDetail(ctx, fmt.Sprintf("%s/phim/%s", p.baseURL, slug))
}

// GetDetailsByCanonicalID looks up a title through the source's tmdb
// endpoint for the given media type.
func (p *KKPhimProvider) GetDetailsByCanonicalID(ctx context.Context, canonicalID string, mediaType models.MediaType) (*models.MovieDetail, error) {
	kind := "movie"
	if mediaType == models.MediaTypeSeries {
		kind = "tv"
	}
	detail, err := p.fetchDetail(ctx, fmt.Sprintf("%s/tmdb/%s/%s", p.baseURL, kind, canonicalID))
	if err != nil {
		return nil, err
	}
	// The tmdb endpoint is authoritative for the canonical ID even when the
	// payload omits it.
	if detail.Title.ExternalID == "" {
		detail.Title.ExternalID = canonicalID
	}
	return detail, nil
}

// GetStreamSources returns only the stream sources for a canonical ID.
func (p *KKPhimProvider) GetStreamSources(ctx context.Context, canonicalID string, mediaType models.MediaType) ([]models.StreamSource, error) {
	detail, err := p.GetDetailsByCanonicalID(ctx, canonicalID, mediaType)
	if err != nil {
		return nil, err
	}
	return detail.Sources, nil
}

func (p *KKPhimProvider) fetchDetail(ctx context.Context, endpoint string) (*models.MovieDetail, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, pkgerrors.NotFound("kkphim has no entry for this title")
	}
	if resp.StatusCode >= 400 {
		return nil, pkgerrors.Upstream(
			fmt.Sprintf("kkphim request failed: %s", resp.Status), resp.StatusCode)
	}

	var payload kkphimDetailResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if !payload.Status || payload.Movie.Slug == "" {
		p.logger.Debug("kkphim returned no usable payload",
			interfaces.String("endpoint", endpoint),
			interfaces.String("msg", payload.Msg))
		return nil, pkgerrors.NotFound("kkphim has no entry for this title")
	}

	title := p.mapMovie(payload.Movie)
	sources := p.mapEpisodeGroups(payload.Episodes, payload.Movie)
	return &models.MovieDetail{Title: title, Sources: sources}, nil
}

// mapMovie is a total transformation: malformed or missing fields degrade to
// zero values, never an error.
func (p *KKPhimProvider) mapMovie(raw kkphimMovie) *models.Title {
	categories := projectNames(raw.Category)

	title := &models.Title{
		Slug:           raw.Slug,
		MediaType:      InferMediaType(raw.Type, categories),
		Name:           raw.Name,
		OriginalName:   raw.OriginName,
		Description:    raw.Content,
		PosterURL:      BuildImageURL(raw.PosterURL, p.cdnBaseURL),
		BackdropURL:    BuildImageURL(raw.ThumbURL, p.cdnBaseURL),
		TrailerURL:     strings.TrimSpace(raw.TrailerURL),
		Runtime:        ParseDurationMinutes(raw.Time),
		Rating:         raw.TMDB.VoteAverage,
		Genres:         categories,
		Cast:           raw.Actor,
		Director:       strings.Join(raw.Director, ", "),
		Countries:      projectNames(raw.Country),
		Quality:        raw.Quality,
		Language:       raw.Lang,
		CurrentEpisode: raw.EpisodeCurrent,
		Provider:       ProviderKKPhim,
	}

	// Slugs never land in ExternalID; only a numeric canonical ID does.
	if numericIDPattern.MatchString(raw.TMDB.ID) {
		title.ExternalID = raw.TMDB.ID
	}
	if raw.Year > 0 {
		released := time.Date(raw.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		title.ReleaseDate = &released
	}

	return title
}

func (p *KKPhimProvider) mapEpisodeGroups(groups []kkphimEpisodeGroup, raw kkphimMovie) []models.StreamSource {
	sources := make([]models.StreamSource, 0, len(groups))
	for _, group := range groups {
		episodes := make([]models.Episode, 0, len(group.ServerData))
		for i, item := range group.ServerData {
			episodes = append(episodes, models.Episode{
				Number:    extractEpisodeNumber(item.Name, i+1),
				Title:     item.Name,
				Slug:      item.Slug,
				StreamURL: item.LinkM3U8,
				EmbedURL:  item.LinkEmbed,
			})
		}
		if len(episodes) == 0 {
			continue
		}
		sources = append(sources, models.StreamSource{
			Provider:   ProviderKKPhim,
			ServerName: group.ServerName,
			Quality:    raw.Quality,
			Language:   raw.Lang,
			Episodes:   episodes,
		})
	}
	return sources
}
