package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/itsTranT1706/movie-prenium-sub001/internal/config"
	pkgerrors "github.com/itsTranT1706/movie-prenium-sub001/pkg/errors"
	"github.com/itsTranT1706/movie-prenium-sub001/pkg/interfaces"
	"github.com/itsTranT1706/movie-prenium-sub001/pkg/models"
)

// ProviderNguonC is the registry name of the NguonC adapter.
const ProviderNguonC = "nguonc"

// Category group names used by the NguonC payload.
const (
	nguoncGroupFormat  = "Định dạng"
	nguoncGroupGenre   = "Thể loại"
	nguoncGroupCountry = "Quốc gia"
)

// NguonCProvider adapts the NguonC API. The source only supports slug
// lookups; it carries no canonical metadata IDs.
type NguonCProvider struct {
	baseURL string
	httpc   *http.Client
	logger  interfaces.Logger
}

var _ StreamProvider = (*NguonCProvider)(nil)

// NewNguonCProvider creates a new NguonC adapter.
func NewNguonCProvider(cfg config.ProviderConfig, logger interfaces.Logger) *NguonCProvider {
	return &NguonCProvider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpc:   &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

// Name returns the provider name.
func (p *NguonCProvider) Name() string {
	return ProviderNguonC
}

type nguoncDetailResponse struct {
	Status string      `json:"status"`
	Movie  nguoncMovie `json:"movie"`
}

type nguoncMovie struct {
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	OriginalName   string `json:"original_name"`
	Description    string `json:"description"`
	ThumbURL       string `json:"thumb_url"`
	PosterURL      string `json:"poster_url"`
	Time           string `json:"time"`
	Quality        string `json:"quality"`
	Language       string `json:"language"`
	CurrentEpisode string `json:"current_episode"`
	Director       string `json:"director"`
	Casts          string `json:"casts"`
	Category       map[string]struct {
		Group named   `json:"group"`
		List  []named `json:"list"`
	} `json:"category"`
	Episodes []struct {
		ServerName string `json:"server_name"`
		Items      []struct {
			Name  string `json:"name"`
			Slug  string `json:"slug"`
			Embed string `json:"embed"`
			M3U8  string `json:"m3u8"`
		} `json:"items"`
	} `json:"episodes"`
}

// GetMovieWithEpisodes looks up a title with its stream sources by slug.
func (p *NguonCProvider) GetMovieWithEpisodes(ctx context.Context, slug string) (*models.MovieDetail, error) {
	endpoint := fmt.Sprintf("%s/film/%s", p.baseURL, slug)
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
		return nil, pkgerrors.NotFound("nguonc has no entry for this title")
	}
	if resp.StatusCode >= 400 {
		return nil, pkgerrors.Upstream(
			fmt.Sprintf("nguonc request failed: %s", resp.Status), resp.StatusCode)
	}

	var payload nguoncDetailResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.Status != "success" || payload.Movie.Slug == "" {
		p.logger.Debug("nguonc returned no usable payload",
			interfaces.String("slug", slug),
			interfaces.String("status", payload.Status))
		return nil, pkgerrors.NotFound("nguonc has no entry for this title")
	}

	return p.mapDetail(payload.Movie), nil
}

// GetStreamSources is unsupported: NguonC carries no canonical metadata IDs.
func (p *NguonCProvider) GetStreamSources(ctx context.Context, canonicalID string, mediaType models.MediaType) ([]models.StreamSource, error) {
	return nil, pkgerrors.NotFound("nguonc does not support canonical id lookup")
}

// mapDetail is a total transformation; missing fields degrade to zero values.
func (p *NguonCProvider) mapDetail(raw nguoncMovie) *models.MovieDetail {
	title := &models.Title{
		Slug:           raw.Slug,
		MediaType:      InferMediaType(p.categoryValue(raw, nguoncGroupFormat), nil),
		Name:           raw.Name,
		OriginalName:   raw.OriginalName,
		Description:    raw.Description,
		PosterURL:      raw.PosterURL,
		BackdropURL:    raw.ThumbURL,
		Runtime:        ParseDurationMinutes(raw.Time),
		Genres:         p.categoryValues(raw, nguoncGroupGenre),
		Cast:           splitNames(raw.Casts),
		Director:       raw.Director,
		Countries:      p.categoryValues(raw, nguoncGroupCountry),
		Quality:        raw.Quality,
		Language:       raw.Language,
		CurrentEpisode: raw.CurrentEpisode,
		Provider:       ProviderNguonC,
	}

	sources := make([]models.StreamSource, 0, len(raw.Episodes))
	for _, group := range raw.Episodes {
		episodes := make([]models.Episode, 0, len(group.Items))
		for i, item := range group.Items {
			episodes = append(episodes, models.Episode{
				Number:    extractEpisodeNumber(item.Name, i+1),
				Title:     item.Name,
				Slug:      item.Slug,
				StreamURL: item.M3U8,
				EmbedURL:  item.Embed,
			})
		}
		if len(episodes) == 0 {
			continue
		}
		sources = append(sources, models.StreamSource{
			Provider:   ProviderNguonC,
			ServerName: group.ServerName,
			Quality:    raw.Quality,
			Language:   raw.Language,
			Episodes:   episodes,
		})
	}

	return &models.MovieDetail{Title: title, Sources: sources}
}

func (p *NguonCProvider) categoryValues(raw nguoncMovie, groupName string) []string {
	for _, category := range raw.Category {
		if category.Group.Name == groupName {
			return projectNames(category.List)
		}
	}
	return nil
}

func (p *NguonCProvider) categoryValue(raw nguoncMovie, groupName string) string {
	values := p.categoryValues(raw, groupName)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func splitNames(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}
