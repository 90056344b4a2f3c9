package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/sync/singleflight"

	"github.com/itsTranT1706/movie-prenium-sub001/internal/config"
	pkgerrors "github.com/itsTranT1706/movie-prenium-sub001/pkg/errors"
	"github.com/itsTranT1706/movie-prenium-sub001/pkg/interfaces"
	"github.com/itsTranT1706/movie-prenium-sub001/pkg/models"
)

const (
	imageBaseURL = "https://image.tmdb.org/t/p"
	// Optimized image sizes instead of "original" to keep payloads small.
	posterSize   = "w500"
	backdropSize = "w1280"
)

// Client is a typed HTTP wrapper over the canonical metadata API. Transport
// failures are normalized into the pkg/errors taxonomy: NotFound for 404,
// RateLimited for 429 (with the Retry-After hint when present) and Upstream
// for every other non-2xx status.
type Client struct {
	baseURL  string
	apiKey   string
	language string
	httpc    *http.Client
	logger   interfaces.Logger

	// Process-wide genre-name table, populated once and read thereafter.
	// Concurrent warm-ups coalesce onto a single in-flight fetch.
	genreMu    sync.RWMutex
	genreNames map[int]string
	genreGroup singleflight.Group
}

// NewClient creates a new metadata client.
func NewClient(cfg config.MetadataConfig, logger interfaces.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   strings.TrimSpace(cfg.APIKey),
		language: cfg.Language,
		httpc:    &http.Client{Timeout: 15 * time.Second},
		logger:   logger,
	}
}

type movieDetailsResponse struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	OriginalName string  `json:"original_title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	Runtime      int     `json:"runtime"`
	VoteAverage  float64 `json:"vote_average"`
	Genres       []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
	GenreIDs []int `json:"genre_ids"`
}

type tvDetailsResponse struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	OriginalName   string  `json:"original_name"`
	Overview       string  `json:"overview"`
	PosterPath     string  `json:"poster_path"`
	BackdropPath   string  `json:"backdrop_path"`
	FirstAirDate   string  `json:"first_air_date"`
	EpisodeRunTime []int   `json:"episode_run_time"`
	VoteAverage    float64 `json:"vote_average"`
	Genres         []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
	GenreIDs []int `json:"genre_ids"`
}

type videosResponse struct {
	Results []struct {
		Name     string `json:"name"`
		Key      string `json:"key"`
		Site     string `json:"site"`
		Type     string `json:"type"`
		Official bool   `json:"official"`
	} `json:"results"`
}

type genreListResponse struct {
	Genres []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

// GetMovieDetails fetches the movie-details endpoint for a canonical ID.
func (c *Client) GetMovieDetails(ctx context.Context, id string) (*models.Title, error) {
	var payload movieDetailsResponse
	if err := c.doGET(ctx, fmt.Sprintf("/movie/%s", id), &payload); err != nil {
		return nil, err
	}

	title := &models.Title{
		ExternalID:   id,
		MediaType:    models.MediaTypeMovie,
		Name:         payload.Title,
		OriginalName: payload.OriginalName,
		Description:  payload.Overview,
		PosterURL:    buildImageURL(payload.PosterPath, posterSize),
		BackdropURL:  buildImageURL(payload.BackdropPath, backdropSize),
		Runtime:      payload.Runtime,
		Rating:       payload.VoteAverage,
		Provider:     models.ProviderMetadata,
	}
	if released := parseReleaseDate(payload.ReleaseDate); released != nil {
		title.ReleaseDate = released
	}
	title.Genres = c.resolveGenres(ctx, genreNamesOf(payload.Genres), payload.GenreIDs)

	return title, nil
}

// GetTVDetails fetches the TV-details endpoint for a canonical ID.
func (c *Client) GetTVDetails(ctx context.Context, id string) (*models.Title, error) {
	var payload tvDetailsResponse
	if err := c.doGET(ctx, fmt.Sprintf("/tv/%s", id), &payload); err != nil {
		return nil, err
	}

	title := &models.Title{
		ExternalID:   id,
		MediaType:    models.MediaTypeSeries,
		Name:         payload.Name,
		OriginalName: payload.OriginalName,
		Description:  payload.Overview,
		PosterURL:    buildImageURL(payload.PosterPath, posterSize),
		BackdropURL:  buildImageURL(payload.BackdropPath, backdropSize),
		Rating:       payload.VoteAverage,
		Provider:     models.ProviderMetadata,
	}
	if len(payload.EpisodeRunTime) > 0 {
		title.Runtime = payload.EpisodeRunTime[0]
	}
	if released := parseReleaseDate(payload.FirstAirDate); released != nil {
		title.ReleaseDate = released
	}
	title.Genres = c.resolveGenres(ctx, genreNamesOf(payload.Genres), payload.GenreIDs)

	return title, nil
}

// GetTrailerURL returns an embeddable trailer URL for a movie, or "" when
// the videos endpoint lists none.
func (c *Client) GetTrailerURL(ctx context.Context, id string) (string, error) {
	return c.trailerURL(ctx, fmt.Sprintf("/movie/%s/videos", id))
}

// GetTVTrailerURL returns an embeddable trailer URL for a series, or "".
func (c *Client) GetTVTrailerURL(ctx context.Context, id string) (string, error) {
	return c.trailerURL(ctx, fmt.Sprintf("/tv/%s/videos", id))
}

func (c *Client) trailerURL(ctx context.Context, path string) (string, error) {
	var payload videosResponse
	if err := c.doGET(ctx, path, &payload); err != nil {
		return "", err
	}

	// Prefer official YouTube trailers, then any YouTube video.
	fallback := ""
	for _, video := range payload.Results {
		if !strings.EqualFold(video.Site, "youtube") || video.Key == "" {
			continue
		}
		embed := fmt.Sprintf("https://www.youtube.com/embed/%s", video.Key)
		if strings.EqualFold(video.Type, "trailer") && video.Official {
			return embed, nil
		}
		if fallback == "" {
			fallback = embed
		}
	}
	return fallback, nil
}

// WarmGenres populates the process-wide genre-name table. Safe to call
// concurrently; callers coalesce onto one in-flight fetch.
func (c *Client) WarmGenres(ctx context.Context) error {
	c.genreMu.RLock()
	populated := c.genreNames != nil
	c.genreMu.RUnlock()
	if populated {
		return nil
	}

	_, err, _ := c.genreGroup.Do("genres", func() (interface{}, error) {
		names := make(map[int]string)
		for _, path := range []string{"/genre/movie/list", "/genre/tv/list"} {
			var payload genreListResponse
			if err := c.doGET(ctx, path, &payload); err != nil {
				return nil, err
			}
			for _, genre := range payload.Genres {
				names[genre.ID] = genre.Name
			}
		}

		c.genreMu.Lock()
		c.genreNames = names
		c.genreMu.Unlock()
		return nil, nil
	})
	return err
}

// GenreName resolves a genre ID to its display name, warming the table on
// first use.
func (c *Client) GenreName(ctx context.Context, id int) (string, bool) {
	c.genreMu.RLock()
	populated := c.genreNames != nil
	name, ok := c.genreNames[id]
	c.genreMu.RUnlock()
	if populated {
		return name, ok
	}

	if err := c.WarmGenres(ctx); err != nil {
		c.logger.Warn("Genre table warm-up failed", interfaces.Error(err))
		return "", false
	}

	c.genreMu.RLock()
	defer c.genreMu.RUnlock()
	name, ok = c.genreNames[id]
	return name, ok
}

// resolveGenres prefers fully expanded genre objects; list-style responses
// only carry IDs, which are resolved through the genre table.
func (c *Client) resolveGenres(ctx context.Context, names []string, ids []int) []string {
	if len(names) > 0 {
		return names
	}
	resolved := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := c.GenreName(ctx, id); ok {
			resolved = append(resolved, name)
		}
	}
	if len(resolved) == 0 {
		return nil
	}
	return resolved
}

// doGET performs a GET against the metadata API. Transport failures and 5xx
// responses are retried with backoff; 404 and 429 are classified immediately
// and never retried.
func (c *Client) doGET(ctx context.Context, path string, v any) error {
	endpoint := c.baseURL + path
	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}

			q := req.URL.Query()
			q.Set("api_key", c.apiKey)
			if c.language != "" {
				q.Set("language", c.language)
			}
			req.URL.RawQuery = q.Encode()

			resp, err := c.httpc.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusNotFound:
				return retry.Unrecoverable(pkgerrors.NotFound(
					fmt.Sprintf("metadata source has no entry for %s", path)))
			case resp.StatusCode == http.StatusTooManyRequests:
				return retry.Unrecoverable(pkgerrors.RateLimited(
					"metadata source throttled the request", parseRetryAfter(resp.Header.Get("Retry-After"))))
			case resp.StatusCode >= 500:
				return pkgerrors.Upstream(
					fmt.Sprintf("metadata request %s failed: %s", path, resp.Status), resp.StatusCode)
			case resp.StatusCode >= 400:
				return retry.Unrecoverable(pkgerrors.Upstream(
					fmt.Sprintf("metadata request %s failed: %s", path, resp.Status), resp.StatusCode))
			}

			return json.NewDecoder(resp.Body).Decode(v)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(300*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

func genreNamesOf(genres []struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}) []string {
	if len(genres) == 0 {
		return nil
	}
	names := make([]string, 0, len(genres))
	for _, genre := range genres {
		if genre.Name != "" {
			names = append(names, genre.Name)
		}
	}
	return names
}

func buildImageURL(imagePath, size string) string {
	trimmed := strings.TrimSpace(imagePath)
	if trimmed == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s", imageBaseURL, size, strings.TrimPrefix(trimmed, "/"))
}

func parseReleaseDate(date string) *time.Time {
	if date == "" {
		return nil
	}
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil
	}
	return &parsed
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		if wait := time.Until(at); wait > 0 {
			return wait
		}
	}
	return 0
}
