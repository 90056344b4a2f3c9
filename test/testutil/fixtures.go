package testutil

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/itsTranT1706/movie-prenium-sub001/pkg/models"
)

// CreateTestTitle creates a test title with default values.
func CreateTestTitle(externalID, slug string, mediaType models.MediaType) *models.Title {
	now := time.Now()
	releaseDate := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	return &models.Title{
		ID:           uuid.New(),
		ExternalID:   externalID,
		Slug:         slug,
		MediaType:    mediaType,
		Name:         "Test Title",
		OriginalName: "Test Title Original",
		Description:  "Test title description",
		PosterURL:    "https://example.com/poster.jpg",
		BackdropURL:  "https://example.com/backdrop.jpg",
		ReleaseDate:  &releaseDate,
		Runtime:      120,
		Rating:       7.8,
		Genres:       []string{"Action", "Drama"},
		Cast:         []string{"Actor One", "Actor Two"},
		Director:     "Director One",
		Countries:    []string{"United States"},
		Quality:      "FHD",
		Language:     "Vietsub",
		Provider:     "kkphim",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// CreateTestStreamSource creates a stream source with the given number of
// episodes.
func CreateTestStreamSource(provider, serverName string, episodeCount int) models.StreamSource {
	episodes := make([]models.Episode, 0, episodeCount)
	for i := 1; i <= episodeCount; i++ {
		episodes = append(episodes, models.Episode{
			Number:    i,
			Title:     fmt.Sprintf("Tập %d", i),
			Slug:      fmt.Sprintf("tap-%02d", i),
			StreamURL: fmt.Sprintf("https://cdn.example.com/stream/%d/index.m3u8", i),
			EmbedURL:  fmt.Sprintf("https://player.example.com/embed/%d", i),
		})
	}
	return models.StreamSource{
		Provider:   provider,
		ServerName: serverName,
		Quality:    "FHD",
		Language:   "Vietsub",
		Episodes:   episodes,
	}
}

// CreateTestMovieDetail pairs a test title with a single stream source.
func CreateTestMovieDetail(externalID, slug string, mediaType models.MediaType) *models.MovieDetail {
	return &models.MovieDetail{
		Title:   CreateTestTitle(externalID, slug, mediaType),
		Sources: []models.StreamSource{CreateTestStreamSource("kkphim", "Server #1", 3)},
	}
}
