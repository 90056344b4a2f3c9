package models

import (
	"time"

	"github.com/google/uuid"
)

// MediaType represents the type of media content.
type MediaType string

const (
	MediaTypeMovie  MediaType = "movie"
	MediaTypeSeries MediaType = "series"
)

// ProviderMetadata is the provenance tag used when the canonical metadata
// source last supplied the authoritative record. Streaming sources tag
// records with their own provider name.
const ProviderMetadata = "metadata"

// Title is the merged, provider-agnostic representation of a movie or series.
// ExternalID holds the canonical metadata source's numeric ID when known;
// slugs are never stored there.
type Title struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	ExternalID     string     `json:"external_id,omitempty" gorm:"type:varchar(20);index"`
	Slug           string     `json:"slug,omitempty" gorm:"type:varchar(255);index"`
	MediaType      MediaType  `json:"media_type" gorm:"type:varchar(20);not null;default:'movie'"`
	Name           string     `json:"name" gorm:"not null;index"`
	OriginalName   string     `json:"original_name,omitempty"`
	Description    string     `json:"description,omitempty" gorm:"type:text"`
	PosterURL      string     `json:"poster_url,omitempty"`
	BackdropURL    string     `json:"backdrop_url,omitempty"`
	TrailerURL     string     `json:"trailer_url,omitempty"`
	ReleaseDate    *time.Time `json:"release_date,omitempty"`
	Runtime        int        `json:"runtime,omitempty"` // minutes
	Rating         float64    `json:"rating,omitempty"`
	Genres         []string   `json:"genres,omitempty" gorm:"serializer:json"`
	Cast           []string   `json:"cast,omitempty" gorm:"serializer:json"`
	Director       string     `json:"director,omitempty"`
	Countries      []string   `json:"countries,omitempty" gorm:"serializer:json"`
	Quality        string     `json:"quality,omitempty" gorm:"type:varchar(20)"`
	Language       string     `json:"language,omitempty" gorm:"type:varchar(50)"`
	CurrentEpisode string     `json:"current_episode,omitempty" gorm:"type:varchar(100)"`
	Provider       string     `json:"provider,omitempty" gorm:"type:varchar(50)"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName customization.
func (Title) TableName() string {
	return "titles"
}

// StreamSource is one server/language/quality grouping of episodes supplied
// by a streaming source. It is a value object carried alongside a Title,
// never persisted with its own identity.
type StreamSource struct {
	Provider   string    `json:"provider"`
	ServerName string    `json:"server_name"`
	Quality    string    `json:"quality,omitempty"`
	Language   string    `json:"language,omitempty"`
	Episodes   []Episode `json:"episodes"`
}

// Episode is a single playable entry within a StreamSource. Episode numbering
// is local to its source. Stream and embed URLs point to third-party
// infrastructure and are not validated for reachability.
type Episode struct {
	Number    int    `json:"number"`
	Title     string `json:"title,omitempty"`
	Slug      string `json:"slug,omitempty"`
	StreamURL string `json:"stream_url,omitempty"`
	EmbedURL  string `json:"embed_url,omitempty"`
}

// MovieDetail pairs a resolved Title with the stream sources known for it.
// It is built fresh on every resolution and never cached as its own object.
type MovieDetail struct {
	Title   *Title         `json:"title"`
	Sources []StreamSource `json:"sources"`
}
