package service

import (
	"time"

	"github.com/itsTranT1706/movie-prenium-sub001/pkg/models"
)

// mergeTitles combines a streaming-source title with a canonical metadata
// title into one record. The streaming source wins every contested field
// except the trailer, where the metadata source is authoritative. Fields
// empty on the streaming side are filled from metadata.
func mergeTitles(stream, meta *models.Title) *models.Title {
	merged := *stream

	if meta.TrailerURL != "" {
		merged.TrailerURL = meta.TrailerURL
	}
	if merged.Name == "" {
		merged.Name = meta.Name
	}
	if merged.OriginalName == "" {
		merged.OriginalName = meta.OriginalName
	}
	if merged.Description == "" {
		merged.Description = meta.Description
	}
	if merged.PosterURL == "" {
		merged.PosterURL = meta.PosterURL
	}
	if merged.BackdropURL == "" {
		merged.BackdropURL = meta.BackdropURL
	}
	if merged.ReleaseDate == nil {
		merged.ReleaseDate = meta.ReleaseDate
	}
	if merged.Runtime == 0 {
		merged.Runtime = meta.Runtime
	}
	if merged.Rating == 0 {
		merged.Rating = meta.Rating
	}
	if len(merged.Genres) == 0 {
		merged.Genres = meta.Genres
	}
	if len(merged.Cast) == 0 {
		merged.Cast = meta.Cast
	}
	if len(merged.Countries) == 0 {
		merged.Countries = meta.Countries
	}
	if merged.Director == "" {
		merged.Director = meta.Director
	}
	if merged.ExternalID == "" {
		merged.ExternalID = meta.ExternalID
	}
	merged.UpdatedAt = time.Now().UTC()

	return &merged
}
