package provider

import (
	"strconv"
	"strings"

	"github.com/itsTranT1706/movie-prenium-sub001/pkg/models"
)

// seriesKeywords are the category/type keywords that classify a raw record
// as a series. Everything else maps to movie.
var seriesKeywords = []string{
	"series", "tvshows", "tv-show", "hoathinh", "anime",
	"phim bộ", "phim bo", "tv shows", "hoạt hình",
}

// InferMediaType derives the media type from an explicit type hint when the
// source provides one, otherwise from category names.
func InferMediaType(typeHint string, categories []string) models.MediaType {
	hint := strings.ToLower(strings.TrimSpace(typeHint))
	if hint != "" {
		for _, keyword := range seriesKeywords {
			if hint == keyword || strings.Contains(hint, keyword) {
				return models.MediaTypeSeries
			}
		}
		return models.MediaTypeMovie
	}

	for _, category := range categories {
		lowered := strings.ToLower(category)
		for _, keyword := range seriesKeywords {
			if strings.Contains(lowered, keyword) {
				return models.MediaTypeSeries
			}
		}
	}
	return models.MediaTypeMovie
}

// BuildImageURL absolutizes a raw image path against the provider CDN base.
// Already-absolute URLs pass through unchanged; empty input stays empty.
func BuildImageURL(imagePath, cdnBase string) string {
	trimmed := strings.TrimSpace(imagePath)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}
	return strings.TrimRight(cdnBase, "/") + "/" + strings.TrimPrefix(trimmed, "/")
}

// ParseDurationMinutes extracts the first run of digits from a free-text
// duration like "45 phút/tập". Returns 0 when the text carries no digits.
func ParseDurationMinutes(text string) int {
	start := -1
	for i, r := range text {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			minutes, _ := strconv.Atoi(text[start:i])
			return minutes
		}
	}
	if start >= 0 {
		minutes, _ := strconv.Atoi(text[start:])
		return minutes
	}
	return 0
}

// extractEpisodeNumber pulls an episode number out of a name like "Tập 05".
// Falls back to the positional number when the name carries no digits.
func extractEpisodeNumber(name string, fallback int) int {
	if number := ParseDurationMinutes(name); number > 0 {
		return number
	}
	return fallback
}

// projectNames extracts the display names from a list of category objects.
type named struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

func projectNames(items []named) []string {
	if len(items) == 0 {
		return nil
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		if item.Name != "" {
			names = append(names, item.Name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	return names
}
