package provider_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/itsTranT1706/movie-prenium-sub001/internal/config"
	"github.com/itsTranT1706/movie-prenium-sub001/internal/provider"
	"github.com/itsTranT1706/movie-prenium-sub001/pkg/errors"
	"github.com/itsTranT1706/movie-prenium-sub001/pkg/logger"
	"github.com/itsTranT1706/movie-prenium-sub001/pkg/models"
)

const kkphimDetailFixture = `{
	"status": true,
	"msg": "done",
	"movie": {
		"name": "John Wick 4",
		"slug": "john-wick-4",
		"origin_name": "John Wick: Chapter 4",
		"content": "Sát thủ John Wick trở lại.",
		"type": "single",
		"poster_url": "upload/vod/john-wick-4-poster.jpg",
		"thumb_url": "https://phimimg.com/upload/vod/john-wick-4-thumb.jpg",
		"trailer_url": "https://www.youtube.com/watch?v=qEVUtrk8_B4",
		"time": "169 phút",
		"episode_current": "Full",
		"quality": "FHD",
		"lang": "Vietsub",
		"year": 2023,
		"actor": ["Keanu Reeves", "Donnie Yen"],
		"director": ["Chad Stahelski"],
		"category": [{"name": "Hành Động", "slug": "hanh-dong"}],
		"country": [{"name": "Âu Mỹ", "slug": "au-my"}],
		"tmdb": {"type": "movie", "id": "603692", "vote_average": 7.9}
	},
	"episodes": [{
		"server_name": "#Hà Nội (Vietsub)",
		"server_data": [{
			"name": "Full",
			"slug": "full",
			"filename": "John.Wick.4",
			"link_embed": "https://player.phimapi.com/player/?url=abc",
			"link_m3u8": "https://s4.phim1280.tv/john-wick-4/index.m3u8"
		}]
	}]
}`

type KKPhimProviderTestSuite struct {
	suite.Suite
	server   *httptest.Server
	provider *provider.KKPhimProvider
	requests []string
}

func (suite *KKPhimProviderTestSuite) SetupTest() {
	suite.requests = nil
	suite.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		suite.requests = append(suite.requests, r.URL.Path)
		switch r.URL.Path {
		case "/phim/john-wick-4", "/tmdb/movie/603692":
			w.Write([]byte(kkphimDetailFixture))
		case "/phim/soft-missing":
			w.Write([]byte(`{"status": false, "msg": "not found"}`))
		case "/phim/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	suite.provider = provider.NewKKPhimProvider(config.ProviderConfig{
		BaseURL:    suite.server.URL,
		CDNBaseURL: "https://phimimg.com",
	}, logger.NewNoopLogger())
}

func (suite *KKPhimProviderTestSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *KKPhimProviderTestSuite) TestGetMovieWithEpisodes_Success() {
	detail, err := suite.provider.GetMovieWithEpisodes(context.Background(), "john-wick-4")

	require.NoError(suite.T(), err)
	title := detail.Title
	assert.Equal(suite.T(), "John Wick 4", title.Name)
	assert.Equal(suite.T(), "john-wick-4", title.Slug)
	assert.Equal(suite.T(), models.MediaTypeMovie, title.MediaType)
	assert.Equal(suite.T(), "603692", title.ExternalID)
	assert.Equal(suite.T(), 169, title.Runtime)
	assert.InDelta(suite.T(), 7.9, title.Rating, 0.001)
	assert.Equal(suite.T(), provider.ProviderKKPhim, title.Provider)
	// Relative poster paths are absolutized against the CDN base,
	// absolute thumb URLs pass through
	assert.Equal(suite.T(), "https://phimimg.com/upload/vod/john-wick-4-poster.jpg", title.PosterURL)
	assert.Equal(suite.T(), "https://phimimg.com/upload/vod/john-wick-4-thumb.jpg", title.BackdropURL)
	require.NotNil(suite.T(), title.ReleaseDate)
	assert.Equal(suite.T(), 2023, title.ReleaseDate.Year())

	require.Len(suite.T(), detail.Sources, 1)
	source := detail.Sources[0]
	assert.Equal(suite.T(), "#Hà Nội (Vietsub)", source.ServerName)
	assert.Equal(suite.T(), "FHD", source.Quality)
	require.Len(suite.T(), source.Episodes, 1)
	assert.Equal(suite.T(), "https://s4.phim1280.tv/john-wick-4/index.m3u8", source.Episodes[0].StreamURL)
}

func (suite *KKPhimProviderTestSuite) TestGetMovieWithEpisodes_NotFoundStatus() {
	detail, err := suite.provider.GetMovieWithEpisodes(context.Background(), "missing-movie")

	assert.Nil(suite.T(), detail)
	assert.True(suite.T(), errors.IsNotFound(err))
}

func (suite *KKPhimProviderTestSuite) TestGetMovieWithEpisodes_SoftNotFound() {
	// A 200 response with status=false still counts as not found
	detail, err := suite.provider.GetMovieWithEpisodes(context.Background(), "soft-missing")

	assert.Nil(suite.T(), detail)
	assert.True(suite.T(), errors.IsNotFound(err))
}

func (suite *KKPhimProviderTestSuite) TestGetMovieWithEpisodes_UpstreamError() {
	detail, err := suite.provider.GetMovieWithEpisodes(context.Background(), "broken")

	assert.Nil(suite.T(), detail)
	assert.True(suite.T(), errors.IsUpstream(err))
}

func (suite *KKPhimProviderTestSuite) TestGetDetailsByCanonicalID() {
	detail, err := suite.provider.GetDetailsByCanonicalID(context.Background(), "603692", models.MediaTypeMovie)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "603692", detail.Title.ExternalID)
	assert.Equal(suite.T(), []string{"/tmdb/movie/603692"}, suite.requests)
}

func (suite *KKPhimProviderTestSuite) TestGetDetailsByCanonicalID_SeriesEndpoint() {
	_, err := suite.provider.GetDetailsByCanonicalID(context.Background(), "94605", models.MediaTypeSeries)

	assert.True(suite.T(), errors.IsNotFound(err))
	assert.Equal(suite.T(), []string{"/tmdb/tv/94605"}, suite.requests)
}

func (suite *KKPhimProviderTestSuite) TestGetStreamSources() {
	sources, err := suite.provider.GetStreamSources(context.Background(), "603692", models.MediaTypeMovie)

	require.NoError(suite.T(), err)
	require.Len(suite.T(), sources, 1)
	assert.Equal(suite.T(), provider.ProviderKKPhim, sources[0].Provider)
}

func TestKKPhimProviderTestSuite(t *testing.T) {
	suite.Run(t, new(KKPhimProviderTestSuite))
}
