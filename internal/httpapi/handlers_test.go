package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/narwhalmedia/episodes/internal/application/discovery"
	appepisode "github.com/narwhalmedia/episodes/internal/application/episode"
	"github.com/narwhalmedia/episodes/internal/domain/episode"
	"github.com/narwhalmedia/episodes/internal/httpapi"
	apperrors "github.com/narwhalmedia/episodes/pkg/errors"
)

type mockEpisodes struct {
	mock.Mock
}

func (m *mockEpisodes) Create(ctx context.Context, cmd appepisode.CreateEpisodeCommand) (*appepisode.CreateEpisodeResult, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appepisode.CreateEpisodeResult), args.Error(1)
}

func (m *mockEpisodes) Update(ctx context.Context, cmd appepisode.UpdateEpisodeCommand) (*appepisode.EpisodeDTO, error) {
	return m.dto(m.Called(ctx, cmd))
}

func (m *mockEpisodes) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockEpisodes) Import(ctx context.Context, cmd appepisode.ImportEpisodeCommand) (*appepisode.EpisodeDTO, error) {
	return m.dto(m.Called(ctx, cmd))
}

func (m *mockEpisodes) UpdateStatus(ctx context.Context, cmd appepisode.UpdateStatusCommand) (*appepisode.EpisodeDTO, error) {
	return m.dto(m.Called(ctx, cmd))
}

func (m *mockEpisodes) Get(ctx context.Context, id int64) (*appepisode.EpisodeDTO, error) {
	return m.dto(m.Called(ctx, id))
}

func (m *mockEpisodes) List(ctx context.Context, q appepisode.ListEpisodesQuery) (*appepisode.EpisodeList, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appepisode.EpisodeList), args.Error(1)
}

func (m *mockEpisodes) dto(args mock.Arguments) (*appepisode.EpisodeDTO, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appepisode.EpisodeDTO), args.Error(1)
}

type mockDiscovery struct {
	mock.Mock
}

func (m *mockDiscovery) Search(ctx context.Context, q discovery.SearchQuery) (*discovery.SearchResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discovery.SearchResult), args.Error(1)
}

func (m *mockDiscovery) GetByID(ctx context.Context, id int64) (*discovery.EpisodeDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discovery.EpisodeDetails), args.Error(1)
}

func (m *mockDiscovery) HealthCheck(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func newServer(t *testing.T) (http.Handler, *mockEpisodes, *mockDiscovery) {
	episodes := new(mockEpisodes)
	disc := new(mockDiscovery)
	t.Cleanup(func() {
		episodes.AssertExpectations(t)
		disc.AssertExpectations(t)
	})
	return httpapi.NewServer(episodes, disc, zaptest.NewLogger(t)).Routes(), episodes, disc
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) httpapi.Problem {
	t.Helper()
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var p httpapi.Problem
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
	return p
}

func TestCreateEpisode(t *testing.T) {
	// Arrange
	h, episodes, _ := newServer(t)
	cmd := appepisode.CreateEpisodeCommand{Title: "Ep1", Category: "Science", Format: "mp4", DurationSeconds: 120}
	episodes.On("Create", mock.Anything, cmd).Return(&appepisode.CreateEpisodeResult{
		Episode:   appepisode.EpisodeDTO{ID: 1, Title: "Ep1", Status: "PendingUpload", BlobPath: "/1.mp4"},
		UploadURL: "https://storage.local/upload",
	}, nil).Once()

	// Act
	rec := do(h, http.MethodPost, "/api/episodes", `{"title":"Ep1","category":"Science","format":"mp4","duration_seconds":120}`)

	// Assert
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/api/episodes/1", rec.Header().Get("Location"))
	assert.NotEmpty(t, rec.Header().Get(httpapi.RequestIDHeader))
	var body appepisode.CreateEpisodeResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "https://storage.local/upload", body.UploadURL)
	assert.Equal(t, "/1.mp4", body.Episode.BlobPath)
}

func TestCreateEpisode_RejectsUnknownFields(t *testing.T) {
	h, _, _ := newServer(t)

	rec := do(h, http.MethodPost, "/api/episodes", `{"title":"Ep1","id":5}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Request.Malformed", decodeProblem(t, rec).Code)
}

func TestCreateEpisode_RequiresJSON(t *testing.T) {
	h, _, _ := newServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/episodes", strings.NewReader("title=Ep1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", episode.ErrCannotDeleteProcessing, http.StatusBadRequest, "Episode.CannotDeleteProcessingEpisode"},
		{"not found", episode.ErrNotFound, http.StatusNotFound, "Episode.NotFound"},
		{"conflict", episode.ErrConcurrencyConflict, http.StatusConflict, "Episode.ConcurrencyConflict"},
		{"failure", apperrors.Failure("Database.QueryFailed", "query", nil), http.StatusInternalServerError, "Database.QueryFailed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			h, episodes, _ := newServer(t)
			episodes.On("Delete", mock.Anything, int64(9)).Return(tt.err).Once()

			// Act
			rec := do(h, http.MethodDelete, "/api/episodes/9", "")

			// Assert
			assert.Equal(t, tt.status, rec.Code)
			p := decodeProblem(t, rec)
			assert.Equal(t, tt.code, p.Code)
			assert.Equal(t, "/api/episodes/9", p.Instance)
		})
	}
}

func TestDeleteEpisode(t *testing.T) {
	h, episodes, _ := newServer(t)
	episodes.On("Delete", mock.Anything, int64(3)).Return(nil).Once()

	rec := do(h, http.MethodDelete, "/api/episodes/3", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestInvalidPathID(t *testing.T) {
	h, _, _ := newServer(t)

	for _, target := range []string{"/api/episodes/abc", "/api/episodes/0", "/api/discovery/episodes/-1"} {
		rec := do(h, http.MethodGet, target, "")

		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Equal(t, "Episode.InvalidId", decodeProblem(t, rec).Code, target)
	}
}

func TestUpdateEpisode(t *testing.T) {
	// Arrange
	h, episodes, _ := newServer(t)
	publish := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	episodes.On("Update", mock.Anything, appepisode.UpdateEpisodeCommand{
		ID:          4,
		Title:       "New",
		Category:    "History",
		PublishDate: publish,
	}).Return(&appepisode.EpisodeDTO{ID: 4, Title: "New"}, nil).Once()

	// Act
	rec := do(h, http.MethodPut, "/api/episodes/4", `{"title":"New","category":"History","publish_date":"2030-01-01T00:00:00Z"}`)

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateStatus(t *testing.T) {
	h, episodes, _ := newServer(t)
	episodes.On("UpdateStatus", mock.Anything, appepisode.UpdateStatusCommand{ID: 4, Status: "Failed"}).
		Return(&appepisode.EpisodeDTO{ID: 4, Status: "Failed"}, nil).Once()

	rec := do(h, http.MethodPut, "/api/episodes/4/status", `{"status":"Failed"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestImportEpisode(t *testing.T) {
	h, episodes, _ := newServer(t)
	episodes.On("Import", mock.Anything, mock.MatchedBy(func(cmd appepisode.ImportEpisodeCommand) bool {
		return cmd.SourceType == "RssImport" && cmd.SourceURL == "https://feeds.example.com/show.xml"
	})).Return(&appepisode.EpisodeDTO{ID: 2, Status: "Processing"}, nil).Once()

	rec := do(h, http.MethodPost, "/api/episodes/import",
		`{"title":"Imported","category":"Culture","source_type":"RssImport","source_url":"https://feeds.example.com/show.xml"}`)

	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestListEpisodes(t *testing.T) {
	// Arrange
	h, episodes, _ := newServer(t)
	episodes.On("List", mock.Anything, mock.MatchedBy(func(q appepisode.ListEpisodesQuery) bool {
		return assert.ObjectsAreEqual([]string{"Ready", "Failed"}, q.Statuses) &&
			assert.ObjectsAreEqual([]string{"Science"}, q.Categories) &&
			q.Page == 2 && q.PageSize == 5 &&
			q.MinDuration != nil && *q.MinDuration == time.Minute &&
			q.PublishedFrom != nil && q.PublishedFrom.Year() == 2024
	})).Return(&appepisode.EpisodeList{Total: 0, Page: 2, PageSize: 5}, nil).Once()

	// Act
	rec := do(h, http.MethodGet,
		"/api/episodes?status=Ready,Failed&category=Science&page=2&page_size=5&min_duration=60&published_from=2024-01-01T00:00:00Z", "")

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListEpisodes_MalformedParameter(t *testing.T) {
	h, _, _ := newServer(t)

	for _, query := range []string{"published_from=yesterday", "min_duration=-5", "max_duration=18446744074"} {
		rec := do(h, http.MethodGet, "/api/episodes?"+query, "")

		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}

func TestDiscovery(t *testing.T) {
	// Arrange
	h, _, disc := newServer(t)
	disc.On("Search", mock.Anything, discovery.SearchQuery{Query: "space", Page: 1, PageSize: 10}).
		Return(&discovery.SearchResult{Total: 0, Page: 1, PageSize: 10}, nil).Once()
	disc.On("GetByID", mock.Anything, int64(8)).Return(nil, episode.ErrNotFound).Once()

	// Act
	search := do(h, http.MethodGet, "/api/discovery/episodes?q=space&page=1&page_size=10", "")
	get := do(h, http.MethodGet, "/api/discovery/episodes/8", "")

	// Assert
	assert.Equal(t, http.StatusOK, search.Code)
	assert.Equal(t, http.StatusNotFound, get.Code)
}

func TestHealth(t *testing.T) {
	h, _, disc := newServer(t)
	disc.On("HealthCheck", mock.Anything).Return(false).Once()

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(h, http.MethodGet, "/health/search", "").Code)
}
