// Package httpapi exposes the episode commands and the discovery read
// side over HTTP/JSON.
package httpapi

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/narwhalmedia/episodes/internal/application/discovery"
	appepisode "github.com/narwhalmedia/episodes/internal/application/episode"
	"github.com/narwhalmedia/episodes/internal/domain/episode"
	apperrors "github.com/narwhalmedia/episodes/pkg/errors"
)

const maxBodyBytes = 1 << 20

// EpisodeService is the write side used by the handlers
type EpisodeService interface {
	Create(ctx context.Context, cmd appepisode.CreateEpisodeCommand) (*appepisode.CreateEpisodeResult, error)
	Update(ctx context.Context, cmd appepisode.UpdateEpisodeCommand) (*appepisode.EpisodeDTO, error)
	Delete(ctx context.Context, id int64) error
	Import(ctx context.Context, cmd appepisode.ImportEpisodeCommand) (*appepisode.EpisodeDTO, error)
	UpdateStatus(ctx context.Context, cmd appepisode.UpdateStatusCommand) (*appepisode.EpisodeDTO, error)
	Get(ctx context.Context, id int64) (*appepisode.EpisodeDTO, error)
	List(ctx context.Context, q appepisode.ListEpisodesQuery) (*appepisode.EpisodeList, error)
}

// DiscoveryService is the read side used by the handlers
type DiscoveryService interface {
	Search(ctx context.Context, q discovery.SearchQuery) (*discovery.SearchResult, error)
	GetByID(ctx context.Context, id int64) (*discovery.EpisodeDetails, error)
	HealthCheck(ctx context.Context) bool
}

// ErrMalformedRequest is returned for bodies and parameters that cannot be decoded
var ErrMalformedRequest = apperrors.Validation("Request.Malformed", "request is malformed")

// Server holds the HTTP handlers
type Server struct {
	episodes  EpisodeService
	discovery DiscoveryService
	logger    *zap.Logger
}

// NewServer creates the HTTP handlers
func NewServer(episodes EpisodeService, discovery DiscoveryService, logger *zap.Logger) *Server {
	return &Server{
		episodes:  episodes,
		discovery: discovery,
		logger:    logger.Named("http"),
	}
}

// Routes returns the router with its middleware
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /health/search", s.handleSearchHealth)

	mux.HandleFunc("POST /api/episodes", s.handleCreate)
	mux.HandleFunc("POST /api/episodes/import", s.handleImport)
	mux.HandleFunc("GET /api/episodes", s.handleList)
	mux.HandleFunc("GET /api/episodes/{id}", s.handleGet)
	mux.HandleFunc("PUT /api/episodes/{id}", s.handleUpdate)
	mux.HandleFunc("PUT /api/episodes/{id}/status", s.handleUpdateStatus)
	mux.HandleFunc("DELETE /api/episodes/{id}", s.handleDelete)

	mux.HandleFunc("GET /api/discovery/episodes", s.handleSearch)
	mux.HandleFunc("GET /api/discovery/episodes/{id}", s.handleDiscoveryGet)

	return chain(mux,
		Logging(s.logger),
		Recover(s.logger),
		BodyLimit(maxBodyBytes),
		RequireJSON,
	)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearchHealth(w http.ResponseWriter, r *http.Request) {
	if !s.discovery.HealthCheck(r.Context()) {
		WriteProblem(w, http.StatusServiceUnavailable, "not ready", "search index not reachable", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	defer drainBody(r)
	var cmd appepisode.CreateEpisodeCommand
	if err := decodeJSONStrict(r, &cmd); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	result, err := s.episodes.Create(r.Context(), cmd)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	w.Header().Set("Location", "/api/episodes/"+strconv.FormatInt(result.Episode.ID, 10))
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	defer drainBody(r)
	var cmd appepisode.ImportEpisodeCommand
	if err := decodeJSONStrict(r, &cmd); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	dto, err := s.episodes.Import(r.Context(), cmd)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusAccepted, dto)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	defer drainBody(r)
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	var cmd appepisode.UpdateEpisodeCommand
	if err := decodeJSONStrict(r, &cmd); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	cmd.ID = id

	dto, err := s.episodes.Update(r.Context(), cmd)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	defer drainBody(r)
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	var cmd appepisode.UpdateStatusCommand
	if err := decodeJSONStrict(r, &cmd); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	cmd.ID = id

	dto, err := s.episodes.UpdateStatus(r.Context(), cmd)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if err := s.episodes.Delete(r.Context(), id); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	dto, err := s.episodes.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	list, err := s.episodes.List(r.Context(), q)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	page, err := intParam(values.Get("page"))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	pageSize, err := intParam(values.Get("page_size"))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	result, err := s.discovery.Search(r.Context(), discovery.SearchQuery{
		Query:    values.Get("q"),
		Category: values.Get("category"),
		Language: values.Get("language"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDiscoveryGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	details, err := s.discovery.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func decodeJSONStrict(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return ErrMalformedRequest.WithMessage("invalid json: %v", err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, episode.ErrInvalidID
	}
	return id, nil
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ErrMalformedRequest.WithMessage("%q is not a number", raw)
	}
	return n, nil
}

func listQuery(r *http.Request) (appepisode.ListEpisodesQuery, error) {
	values := r.URL.Query()
	q := appepisode.ListEpisodesQuery{
		Statuses:    splitParam(values["status"]),
		Categories:  splitParam(values["category"]),
		Languages:   splitParam(values["language"]),
		SourceTypes: splitParam(values["source_type"]),
		SearchTerm:  values.Get("q"),
	}

	var err error
	if q.Page, err = intParam(values.Get("page")); err != nil {
		return q, err
	}
	if q.PageSize, err = intParam(values.Get("page_size")); err != nil {
		return q, err
	}
	if q.PublishedFrom, err = timeParam(values.Get("published_from")); err != nil {
		return q, err
	}
	if q.PublishedTo, err = timeParam(values.Get("published_to")); err != nil {
		return q, err
	}
	if q.MinDuration, err = secondsParam(values.Get("min_duration")); err != nil {
		return q, err
	}
	if q.MaxDuration, err = secondsParam(values.Get("max_duration")); err != nil {
		return q, err
	}
	return q, nil
}

// splitParam accepts both repeated and comma-separated values
func splitParam(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func timeParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, ErrMalformedRequest.WithMessage("%q is not an RFC 3339 time", raw)
	}
	return &t, nil
}

func secondsParam(raw string) (*time.Duration, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 || n > math.MaxInt64/int64(time.Second) {
		return nil, ErrMalformedRequest.WithMessage("%q is not a number of seconds", raw)
	}
	d := time.Duration(n) * time.Second
	return &d, nil
}
