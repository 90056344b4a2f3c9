package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	pkgerrors "github.com/itsTranT1706/movie-prenium-sub001/pkg/errors"
	"github.com/itsTranT1706/movie-prenium-sub001/pkg/interfaces"
	"github.com/itsTranT1706/movie-prenium-sub001/pkg/models"
)

// Resolver is the handler's view of the resolution service.
type Resolver interface {
	Resolve(ctx context.Context, identifier string) (*models.MovieDetail, error)
}

// statusByErrorType maps error taxonomy to HTTP status codes. Unlisted
// types fall through to 500.
var statusByErrorType = map[pkgerrors.ErrorType]int{
	pkgerrors.ErrorTypeNotFound:    http.StatusNotFound,
	pkgerrors.ErrorTypeBadRequest:  http.StatusBadRequest,
	pkgerrors.ErrorTypeRateLimited: http.StatusTooManyRequests,
	pkgerrors.ErrorTypeUpstream:    http.StatusBadGateway,
}

// MovieHandler serves the movie-detail HTTP API.
type MovieHandler struct {
	resolver Resolver
	logger   interfaces.Logger
}

// NewMovieHandler creates a new movie handler.
func NewMovieHandler(resolver Resolver, logger interfaces.Logger) *MovieHandler {
	return &MovieHandler{
		resolver: resolver,
		logger:   logger,
	}
}

// RegisterRoutes registers the handler's routes on the router.
func (h *MovieHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/movies/{id}", h.GetMovie).Methods(http.MethodGet)
	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)
}

// GetMovie resolves a movie detail by slug or canonical ID.
func (h *MovieHandler) GetMovie(w http.ResponseWriter, r *http.Request) {
	identifier := mux.Vars(r)["id"]
	if identifier == "" {
		h.writeError(w, pkgerrors.BadRequest("identifier is required"))
		return
	}

	detail, err := h.resolver.Resolve(r.Context(), identifier)
	if err != nil {
		h.logger.Error("Resolution failed",
			interfaces.String("identifier", identifier),
			interfaces.Error(err))
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, detail)
}

// Health reports service liveness.
func (h *MovieHandler) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type"`
}

func (h *MovieHandler) writeError(w http.ResponseWriter, err error) {
	errorType := pkgerrors.TypeOf(err)
	status, ok := statusByErrorType[errorType]
	if !ok {
		status = http.StatusInternalServerError
	}

	if errorType == pkgerrors.ErrorTypeRateLimited {
		if retryAfter := pkgerrors.RetryAfterOf(err); retryAfter > 0 {
			seconds := int(retryAfter / time.Second)
			if seconds < 1 {
				seconds = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
		}
	}

	h.writeJSON(w, status, errorResponse{
		Error: err.Error(),
		Type:  string(errorType),
	})
}

func (h *MovieHandler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response", interfaces.Error(err))
	}
}
