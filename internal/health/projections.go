package health

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/yourusername/nba-comps/internal/models"
	"github.com/yourusername/nba-comps/internal/season"
)

// ErrorResponse is the JSON body of a failed API request.
type ErrorResponse struct {
	Error string `json:"error"`
}

type projectionQuery struct {
	playerID int64
	seasonID string
	k        int
}

func parseProjectionQuery(r *http.Request) (projectionQuery, error) {
	q := r.URL.Query()
	var pq projectionQuery

	raw := q.Get("player_id")
	if raw == "" {
		return pq, fmt.Errorf("player_id is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return pq, fmt.Errorf("player_id must be an integer")
	}
	pq.playerID = id

	pq.seasonID = q.Get("season_id")
	if pq.seasonID == "" {
		return pq, fmt.Errorf("season_id is required")
	}
	if _, err := season.StartYear(pq.seasonID); err != nil {
		return pq, err
	}

	if raw := q.Get("k"); raw != "" {
		k, err := strconv.Atoi(raw)
		if err != nil || k <= 0 {
			return pq, fmt.Errorf("k must be a positive integer")
		}
		pq.k = k
	}

	return pq, nil
}

// statusFor maps projection errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrPlayerSeasonNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInsufficientNeighbors),
		errors.Is(err, models.ErrNoSuccessorSeason),
		errors.Is(err, models.ErrUnknownSeason):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrSnapshotNotLoaded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// handleProjection handles GET /v1/projections?player_id=&season_id=&k=
func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
		return
	}

	pq, err := parseProjectionQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	result, err := s.projections.Project(r.Context(), pq.playerID, pq.seasonID, pq.k)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.WithError(err).WithField("player_id", pq.playerID).Error("Projection failed")
		}
		writeJSON(w, status, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}
